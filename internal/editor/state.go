// Package editor holds the state behind the interactive rule editor. A State
// is a value owned by its caller; every edit returns a new State and leaves
// the receiver untouched.
package editor

import (
	"slices"
	"time"

	"github.com/dukerupert/cadence/internal/recurrence"
	"github.com/samber/mo"
)

// State is one editing session's current rule.
type State struct {
	rule recurrence.Rule
}

// New returns the editor's starting state: daily, every day, from now on.
func New(now time.Time) State {
	return State{rule: recurrence.DefaultRule(now)}
}

// FromRule wraps an existing rule, e.g. one imported from an RRULE.
func FromRule(r recurrence.Rule) State {
	if r.Frequency == nil {
		r.Frequency = recurrence.Daily{}
	}
	if r.Interval < 1 {
		r.Interval = 1
	}
	return State{rule: r}
}

// Rule returns the rule being edited.
func (s State) Rule() recurrence.Rule {
	return s.rule
}

// Reset discards every edit.
func (s State) Reset(now time.Time) State {
	return New(now)
}

// WithKind switches the recurrence type. Options belonging to the previous
// type are dropped; switching to the current type changes nothing.
func (s State) WithKind(k recurrence.Kind) State {
	if s.rule.Kind() == k && s.rule.Frequency != nil {
		return s
	}

	r := s.rule
	switch k {
	case recurrence.KindWeekly:
		r.Frequency = recurrence.Weekly{}
	case recurrence.KindMonthly:
		r.Frequency = recurrence.Monthly{Pattern: recurrence.ByDate{}}
	case recurrence.KindYearly:
		r.Frequency = recurrence.Yearly{}
	default:
		r.Frequency = recurrence.Daily{}
	}
	return State{rule: r}
}

// WithInterval sets the repeat interval, clamped to at least 1.
func (s State) WithInterval(n int) State {
	r := s.rule
	r.Interval = max(n, 1)
	return State{rule: r}
}

// WithDateRange replaces the start and/or end date. A nil argument keeps the
// current value.
func (s State) WithDateRange(start, end *time.Time) State {
	r := s.rule
	if start != nil {
		r.Start = *start
	}
	if end != nil {
		r.End = mo.Some(*end)
	}
	return State{rule: r}
}

// ClearEnd makes the rule open ended.
func (s State) ClearEnd() State {
	r := s.rule
	r.End = mo.None[time.Time]()
	return State{rule: r}
}

// WithWeekDays replaces the selected weekdays of a weekly rule. Rules of any
// other type are returned unchanged.
func (s State) WithWeekDays(days []time.Weekday) State {
	if _, ok := s.rule.Frequency.(recurrence.Weekly); !ok {
		return s
	}
	r := s.rule
	r.Frequency = recurrence.Weekly{Days: slices.Clone(days)}
	return State{rule: r}
}

// ToggleWeekDay selects or deselects a single weekday of a weekly rule.
func (s State) ToggleWeekDay(day time.Weekday, on bool) State {
	w, ok := s.rule.Frequency.(recurrence.Weekly)
	if !ok {
		return s
	}

	has := slices.Contains(w.Days, day)
	switch {
	case on && !has:
		return s.WithWeekDays(append(slices.Clone(w.Days), day))
	case !on && has:
		return s.WithWeekDays(slices.DeleteFunc(slices.Clone(w.Days), func(d time.Weekday) bool {
			return d == day
		}))
	}
	return s
}

// WithMonthlyPattern replaces the pattern of a monthly rule. Rules of any
// other type are returned unchanged.
func (s State) WithMonthlyPattern(p recurrence.MonthlyPattern) State {
	if _, ok := s.rule.Frequency.(recurrence.Monthly); !ok {
		return s
	}
	if p == nil {
		p = recurrence.ByDate{}
	}
	r := s.rule
	r.Frequency = recurrence.Monthly{Pattern: p}
	return State{rule: r}
}
