package recurrence

import (
	"slices"
	"time"
)

// MaxOccurrences caps how many dates Generate returns for a single call.
const MaxOccurrences = 100

// Generate returns the dates produced by rule, in chronological order, up to
// the effective horizon: rule.End when set, otherwise horizon.
//
// The start date is always the first result, even when it does not match the
// rule's weekday or ordinal pattern; generation then advances from it. At most
// MaxOccurrences dates are returned. A rule without a start date yields nil.
func Generate(rule Rule, horizon time.Time) []time.Time {
	if !rule.HasStart() {
		return nil
	}

	final := rule.End.OrElse(horizon)

	var dates []time.Time
	current := rule.Start
	for len(dates) < MaxOccurrences && !current.After(final) {
		dates = append(dates, current)
		next := nextOccurrence(current, rule)

		// Degenerate rule: advancing did not move.
		if next.Equal(current) {
			break
		}
		current = next
	}

	return slices.DeleteFunc(dates, func(d time.Time) bool {
		return d.After(final)
	})
}

func nextOccurrence(current time.Time, rule Rule) time.Time {
	interval := rule.interval()

	switch f := rule.Frequency.(type) {
	case Weekly:
		if len(f.Days) > 0 {
			return nextWeekday(current, f.Days, interval)
		}
		return current.AddDate(0, 0, 7*interval)

	case Monthly:
		if p, ok := f.Pattern.(ByWeekday); ok {
			if o, d, ok := p.resolved(); ok {
				target := current.AddDate(0, interval, 0)
				return NthWeekday(target.Year(), target.Month(), o, d, current.Location())
			}
		}
		return current.AddDate(0, interval, 0)

	case Yearly:
		return current.AddDate(interval, 0, 0)

	default:
		return current.AddDate(0, 0, interval)
	}
}

// nextWeekday visits every selected weekday of the current week in order, then
// jumps to the earliest selected weekday of the next eligible week.
func nextWeekday(current time.Time, days []time.Weekday, interval int) time.Time {
	sorted := slices.Clone(days)
	slices.Sort(sorted)

	wd := int(current.Weekday())
	for _, d := range sorted {
		if int(d) > wd {
			return current.AddDate(0, 0, int(d)-wd)
		}
	}

	return current.AddDate(0, 0, 7*interval-wd+int(sorted[0]))
}

// NthWeekday returns midnight (in loc) of the ordinal occurrence of weekday in
// the given month. Last is the final such weekday of the month. An ordinal
// that would spill into the following month resolves to Last instead, so the
// result always lies within the requested month.
func NthWeekday(year int, month time.Month, ordinal Ordinal, weekday time.Weekday, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}

	if ordinal != Last {
		first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		offset := (int(weekday) - int(first.Weekday()) + 7) % 7
		d := time.Date(year, month, 1+offset+int(ordinal)*7, 0, 0, 0, 0, loc)
		if d.Month() == month {
			return d
		}
	}

	d := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
