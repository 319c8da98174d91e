package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Kind is the recurrence type tag carried on the wire.
type Kind int

const (
	KindDaily Kind = iota
	KindWeekly
	KindMonthly
	KindYearly
)

var kindNames = map[Kind]string{
	KindDaily:   "daily",
	KindWeekly:  "weekly",
	KindMonthly: "monthly",
	KindYearly:  "yearly",
}

var kindFromName = map[string]Kind{
	"daily":   KindDaily,
	"weekly":  KindWeekly,
	"monthly": KindMonthly,
	"yearly":  KindYearly,
}

func (k Kind) String() string {
	return kindNames[k]
}

// ParseKind maps "daily", "weekly", "monthly" or "yearly" to a Kind.
func ParseKind(s string) (Kind, error) {
	k, ok := kindFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown recurrence type: %q", s)
	}
	return k, nil
}

// Ordinal selects which instance of a weekday within a month.
type Ordinal int

const (
	First Ordinal = iota
	Second
	Third
	Fourth
	Last
)

var ordinalNames = map[Ordinal]string{
	First:  "first",
	Second: "second",
	Third:  "third",
	Fourth: "fourth",
	Last:   "last",
}

var ordinalFromName = map[string]Ordinal{
	"first":  First,
	"second": Second,
	"third":  Third,
	"fourth": Fourth,
	"last":   Last,
}

func (o Ordinal) String() string {
	return ordinalNames[o]
}

// Valid reports whether o is one of First..Last.
func (o Ordinal) Valid() bool {
	_, ok := ordinalNames[o]
	return ok
}

// ParseOrdinal maps "first".."fourth" and "last" to an Ordinal.
func ParseOrdinal(s string) (Ordinal, error) {
	o, ok := ordinalFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown ordinal: %q", s)
	}
	return o, nil
}

var weekdayFromName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekdayName returns the lowercase wire name of d ("monday").
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekday maps a lowercase or capitalized weekday name to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdayFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday: %q", s)
	}
	return d, nil
}

// Frequency is one of Daily, Weekly, Monthly or Yearly. Each variant only
// carries the options that make sense for it.
type Frequency interface {
	Kind() Kind
	isFrequency()
}

// Daily repeats every Interval days.
type Daily struct{}

// Weekly repeats every Interval weeks on Days, or on the start date's own
// weekday when Days is empty.
type Weekly struct {
	Days []time.Weekday
}

// Monthly repeats every Interval months according to Pattern.
type Monthly struct {
	Pattern MonthlyPattern
}

// Yearly repeats every Interval years on the start's month and day.
type Yearly struct{}

func (Daily) Kind() Kind   { return KindDaily }
func (Weekly) Kind() Kind  { return KindWeekly }
func (Monthly) Kind() Kind { return KindMonthly }
func (Yearly) Kind() Kind  { return KindYearly }

func (Daily) isFrequency()   {}
func (Weekly) isFrequency()  {}
func (Monthly) isFrequency() {}
func (Yearly) isFrequency()  {}

// MonthlyPattern is either ByDate or ByWeekday.
type MonthlyPattern interface {
	isMonthlyPattern()
}

// ByDate keeps the same day of month each cycle.
type ByDate struct{}

// ByWeekday resolves to the nth (or last) Weekday of each target month, e.g.
// "second Tuesday". If either field is absent the pattern behaves like ByDate.
type ByWeekday struct {
	Ordinal mo.Option[Ordinal]
	Weekday mo.Option[time.Weekday]
}

func (ByDate) isMonthlyPattern()    {}
func (ByWeekday) isMonthlyPattern() {}

// NthWeekdayOf builds a complete ByWeekday pattern.
func NthWeekdayOf(o Ordinal, d time.Weekday) ByWeekday {
	return ByWeekday{Ordinal: mo.Some(o), Weekday: mo.Some(d)}
}

// resolved returns the ordinal and weekday when both are set.
func (p ByWeekday) resolved() (Ordinal, time.Weekday, bool) {
	o, okO := p.Ordinal.Get()
	d, okD := p.Weekday.Get()
	if !okO || !okD || !o.Valid() || d < time.Sunday || d > time.Saturday {
		return 0, 0, false
	}
	return o, d, true
}

// Rule describes an abstract recurrence. It is a value: edits produce a new
// Rule rather than mutating an existing one.
type Rule struct {
	Frequency Frequency
	Interval  int
	Start     time.Time // zero means no start date
	End       mo.Option[time.Time]
}

// DefaultRule is the rule a fresh editor starts from: daily, every day,
// starting now, open ended.
func DefaultRule(now time.Time) Rule {
	return Rule{
		Frequency: Daily{},
		Interval:  1,
		Start:     now,
		End:       mo.None[time.Time](),
	}
}

// Kind returns the recurrence type tag, defaulting to daily for a rule with
// no frequency.
func (r Rule) Kind() Kind {
	if r.Frequency == nil {
		return KindDaily
	}
	return r.Frequency.Kind()
}

// HasStart reports whether the rule carries a start date.
func (r Rule) HasStart() bool {
	return !r.Start.IsZero()
}

func (r Rule) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}
