package recurrence

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoRecurrence is what Describe returns for a rule without a start date.
const NoRecurrence = "No recurrence set"

// DefaultDateLayout renders dates in US short form, e.g. 1/15/2024.
const DefaultDateLayout = "1/2/2006"

// Describe returns a human-readable description of the rule, for example
// "Every 2 weeks on Mon, Fri starting 1/1/2024 until 3/1/2024".
func Describe(r Rule) string {
	return DescribeLayout(r, DefaultDateLayout)
}

// DescribeLayout is Describe with a caller-chosen time layout for the start
// and end dates.
func DescribeLayout(r Rule, layout string) string {
	if !r.HasStart() {
		return NoRecurrence
	}
	if layout == "" {
		layout = DefaultDateLayout
	}

	parts := []string{
		frequencyClause(r),
		"starting " + r.Start.Format(layout),
	}
	if end, ok := r.End.Get(); ok {
		parts = append(parts, "until "+end.Format(layout))
	}
	return strings.Join(parts, " ")
}

func frequencyClause(r Rule) string {
	n := r.interval()

	switch f := r.Frequency.(type) {
	case Weekly:
		if len(f.Days) > 0 {
			days := abbreviate(f.Days)
			if n == 1 {
				return "Weekly on " + days
			}
			return fmt.Sprintf("Every %d weeks on %s", n, days)
		}
		if n == 1 {
			return "Weekly"
		}
		return fmt.Sprintf("Every %d weeks", n)

	case Monthly:
		if p, ok := f.Pattern.(ByWeekday); ok {
			if o, d, ok := p.resolved(); ok {
				if n == 1 {
					return fmt.Sprintf("Monthly on the %s %s", o, d)
				}
				return fmt.Sprintf("Every %d months on the %s %s", n, o, d)
			}
		}
		if n == 1 {
			return "Monthly"
		}
		return fmt.Sprintf("Every %d months", n)

	case Yearly:
		if n == 1 {
			return "Yearly"
		}
		return fmt.Sprintf("Every %d years", n)

	default:
		if n == 1 {
			return "Daily"
		}
		return fmt.Sprintf("Every %d days", n)
	}
}

// abbreviate joins weekdays as "Mon, Wed, Fri", keeping the caller's order.
func abbreviate(days []time.Weekday) string {
	// Casers carry state, so each call gets its own.
	title := cases.Title(language.English)
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = title.String(WeekdayName(d)[:3])
	}
	return strings.Join(names, ", ")
}
