// Package preview turns a rule into what the editor shows next to it: a
// summary sentence, the generated dates, and a month calendar.
package preview

import (
	"encoding/json"
	"time"

	"github.com/dukerupert/cadence/internal/recurrence"
)

const (
	// DefaultHorizonDays is how far ahead an open-ended rule is expanded.
	DefaultHorizonDays = 365
	// UpcomingCount is how many dates the "next occurrences" list shows.
	UpcomingCount = 5
)

// Options tune a preview. Zero values fall back to the defaults.
type Options struct {
	HorizonDays int
	DateLayout  string
}

// Preview is the rendered result for one rule.
type Preview struct {
	Summary     string
	Occurrences []time.Time
	Upcoming    []time.Time
}

// Horizon is the last instant an open-ended rule is expanded to.
func Horizon(now time.Time, opts Options) time.Time {
	days := opts.HorizonDays
	if days <= 0 {
		days = DefaultHorizonDays
	}
	return now.AddDate(0, 0, days)
}

// Build expands rule up to Horizon (or the rule's end date) and describes
// it.
func Build(rule recurrence.Rule, now time.Time, opts Options) Preview {
	occ := recurrence.Generate(rule, Horizon(now, opts))
	if occ == nil {
		occ = []time.Time{}
	}

	return Preview{
		Summary:     recurrence.DescribeLayout(rule, opts.DateLayout),
		Occurrences: occ,
		Upcoming:    occ[:min(len(occ), UpcomingCount)],
	}
}

type wirePreview struct {
	Summary     string   `json:"summary"`
	Occurrences []string `json:"occurrences"`
	Upcoming    []string `json:"upcoming"`
}

// MarshalJSON writes dates as YYYY-MM-DD calendar days.
func (p Preview) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePreview{
		Summary:     p.Summary,
		Occurrences: formatDates(p.Occurrences),
		Upcoming:    formatDates(p.Upcoming),
	})
}

func formatDates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(recurrence.DateLayout)
	}
	return out
}
