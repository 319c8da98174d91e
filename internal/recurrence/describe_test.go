package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	start := date(2024, 1, 1)
	withEnd := func(r Rule, end time.Time) Rule {
		r.End = mo.Some(end)
		return r
	}

	tests := []struct {
		name     string
		rule     Rule
		expected string
	}{
		{"daily", rule(Daily{}, 1, start), "Daily starting 1/1/2024"},
		{"every 3 days", rule(Daily{}, 3, start), "Every 3 days starting 1/1/2024"},
		{"weekly no days", rule(Weekly{}, 1, start), "Weekly starting 1/1/2024"},
		{"every 2 weeks no days", rule(Weekly{}, 2, start), "Every 2 weeks starting 1/1/2024"},
		{
			"weekly on days",
			rule(Weekly{Days: []time.Weekday{time.Monday, time.Friday}}, 1, start),
			"Weekly on Mon, Fri starting 1/1/2024",
		},
		{
			"every 2 weeks on days with end",
			withEnd(rule(Weekly{Days: []time.Weekday{time.Monday, time.Friday}}, 2, start), date(2024, 3, 1)),
			"Every 2 weeks on Mon, Fri starting 1/1/2024 until 3/1/2024",
		},
		{
			"weekday order is preserved",
			rule(Weekly{Days: []time.Weekday{time.Sunday, time.Wednesday, time.Monday}}, 1, start),
			"Weekly on Sun, Wed, Mon starting 1/1/2024",
		},
		{"monthly by date", rule(Monthly{Pattern: ByDate{}}, 1, start), "Monthly starting 1/1/2024"},
		{
			"monthly second tuesday",
			rule(Monthly{Pattern: NthWeekdayOf(Second, time.Tuesday)}, 1, start),
			"Monthly on the second Tuesday starting 1/1/2024",
		},
		{
			"every 3 months last friday",
			rule(Monthly{Pattern: NthWeekdayOf(Last, time.Friday)}, 3, start),
			"Every 3 months on the last Friday starting 1/1/2024",
		},
		{
			"monthly day pattern missing weekday",
			rule(Monthly{Pattern: ByWeekday{Ordinal: mo.Some(First), Weekday: mo.None[time.Weekday]()}}, 1, start),
			"Monthly starting 1/1/2024",
		},
		{"every 2 months", rule(Monthly{Pattern: ByDate{}}, 2, start), "Every 2 months starting 1/1/2024"},
		{
			"yearly with end",
			withEnd(rule(Yearly{}, 1, start), date(2026, 12, 31)),
			"Yearly starting 1/1/2024 until 12/31/2026",
		},
		{"every 2 years", rule(Yearly{}, 2, start), "Every 2 years starting 1/1/2024"},
		{"zero interval reads as one", rule(Daily{}, 0, start), "Daily starting 1/1/2024"},
		{"no start", Rule{Frequency: Daily{}, Interval: 4}, NoRecurrence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.rule))
		})
	}
}

func TestDescribeLayout(t *testing.T) {
	r := rule(Weekly{Days: []time.Weekday{time.Tuesday}}, 1, date(2024, 2, 5))
	r.End = mo.Some(date(2024, 4, 30))

	assert.Equal(t, "Weekly on Tue starting 2024-02-05 until 2024-04-30", DescribeLayout(r, DateLayout))
	assert.Equal(t, "Weekly on Tue starting 2/5/2024 until 4/30/2024", DescribeLayout(r, ""))
}
