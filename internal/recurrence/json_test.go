package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestRuleUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Rule
	}{
		{
			name:  "weekly with days",
			input: `{"type":"weekly","interval":2,"startDate":"2024-01-01","weekDays":["monday","friday"]}`,
			expected: Rule{
				Frequency: Weekly{Days: []time.Weekday{time.Monday, time.Friday}},
				Interval:  2,
				Start:     localDate(2024, 1, 1),
				End:       mo.None[time.Time](),
			},
		},
		{
			name:  "monthly nth weekday with end",
			input: `{"type":"monthly","interval":1,"startDate":"2024-01-09","endDate":"2024-06-30","monthlyPattern":{"type":"day","ordinal":"second","weekDay":"tuesday"}}`,
			expected: Rule{
				Frequency: Monthly{Pattern: NthWeekdayOf(Second, time.Tuesday)},
				Interval:  1,
				Start:     localDate(2024, 1, 9),
				End:       mo.Some(localDate(2024, 6, 30)),
			},
		},
		{
			name:  "monthly without pattern",
			input: `{"type":"monthly","interval":1,"startDate":"2024-01-15"}`,
			expected: Rule{
				Frequency: Monthly{Pattern: ByDate{}},
				Interval:  1,
				Start:     localDate(2024, 1, 15),
				End:       mo.None[time.Time](),
			},
		},
		{
			name:  "partial day pattern",
			input: `{"type":"monthly","interval":1,"monthlyPattern":{"type":"day","ordinal":"last"}}`,
			expected: Rule{
				Frequency: Monthly{Pattern: ByWeekday{Ordinal: mo.Some(Last), Weekday: mo.None[time.Weekday]()}},
				Interval:  1,
				End:       mo.None[time.Time](),
			},
		},
		{
			name:  "weekdays dropped for daily",
			input: `{"type":"daily","interval":0,"startDate":"2024-01-01","weekDays":["monday"]}`,
			expected: Rule{
				Frequency: Daily{},
				Interval:  1,
				Start:     localDate(2024, 1, 1),
				End:       mo.None[time.Time](),
			},
		},
		{
			name:     "negative interval",
			input:    `{"type":"daily","interval":-3}`,
			expected: Rule{Frequency: Daily{}, Interval: 1, End: mo.None[time.Time]()},
		},
		{
			name:     "empty object",
			input:    `{}`,
			expected: Rule{Frequency: Daily{}, Interval: 1, End: mo.None[time.Time]()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Rule
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRuleUnmarshalJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", `{"type":"hourly"}`},
		{"bad start", `{"type":"daily","startDate":"01/02/2024"}`},
		{"bad end", `{"type":"daily","startDate":"2024-01-01","endDate":"soon"}`},
		{"bad weekday", `{"type":"weekly","weekDays":["funday"]}`},
		{"bad pattern type", `{"type":"monthly","monthlyPattern":{"type":"week"}}`},
		{"bad ordinal", `{"type":"monthly","monthlyPattern":{"type":"day","ordinal":"fifth"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Rule
			assert.Error(t, json.Unmarshal([]byte(tt.input), &got))
		})
	}
}

func TestRuleMarshalJSON(t *testing.T) {
	r := Rule{
		Frequency: Monthly{Pattern: NthWeekdayOf(Last, time.Friday)},
		Interval:  3,
		Start:     localDate(2024, 1, 26),
		End:       mo.Some(localDate(2024, 12, 31)),
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "monthly",
		"interval": 3,
		"startDate": "2024-01-26",
		"endDate": "2024-12-31",
		"weekDays": [],
		"monthlyPattern": {"type": "day", "ordinal": "last", "weekDay": "friday"}
	}`, string(data))

	var back Rule
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestRuleMarshalJSONWithoutStart(t *testing.T) {
	data, err := json.Marshal(Rule{Frequency: Weekly{Days: []time.Weekday{time.Sunday}}, Interval: 1})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"weekly","interval":1,"weekDays":["sunday"],"monthlyPattern":{"type":"date"}}`, string(data))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, localDate(2024, 2, 29), got)

	got, err = ParseDate("2024-02-29T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)))

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestParseMonthlyPattern(t *testing.T) {
	p, err := ParseMonthlyPattern("day", "fourth", "Thursday")
	require.NoError(t, err)
	assert.Equal(t, NthWeekdayOf(Fourth, time.Thursday), p)

	p, err = ParseMonthlyPattern("", "", "")
	require.NoError(t, err)
	assert.Equal(t, ByDate{}, p)

	_, err = ParseMonthlyPattern("day", "first", "someday")
	assert.Error(t, err)
}
