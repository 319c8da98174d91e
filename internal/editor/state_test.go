package editor

import (
	"testing"
	"time"

	"github.com/dukerupert/cadence/internal/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	r := New(now).Rule()

	assert.Equal(t, recurrence.Daily{}, r.Frequency)
	assert.Equal(t, 1, r.Interval)
	assert.Equal(t, now, r.Start)
	assert.True(t, r.End.IsAbsent())
}

func TestWithKind(t *testing.T) {
	s := New(now).WithKind(recurrence.KindWeekly).WithWeekDays([]time.Weekday{time.Monday})

	monthly := s.WithKind(recurrence.KindMonthly)
	assert.Equal(t, recurrence.Monthly{Pattern: recurrence.ByDate{}}, monthly.Rule().Frequency)

	// Switching to the current type keeps its options.
	same := s.WithKind(recurrence.KindWeekly)
	assert.Equal(t, recurrence.Weekly{Days: []time.Weekday{time.Monday}}, same.Rule().Frequency)

	// Round trip through another type drops them.
	back := monthly.WithKind(recurrence.KindWeekly)
	assert.Equal(t, recurrence.Weekly{}, back.Rule().Frequency)

	assert.Equal(t, recurrence.Yearly{}, s.WithKind(recurrence.KindYearly).Rule().Frequency)
	assert.Equal(t, recurrence.Daily{}, s.WithKind(recurrence.KindDaily).Rule().Frequency)
}

func TestWithKindKeepsSharedFields(t *testing.T) {
	end := now.AddDate(0, 3, 0)
	s := New(now).WithInterval(3).WithDateRange(nil, &end)

	r := s.WithKind(recurrence.KindYearly).Rule()

	assert.Equal(t, 3, r.Interval)
	assert.Equal(t, now, r.Start)
	assert.Equal(t, end, r.End.MustGet())
}

func TestEditsDoNotMutateReceiver(t *testing.T) {
	s := New(now).WithKind(recurrence.KindWeekly).WithWeekDays([]time.Weekday{time.Monday})

	_ = s.ToggleWeekDay(time.Friday, true)
	_ = s.WithInterval(5)
	_ = s.ClearEnd()

	assert.Equal(t, recurrence.Weekly{Days: []time.Weekday{time.Monday}}, s.Rule().Frequency)
	assert.Equal(t, 1, s.Rule().Interval)
}

func TestWithInterval(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 1},
		{4, 4},
		{0, 1},
		{-2, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(now).WithInterval(tt.in).Rule().Interval, "WithInterval(%d)", tt.in)
	}
}

func TestWithDateRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	s := New(now).WithDateRange(&start, nil)
	assert.Equal(t, start, s.Rule().Start)
	assert.True(t, s.Rule().End.IsAbsent())

	s = s.WithDateRange(nil, &end)
	assert.Equal(t, start, s.Rule().Start)
	assert.Equal(t, end, s.Rule().End.MustGet())

	s = s.ClearEnd()
	assert.True(t, s.Rule().End.IsAbsent())
}

func TestWeekDaysIgnoredOutsideWeekly(t *testing.T) {
	s := New(now).WithWeekDays([]time.Weekday{time.Monday})

	assert.Equal(t, recurrence.Daily{}, s.Rule().Frequency)
	assert.Equal(t, recurrence.Daily{}, s.ToggleWeekDay(time.Monday, true).Rule().Frequency)
}

func TestToggleWeekDay(t *testing.T) {
	s := New(now).WithKind(recurrence.KindWeekly)

	s = s.ToggleWeekDay(time.Friday, true)
	s = s.ToggleWeekDay(time.Monday, true)
	s = s.ToggleWeekDay(time.Monday, true)
	require.Equal(t, recurrence.Weekly{Days: []time.Weekday{time.Friday, time.Monday}}, s.Rule().Frequency)

	s = s.ToggleWeekDay(time.Friday, false)
	s = s.ToggleWeekDay(time.Sunday, false)
	assert.Equal(t, recurrence.Weekly{Days: []time.Weekday{time.Monday}}, s.Rule().Frequency)
}

func TestWithMonthlyPattern(t *testing.T) {
	p := recurrence.NthWeekdayOf(recurrence.Last, time.Friday)

	daily := New(now).WithMonthlyPattern(p)
	assert.Equal(t, recurrence.Daily{}, daily.Rule().Frequency)

	s := New(now).WithKind(recurrence.KindMonthly).WithMonthlyPattern(p)
	assert.Equal(t, recurrence.Monthly{Pattern: p}, s.Rule().Frequency)
	assert.Equal(t, "Monthly on the last Friday starting 1/1/2024", recurrence.Describe(s.Rule()))

	s = s.WithMonthlyPattern(nil)
	assert.Equal(t, recurrence.Monthly{Pattern: recurrence.ByDate{}}, s.Rule().Frequency)
}

func TestReset(t *testing.T) {
	later := now.AddDate(0, 0, 7)
	s := New(now).WithKind(recurrence.KindYearly).WithInterval(9).Reset(later)

	assert.Equal(t, New(later), s)
}

func TestFromRule(t *testing.T) {
	s := FromRule(recurrence.Rule{Interval: 0, Start: now})

	assert.Equal(t, recurrence.Daily{}, s.Rule().Frequency)
	assert.Equal(t, 1, s.Rule().Interval)
}
