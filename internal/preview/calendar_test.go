package preview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGrid(t *testing.T) {
	occ := []time.Time{
		day(2024, 2, 13),
		time.Date(2024, 2, 29, 15, 30, 0, 0, time.UTC),
		day(2024, 3, 12),
	}
	today := time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC)

	m := MonthGrid(2024, time.February, occ, today)

	assert.Equal(t, "February 2024", m.Title)
	// Feb 1 2024 is a Thursday, so the grid opens on Sunday Jan 28.
	assert.Equal(t, day(2024, 1, 28), m.Days[0].Date)
	assert.Equal(t, day(2024, 3, 9), m.Days[GridCells-1].Date)

	inMonth := 0
	for _, d := range m.Days {
		assert.Equal(t, time.Month(2) == d.Date.Month(), d.InMonth, d.Date)
		if d.InMonth {
			inMonth++
		}
	}
	assert.Equal(t, 29, inMonth)

	var recurring, todays []int
	for _, d := range m.Days {
		if d.Recurring {
			recurring = append(recurring, d.Date.Day())
		}
		if d.Today {
			todays = append(todays, d.Date.Day())
		}
	}
	// Mar 12 lies beyond the grid.
	assert.Equal(t, []int{13, 29}, recurring)
	assert.Equal(t, []int{20}, todays)
}

func TestMonthGridStartsOnSunday(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		m := MonthGrid(2025, month, nil, day(2025, 1, 1))
		require.Equal(t, time.Sunday, m.Days[0].Date.Weekday(), month)
		require.Equal(t, 1, firstInMonth(m).Date.Day(), month)
	}
}

func firstInMonth(m Month) Day {
	for _, d := range m.Days {
		if d.InMonth {
			return d
		}
	}
	return Day{}
}

func TestMonthGridNormalizesMonth(t *testing.T) {
	m := MonthGrid(2024, 13, nil, day(2024, 1, 1))

	assert.Equal(t, 2025, m.Year)
	assert.Equal(t, time.January, m.Month)
}

func TestParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2024-09")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.September, m)

	_, _, err = ParseMonth("September")
	assert.Error(t, err)
}

func TestDayJSON(t *testing.T) {
	data, err := json.Marshal(Day{Date: day(2024, 2, 13), InMonth: true, Recurring: true})
	require.NoError(t, err)

	assert.JSONEq(t, `{"date":"2024-02-13","inMonth":true,"today":false,"recurring":true}`, string(data))
}
