package preview

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/cadence/internal/recurrence"
)

// GridCells is the size of a month grid: six weeks of seven days.
const GridCells = 42

// Day is one cell of a month grid.
type Day struct {
	Date      time.Time `json:"-"`
	InMonth   bool      `json:"inMonth"`
	Today     bool      `json:"today"`
	Recurring bool      `json:"recurring"`
}

// MarshalJSON adds the cell's calendar date as "date": "YYYY-MM-DD".
func (d Day) MarshalJSON() ([]byte, error) {
	type plain Day
	return json.Marshal(struct {
		Date string `json:"date"`
		plain
	}{d.Date.Format(recurrence.DateLayout), plain(d)})
}

// Month is a calendar page starting on the Sunday on or before the 1st.
type Month struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Title string         `json:"title"`
	Days  [GridCells]Day `json:"days"`
}

type calendarDay struct {
	y int
	m time.Month
	d int
}

func dayOf(t time.Time) calendarDay {
	y, m, d := t.Date()
	return calendarDay{y, m, d}
}

// MonthGrid lays out year/month and flags the cells that fall on today or on
// one of occurrences. Dates compare by calendar day, ignoring time of day.
func MonthGrid(year int, month time.Month, occurrences []time.Time, today time.Time) Month {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	recurring := make(map[calendarDay]bool, len(occurrences))
	for _, o := range occurrences {
		recurring[dayOf(o)] = true
	}
	todayKey := dayOf(today)

	m := Month{
		Year:  first.Year(),
		Month: first.Month(),
		Title: first.Format("January 2006"),
	}
	for i := range m.Days {
		d := start.AddDate(0, 0, i)
		key := dayOf(d)
		m.Days[i] = Day{
			Date:      d,
			InMonth:   d.Month() == first.Month(),
			Today:     key == todayKey,
			Recurring: recurring[key],
		}
	}
	return m
}

// ParseMonth reads "YYYY-MM".
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q must be YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
