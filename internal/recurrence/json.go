package recurrence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/mo"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD (read as a local calendar date) or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

type wireRule struct {
	Type           string       `json:"type"`
	Interval       int          `json:"interval"`
	StartDate      string       `json:"startDate,omitempty"`
	EndDate        string       `json:"endDate,omitempty"`
	WeekDays       []string     `json:"weekDays"`
	MonthlyPattern *wirePattern `json:"monthlyPattern,omitempty"`
}

type wirePattern struct {
	Type    string `json:"type"`
	Ordinal string `json:"ordinal,omitempty"`
	WeekDay string `json:"weekDay,omitempty"`
}

// MarshalJSON encodes the rule in the editor's wire shape:
//
//	{"type":"monthly","interval":1,"startDate":"2024-01-01",
//	 "weekDays":[],"monthlyPattern":{"type":"day","ordinal":"second","weekDay":"tuesday"}}
func (r Rule) MarshalJSON() ([]byte, error) {
	w := wireRule{
		Type:           r.Kind().String(),
		Interval:       r.Interval,
		WeekDays:       []string{},
		MonthlyPattern: &wirePattern{Type: "date"},
	}
	if r.HasStart() {
		w.StartDate = r.Start.Format(DateLayout)
	}
	if end, ok := r.End.Get(); ok {
		w.EndDate = end.Format(DateLayout)
	}

	switch f := r.Frequency.(type) {
	case Weekly:
		for _, d := range f.Days {
			w.WeekDays = append(w.WeekDays, WeekdayName(d))
		}
	case Monthly:
		if p, ok := f.Pattern.(ByWeekday); ok {
			w.MonthlyPattern.Type = "day"
			if o, ok := p.Ordinal.Get(); ok {
				w.MonthlyPattern.Ordinal = o.String()
			}
			if d, ok := p.Weekday.Get(); ok {
				w.MonthlyPattern.WeekDay = WeekdayName(d)
			}
		}
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON. Options that
// do not belong to the rule's type (weekDays on a daily rule, for example)
// are dropped.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w wireRule
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	kind := KindDaily
	if w.Type != "" {
		k, err := ParseKind(w.Type)
		if err != nil {
			return err
		}
		kind = k
	}

	out := Rule{Interval: max(w.Interval, 1), End: mo.None[time.Time]()}

	if w.StartDate != "" {
		t, err := ParseDate(w.StartDate)
		if err != nil {
			return fmt.Errorf("startDate: %w", err)
		}
		out.Start = t
	}
	if w.EndDate != "" {
		t, err := ParseDate(w.EndDate)
		if err != nil {
			return fmt.Errorf("endDate: %w", err)
		}
		out.End = mo.Some(t)
	}

	switch kind {
	case KindWeekly:
		var days []time.Weekday
		for _, name := range w.WeekDays {
			d, err := ParseWeekday(name)
			if err != nil {
				return err
			}
			days = append(days, d)
		}
		out.Frequency = Weekly{Days: days}
	case KindMonthly:
		p, err := w.MonthlyPattern.pattern()
		if err != nil {
			return err
		}
		out.Frequency = Monthly{Pattern: p}
	case KindYearly:
		out.Frequency = Yearly{}
	default:
		out.Frequency = Daily{}
	}

	*r = out
	return nil
}

func (w *wirePattern) pattern() (MonthlyPattern, error) {
	if w == nil || w.Type == "" || w.Type == "date" {
		return ByDate{}, nil
	}
	if w.Type != "day" {
		return nil, fmt.Errorf("unknown monthly pattern type: %q", w.Type)
	}

	p := ByWeekday{Ordinal: mo.None[Ordinal](), Weekday: mo.None[time.Weekday]()}
	if w.Ordinal != "" {
		o, err := ParseOrdinal(w.Ordinal)
		if err != nil {
			return nil, err
		}
		p.Ordinal = mo.Some(o)
	}
	if w.WeekDay != "" {
		d, err := ParseWeekday(w.WeekDay)
		if err != nil {
			return nil, err
		}
		p.Weekday = mo.Some(d)
	}
	return p, nil
}

// ParseMonthlyPattern builds a pattern from its wire fields: typ "date" (or
// empty) for ByDate, "day" for ByWeekday with optional ordinal and weekday.
func ParseMonthlyPattern(typ, ordinal, weekDay string) (MonthlyPattern, error) {
	return (&wirePattern{Type: typ, Ordinal: ordinal, WeekDay: weekDay}).pattern()
}
