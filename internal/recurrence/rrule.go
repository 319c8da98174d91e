package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// ErrUnsupportedRRule is returned by FromRRule for RRULE parts that have no
// equivalent in Rule (COUNT, BYMONTH, BYHOUR, ...).
var ErrUnsupportedRRule = errors.New("unsupported rrule")

var rruleDays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// rrule-go numbers weekdays from Monday.
func weekdayFromRRule(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

// ToRRule serializes the rule as an RFC 5545 RRULE value, e.g.
// "FREQ=MONTHLY;INTERVAL=2;BYDAY=+2TU". The start date is not included; it
// belongs in DTSTART.
func ToRRule(r Rule) string {
	var opt rrule.ROption
	if n := r.interval(); n > 1 {
		opt.Interval = n
	}

	switch f := r.Frequency.(type) {
	case Weekly:
		opt.Freq = rrule.WEEKLY
		// Weeks run Sunday to Saturday when the interval skips weeks.
		opt.Wkst = rrule.SU
		for _, d := range f.Days {
			if d >= time.Sunday && d <= time.Saturday {
				opt.Byweekday = append(opt.Byweekday, rruleDays[d])
			}
		}
	case Monthly:
		opt.Freq = rrule.MONTHLY
		if p, ok := f.Pattern.(ByWeekday); ok {
			if o, d, ok := p.resolved(); ok {
				n := int(o) + 1
				if o == Last {
					n = -1
				}
				wd := rruleDays[d]
				opt.Byweekday = []rrule.Weekday{wd.Nth(n)}
			}
		}
	case Yearly:
		opt.Freq = rrule.YEARLY
	default:
		opt.Freq = rrule.DAILY
	}

	if end, ok := r.End.Get(); ok {
		// Last second of the end date, so the whole day stays included.
		y, m, d := end.Date()
		opt.Until = time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
	}

	return opt.RRuleString()
}

// FromRRule parses an RRULE value (optionally preceded by a DTSTART line)
// into a Rule starting at start. When start is zero, the DTSTART from the
// string is used. Dates are interpreted in start's location, or the local
// zone when start is zero.
func FromRRule(s string, start time.Time) (Rule, error) {
	loc := time.Local
	if !start.IsZero() {
		loc = start.Location()
	}

	opt, err := rrule.StrToROptionInLocation(s, loc)
	if err != nil {
		return Rule{}, fmt.Errorf("parse rrule: %w", err)
	}
	if err := checkSupported(opt); err != nil {
		return Rule{}, err
	}

	r := Rule{
		Interval: max(opt.Interval, 1),
		Start:    start,
		End:      mo.None[time.Time](),
	}
	if r.Start.IsZero() {
		r.Start = opt.Dtstart
	}

	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday) > 0 {
			return Rule{}, fmt.Errorf("%w: BYDAY with FREQ=DAILY", ErrUnsupportedRRule)
		}
		r.Frequency = Daily{}

	case rrule.WEEKLY:
		var days []time.Weekday
		for _, wd := range opt.Byweekday {
			if wd.N() != 0 {
				return Rule{}, fmt.Errorf("%w: ordinal BYDAY with FREQ=WEEKLY", ErrUnsupportedRRule)
			}
			days = append(days, weekdayFromRRule(wd))
		}
		// Weeks are counted from Sunday. Another WKST only changes the
		// expansion when a Sunday is involved.
		sunday := slices.Contains(days, time.Sunday) || r.Start.Weekday() == time.Sunday
		if opt.Interval > 1 && opt.Wkst != rrule.SU && sunday {
			return Rule{}, fmt.Errorf("%w: WKST=%s with a Sunday", ErrUnsupportedRRule, opt.Wkst)
		}
		r.Frequency = Weekly{Days: days}

	case rrule.MONTHLY:
		pattern, err := monthlyPatternFromRRule(opt)
		if err != nil {
			return Rule{}, err
		}
		r.Frequency = Monthly{Pattern: pattern}

	case rrule.YEARLY:
		if len(opt.Byweekday) > 0 {
			return Rule{}, fmt.Errorf("%w: BYDAY with FREQ=YEARLY", ErrUnsupportedRRule)
		}
		r.Frequency = Yearly{}

	default:
		return Rule{}, fmt.Errorf("%w: FREQ=%s", ErrUnsupportedRRule, opt.Freq)
	}

	if !opt.Until.IsZero() {
		y, m, d := opt.Until.Date()
		r.End = mo.Some(time.Date(y, m, d, 0, 0, 0, 0, loc))
	}

	return r, nil
}

func monthlyPatternFromRRule(opt *rrule.ROption) (MonthlyPattern, error) {
	switch len(opt.Byweekday) {
	case 0:
		if len(opt.Bysetpos) > 0 {
			return nil, fmt.Errorf("%w: BYSETPOS without BYDAY", ErrUnsupportedRRule)
		}
		return ByDate{}, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: more than one BYDAY with FREQ=MONTHLY", ErrUnsupportedRRule)
	}

	wd := opt.Byweekday[0]
	n := wd.N()
	switch {
	case n == 0 && len(opt.Bysetpos) == 1:
		n = opt.Bysetpos[0]
	case len(opt.Bysetpos) > 0:
		return nil, fmt.Errorf("%w: BYSETPOS with ordinal BYDAY", ErrUnsupportedRRule)
	}

	var o Ordinal
	switch {
	case n >= 1 && n <= 4:
		o = Ordinal(n - 1)
	case n == -1:
		o = Last
	default:
		return nil, fmt.Errorf("%w: BYDAY position %d", ErrUnsupportedRRule, n)
	}
	return NthWeekdayOf(o, weekdayFromRRule(wd)), nil
}

func checkSupported(opt *rrule.ROption) error {
	parts := []struct {
		name string
		set  bool
	}{
		{"COUNT", opt.Count != 0},
		{"BYMONTH", len(opt.Bymonth) > 0},
		{"BYMONTHDAY", len(opt.Bymonthday) > 0},
		{"BYYEARDAY", len(opt.Byyearday) > 0},
		{"BYWEEKNO", len(opt.Byweekno) > 0},
		{"BYHOUR", len(opt.Byhour) > 0},
		{"BYMINUTE", len(opt.Byminute) > 0},
		{"BYSECOND", len(opt.Bysecond) > 0},
		{"BYEASTER", len(opt.Byeaster) > 0},
	}
	for _, p := range parts {
		if p.set {
			return fmt.Errorf("%w: %s", ErrUnsupportedRRule, p.name)
		}
	}
	return nil
}
