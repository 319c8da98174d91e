// Package export renders rules as calendar documents (iCalendar and xCal) and
// reads rules back out of iCalendar files.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dukerupert/cadence/internal/recurrence"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// ProductID identifies documents written by this package.
const ProductID = "-//cadence//Recurrence Editor//EN"

// ErrNoStart is returned when exporting a rule without a start date.
var ErrNoStart = errors.New("rule has no start date")

// Event carries the VEVENT fields that are not part of the rule itself.
type Event struct {
	UID         string
	Summary     string
	Description string
	Stamp       time.Time
}

func (e Event) withDefaults(r recurrence.Rule) Event {
	if e.UID == "" {
		e.UID = uuid.NewString()
	}
	if e.Summary == "" {
		e.Summary = recurrence.Describe(r)
	}
	if e.Stamp.IsZero() {
		e.Stamp = time.Now()
	}
	return e
}

// WriteICS writes a VCALENDAR holding one all-day recurring VEVENT.
func WriteICS(w io.Writer, r recurrence.Rule, e Event) error {
	if !r.HasStart() {
		return ErrNoStart
	}
	e = e.withDefaults(r)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, e.UID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, e.Stamp.UTC())
	event.Props.SetDate(ical.PropDateTimeStart, r.Start)
	event.Props.SetText(ical.PropSummary, e.Summary)
	if e.Description != "" {
		event.Props.SetText(ical.PropDescription, e.Description)
	}

	// Set directly: SetText would escape the commas in BYDAY lists.
	rrule := ical.NewProp(ical.PropRecurrenceRule)
	rrule.Value = recurrence.ToRRule(r)
	event.Props.Set(rrule)

	cal.Children = append(cal.Children, event.Component)

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

// Imported is a rule read from a VEVENT, with the event's UID and summary.
type Imported struct {
	UID     string
	Summary string
	Rule    recurrence.Rule
}

// ReadICS decodes an iCalendar stream and returns the rule of every
// recurring VEVENT in it. Events without an RRULE are skipped; an RRULE the
// rule model cannot express fails the whole read.
func ReadICS(r io.Reader, loc *time.Location) ([]Imported, error) {
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	var out []Imported
	for _, event := range cal.Events() {
		prop := event.Props.Get(ical.PropRecurrenceRule)
		if prop == nil || prop.Value == "" {
			continue
		}

		uid, _ := event.Props.Text(ical.PropUID)
		summary, _ := event.Props.Text(ical.PropSummary)

		start, err := event.DateTimeStart(loc)
		if err != nil {
			return nil, fmt.Errorf("event %s: DTSTART: %w", uid, err)
		}
		if start.IsZero() {
			return nil, fmt.Errorf("event %s: %w", uid, ErrNoStart)
		}
		y, m, d := start.In(loc).Date()

		rule, err := recurrence.FromRRule(prop.Value, time.Date(y, m, d, 0, 0, 0, 0, loc))
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", uid, err)
		}
		out = append(out, Imported{UID: uid, Summary: summary, Rule: rule})
	}
	return out, nil
}
