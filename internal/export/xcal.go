package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/dukerupert/cadence/internal/recurrence"
)

// XCalNamespace is the RFC 6321 namespace.
const XCalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

const (
	xcalDate     = "2006-01-02"
	xcalDateTime = "2006-01-02T15:04:05Z"
	icsDateTime  = "20060102T150405Z"
)

// XCal builds the RFC 6321 document for a rule: the same VEVENT WriteICS
// produces, in XML.
func XCal(r recurrence.Rule, e Event) (*etree.Document, error) {
	if !r.HasStart() {
		return nil, ErrNoStart
	}
	e = e.withDefaults(r)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", XCalNamespace)

	vcal := root.CreateElement("vcalendar")
	props := vcal.CreateElement("properties")
	textProp(props, "prodid", ProductID)
	textProp(props, "version", "2.0")

	vevent := vcal.CreateElement("components").CreateElement("vevent")
	props = vevent.CreateElement("properties")
	textProp(props, "uid", e.UID)
	props.CreateElement("dtstamp").CreateElement("date-time").SetText(e.Stamp.UTC().Format(xcalDateTime))
	props.CreateElement("dtstart").CreateElement("date").SetText(r.Start.Format(xcalDate))
	textProp(props, "summary", e.Summary)
	if e.Description != "" {
		textProp(props, "description", e.Description)
	}

	recur := props.CreateElement("rrule").CreateElement("recur")
	if err := recurParts(recur, recurrence.ToRRule(r)); err != nil {
		return nil, err
	}

	doc.Indent(2)
	return doc, nil
}

// WriteXCal writes the XCal document for r to w.
func WriteXCal(w io.Writer, r recurrence.Rule, e Event) error {
	doc, err := XCal(r, e)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write xcal: %w", err)
	}
	return nil
}

func textProp(parent *etree.Element, name, value string) {
	parent.CreateElement(name).CreateElement("text").SetText(value)
}

// recurParts expands "FREQ=WEEKLY;BYDAY=MO,FR" into <freq>WEEKLY</freq>
// <byday>MO</byday><byday>FR</byday>. List values repeat the element, and
// UNTIL switches to the XML date-time form.
func recurParts(recur *etree.Element, rrule string) error {
	for _, part := range strings.Split(rrule, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("malformed rrule part %q", part)
		}
		name := strings.ToLower(key)

		if name == "until" {
			t, err := time.Parse(icsDateTime, value)
			if err != nil {
				return fmt.Errorf("rrule until: %w", err)
			}
			recur.CreateElement(name).SetText(t.Format(xcalDateTime))
			continue
		}

		for _, v := range strings.Split(value, ",") {
			recur.CreateElement(name).SetText(v)
		}
	}
	return nil
}
