package app

import (
	"fmt"
	"io"
	"log"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	icsDateLayout  = "20060102"
	icsStampLayout = "20060102T150405Z"
)

// EncodeICS writes doc as an iCalendar document. Output depends only on doc and name.
func EncodeICS(w io.Writer, name string, doc CalendarDocument) error {
	cal, err := ics.NewCalendarWithOptions(ics.WithVersion("2.0"), ics.WithProductId(ICSProductID))
	if err != nil {
		return fmt.Errorf("failed to create calendar: %w", err)
	}
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, e := range doc.Events {
		stamp := e.Stamp
		if stamp.IsZero() {
			stamp = e.Date
		}

		// Event - all-day event
		event := cal.AddEvent(e.UID)
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(e.Date)
		event.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		event.SetSummary(e.Title)
		event.SetDescription(e.Description)
	}

	return cal.SerializeTo(w, ics.WithNewLineWindows)
}

// DecodeICS reads the VEVENTs of an iCalendar document.
// Events without UID or DTSTART are dropped; for a repeated UID the first event wins.
func DecodeICS(r io.Reader) (CalendarDocument, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return CalendarDocument{}, err
	}

	doc := CalendarDocument{}
	seen := make(map[string]struct{})
	for _, event := range cal.Events() {
		e, ok := decodeEvent(event)
		if !ok {
			continue
		}
		if _, dup := seen[e.UID]; dup {
			log.Printf("⚠️  Ignoring repeated event %s", e.UID)
			continue
		}
		seen[e.UID] = struct{}{}
		doc.Events = append(doc.Events, e)
	}
	return doc, nil
}

func decodeEvent(event *ics.VEvent) (CalendarEvent, bool) {
	var e CalendarEvent
	// text values arrive unescaped from the parser
	if p := event.GetProperty(ics.ComponentPropertyUniqueId); p != nil {
		e.UID = p.Value
	}
	if e.UID == "" {
		return CalendarEvent{}, false
	}

	p := event.GetProperty(ics.ComponentPropertyDtStart)
	if p == nil {
		return CalendarEvent{}, false
	}
	date, err := parseICSDate(p.Value)
	if err != nil {
		log.Printf("⚠️  Dropping event %s: %v", e.UID, err)
		return CalendarEvent{}, false
	}
	e.Date = date

	if p := event.GetProperty(ics.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}
	if p := event.GetProperty(ics.ComponentPropertyDescription); p != nil {
		e.Description = p.Value
	}
	if p := event.GetProperty(ics.ComponentPropertyDtstamp); p != nil {
		if t, err := time.Parse(icsStampLayout, p.Value); err == nil {
			e.Stamp = t
		}
	}
	return e, true
}

// parseICSDate keeps the calendar day of a DATE or DATE-TIME value
func parseICSDate(value string) (time.Time, error) {
	if len(value) < len(icsDateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return time.Parse(icsDateLayout, value[:len(icsDateLayout)])
}
