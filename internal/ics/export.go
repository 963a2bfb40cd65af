// Package ics renders stored events as iCalendar documents.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// Export renders one event as a VCALENDAR document. Recurring events
// carry an RRULE property when their pattern parses as one; free-text
// patterns are emitted as a comment instead.
func Export(e *storage.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//matchpoint//event export//EN")

	ev := cal.AddEvent(fmt.Sprintf("%s@matchpoint", e.EventID.String()))
	ev.SetCreatedTime(e.CreationTime)
	ev.SetDtStampTime(e.CreationTime)
	ev.SetStartAt(e.StartsAt.UTC())
	ev.SetEndAt(e.StartsAt.UTC().Add(time.Hour))
	ev.SetSummary(e.Name)

	desc := e.Sport
	if e.Description != nil {
		desc = desc + " - " + *e.Description
	}
	ev.SetDescription(desc)

	location := ""
	if e.Location != nil {
		location = *e.Location
	}
	if len(e.VenueNames) > 0 {
		if location != "" {
			location += ": "
		}
		location += strings.Join(e.VenueNames, ", ")
	}
	if location != "" {
		ev.SetLocation(location)
	}

	if e.Recurring && e.RecurrencePattern != nil {
		pattern := strings.TrimPrefix(*e.RecurrencePattern, "RRULE:")
		if r, err := rrule.StrToRRule(pattern); err == nil {
			ev.SetProperty(ical.ComponentProperty("RRULE"), r.String())
		} else {
			ev.SetProperty(ical.ComponentProperty("COMMENT"), "recurs: "+*e.RecurrencePattern)
		}
	}

	return cal.Serialize()
}
