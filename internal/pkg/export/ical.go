package export

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// ContentTypeICS is the MIME type of Calendar output.
const ContentTypeICS = "text/calendar; charset=utf-8"

// Event is an all-day calendar entry spanning Start through End inclusive.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Calendar serializes events as an iCalendar document.
func Calendar(name string, stamp time.Time, events []Event) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Kintai//Attendance//EN")
	cal.SetXWRCalName(name)

	for _, e := range events {
		ev := cal.AddEvent(e.UID)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Summary)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		ev.SetAllDayStartAt(e.Start)
		// DTEND is exclusive for all-day events
		ev.SetAllDayEndAt(e.End.AddDate(0, 0, 1))
	}

	return []byte(cal.Serialize())
}
