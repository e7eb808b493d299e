package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const productID = "-//du-scraper//calendar_events//EN"

// uidNamespace scopes event UIDs to the calendar site
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(SiteOrigin))

// EventUID derives a stable identifier from an event's title and day
func EventUID(evt Event, day time.Time) string {
	id := uuid.NewSHA1(uidNamespace, []byte(evt.Title+"|"+day.Format(DateLayout)))
	return id.String() + "@du.edu"
}

// BuildICS renders events as all-day VEVENTs. Events whose date text does not
// parse are left out; their count is returned with the calendar.
func BuildICS(events []Event, year int, stamp time.Time) ([]byte, int) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	skipped := 0
	seen := make(map[string]bool, len(events))

	for _, evt := range events {
		day, ok := ParseDate(evt.Date, year)
		if !ok {
			skipped++
			continue
		}

		uid := EventUID(evt, day)
		if seen[uid] {
			continue
		}
		seen[uid] = true

		vevent := cal.AddEvent(uid)
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(evt.Title)
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))

		if desc := icsDescription(evt); desc != "" {
			vevent.SetDescription(desc)
		}
	}

	return []byte(cal.Serialize()), skipped
}

func icsDescription(evt Event) string {
	var parts []string
	if evt.Time != "" {
		parts = append(parts, "Time: "+evt.Time)
	}
	if evt.Description != "" {
		parts = append(parts, evt.Description)
	}
	return strings.Join(parts, "\n\n")
}
