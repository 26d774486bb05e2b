// Package export renders gathered events as an iCalendar document, for
// calendar apps that subscribe to a file instead of a Google calendar.
package export

import (
	"fmt"
	"os"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"celcat-sync/scraper"
)

const eventTimeZone = "Europe/London"

// WriteICS writes one VEVENT per record to path.
func WriteICS(path string, events []scraper.Event) error {
	data, err := RenderICS(events)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RenderICS serializes events into iCalendar text.
func RenderICS(events []scraper.Event) (string, error) {
	loc, err := time.LoadLocation(eventTimeZone)
	if err != nil {
		return "", fmt.Errorf("loading timezone: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//celcat-sync//EN")

	now := time.Now().UTC()
	for _, ev := range events {
		start, end := scraper.ResolveEventTimes(ev, loc)

		summary := ev.CourseDetails
		if summary == "" {
			summary = ev.Title
		}

		vevent := cal.AddEvent(uuid.NewString())
		vevent.SetCreatedTime(now)
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(start)
		vevent.SetEndAt(end)
		vevent.SetSummary(summary)
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		if ev.Instructor != "" {
			vevent.SetDescription("Instructor: " + ev.Instructor)
		}
	}

	return cal.Serialize(), nil
}
