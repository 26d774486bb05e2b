package googlecalendar

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"celcat-sync/scraper"
)

const (
	eventTimeZone = "Europe/London"
	// insertPause spaces out inserts to stay under the API rate limits.
	insertPause = 500 * time.Millisecond
)

// PushEvents creates one calendar entry per record and returns the created
// entry ids. A single failed insert is logged and skipped. When clearFirst is
// set, the target calendar is emptied before inserting.
func (c *Client) PushEvents(events []scraper.Event, clearFirst bool) ([]string, error) {
	if clearFirst {
		if err := c.ClearCalendar(); err != nil {
			return nil, fmt.Errorf("clearing calendar: %w", err)
		}
	}

	loc, err := time.LoadLocation(eventTimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}

	var ids []string
	for i, ev := range events {
		entry := buildEntry(ev, loc)
		id, err := c.insertWithRetry(entry)
		if err != nil {
			c.logger.Warn("could not create calendar entry", "title", ev.Title, "err", err)
			continue
		}
		ids = append(ids, id)
		if i < len(events)-1 {
			time.Sleep(insertPause)
		}
	}

	c.logger.Info("events republished", "created", len(ids), "total", len(events))
	return ids, nil
}

// buildEntry maps an event record onto the calendar API shape, resolving the
// anchor date and clock texts into timezone-qualified instants.
func buildEntry(ev scraper.Event, loc *time.Location) *calendar.Event {
	start, end := scraper.ResolveEventTimes(ev, loc)

	summary := ev.CourseDetails
	if summary == "" {
		summary = ev.Title
	}
	if summary == "" {
		summary = "CELCAT event"
	}

	return &calendar.Event{
		Summary:  summary,
		Location: ev.Location,
		Description: fmt.Sprintf("Instructor: %s\nTime: %s\nCourse: %s\nCELCAT ID: %s",
			orNA(ev.Instructor), orNA(ev.Time), orNA(ev.Title), orNA(ev.EventID)),
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: eventTimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: eventTimeZone,
		},
		Reminders: &calendar.EventReminders{UseDefault: true, ForceSendFields: []string{"UseDefault"}},
	}
}

// insertWithRetry retries transient API failures; client errors other than
// rate limiting are permanent.
func (c *Client) insertWithRetry(entry *calendar.Event) (string, error) {
	var created *calendar.Event
	insert := func() error {
		var err error
		created, err = c.service.Events.Insert(c.calendarID, entry).Do()
		if err != nil {
			if gerr, ok := err.(*googleapi.Error); ok && gerr.Code >= 400 && gerr.Code < 500 && gerr.Code != 429 {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(insert, policy); err != nil {
		return "", err
	}
	return created.Id, nil
}

// ClearCalendar removes every non-cancelled entry from the target calendar.
func (c *Client) ClearCalendar() error {
	pageToken := ""
	for {
		events, err := c.service.Events.List(c.calendarID).PageToken(pageToken).Do()
		if err != nil {
			return fmt.Errorf("listing calendar entries: %w", err)
		}

		for _, entry := range events.Items {
			if entry == nil || entry.Status == "cancelled" {
				continue
			}
			if err := c.service.Events.Delete(c.calendarID, entry.Id).Do(); err != nil {
				if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 410 {
					// Already gone.
					continue
				}
				return fmt.Errorf("deleting calendar entry: %w", err)
			}
			c.logger.Debug("calendar entry removed", "summary", entry.Summary, "id", entry.Id)
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.logger.Info("calendar cleared", "calendar_id", c.calendarID)
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
