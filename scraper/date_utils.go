package scraper

import (
	"fmt"
	"strings"
	"time"
)

// DefaultEventDuration is used when an event's times cannot be parsed: the
// entry still lands on the right day as a one-hour block.
const DefaultEventDuration = time.Hour

// ResolveEventTimes converts a record's anchor date and clock texts into
// concrete start/end instants in the given location. Unparseable clocks fall
// back to a DefaultEventDuration block starting at midnight of the day.
func ResolveEventTimes(ev Event, loc *time.Location) (time.Time, time.Time) {
	date := resolveEventDate(ev, loc)

	start, okStart := parseClock(ev.StartTime, date, loc)
	end, okEnd := parseClock(ev.EndTime, date, loc)
	if !okStart || !okEnd {
		return date, date.Add(DefaultEventDuration)
	}
	return start, end
}

// resolveEventDate prefers the walker-stamped week date, then the widget's
// displayed week header, then today.
func resolveEventDate(ev Event, loc *time.Location) time.Time {
	if ev.WeekDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", ev.WeekDate, loc); err == nil {
			return d
		}
	}
	if d, ok := parseCalendarDate(ev.CalendarDate, loc); ok {
		return d
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// parseCalendarDate extracts the first date from a week header such as
// "May 26 – Jun 1, 2025". The widget uses an en dash between the two dates.
func parseCalendarDate(text string, loc *time.Location) (time.Time, bool) {
	if !strings.Contains(text, "–") {
		return time.Time{}, false
	}
	first := strings.TrimSpace(strings.SplitN(text, "–", 2)[0])
	fields := strings.Fields(first)
	if len(fields) < 2 {
		return time.Time{}, false
	}
	comma := strings.LastIndex(text, ",")
	if comma < 0 {
		return time.Time{}, false
	}
	year := strings.TrimSpace(text[comma+1:])

	candidate := fmt.Sprintf("%s %s %s", fields[0], fields[1], year)
	d, err := time.ParseInLocation("Jan 2 2006", candidate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseClock combines a clock text ("09:00" or "9:00 AM") with a day.
func parseClock(text string, date time.Time, loc *time.Location) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	layouts := []string{"15:04"}
	upper := strings.ToUpper(text)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") {
		layouts = []string{"3:04 PM", "3:04PM"}
		text = upper
	}

	var t time.Time
	var err error
	for _, layout := range layouts {
		if t, err = time.ParseInLocation(layout, text, loc); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}
