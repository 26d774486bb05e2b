package scraper

import (
	"fmt"
	"strings"
)

// FullCalendar markup as rendered by CELCAT. The content node, when present,
// carries cleaner text than the outer anchor.
const (
	contentSelector = "div.fc-content"
	timeSelector    = ".fc-time"
	timeFullAttr    = "data-full"
	eventIDAttr     = "data-event-id"
)

// extractFields decomposes one raw calendar entry into an Event record.
// Fields the entry doesn't expose come back empty; an error means the entry
// itself could not be read and should be skipped.
func extractFields(entry Entry) (Event, error) {
	var ev Event

	text, err := entry.Text()
	if err != nil {
		return ev, fmt.Errorf("reading entry text: %w", err)
	}
	if richer, ok := entry.ChildText(contentSelector); ok && strings.TrimSpace(richer) != "" {
		text = richer
	}

	lines := splitLines(text)
	ev.Content = strings.Join(lines, "\n")
	if len(lines) > 0 {
		ev.Title = lines[0]
	}

	var timeText string
	if attr, ok := entry.ChildAttr(timeSelector, timeFullAttr); ok && attr != "" {
		timeText = attr
	} else if displayed, ok := entry.ChildText(timeSelector); ok && strings.TrimSpace(displayed) != "" {
		timeText = strings.TrimSpace(displayed)
	} else {
		timeText = findTimeRange(text)
	}
	ev.Time = timeText
	ev.StartTime, ev.EndTime = ParseTimeRange(timeText)

	// A bracket pair marks the room-capacity annotation, e.g. "Room A [30]".
	locationLine := -1
	for i, line := range lines {
		if strings.Contains(line, "[") && strings.Contains(line, "]") {
			ev.Location = line
			locationLine = i
			break
		}
	}
	if locationLine >= 0 && locationLine+1 < len(lines) {
		ev.Instructor = lines[locationLine+1]
	}

	// A single-line entry has no details line distinct from its title.
	if len(lines) > 1 {
		ev.CourseDetails = lines[len(lines)-1]
	}

	ev.EventID = entry.Attr(eventIDAttr)
	if ev.EventID == "" {
		ev.EventID = entry.Attr("id")
	}

	return ev, nil
}

// splitLines normalizes entry text into trimmed, non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
