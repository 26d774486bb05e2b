package export

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"celcat-sync/scraper"
)

func TestRenderICS(t *testing.T) {
	events := []scraper.Event{
		{
			Title:         "Intro to CS",
			Time:          "09:00 - 10:30",
			StartTime:     "09:00",
			EndTime:       "10:30",
			Location:      "Room 4.12",
			Instructor:    "Dr. Smith",
			CourseDetails: "CS101 Lecture",
			WeekDate:      "2025-06-02",
		},
		{
			Title:    "Exam",
			WeekDate: "2025-06-02",
		},
	}

	data, err := RenderICS(events)
	if err != nil {
		t.Fatalf("RenderICS: %v", err)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	got := cal.Events()
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}

	first := got[0]
	if v := first.GetProperty(ics.ComponentPropertySummary).Value; v != "CS101 Lecture" {
		t.Errorf("summary = %q, want %q", v, "CS101 Lecture")
	}
	if v := first.GetProperty(ics.ComponentPropertyLocation).Value; v != "Room 4.12" {
		t.Errorf("location = %q, want %q", v, "Room 4.12")
	}
	start, err := first.GetStartAt()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	want := time.Date(2025, time.June, 2, 9, 0, 0, 0, london)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}

	// No course details: summary falls back to the title.
	if v := got[1].GetProperty(ics.ComponentPropertySummary).Value; v != "Exam" {
		t.Errorf("fallback summary = %q, want %q", v, "Exam")
	}
}

func TestRenderICSEmpty(t *testing.T) {
	data, err := RenderICS(nil)
	if err != nil {
		t.Fatalf("RenderICS: %v", err)
	}
	if !strings.Contains(data, "BEGIN:VCALENDAR") {
		t.Errorf("missing VCALENDAR wrapper:\n%s", data)
	}
}
