package scraper

import "testing"

func entriesFromHTML(t *testing.T, markup, selector string) []Entry {
	t.Helper()
	page, err := NewSnapshotPage(markup)
	if err != nil {
		t.Fatalf("parsing fixture markup: %v", err)
	}
	entries, err := page.Query(selector)
	if err != nil {
		t.Fatalf("querying fixture markup: %v", err)
	}
	return entries
}

func entryFromHTML(t *testing.T, markup, selector string) Entry {
	t.Helper()
	entries := entriesFromHTML(t, markup, selector)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry for %q, got %d", selector, len(entries))
	}
	return entries[0]
}

func TestExtractFieldsFullEntry(t *testing.T) {
	markup := `<a class="fc-time-grid-event" data-event-id="evt-101">
		<div class="fc-content">CS101<br>09:00 - 10:30<br>Room A [30]<br>Dr. Smith<br>Intro to CS</div>
	</a>`

	ev, err := extractFields(entryFromHTML(t, markup, "a.fc-time-grid-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}

	if ev.Title != "CS101" {
		t.Errorf("title = %q, expected %q", ev.Title, "CS101")
	}
	if ev.Time != "09:00 - 10:30" {
		t.Errorf("time = %q, expected %q", ev.Time, "09:00 - 10:30")
	}
	if ev.StartTime != "09:00" || ev.EndTime != "10:30" {
		t.Errorf("start/end = %q/%q, expected 09:00/10:30", ev.StartTime, ev.EndTime)
	}
	if ev.Location != "Room A [30]" {
		t.Errorf("location = %q, expected %q", ev.Location, "Room A [30]")
	}
	if ev.Instructor != "Dr. Smith" {
		t.Errorf("instructor = %q, expected %q", ev.Instructor, "Dr. Smith")
	}
	if ev.CourseDetails != "Intro to CS" {
		t.Errorf("course details = %q, expected %q", ev.CourseDetails, "Intro to CS")
	}
	if ev.EventID != "evt-101" {
		t.Errorf("event id = %q, expected %q", ev.EventID, "evt-101")
	}
	if ev.Content != "CS101\n09:00 - 10:30\nRoom A [30]\nDr. Smith\nIntro to CS" {
		t.Errorf("content = %q", ev.Content)
	}
}

func TestExtractFieldsSingleLineEntry(t *testing.T) {
	markup := `<div class="fc-event">Exam</div>`

	ev, err := extractFields(entryFromHTML(t, markup, ".fc-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}

	if ev.Title != "Exam" {
		t.Errorf("title = %q, expected %q", ev.Title, "Exam")
	}
	for name, got := range map[string]string{
		"start_time":     ev.StartTime,
		"end_time":       ev.EndTime,
		"location":       ev.Location,
		"instructor":     ev.Instructor,
		"course_details": ev.CourseDetails,
	} {
		if got != "" {
			t.Errorf("%s = %q, expected empty", name, got)
		}
	}
}

func TestExtractFieldsPrefersTimeAttribute(t *testing.T) {
	markup := `<div class="fc-event">
		<div class="fc-time" data-full="2:00 PM - 3:30 PM"><span>2:00 - 3:30</span></div>
		<div class="fc-title">Lab Session</div>
	</div>`

	ev, err := extractFields(entryFromHTML(t, markup, ".fc-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}

	if ev.Time != "2:00 PM - 3:30 PM" {
		t.Errorf("time = %q, expected attribute value to win over displayed text", ev.Time)
	}
	if ev.StartTime != "2:00 PM" || ev.EndTime != "3:30 PM" {
		t.Errorf("start/end = %q/%q, expected 2:00 PM/3:30 PM", ev.StartTime, ev.EndTime)
	}
}

func TestExtractFieldsTimeElementWithoutAttribute(t *testing.T) {
	markup := `<div class="fc-event">
		<div class="fc-time"><span>09:00 - 10:30</span></div>
		<div class="fc-title">Seminar</div>
	</div>`

	ev, err := extractFields(entryFromHTML(t, markup, ".fc-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}
	if ev.Time != "09:00 - 10:30" {
		t.Errorf("time = %q, expected displayed text fallback", ev.Time)
	}
}

func TestExtractFieldsNoLocationMeansNoInstructor(t *testing.T) {
	markup := `<div class="fc-event">PHYS202<br>11:00 - 12:00<br>Dr. Jones<br>Mechanics</div>`

	ev, err := extractFields(entryFromHTML(t, markup, ".fc-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}
	if ev.Location != "" {
		t.Errorf("location = %q, expected empty without bracket pair", ev.Location)
	}
	if ev.Instructor != "" {
		t.Errorf("instructor = %q, expected empty when no location line found", ev.Instructor)
	}
	if ev.CourseDetails != "Mechanics" {
		t.Errorf("course details = %q, expected last line", ev.CourseDetails)
	}
}

func TestExtractFieldsFirstBracketLineWins(t *testing.T) {
	markup := `<div class="fc-event">MATH301<br>Room B [25]<br>Annex [12]<br>Prof. Lee</div>`

	ev, err := extractFields(entryFromHTML(t, markup, ".fc-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}
	if ev.Location != "Room B [25]" {
		t.Errorf("location = %q, expected first bracket line", ev.Location)
	}
	if ev.Instructor != "Annex [12]" {
		t.Errorf("instructor = %q, expected the line after the location", ev.Instructor)
	}
}

func TestExtractFieldsEventIDFallsBackToID(t *testing.T) {
	markup := `<div class="fc-event" id="raw-7">Workshop</div>`

	ev, err := extractFields(entryFromHTML(t, markup, ".fc-event"))
	if err != nil {
		t.Fatalf("extractFields failed: %v", err)
	}
	if ev.EventID != "raw-7" {
		t.Errorf("event id = %q, expected id attribute fallback", ev.EventID)
	}
}
