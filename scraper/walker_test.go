package scraper

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const emptyWeekHTML = `<div id="calendar"><div class="fc-view"></div></div>`

// fakeSession replays pre-rendered markup for successive week navigations.
type fakeSession struct {
	weeks    []string
	loginErr error
	failNav  map[int]bool

	navCount int
	weekNavs int
	urlNavs  []string
	lastHTML string
}

func (f *fakeSession) Login() error { return f.loginErr }

func (f *fakeSession) navigate() error {
	idx := f.navCount
	f.navCount++
	if f.failNav[idx] {
		return errors.New("navigation timeout")
	}
	if idx < len(f.weeks) {
		f.lastHTML = f.weeks[idx]
	} else {
		f.lastHTML = emptyWeekHTML
	}
	return nil
}

func (f *fakeSession) NavigateToWeek(time.Time) error {
	f.weekNavs++
	return f.navigate()
}

func (f *fakeSession) NavigateURL(url string) error {
	f.urlNavs = append(f.urlNavs, url)
	return f.navigate()
}

func (f *fakeSession) CurrentPage() (Page, error) {
	return NewSnapshotPage(f.lastHTML)
}

func (f *fakeSession) Close() error { return nil }

func eventHTML(title, timeRange, location, instructor, details string) string {
	return `<a class="fc-time-grid-event"><div class="fc-content">` +
		title + `<br>` + timeRange + `<br>` + location + `<br>` + instructor + `<br>` + details +
		`</div></a>`
}

func weekHTML(entries ...string) string {
	page := `<div id="calendar">`
	for _, e := range entries {
		page += e
	}
	return page + `</div>`
}

func newTestWalker(session Session) *Walker {
	w := NewWalker(session, NewHarvester(discardLogger()), "https://timetable.example.edu", "12345", discardLogger())
	w.pause = 0
	return w
}

func TestGatherRangeDeduplicatesAcrossWeeks(t *testing.T) {
	lecture := eventHTML("CS101", "09:00 - 10:30", "Room A [30]", "Dr. Smith", "Intro to CS")
	lab := eventHTML("CS102", "14:00 - 15:00", "Lab 1 [20]", "Dr. Ada", "Programming Lab")

	session := &fakeSession{weeks: []string{
		weekHTML(lecture, lab),
		weekHTML(lecture), // same lecture rendered again on the week boundary
	}}
	walker := newTestWalker(session)

	start := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)
	events, err := walker.GatherRange(start, 2)
	if err != nil {
		t.Fatalf("GatherRange failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 deduplicated events, got %d", len(events))
	}
	if events[0].Title != "CS101" || events[1].Title != "CS102" {
		t.Errorf("unexpected order: %q, %q", events[0].Title, events[1].Title)
	}
	// The retained copy is the one first seen, stamped with the first week.
	if events[0].WeekDate != "2025-05-26" {
		t.Errorf("week_date = %q, expected 2025-05-26", events[0].WeekDate)
	}
}

func TestGatherRangeNavigatesOncePerWeek(t *testing.T) {
	session := &fakeSession{
		weeks:   []string{emptyWeekHTML, emptyWeekHTML, emptyWeekHTML},
		failNav: map[int]bool{1: true},
	}
	walker := newTestWalker(session)

	start := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)
	if _, err := walker.GatherRange(start, 3); err != nil {
		t.Fatalf("GatherRange failed: %v", err)
	}

	if session.navCount != 3 {
		t.Errorf("navigation count = %d, expected 3 despite one failed week", session.navCount)
	}
	if session.weekNavs != 1 {
		t.Errorf("capability-level week navigations = %d, expected 1 (first week only)", session.weekNavs)
	}
	if len(session.urlNavs) != 2 {
		t.Fatalf("direct URL navigations = %d, expected 2", len(session.urlNavs))
	}
	// Anchor advances 7 days per week from the walker's own counter, even
	// through the failed week.
	wantSecond := "https://timetable.example.edu/cal?vt=agendaWeek&dt=2025-06-02&et=student&fid0=12345"
	wantThird := "https://timetable.example.edu/cal?vt=agendaWeek&dt=2025-06-09&et=student&fid0=12345"
	if session.urlNavs[0] != wantSecond {
		t.Errorf("second week URL = %q, expected %q", session.urlNavs[0], wantSecond)
	}
	if session.urlNavs[1] != wantThird {
		t.Errorf("third week URL = %q, expected %q", session.urlNavs[1], wantThird)
	}
}

func TestGatherRangeContinuesPastFailedWeek(t *testing.T) {
	session := &fakeSession{
		weeks: []string{
			weekHTML(eventHTML("CS101", "09:00 - 10:30", "Room A [30]", "Dr. Smith", "Intro to CS")),
			weekHTML(eventHTML("CS201", "10:00 - 11:00", "Room B [25]", "Dr. Lee", "Data Structures")),
			weekHTML(eventHTML("CS301", "11:00 - 12:00", "Room C [40]", "Dr. Kay", "Algorithms")),
		},
		failNav: map[int]bool{1: true},
	}
	walker := newTestWalker(session)

	events, err := walker.GatherRange(time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("GatherRange failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events (middle week skipped), got %d", len(events))
	}
	if events[0].Title != "CS101" || events[1].Title != "CS301" {
		t.Errorf("unexpected surviving events: %q, %q", events[0].Title, events[1].Title)
	}
	if events[1].WeekDate != "2025-06-09" {
		t.Errorf("third week stamp = %q, expected 2025-06-09", events[1].WeekDate)
	}
}

func TestGatherRangeLoginFailureAborts(t *testing.T) {
	session := &fakeSession{loginErr: errors.New("bad credentials")}
	walker := newTestWalker(session)

	events, err := walker.GatherRange(time.Now(), 4)
	if err == nil {
		t.Fatal("expected an error distinguishing login failure from an empty result")
	}
	if events != nil {
		t.Errorf("expected nil events on login failure, got %d", len(events))
	}
	if session.navCount != 0 {
		t.Errorf("expected no navigation after failed login, got %d", session.navCount)
	}
}

func TestGatherRangeIdempotent(t *testing.T) {
	fixture := []string{
		weekHTML(
			eventHTML("CS101", "09:00 - 10:30", "Room A [30]", "Dr. Smith", "Intro to CS"),
			eventHTML("CS102", "14:00 - 15:00", "Lab 1 [20]", "Dr. Ada", "Programming Lab"),
		),
		weekHTML(eventHTML("CS101", "09:00 - 10:30", "Room A [30]", "Dr. Smith", "Intro to CS")),
	}
	start := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)

	run := func() []byte {
		walker := newTestWalker(&fakeSession{weeks: fixture})
		events, err := walker.GatherRange(start, 2)
		if err != nil {
			t.Fatalf("GatherRange failed: %v", err)
		}
		data, err := json.Marshal(events)
		if err != nil {
			t.Fatalf("marshalling events: %v", err)
		}
		return data
	}

	first := run()
	second := run()
	if string(first) != string(second) {
		t.Errorf("re-running over the same fixture produced different output:\n%s\n%s", first, second)
	}
}

func TestFingerprintFieldSensitivity(t *testing.T) {
	base := Event{Title: "CS101", Time: "09:00 - 10:30", Location: "Room A [30]", CourseDetails: "Intro to CS"}

	same := base
	same.WeekDate = "2025-06-02"
	same.Instructor = "someone else entirely"
	if base.Fingerprint() != same.Fingerprint() {
		t.Error("fingerprint must ignore fields outside the four-tuple")
	}

	mutations := map[string]Event{}
	m := base
	m.Title = "CS102"
	mutations["title"] = m
	m = base
	m.Time = "10:00 - 11:30"
	mutations["time"] = m
	m = base
	m.Location = "Room B [30]"
	mutations["location"] = m
	m = base
	m.CourseDetails = "Advanced CS"
	mutations["course_details"] = m

	for field, mutated := range mutations {
		if mutated.Fingerprint() == base.Fingerprint() {
			t.Errorf("changing %s should change the fingerprint", field)
		}
	}
}
