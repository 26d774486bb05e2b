package scraper

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Event is one timetable entry in the shape the export side expects. The JSON
// field names form the interchange contract between fetch and sync runs.
type Event struct {
	Title         string `json:"title"`
	Time          string `json:"time"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Location      string `json:"location"`
	Instructor    string `json:"instructor"`
	CourseDetails string `json:"course_details"`
	Content       string `json:"content"`
	EventID       string `json:"event_id"`
	CalendarDate  string `json:"calendar_date"`
	WeekDate      string `json:"week_date"`
}

// Fingerprint derives the deduplication key for an event. Entries that render
// identically in overlapping week views hash to the same value; the widget's
// own event ids are too unreliable to use here.
func (e Event) Fingerprint() string {
	hash := md5.New()
	hash.Write([]byte(e.Title + "|" + e.Time + "|" + e.Location + "|" + e.CourseDetails))
	return hex.EncodeToString(hash.Sum(nil))
}

// WeekBatch holds the events harvested from a single week view.
type WeekBatch struct {
	WeekDate     string
	CalendarDate string
	Events       []Event
}

// Entry is one calendar-widget block on a rendered page. Implementations wrap
// either a live browser element or a node in a static markup snapshot.
type Entry interface {
	// Text returns the visible text of the block, newline-delimited per line.
	Text() (string, error)
	// Attr returns an attribute value, or "" when absent.
	Attr(name string) string
	// ChildText returns the visible text of the first matching sub-element.
	ChildText(selector string) (string, bool)
	// ChildAttr returns an attribute of the first matching sub-element.
	ChildAttr(selector, attr string) (string, bool)
}

// Page is the structural query surface of a rendered timetable page.
type Page interface {
	// Query returns every element matching the selector on the live page.
	Query(selector string) ([]Entry, error)
	// Snapshot returns the current rendered markup as HTML.
	Snapshot() (string, error)
}

// Session is the browser session the walker drives. Acquired once per run and
// released by the caller when the run ends, however it ends.
type Session interface {
	Login() error
	NavigateToWeek(date time.Time) error
	NavigateURL(url string) error
	CurrentPage() (Page, error)
	Close() error
}
