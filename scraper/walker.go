package scraper

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// defaultWeekPause is the politeness delay between week transitions. The
// timetable server throttles sessions that page through weeks too quickly.
const defaultWeekPause = 2 * time.Second

// weekHeaderSelector locates the widget's "May 26 – Jun 1, 2025" toolbar text.
const weekHeaderSelector = ".fc-toolbar h2"

// Walker drives week-by-week traversal of the timetable and deduplicates
// events that reappear across overlapping week views.
type Walker struct {
	session   Session
	harvester *Harvester
	baseURL   string
	studentID string
	pause     time.Duration
	logger    *slog.Logger
}

func NewWalker(session Session, harvester *Harvester, baseURL, studentID string, logger *slog.Logger) *Walker {
	return &Walker{
		session:   session,
		harvester: harvester,
		baseURL:   baseURL,
		studentID: studentID,
		pause:     defaultWeekPause,
		logger:    logger,
	}
}

// TimetableURL builds the direct agenda-week URL for an anchor date. After the
// first week the walker navigates by URL instead of re-driving the widget UI.
func (w *Walker) TimetableURL(date time.Time) string {
	return fmt.Sprintf("%s/cal?vt=agendaWeek&dt=%s&et=student&fid0=%s",
		w.baseURL, date.Format("2006-01-02"), w.studentID)
}

// GatherRange collects events for weekCount consecutive weeks starting at
// startDate. A login failure aborts the whole range; a failed week is logged
// and skipped so partial results survive. Events come back in first-seen
// order, duplicates across overlapping week boundaries suppressed.
func (w *Walker) GatherRange(startDate time.Time, weekCount int) ([]Event, error) {
	if err := w.session.Login(); err != nil {
		return nil, fmt.Errorf("establishing session: %w", err)
	}

	seen := make(map[string]bool)
	events := make([]Event, 0)
	anchor := startDate

	for week := 0; week < weekCount; week++ {
		if week > 0 {
			time.Sleep(w.pause)
		}

		batch := w.gatherWeek(anchor, week)
		for _, ev := range batch.Events {
			fp := ev.Fingerprint()
			if seen[fp] {
				w.logger.Debug("duplicate event suppressed", "title", ev.Title, "week_date", batch.WeekDate)
				continue
			}
			seen[fp] = true
			ev.WeekDate = batch.WeekDate
			if ev.CalendarDate == "" {
				ev.CalendarDate = batch.CalendarDate
			}
			events = append(events, ev)
		}

		// The anchor advances from the walker's own counter, never from
		// whatever state the navigation surface happens to be in.
		anchor = anchor.AddDate(0, 0, 7)
	}

	w.logger.Info("range gathered", "weeks", weekCount, "events", len(events))
	return events, nil
}

// gatherWeek navigates to one week view and harvests it. Failures come back
// as an empty batch so the walk can continue with the next week.
func (w *Walker) gatherWeek(anchor time.Time, week int) WeekBatch {
	batch := WeekBatch{WeekDate: anchor.Format("2006-01-02")}

	var err error
	if week == 0 {
		err = w.session.NavigateToWeek(anchor)
	} else {
		err = w.session.NavigateURL(w.TimetableURL(anchor))
	}
	if err != nil {
		w.logger.Warn("week navigation failed, skipping", "week_date", batch.WeekDate, "err", err)
		return batch
	}

	page, err := w.session.CurrentPage()
	if err != nil {
		w.logger.Warn("could not read rendered page, skipping week", "week_date", batch.WeekDate, "err", err)
		return batch
	}

	batch.CalendarDate = weekHeader(page)
	batch.Events = w.harvester.Harvest(page)
	w.logger.Info("week harvested", "week_date", batch.WeekDate, "events", len(batch.Events))
	return batch
}

// weekHeader reads the widget's displayed date-range header, if any.
func weekHeader(page Page) string {
	entries, err := page.Query(weekHeaderSelector)
	if err != nil || len(entries) == 0 {
		return ""
	}
	text, err := entries[0].Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
