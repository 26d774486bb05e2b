package scraper

import "log/slog"

// selectorStrategy is one rung of the cascade used to locate event blocks.
type selectorStrategy struct {
	id       string
	selector string
}

// The widget's markup drifts between deployments: sometimes events are
// anchors, sometimes divs, and the class list varies. Most-specific selectors
// come first, class-substring matches last. The first strategy that matches
// anything wins.
var entryStrategies = []selectorStrategy{
	{"time-grid-anchor", "a.fc-time-grid-event"},
	{"time-grid-event", ".fc-time-grid-event"},
	{"fc-event", ".fc-event"},
	{"day-grid-event", ".fc-day-grid-event"},
	{"event-div-substring", "div[class*='fc-event']"},
	{"event-anchor-substring", "a[class*='fc-event']"},
}

// Harvester extracts event records from a rendered timetable page.
type Harvester struct {
	logger *slog.Logger
}

func NewHarvester(logger *slog.Logger) *Harvester {
	return &Harvester{logger: logger}
}

// Harvest returns every event visible on the page. Live element queries are
// tried first; if no strategy matches anything there, the same cascade runs
// against a static snapshot of the rendered markup. An empty result is a
// valid empty week, not an error.
func (h *Harvester) Harvest(page Page) []Event {
	if events, matched := h.harvestLive(page); matched {
		return events
	}
	events, matched := h.harvestSnapshot(page)
	if !matched {
		h.logger.Debug("no selector strategy matched; treating week as empty")
	}
	return events
}

func (h *Harvester) harvestLive(page Page) ([]Event, bool) {
	for _, strat := range entryStrategies {
		entries, err := page.Query(strat.selector)
		if err != nil {
			h.logger.Warn("entry query failed", "strategy", strat.id, "err", err)
			continue
		}
		if len(entries) == 0 {
			continue
		}
		h.logger.Debug("selector strategy matched", "strategy", strat.id, "entries", len(entries))
		return h.extractAll(entries), true
	}
	return nil, false
}

func (h *Harvester) harvestSnapshot(page Page) ([]Event, bool) {
	markup, err := page.Snapshot()
	if err != nil {
		h.logger.Warn("could not snapshot rendered page", "err", err)
		return nil, false
	}
	snap, err := NewSnapshotPage(markup)
	if err != nil {
		h.logger.Warn("could not parse page snapshot", "err", err)
		return nil, false
	}
	for _, strat := range entryStrategies {
		entries, err := snap.Query(strat.selector)
		if err != nil || len(entries) == 0 {
			continue
		}
		h.logger.Debug("snapshot strategy matched", "strategy", strat.id, "entries", len(entries))
		return h.extractAll(entries), true
	}
	return nil, false
}

// extractAll converts raw entries to records, skipping entries that cannot be
// read. One malformed block must never cost the rest of the page.
func (h *Harvester) extractAll(entries []Entry) []Event {
	events := make([]Event, 0, len(entries))
	for i, entry := range entries {
		ev, err := extractFields(entry)
		if err != nil {
			h.logger.Warn("skipping malformed entry", "index", i, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events
}
