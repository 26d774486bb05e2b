// Package storage persists gathered event collections as JSON documents.
// The document layout (array of event objects, insertion order preserved) is
// the interchange contract between fetch and sync runs.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"celcat-sync/scraper"
)

type Store struct {
	dataDir string
}

func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// SaveEvents writes events to path, or to a timestamped file under the data
// directory when path is empty. Returns the path written.
func (s *Store) SaveEvents(path string, events []scraper.Event) (string, error) {
	if path == "" {
		name := fmt.Sprintf("events_%s.json", time.Now().Format("20060102_150405"))
		path = filepath.Join(s.dataDir, name)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding events: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LoadEvents reads an event-list document written by SaveEvents.
func (s *Store) LoadEvents(path string) ([]scraper.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var events []scraper.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return events, nil
}
