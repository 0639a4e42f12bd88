// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	jsonFile = "processed_meetings.json"
	lockFile = "processed_meetings.lock"
)

// jsonState is the on-disk document. processed_document_ids and
// last_updated are read by older tooling; meetings carries the extra
// per-entry detail.
type jsonState struct {
	ProcessedDocumentIDs []string         `json:"processed_document_ids"`
	LastUpdated          string           `json:"last_updated"`
	Meetings             map[string]Entry `json:"meetings,omitempty"`
}

// JSONTracker keeps processed IDs in data/processed_meetings.json. A
// read-write tracker holds an exclusive file lock until Close.
type JSONTracker struct {
	path string
	lock *flock.Flock
	mode Mode

	mu      sync.Mutex
	entries map[string]Entry

	// now is swapped in tests.
	now func() time.Time
}

// OpenJSON loads the tracking file in dataDir, creating dataDir if needed.
// A read-write open fails with ErrLocked when another run holds the lock.
func OpenJSON(dataDir string, mode Mode) (*JSONTracker, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	t := &JSONTracker{
		path:    filepath.Join(dataDir, jsonFile),
		mode:    mode,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	if mode == ReadWrite {
		t.lock = flock.New(filepath.Join(dataDir, lockFile))
		ok, err := t.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire tracker lock: %w", err)
		}
		if !ok {
			return nil, ErrLocked
		}
	}

	if err := t.load(); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

func (t *JSONTracker) load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", t.path, err)
	}

	var state jsonState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parsing %s: %w", t.path, err)
	}
	for _, id := range state.ProcessedDocumentIDs {
		e := state.Meetings[id]
		e.DocumentID = id
		t.entries[id] = e
	}
	return nil
}

// IsProcessed reports whether documentID has been marked.
func (t *JSONTracker) IsProcessed(_ context.Context, documentID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[documentID]
	return ok, nil
}

// MarkProcessed records e and rewrites the tracking file atomically.
func (t *JSONTracker) MarkProcessed(_ context.Context, e Entry) error {
	if t.mode != ReadWrite {
		return ErrReadOnly
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = t.now()
	}
	t.entries[e.DocumentID] = e
	return t.save()
}

func (t *JSONTracker) save() error {
	state := jsonState{
		ProcessedDocumentIDs: make([]string, 0, len(t.entries)),
		LastUpdated:          t.now().Format(time.RFC3339),
		Meetings:             make(map[string]Entry, len(t.entries)),
	}
	for id, e := range t.entries {
		state.ProcessedDocumentIDs = append(state.ProcessedDocumentIDs, id)
		state.Meetings[id] = e
	}
	sort.Strings(state.ProcessedDocumentIDs)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tracker state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), jsonFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing tracker state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing tracker state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing tracker state: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replacing %s: %w", t.path, err)
	}
	return nil
}

// Count returns the number of processed documents.
func (t *JSONTracker) Count(_ context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries), nil
}

// Entries returns every processed document, most recent first. Entries
// written by older tooling have no timestamp and sort last by ID.
func (t *JSONTracker) Entries(_ context.Context) ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

// Close releases the file lock.
func (t *JSONTracker) Close() error {
	if t.lock == nil {
		return nil
	}
	return t.lock.Unlock()
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ProcessedAt.Equal(b.ProcessedAt) {
			return a.ProcessedAt.After(b.ProcessedAt)
		}
		return a.DocumentID < b.DocumentID
	})
}
