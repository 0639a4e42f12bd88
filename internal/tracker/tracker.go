// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tracker records which meeting documents have been processed so
// later runs skip them.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/pm-agent/pkg/types"
)

var (
	// ErrLocked means another run holds the tracker for writing.
	ErrLocked = errors.New("tracker is locked by another run")

	// ErrReadOnly means the tracker was opened without write access.
	ErrReadOnly = errors.New("tracker opened read-only")
)

// Entry is one processed document.
type Entry struct {
	DocumentID  string    `json:"-"`
	Title       string    `json:"title,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	RunID       string    `json:"run_id,omitempty"`
}

// Tracker is the processed-ID store. MarkProcessed persists before it
// returns.
type Tracker interface {
	IsProcessed(ctx context.Context, documentID string) (bool, error)
	MarkProcessed(ctx context.Context, e Entry) error
	Count(ctx context.Context) (int, error)
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Mode selects write access when opening a tracker.
type Mode int

const (
	ReadWrite Mode = iota
	ReadOnly
)

// Open returns the tracker backend named in cfg.
func Open(cfg types.TrackerConfig, mode Mode) (Tracker, error) {
	switch cfg.Backend {
	case types.TrackerJSON, "":
		t, err := OpenJSON(cfg.DataDir, mode)
		if err != nil {
			return nil, err
		}
		return t, nil
	case types.TrackerSQLite:
		t, err := OpenSQLite(cfg.DataDir, mode)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown tracker backend %q", cfg.Backend)
}
