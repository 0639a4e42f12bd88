// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pm-agent/pkg/types"
)

var backends = []types.TrackerBackend{types.TrackerJSON, types.TrackerSQLite}

func openTracker(t *testing.T, backend types.TrackerBackend, dir string, mode Mode) Tracker {
	t.Helper()
	tr, err := Open(types.TrackerConfig{Backend: backend, DataDir: dir}, mode)
	require.NoError(t, err)
	return tr
}

func TestTrackerRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			tr := openTracker(t, backend, dir, ReadWrite)

			ok, err := tr.IsProcessed(ctx, "doc-1")
			require.NoError(t, err)
			assert.False(t, ok)

			early := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
			late := early.Add(time.Hour)
			require.NoError(t, tr.MarkProcessed(ctx, Entry{DocumentID: "doc-1", Title: "Sync", ProcessedAt: early, RunID: "r1"}))
			require.NoError(t, tr.MarkProcessed(ctx, Entry{DocumentID: "doc-2", Title: "Planning", ProcessedAt: late, RunID: "r1"}))
			require.NoError(t, tr.MarkProcessed(ctx, Entry{DocumentID: "doc-1", Title: "Sync", ProcessedAt: early, RunID: "r2"}))

			n, err := tr.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			require.NoError(t, tr.Close())

			// Marks survive reopening.
			tr = openTracker(t, backend, dir, ReadOnly)
			defer tr.Close()

			ok, err = tr.IsProcessed(ctx, "doc-1")
			require.NoError(t, err)
			assert.True(t, ok)

			entries, err := tr.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "doc-2", entries[0].DocumentID)
			assert.Equal(t, "doc-1", entries[1].DocumentID)
			assert.Equal(t, "r2", entries[1].RunID)
			assert.True(t, early.Equal(entries[1].ProcessedAt))

			assert.ErrorIs(t, tr.MarkProcessed(ctx, Entry{DocumentID: "doc-3"}), ErrReadOnly)
		})
	}
}

func TestJSONTrackerFileFormat(t *testing.T) {
	dir := t.TempDir()
	tr, err := OpenJSON(dir, ReadWrite)
	require.NoError(t, err)
	defer tr.Close()
	tr.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }

	require.NoError(t, tr.MarkProcessed(context.Background(), Entry{DocumentID: "b"}))
	require.NoError(t, tr.MarkProcessed(context.Background(), Entry{DocumentID: "a"}))

	data, err := os.ReadFile(filepath.Join(dir, "processed_meetings.json"))
	require.NoError(t, err)

	var state struct {
		IDs         []string `json:"processed_document_ids"`
		LastUpdated string   `json:"last_updated"`
	}
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, []string{"a", "b"}, state.IDs)
	assert.Equal(t, "2026-02-03T04:05:06Z", state.LastUpdated)
}

func TestJSONTrackerReadsLegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"processed_document_ids": ["x", "y"], "last_updated": "2025-01-01T00:00:00"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_meetings.json"), []byte(legacy), 0o644))

	tr, err := OpenJSON(dir, ReadOnly)
	require.NoError(t, err)
	defer tr.Close()

	n, err := tr.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := tr.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", entries[0].DocumentID)
	assert.Equal(t, "y", entries[1].DocumentID)
}

func TestJSONTrackerCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_meetings.json"), []byte("{"), 0o644))

	_, err := OpenJSON(dir, ReadWrite)
	assert.ErrorContains(t, err, "parsing")

	// The failed open released its lock.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_meetings.json"), []byte("{}"), 0o644))
	tr, err := OpenJSON(dir, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, tr.Close())
}

func TestJSONTrackerLock(t *testing.T) {
	dir := t.TempDir()
	first, err := OpenJSON(dir, ReadWrite)
	require.NoError(t, err)

	_, err = OpenJSON(dir, ReadWrite)
	assert.ErrorIs(t, err, ErrLocked)

	reader, err := OpenJSON(dir, ReadOnly)
	require.NoError(t, err, "readers do not take the lock")
	require.NoError(t, reader.Close())

	require.NoError(t, first.Close())
	second, err := OpenJSON(dir, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(types.TrackerConfig{Backend: "redis", DataDir: t.TempDir()}, ReadWrite)
	assert.ErrorContains(t, err, "unknown tracker backend")
}
