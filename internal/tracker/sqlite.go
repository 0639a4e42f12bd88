// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "pm-agent.db"

// SQLiteTracker keeps processed IDs in data/pm-agent.db.
type SQLiteTracker struct {
	db   *sql.DB
	mode Mode
}

// OpenSQLite opens or creates the tracker database in dataDir.
func OpenSQLite(dataDir string, mode Mode) (*SQLiteTracker, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteTracker{db: db, mode: mode}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteTracker) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS processed_meetings (
			document_id TEXT PRIMARY KEY,
			title TEXT,
			processed_at TEXT NOT NULL,
			run_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_meetings(processed_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IsProcessed reports whether documentID has a row.
func (s *SQLiteTracker) IsProcessed(ctx context.Context, documentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM processed_meetings WHERE document_id = ?`, documentID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", documentID, err)
	}
	return n > 0, nil
}

// MarkProcessed upserts e.
func (s *SQLiteTracker) MarkProcessed(ctx context.Context, e Entry) error {
	if s.mode != ReadWrite {
		return ErrReadOnly
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_meetings (document_id, title, processed_at, run_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			title = excluded.title,
			processed_at = excluded.processed_at,
			run_id = excluded.run_id`,
		e.DocumentID, e.Title, e.ProcessedAt.UTC().Format(time.RFC3339Nano), e.RunID,
	)
	if err != nil {
		return fmt.Errorf("marking %s processed: %w", e.DocumentID, err)
	}
	return nil
}

// Count returns the number of rows.
func (s *SQLiteTracker) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM processed_meetings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting processed meetings: %w", err)
	}
	return n, nil
}

// Entries returns every row, most recent first.
func (s *SQLiteTracker) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, COALESCE(title, ''), processed_at, COALESCE(run_id, '')
		FROM processed_meetings`)
	if err != nil {
		return nil, fmt.Errorf("listing processed meetings: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.DocumentID, &e.Title, &at, &e.RunID); err != nil {
			return nil, fmt.Errorf("scanning processed meeting: %w", err)
		}
		if e.ProcessedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing processed_at for %s: %w", e.DocumentID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// Close releases the database connection.
func (s *SQLiteTracker) Close() error {
	return s.db.Close()
}
