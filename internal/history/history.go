// Package history keeps a local ledger of past runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/solvia-downloader/solvia/internal/engine/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	url              TEXT NOT NULL,
	success          INTEGER NOT NULL,
	error_message    TEXT NOT NULL DEFAULT '',
	downloaded_file  TEXT NOT NULL DEFAULT '',
	size_bytes       INTEGER NOT NULL DEFAULT 0,
	duration_seconds REAL NOT NULL DEFAULT 0,
	avg_speed_mbps   REAL NOT NULL DEFAULT 0,
	finished_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
`

// finishedLayout has a fixed-width fraction so rows sort by finished_at as text
const finishedLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded run
type Entry struct {
	ID              string
	URL             string
	Success         bool
	ErrorMessage    string
	DownloadedFile  string
	SizeBytes       int64
	DurationSeconds float64
	AvgSpeedMBps    float64
	FinishedAt      time.Time
}

// Store is a SQLite-backed run ledger
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; keeps SQLite from returning SQLITE_BUSY inside this process
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts the outcome of one run. Recording the same RunID twice
// replaces the earlier row.
func (s *Store) Record(ctx context.Context, r types.DownloadResult, finishedAt time.Time) error {
	if r.RunID == "" {
		return fmt.Errorf("history: result has no run id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, url, success, error_message, downloaded_file, size_bytes, duration_seconds, avg_speed_mbps, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.URL, r.Success, r.ErrorMessage, r.DownloadedFile, r.FileSize,
		r.DurationSeconds, r.AverageSpeedMBps, finishedAt.UTC().Format(finishedLayout),
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", r.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, success, error_message, downloaded_file, size_bytes, duration_seconds, avg_speed_mbps, finished_at
		FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var finished string
		if err := rows.Scan(&e.ID, &e.URL, &e.Success, &e.ErrorMessage, &e.DownloadedFile,
			&e.SizeBytes, &e.DurationSeconds, &e.AvgSpeedMBps, &finished); err != nil {
			return nil, err
		}
		e.FinishedAt, _ = time.Parse(finishedLayout, finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats summarizes the ledger
type Stats struct {
	Runs      int
	Succeeded int
	Bytes     int64
}

// Summary returns totals over every recorded run
func (s *Store) Summary(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(SUM(size_bytes), 0) FROM runs`,
	).Scan(&st.Runs, &st.Succeeded, &st.Bytes)
	return st, err
}
