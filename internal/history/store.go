// Package history keeps a log of export batches in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/snapetech/strmsync/internal/export"
)

// Entry is one recorded batch.
type Entry struct {
	BatchID    string
	Kind       string
	Provider   string
	Dest       string
	State      string
	Written    int
	Considered int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is the batch history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(path)), 0o700); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordBatch stores r. Recording the same batch twice replaces the row.
func (s *Store) RecordBatch(ctx context.Context, r export.Report) error {
	var errText sql.NullString
	if r.Err != nil {
		errText = sql.NullString{String: r.Err.Error(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO batches (
            batch_id, kind, provider, dest, state, written, considered, failed,
            error, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BatchID.String(),
		r.Kind.String(),
		r.Provider,
		r.Dest,
		string(r.State),
		r.Written,
		r.Considered,
		r.Failed,
		errText,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// Recent returns up to limit batches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, kind, provider, dest, state, written, considered, failed,
                error, started_at, finished_at
           FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			errText           sql.NullString
			started, finished string
		)
		if err := rows.Scan(&e.BatchID, &e.Kind, &e.Provider, &e.Dest, &e.State,
			&e.Written, &e.Considered, &e.Failed, &errText, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		e.Error = errText.String
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		e.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, e)
	}
	return out, rows.Err()
}
