// Package tracker persists publishing history: which source objects have
// already been published and how past runs went.
//
// The tracker backs the default asset selection policy (publish each
// source exactly once) and the run history surfaced by the CLI. State
// lives in a local SQLite database under the configured state directory.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"autopost/internal/config"
	"autopost/internal/storage"
)

// Store manages publishing history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded pipeline execution.
type Run struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt *time.Time
	StatusCode *int
	Summary    string
}

// Open initializes or connects to the tracker database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "autopost.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
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

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// IsPublished reports whether a source object was already published.
func (s *Store) IsPublished(ctx context.Context, role storage.Role, sourceKey string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM published WHERE role = ? AND source_key = ?",
		string(role), sourceKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query published: %w", err)
	}
	return count > 0, nil
}

// MarkPublished records a successful publish. Re-publishing the same source
// updates the existing row, keeping destination keys idempotent.
func (s *Store) MarkPublished(ctx context.Context, role storage.Role, sourceKey, destKey, runID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO published (role, source_key, dest_key, run_id, published_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (role, source_key) DO UPDATE SET
             dest_key = excluded.dest_key,
             run_id = excluded.run_id,
             published_at = excluded.published_at`,
		string(role), sourceKey, destKey, runID, now,
	)
	if err != nil {
		return fmt.Errorf("mark published %s/%s: %w", role, sourceKey, err)
	}
	return nil
}

// RecordRunStart inserts a run row at run start.
func (s *Store) RecordRunStart(ctx context.Context, runID, trigger string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, trigger_source, started_at) VALUES (?, ?, ?)",
		runID, trigger, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// RecordRunFinish completes a run row with its outcome.
func (s *Store) RecordRunFinish(ctx context.Context, runID string, statusCode int, summary string, finishedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status_code = ?, summary = ? WHERE id = ?",
		finishedAt.UTC().Format(time.RFC3339Nano), statusCode, summary, runID,
	)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_source, started_at, finished_at, status_code, summary
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			started    string
			finished   sql.NullString
			statusCode sql.NullInt64
			summary    sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Trigger, &started, &finished, &statusCode, &summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			if parsed, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
				run.FinishedAt = &parsed
			}
		}
		if statusCode.Valid {
			code := int(statusCode.Int64)
			run.StatusCode = &code
		}
		run.Summary = summary.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
