// Package history records pipeline runs in a small SQLite database so past
// processing attempts stay inspectable after the in-memory job status has
// been reset by the next start call.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old databases must be deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one recorded pipeline execution.
type Run struct {
	ID         int64
	JobID      string
	EpisodeID  string
	URL        string
	Language   string
	Outcome    string
	Error      string
	CacheHit   bool
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Run outcomes.
const (
	OutcomeRunning = "running"
	OutcomeDone    = "done"
	OutcomeError   = "error"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordStart inserts a new run row in the running state and returns its id.
func (s *Store) RecordStart(ctx context.Context, jobID, episodeID, url, language string) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO runs (job_id, episode_id, url, language, outcome, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, episodeID, url, language, OutcomeRunning, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("record run start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run row id: %w", err)
	}
	return id, nil
}

// RecordFinish marks a run as done or failed. runErr may be nil. cacheHit
// records whether the run short-circuited on a cached episode.
func (s *Store) RecordFinish(ctx context.Context, runID int64, runErr error, cacheHit bool) error {
	outcome := OutcomeDone
	message := ""
	if runErr != nil {
		outcome = OutcomeError
		message = runErr.Error()
	}
	hit := 0
	if cacheHit {
		hit = 1
	}
	_, err := s.execWithRetry(ctx,
		`UPDATE runs SET outcome = ?, error = ?, cache_hit = ?, finished_at = ? WHERE id = ?`,
		outcome, message, hit, time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, episode_id, url, language, outcome, error, cache_hit, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			hit        int
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.JobID, &run.EpisodeID, &run.URL, &run.Language,
			&run.Outcome, &run.Error, &hit, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.CacheHit = hit != 0
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = ts
		}
		if finishedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
				run.FinishedAt = &ts
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
