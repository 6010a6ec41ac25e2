// Package history persists run outcomes and per-test results to a local
// SQLite database so past runs can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one run's stored outcome.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	Outcome        string
	Passed         int
	Failed         int
	Unreported     int
	DurationMillis int64
	Tests          []TestRecord
}

// TestRecord is one test's stored result within a run.
type TestRecord struct {
	FullTitle      string
	State          string
	DurationMillis int64
	Message        string
}

// Store manages the SQLite run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath and
// initializes its schema. Use ":memory:" for an ephemeral store.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing when another editor window holds the database.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a run and its per-test results in one transaction.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, outcome, passed, failed, unreported, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, rec.Outcome, rec.Passed, rec.Failed, rec.Unreported, rec.DurationMillis)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range rec.Tests {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results (run_id, full_title, state, duration_ms, message)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, t.FullTitle, t.State, t.DurationMillis, t.Message)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", t.FullTitle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run record: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first, without their
// per-test results.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, outcome, passed, failed, unreported, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.Outcome, &rec.Passed, &rec.Failed, &rec.Unreported, &rec.DurationMillis); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// RunResults returns the stored per-test results for one run.
func (s *Store) RunResults(ctx context.Context, runID string) ([]TestRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT full_title, state, duration_ms, COALESCE(message, '')
		 FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var tests []TestRecord
	for rows.Next() {
		var t TestRecord
		if err := rows.Scan(&t.FullTitle, &t.State, &t.DurationMillis, &t.Message); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}
