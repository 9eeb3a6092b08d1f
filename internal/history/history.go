// Package history persists an audit log of orchestrator runs.
// One row per run; nothing in the orchestration flow ever reads it back —
// it exists for the /runs endpoint and the runs CLI command.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded orchestrator run.
type Run struct {
	ID         int64     `json:"id"`
	Owner      string    `json:"owner"`
	Repo       string    `json:"repo"`
	Number     int       `json:"number"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"`
	Branch     string    `json:"branch,omitempty"`
	PRURL      string    `json:"pr_url,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Trigger values.
const (
	TriggerIssue     = "issue"
	TriggerPRComment = "pr_comment"
)

// Store is a sqlite-backed run log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	owner       TEXT NOT NULL,
	repo        TEXT NOT NULL,
	number      INTEGER NOT NULL,
	"trigger"   TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	branch      TEXT NOT NULL DEFAULT '',
	pr_url      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Open opens (creating if necessary) the run log at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a run to the log.
func (s *Store) Record(r Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (owner, repo, number, "trigger", outcome, branch, pr_url, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Owner, r.Repo, r.Number, r.Trigger, r.Outcome, r.Branch, r.PRURL, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, owner, repo, number, "trigger", outcome, branch, pr_url, error, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Owner, &r.Repo, &r.Number, &r.Trigger, &r.Outcome,
			&r.Branch, &r.PRURL, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Count returns the total number of recorded runs.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}
