// Package runlog keeps an audit trail of pipeline runs in the state
// database.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Event levels.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// Run is one recorded command invocation.
type Run struct {
	ID         string
	Command    string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
	Summary    string
}

// Event is one timestamped note attached to a run.
type Event struct {
	ID        int64
	RunID     string
	CreatedAt time.Time
	Level     string
	Message   string
}

// Store persists runs and their events.
type Store struct {
	db *sql.DB
}

// NewStore wraps the state database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// StartRun records a new run and returns its id.
func (s *Store) StartRun(ctx context.Context, command string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at, status) VALUES (?, ?, ?, ?)`,
		id, command, time.Now().UTC(), StatusRunning)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run with its final status and one-line summary.
func (s *Store) FinishRun(ctx context.Context, id, status, summary string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, summary = ? WHERE id = ?`,
		time.Now().UTC(), status, summary, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run id %s", id)
	}
	return nil
}

// AddEvent attaches a note to a run.
func (s *Store) AddEvent(ctx context.Context, runID, level, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_events (run_id, created_at, level, message) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC(), level, message)
	if err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, started_at, finished_at, status, summary
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Events returns a run's events in insertion order.
func (s *Store) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, created_at, level, message
		 FROM run_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RunID, &e.CreatedAt, &e.Level, &e.Message); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	return out, nil
}

// Prune deletes finished runs older than the retention window.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE finished_at IS NOT NULL AND finished_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return n, nil
}
