// Package history keeps a local journal of completed runs so users can
// see what was processed, when, and with what outcome across restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cleandesk/internal/logging"
)

// Outcome is the terminal state of a recorded run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeStale   Outcome = "stale"
)

// Entry is one journaled run.
type Entry struct {
	ID         string
	StartedAt  time.Time
	DurationMs int64

	Kind      string // clean, pipeline, inference
	Metric    string
	SubMetric string
	SessionID string

	FileCount int
	BulkMode  bool

	Outcome Outcome
	Error   string
}

// Store is the SQLite-backed run journal.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure history database: %w", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		kind TEXT NOT NULL,
		metric TEXT,
		sub_metric TEXT,
		session_id TEXT,
		file_count INTEGER NOT NULL DEFAULT 0,
		bulk_mode INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record journals a completed run. A missing id or start time is filled
// in; journaling failures are logged, never fatal to the run itself.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, kind, metric, sub_metric, session_id, file_count, bulk_mode, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StartedAt, e.DurationMs, e.Kind, e.Metric, e.SubMetric,
		e.SessionID, e.FileCount, boolToInt(e.BulkMode), string(e.Outcome), e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	logging.History("recorded %s run outcome=%s session=%s", e.Kind, e.Outcome, e.SessionID)
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, kind, metric, sub_metric, session_id, file_count, bulk_mode, outcome, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			bulk int
		)
		if err := rows.Scan(&e.ID, &e.StartedAt, &e.DurationMs, &e.Kind, &e.Metric,
			&e.SubMetric, &e.SessionID, &e.FileCount, &bulk, &e.Outcome, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.BulkMode = bulk != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes the oldest entries beyond maxEntries. A non-positive
// limit disables pruning.
func (s *Store) Prune(ctx context.Context, maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		)`, maxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}
	return nil
}

// Count returns the total number of journaled runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
