// Package history records a durable ledger of needlepoint runs in a
// SQLite database, one file per project, so a CLI or HTTP client can
// ask "what happened the last time I ran generate-all" after the
// process that ran it has exited.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the SQLite database file created inside a project's
// .needlepoint directory.
const FileName = ".needlepoint/history.db"

// ErrNotFound is returned when a queried run or node outcome does not
// exist.
var ErrNotFound = errors.New("history: not found")

// NodeOutcome is one node's result within a recorded run.
type NodeOutcome struct {
	NodeID       string
	Status       string // "complete" or "error"
	ErrorMessage string
	CostUSD      float64
}

// Run is a single ExecuteAll or ExecuteNodes invocation, with the
// per-node outcomes recorded for it.
type Run struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	TotalNodes       int
	TotalSuccessful  int
	TotalFailed      int
	TotalSkipped     int
	EstimatedCostUSD float64
	Nodes            []NodeOutcome
}

// Store is a SQLite-backed ledger of runs. A Store wraps a single
// open database connection; the caller owns its lifetime via Close.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens (creating if necessary) the history database at path,
// enabling WAL mode and a busy timeout so a concurrent CLI query
// doesn't collide with a server actively recording a run.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	runsTable := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			total_nodes INTEGER NOT NULL,
			total_successful INTEGER NOT NULL,
			total_failed INTEGER NOT NULL,
			total_skipped INTEGER NOT NULL,
			estimated_cost_usd REAL NOT NULL DEFAULT 0
		)
	`
	if _, err := s.db.ExecContext(ctx, runsTable); err != nil {
		return fmt.Errorf("history: creating runs table: %w", err)
	}

	nodesTable := `
		CREATE TABLE IF NOT EXISTS run_nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			node_id TEXT NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			cost_usd REAL NOT NULL DEFAULT 0
		)
	`
	if _, err := s.db.ExecContext(ctx, nodesTable); err != nil {
		return fmt.Errorf("history: creating run_nodes table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_run_nodes_run_id ON run_nodes(run_id)"); err != nil {
		return fmt.Errorf("history: creating idx_run_nodes_run_id: %w", err)
	}

	return nil
}

// RecordRun persists run and its node outcomes in a single
// transaction. Calling RecordRun twice for the same RunID replaces the
// earlier record.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, finished_at, total_nodes, total_successful, total_failed, total_skipped, estimated_cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			total_nodes = excluded.total_nodes,
			total_successful = excluded.total_successful,
			total_failed = excluded.total_failed,
			total_skipped = excluded.total_skipped,
			estimated_cost_usd = excluded.estimated_cost_usd
	`,
		run.RunID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.FinishedAt.Format(time.RFC3339Nano),
		run.TotalNodes,
		run.TotalSuccessful,
		run.TotalFailed,
		run.TotalSkipped,
		run.EstimatedCostUSD,
	)
	if err != nil {
		return fmt.Errorf("history: recording run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_nodes WHERE run_id = ?", run.RunID); err != nil {
		return fmt.Errorf("history: clearing prior node outcomes: %w", err)
	}

	for _, n := range run.Nodes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_nodes (run_id, node_id, status, error_message, cost_usd)
			VALUES (?, ?, ?, ?, ?)
		`, run.RunID, n.NodeID, n.Status, n.ErrorMessage, n.CostUSD)
		if err != nil {
			return fmt.Errorf("history: recording node outcome for %s: %w", n.NodeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: committing run: %w", err)
	}
	return nil
}

// GetRun returns the run recorded under runID along with its node
// outcomes, or ErrNotFound if no such run exists.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		run                   Run
		startedAt, finishedAt string
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, started_at, finished_at, total_nodes, total_successful, total_failed, total_skipped, estimated_cost_usd
		FROM runs WHERE run_id = ?
	`, runID)
	err := row.Scan(&run.RunID, &startedAt, &finishedAt, &run.TotalNodes, &run.TotalSuccessful, &run.TotalFailed, &run.TotalSkipped, &run.EstimatedCostUSD)
	if err == sql.ErrNoRows {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("history: loading run %s: %w", runID, err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("history: parsing started_at: %w", err)
	}
	run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt)
	if err != nil {
		return Run{}, fmt.Errorf("history: parsing finished_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, status, error_message, cost_usd
		FROM run_nodes WHERE run_id = ? ORDER BY id ASC
	`, runID)
	if err != nil {
		return Run{}, fmt.Errorf("history: loading node outcomes for %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var n NodeOutcome
		if err := rows.Scan(&n.NodeID, &n.Status, &n.ErrorMessage, &n.CostUSD); err != nil {
			return Run{}, fmt.Errorf("history: scanning node outcome: %w", err)
		}
		run.Nodes = append(run.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("history: iterating node outcomes: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit (0
// means no limit).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT run_id, started_at, finished_at, total_nodes, total_successful, total_failed, total_skipped, estimated_cost_usd
		FROM runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string
		if err := rows.Scan(&run.RunID, &startedAt, &finishedAt, &run.TotalNodes, &run.TotalSuccessful, &run.TotalFailed, &run.TotalSkipped, &run.EstimatedCostUSD); err != nil {
			return nil, fmt.Errorf("history: scanning run row: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating runs: %w", err)
	}
	return runs, nil
}

// MarshalNodes is a convenience for callers that want to log a run's
// node outcomes as a single JSON blob (e.g. a CLI's --json output).
func MarshalNodes(nodes []NodeOutcome) (string, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("history: marshaling node outcomes: %w", err)
	}
	return string(data), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path this Store was opened with.
func (s *Store) Path() string {
	return s.path
}
