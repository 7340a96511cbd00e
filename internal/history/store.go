// Package history persists completed workflow runs to SQLite so past
// requests, candidates and reports can be inspected from the CLI and the
// web UI.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeforge/internal/workflow"
)

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// RunSummary is a single row of the run listing.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Request    string    `json:"request"`
	Status     string    `json:"status"`
	Iterations int       `json:"iterations"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Run is a fully loaded historical run.
type Run struct {
	RunSummary
	Requirements string                     `json:"requirements"`
	Code         string                     `json:"code"`
	TestReport   string                     `json:"test_report"`
	Records      []workflow.IterationRecord `json:"records"`
}

// NewStore creates or opens the history store at the given path.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
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
		request TEXT NOT NULL,
		requirements TEXT NOT NULL,
		code TEXT NOT NULL,
		test_report TEXT NOT NULL,
		status TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS iterations (
		run_id TEXT NOT NULL REFERENCES runs(id),
		iteration INTEGER NOT NULL,
		code TEXT NOT NULL,
		report TEXT NOT NULL,
		passed INTEGER NOT NULL,
		PRIMARY KEY (run_id, iteration)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun records a finished workflow run and its iterations.
func (s *Store) SaveRun(state *workflow.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, request, requirements, code, test_report, status, iterations, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		state.RunID, state.UserRequest, state.Requirements, state.Code,
		state.TestReport, string(state.Status), state.Iteration,
		state.StartedAt, state.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, rec := range state.Records {
		_, err = tx.Exec(`
			INSERT INTO iterations (run_id, iteration, code, report, passed)
			VALUES (?, ?, ?, ?, ?)`,
			state.RunID, rec.Iteration, rec.Code, rec.Report, rec.Passed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert iteration %d: %w", rec.Iteration, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, request, status, iterations, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Request, &r.Status, &r.Iterations, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads one run with its full iteration records.
func (s *Store) GetRun(runID string) (*Run, error) {
	var r Run
	err := s.db.QueryRow(`
		SELECT id, request, requirements, code, test_report, status, iterations, started_at, finished_at
		FROM runs WHERE id = ?`, runID).Scan(
		&r.RunID, &r.Request, &r.Requirements, &r.Code, &r.TestReport,
		&r.Status, &r.Iterations, &r.StartedAt, &r.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT iteration, code, report, passed
		FROM iterations WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iterations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec workflow.IterationRecord
		if err := rows.Scan(&rec.Iteration, &rec.Code, &rec.Report, &rec.Passed); err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}
		r.Records = append(r.Records, rec)
	}
	return &r, rows.Err()
}
