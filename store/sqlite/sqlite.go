/*
Package sqlite persists processing runs and their results.

PURPOSE:
  Every batch evaluation is stored as a run: its source file, counters,
  the emitted variables in order, and the per-employee audit lines. The
  API serves history and re-downloads from here instead of keeping
  workbooks around.

KEY TABLES:
  runs:           one row per processing run, with the stats counters
  results:        the emitted variables, ordered by position
  record_audit:   the per-employee review lines

APPEND-ONLY:
  Runs are never updated or deleted; a re-processed file simply becomes
  a new run. That keeps the history auditable.

WAL MODE:
  SQLite is opened with WAL so readers (history listing, downloads) do
  not block a writer saving a new run.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
)

// Run is a stored processing run.
type Run struct {
	ID         string         `json:"id"`
	SourceName string         `json:"archivo_origen"`
	Stats      pipeline.Stats `json:"estadisticas"`
	CreatedAt  time.Time      `json:"creado"`
}

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database in tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		total INTEGER NOT NULL,
		processed INTEGER NOT NULL,
		parse_errors INTEGER NOT NULL,
		validation_errors INTEGER NOT NULL,
		variables_emitted INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		legajo INTEGER NOT NULL,
		code INTEGER NOT NULL,
		value TEXT NOT NULL,
		is_text INTEGER NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run_legajo
		ON results(run_id, legajo);

	CREATE TABLE IF NOT EXISTS record_audit (
		run_id TEXT NOT NULL,
		legajo INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		weekly_hours REAL NOT NULL DEFAULT 0,
		is_guard INTEGER NOT NULL DEFAULT 0,
		variables INTEGER NOT NULL DEFAULT 0,
		unparsed INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, legajo),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores one batch outcome and returns the created run.
func (s *Store) SaveRun(ctx context.Context, sourceName string, res *pipeline.Result) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:         uuid.NewString(),
		SourceName: sourceName,
		Stats:      res.Stats,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_name, total, processed, parse_errors,
			validation_errors, variables_emitted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceName,
		run.Stats.Total, run.Stats.Processed, run.Stats.ParseErrors,
		run.Stats.ValidationErrors, run.Stats.VariablesEmitted,
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for i, r := range res.Variables {
		var isText int
		value := r.Value.Number.String()
		if r.Value.IsText {
			isText = 1
			value = r.Value.Text
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results (run_id, position, legajo, code, value, is_text)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, r.Legajo, r.Code, value, isText)
		if err != nil {
			return nil, fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	for _, a := range res.Audit {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO record_audit (run_id, legajo, name, weekly_hours,
				is_guard, variables, unparsed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, a.Legajo, a.Name, a.WeeklyHours,
			boolInt(a.Guard), a.Variables, boolInt(a.Unparsed), a.Error)
		if err != nil {
			return nil, fmt.Errorf("insert audit for legajo %d: %w", a.Legajo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_name, total, processed, parse_errors,
			validation_errors, variables_emitted, created_at
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_name, total, processed, parse_errors,
			validation_errors, variables_emitted, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Results returns a run's variables in their original order.
func (s *Store) Results(ctx context.Context, runID string) ([]payroll.VariableResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.runExists(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT legajo, code, value, is_text
		FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []payroll.VariableResult
	for rows.Next() {
		var (
			r      payroll.VariableResult
			value  string
			isText int
		)
		if err := rows.Scan(&r.Legajo, &r.Code, &value, &isText); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if isText == 1 {
			r.Value = payroll.TextValue(value)
		} else {
			d, err := decimal.NewFromString(value)
			if err != nil {
				return nil, fmt.Errorf("stored value %q: %w", value, err)
			}
			r.Value = payroll.NumberValue(d)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Audit returns a run's per-employee review lines keyed by legajo.
func (s *Store) Audit(ctx context.Context, runID string) (map[int]pipeline.RecordAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.runExists(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT legajo, name, weekly_hours, is_guard, variables, unparsed, error
		FROM record_audit WHERE run_id = ? ORDER BY legajo`, runID)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	audit := make(map[int]pipeline.RecordAudit)
	for rows.Next() {
		var (
			a                 pipeline.RecordAudit
			isGuard, unparsed int
		)
		if err := rows.Scan(&a.Legajo, &a.Name, &a.WeeklyHours,
			&isGuard, &a.Variables, &unparsed, &a.Error); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		a.Guard = isGuard == 1
		a.Unparsed = unparsed == 1
		audit[a.Legajo] = a
	}
	return audit, rows.Err()
}

func (s *Store) runExists(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if err == sql.ErrNoRows {
		return payroll.ErrRunNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		createdAt string
	)
	err := row.Scan(&run.ID, &run.SourceName,
		&run.Stats.Total, &run.Stats.Processed, &run.Stats.ParseErrors,
		&run.Stats.ValidationErrors, &run.Stats.VariablesEmitted, &createdAt)
	if err == sql.ErrNoRows {
		return nil, payroll.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("stored timestamp %q: %w", createdAt, err)
	}
	return &run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
