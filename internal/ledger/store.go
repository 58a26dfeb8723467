// Package ledger persists solver runs in a local SQLite database. Each run
// is keyed by the chart digest, the mode, and the selector that chose its
// starts, so a repeated question about an unchanged chart is answered from
// the ledger instead of re-solving.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// ErrNotFound is returned by Lookup when no solved run matches.
var ErrNotFound = errors.New("ledger: run not found")

// Run modes.
const (
	ModePath = "path"
	ModeSync = "sync"
)

// Run outcomes.
const (
	OutcomeSolved = "solved"
	OutcomeFailed = "failed"
)

const dirPermissions = 0o700

const (
	sqlInsertRun = `INSERT INTO runs
		(id, digest, mode, selector, answer, outcome, failure, starts, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqlSelectColumns = `SELECT id, digest, mode, selector, answer, outcome, failure,
		starts, started_at, duration_ms FROM runs`

	sqlRecentRuns = sqlSelectColumns + ` ORDER BY started_at DESC, rowid DESC LIMIT ?`

	sqlLookupRun = sqlSelectColumns + ` WHERE digest = ? AND mode = ? AND selector = ?
		AND outcome = 'solved' ORDER BY started_at DESC, rowid DESC LIMIT 1`
)

// Run is one recorded solver invocation.
type Run struct {
	ID        string        `json:"id"`
	Digest    string        `json:"digest"`
	Mode      string        `json:"mode"`
	Selector  string        `json:"selector"`
	Answer    uint64        `json:"answer"`
	Outcome   string        `json:"outcome"`
	Failure   string        `json:"failure,omitempty"`
	Starts    int           `json:"starts"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Solved reports whether the run produced an answer.
func (r *Run) Solved() bool {
	return r.Outcome == OutcomeSolved
}

// Store is the run ledger. It is safe for concurrent use; writes are
// serialized through a single connection.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Open opens (creating if needed) the ledger database at path and applies
// pending migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("ledger: creating directory for %s: %w", path, err)
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"+
			"&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening database %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("ledger opened", slog.String("db_path", path))

	return &Store{db: db, logger: logger, nowFunc: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("ledger: closing database: %w", err)
	}

	return nil
}

// Record inserts run and returns its id. A missing id is assigned a new
// UUID and a zero StartedAt is set to the current time.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.StartedAt.IsZero() {
		run.StartedAt = s.nowFunc()
	}

	_, err := s.db.ExecContext(ctx, sqlInsertRun,
		run.ID, run.Digest, run.Mode, run.Selector,
		strconv.FormatUint(run.Answer, 10), run.Outcome, run.Failure, run.Starts,
		run.StartedAt.UnixNano(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("ledger: recording run %s: %w", run.ID, err)
	}

	s.logger.Debug("run recorded",
		slog.String("id", run.ID),
		slog.String("mode", run.Mode),
		slog.String("outcome", run.Outcome),
	)

	return run.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, sqlRecentRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating runs: %w", err)
	}

	return runs, nil
}

// Lookup returns the latest solved run for the given chart digest, mode,
// and selector, or ErrNotFound.
func (s *Store) Lookup(ctx context.Context, digest, mode, selector string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, sqlLookupRun, digest, mode, selector)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run        Run
		answer     string
		startedAt  int64
		durationMS int64
	)

	err := sc.Scan(&run.ID, &run.Digest, &run.Mode, &run.Selector, &answer,
		&run.Outcome, &run.Failure, &run.Starts, &startedAt, &durationMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("ledger: scanning run: %w", err)
	}

	if answer != "" {
		run.Answer, err = strconv.ParseUint(answer, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ledger: run %s: parsing answer %q: %w", run.ID, answer, err)
		}
	}

	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond

	return &run, nil
}
