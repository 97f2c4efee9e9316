package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/octa/internal/domain/model"
	"github.com/ericfisherdev/octa/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ResultStore = (*RunRepo)(nil)

const (
	entryKindMatch    = "match"
	entryKindMismatch = "mismatch"
)

// RunRepo is the SQLite implementation of the ResultStore port interface.
// Passwords of stored entries are encrypted with AES-256-GCM when a key is
// configured and dropped otherwise. Unresolved mismatch rows store no
// password; the sentinel is restored on read from the resolved flag.
type RunRepo struct {
	db     *DB
	sealer *sealer
}

// NewRunRepo creates a new RunRepo backed by the given DB. key must be nil or
// KeySize bytes long.
func NewRunRepo(db *DB, key []byte) (*RunRepo, error) {
	s, err := newSealer(key)
	if err != nil {
		return nil, err
	}
	return &RunRepo{db: db, sealer: s}, nil
}

// BeginRun records the start of a run.
func (r *RunRepo) BeginRun(ctx context.Context, run model.Run) error {
	const query = `
		INSERT INTO runs (id, started_at, base_files, output_dir)
		VALUES (?, ?, ?, ?)
	`

	bases := run.BaseFiles
	if bases == nil {
		bases = []string{}
	}
	basesJSON, err := json.Marshal(bases)
	if err != nil {
		return fmt.Errorf("marshal base files: %w", err)
	}

	_, err = r.db.conn.ExecContext(ctx, query,
		run.ID, formatTime(run.StartedAt), string(basesJSON), run.OutputDir,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	return nil
}

// SavePair stores one base × source result and its entries in a single transaction.
func (r *RunRepo) SavePair(ctx context.Context, runID string, pair model.PairResult) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO pair_results (run_id, base, source, matched, mismatched, unmatched, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, pair.Base, pair.Source,
		pair.Counts.Matched, pair.Counts.Mismatched, pair.Counts.Unmatched, pair.Err,
	)
	if err != nil {
		return fmt.Errorf("insert pair %s vs %s: %w", pair.Base, pair.Source, err)
	}

	pairID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("pair id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (pair_id, kind, username, hash, password, resolved, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range pair.Matches {
		pw, err := r.sealer.Seal(m.Password)
		if err != nil {
			return fmt.Errorf("encrypt password for %s: %w", m.Username, err)
		}
		if _, err := stmt.ExecContext(ctx, pairID, entryKindMatch, m.Username, m.Hash, pw, 0, ""); err != nil {
			return fmt.Errorf("insert match entry %s: %w", m.Username, err)
		}
	}

	for _, m := range pair.Mismatches {
		var (
			pw       string
			resolved int
		)
		if m.Resolved {
			resolved = 1
			if pw, err = r.sealer.Seal(m.Password); err != nil {
				return fmt.Errorf("encrypt password for %s: %w", m.Username, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, pairID, entryKindMismatch, m.Username, m.Hash, pw, resolved, m.Comment); err != nil {
			return fmt.Errorf("insert mismatch entry %s: %w", m.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pair %s vs %s: %w", pair.Base, pair.Source, err)
	}

	return nil
}

// FinishRun stores the final counters of a run and stamps its finish time.
func (r *RunRepo) FinishRun(ctx context.Context, runID string, stats model.RunStats) error {
	const query = `
		UPDATE runs SET
			finished_at = ?,
			processed = ?,
			failed = ?,
			matched = ?,
			mismatched = ?,
			unmatched = ?
		WHERE id = ?
	`

	res, err := r.db.conn.ExecContext(ctx, query,
		formatTime(time.Now()), stats.Processed, stats.Failed,
		stats.Matched, stats.Mismatched, stats.Unmatched, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, driven.ErrRunNotFound)
	}

	return nil
}

const runColumns = `id, started_at, finished_at, base_files, output_dir,
	processed, failed, matched, mismatched, unmatched`

// GetRun retrieves a single run. Returns driven.ErrRunNotFound if it does not exist.
func (r *RunRepo) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.conn.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, driven.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	return run, nil
}

// ListRuns returns all runs, most recent first.
func (r *RunRepo) ListRuns(ctx context.Context) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ListPairs returns the pair results of a run in the order they were saved,
// with their entries and decrypted passwords.
func (r *RunRepo) ListPairs(ctx context.Context, runID string) ([]model.PairResult, error) {
	const pairQuery = `
		SELECT id, base, source, matched, mismatched, unmatched, error
		FROM pair_results
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := r.db.conn.QueryContext(ctx, pairQuery, runID)
	if err != nil {
		return nil, fmt.Errorf("list pairs for run %s: %w", runID, err)
	}

	var pairs []model.PairResult
	for rows.Next() {
		var p model.PairResult
		if err := rows.Scan(
			&p.ID, &p.Base, &p.Source,
			&p.Counts.Matched, &p.Counts.Mismatched, &p.Counts.Unmatched, &p.Err,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	_ = rows.Close()

	for i := range pairs {
		if err := r.loadEntries(ctx, &pairs[i]); err != nil {
			return nil, err
		}
	}

	return pairs, nil
}

func (r *RunRepo) loadEntries(ctx context.Context, pair *model.PairResult) error {
	const query = `
		SELECT kind, username, hash, password, resolved, comment
		FROM entries
		WHERE pair_id = ?
		ORDER BY id
	`

	rows, err := r.db.conn.QueryContext(ctx, query, pair.ID)
	if err != nil {
		return fmt.Errorf("list entries for pair %d: %w", pair.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, username, hash, stored, comment string
			resolved                              bool
		)
		if err := rows.Scan(&kind, &username, &hash, &stored, &resolved, &comment); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}

		pw, err := r.sealer.Open(stored)
		if err != nil {
			return fmt.Errorf("decrypt password for %s: %w", username, err)
		}

		switch kind {
		case entryKindMatch:
			pair.Matches = append(pair.Matches, model.MatchEntry{
				Username: username, Hash: hash, Password: pw, Source: pair.Source,
			})
		case entryKindMismatch:
			if !resolved {
				pw = model.MismatchSentinel
			}
			pair.Mismatches = append(pair.Mismatches, model.MismatchEntry{
				Username: username, Hash: hash, Password: pw, Comment: comment,
				Source: pair.Source, Resolved: resolved,
			})
		default:
			return fmt.Errorf("unknown entry kind %q", kind)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.Run, error) {
	var (
		run        model.Run
		startedAt  string
		finishedAt sql.NullString
		basesJSON  string
	)

	if err := s.Scan(
		&run.ID, &startedAt, &finishedAt, &basesJSON, &run.OutputDir,
		&run.Stats.Processed, &run.Stats.Failed,
		&run.Stats.Matched, &run.Stats.Mismatched, &run.Stats.Unmatched,
	); err != nil {
		return nil, err
	}
	run.Stats.RunID = run.ID

	var err error
	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	if finishedAt.Valid && finishedAt.String != "" {
		run.FinishedAt, err = parseTime(finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}

	if err := json.Unmarshal([]byte(basesJSON), &run.BaseFiles); err != nil {
		return nil, fmt.Errorf("unmarshal base files: %w", err)
	}

	return &run, nil
}
