// Package store keeps a history of evaluation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	// registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"go.viam.com/motioneval/evaluate"
	"go.viam.com/motioneval/motion"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	reference_dir TEXT NOT NULL,
	candidate_dir TEXT NOT NULL,
	options       TEXT NOT NULL,
	pairs         INTEGER NOT NULL,
	passed        INTEGER NOT NULL,
	errored       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	file_name  TEXT NOT NULL,
	success    INTEGER NOT NULL,
	time_taken REAL,
	num_frames INTEGER NOT NULL,
	mean_mpjpe REAL,
	mean_mpjre REAL,
	joints     TEXT,
	error      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, file_name)
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Store persists reports.
type Store struct {
	db   *sql.DB
	path string
}

// Run is a stored batch run.
type Run struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	ReferenceDir string
	CandidateDir string
	Options      motion.Options
	Pairs        int
	Passed       int
	Errored      int
}

// Result is a stored pair outcome.
type Result struct {
	FileName  string
	Success   bool
	TimeTaken *float64
	NumFrames int
	// MeanMPJPE and MeanMPJRE are nil when the pair errored or its window was empty.
	MeanMPJPE *float64
	MeanMPJRE *float64
	Joints    []motion.JointError
	Error     string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open history database %s", path)
	}
	// a single connection keeps pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, multierr.Combine(errors.Wrapf(err, "apply pragma %q", pragma), db.Close())
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, multierr.Combine(errors.Wrap(err, "cannot create history schema"), db.Close())
	}
	return &Store{db: db, path: path}, nil
}

// Path is the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport stores a report and its rows in one transaction.
func (s *Store) SaveReport(ctx context.Context, report *evaluate.Report, referenceDir, candidateDir string) (err error) {
	options, err := json.Marshal(report.Options)
	if err != nil {
		return errors.Wrap(err, "cannot encode options")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "cannot begin transaction")
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, reference_dir, candidate_dir, options, pairs, passed, errored)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID.String(),
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
		referenceDir,
		candidateDir,
		string(options),
		len(report.Rows),
		len(report.Rows)-report.Failed(),
		report.Errored(),
	); err != nil {
		return errors.Wrapf(err, "cannot insert run %s", report.RunID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, file_name, success, time_taken, num_frames, mean_mpjpe, mean_mpjre, joints, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "cannot prepare result insert")
	}
	defer func() {
		err = multierr.Combine(err, stmt.Close())
	}()

	for _, row := range report.Rows {
		var (
			mpjpe, mpjre sql.NullFloat64
			joints       sql.NullString
			errMsg       string
			timeTaken    sql.NullFloat64
		)
		if row.TimeTaken != nil {
			timeTaken = sql.NullFloat64{Float64: *row.TimeTaken, Valid: true}
		}
		if row.Result != nil && !row.Result.Report.Empty() {
			mpjpe = sql.NullFloat64{Float64: row.Result.Report.MeanMPJPE(), Valid: true}
			mpjre = sql.NullFloat64{Float64: row.Result.Report.MeanMPJRE(), Valid: true}
			encoded, err := json.Marshal(row.Result.Report.Joints)
			if err != nil {
				return errors.Wrapf(err, "cannot encode joints of %s", row.FileName)
			}
			joints = sql.NullString{String: string(encoded), Valid: true}
		}
		if row.Err != nil {
			errMsg = row.Err.Error()
		}
		if _, err = stmt.ExecContext(ctx,
			report.RunID.String(), row.FileName, row.Success, timeTaken, row.NumFrames, mpjpe, mpjre, joints, errMsg,
		); err != nil {
			return errors.Wrapf(err, "cannot insert result %s", row.FileName)
		}
	}
	return errors.Wrap(tx.Commit(), "cannot commit run")
}

// ListRuns returns the most recent runs first. A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) (runs []Run, err error) {
	query := `SELECT id, created_at, reference_dir, candidate_dir, options, pairs, passed, errored
		FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list runs")
	}
	defer func() {
		err = multierr.Combine(err, rows.Close())
	}()

	for rows.Next() {
		var (
			run              Run
			id, created, opt string
		)
		if err := rows.Scan(&id, &created, &run.ReferenceDir, &run.CandidateDir, &opt,
			&run.Pairs, &run.Passed, &run.Errored); err != nil {
			return nil, errors.Wrap(err, "cannot scan run")
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "bad run id %q", id)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, errors.Wrapf(err, "bad timestamp for run %s", id)
		}
		if err := json.Unmarshal([]byte(opt), &run.Options); err != nil {
			return nil, errors.Wrapf(err, "bad options for run %s", id)
		}
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "cannot list runs")
}

// Results returns the stored rows of a run ordered by file name.
func (s *Store) Results(ctx context.Context, runID uuid.UUID) (results []Result, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_name, success, time_taken, num_frames, mean_mpjpe, mean_mpjre, joints, error
		 FROM results WHERE run_id = ? ORDER BY file_name`, runID.String())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read results of run %s", runID)
	}
	defer func() {
		err = multierr.Combine(err, rows.Close())
	}()

	for rows.Next() {
		var (
			res                     Result
			timeTaken, mpjpe, mpjre sql.NullFloat64
			joints                  sql.NullString
		)
		if err := rows.Scan(&res.FileName, &res.Success, &timeTaken, &res.NumFrames,
			&mpjpe, &mpjre, &joints, &res.Error); err != nil {
			return nil, errors.Wrap(err, "cannot scan result")
		}
		res.TimeTaken = nullable(timeTaken)
		res.MeanMPJPE = nullable(mpjpe)
		res.MeanMPJRE = nullable(mpjre)
		if joints.Valid {
			if err := json.Unmarshal([]byte(joints.String), &res.Joints); err != nil {
				return nil, errors.Wrapf(err, "bad joints for %s", res.FileName)
			}
		}
		results = append(results, res)
	}
	return results, errors.Wrapf(rows.Err(), "cannot read results of run %s", runID)
}

// DeleteRun removes a run and its results.
func (s *Store) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID.String())
	if err != nil {
		return errors.Wrapf(err, "cannot delete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Errorf("no run %s", runID)
	}
	return nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
