package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

// StatusNoMatch marks stored rows for documents that resolved to no record.
const StatusNoMatch = "NO_MATCH"

// fixed width keeps lexical order equal to time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type RunRepository interface {
	Start(ctx context.Context, source string, documents int) (*entity.Run, error)
	Finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, summary *entity.VerificationSummary) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	List(ctx context.Context, limit int) ([]entity.Run, error)
	Results(ctx context.Context, id uuid.UUID) ([]entity.RunResult, error)
}

type runRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log, now: time.Now}
}

func (r *runRepo) Start(ctx context.Context, source string, documents int) (*entity.Run, error) {
	run := &entity.Run{
		ID:                uuid.New(),
		Source:            source,
		Status:            string(constants.RunStatusRunning),
		StartedAt:         r.now().UTC(),
		DocumentsSupplied: documents,
	}
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`INSERT INTO verification_run (id, source, status, started_at, documents_supplied) VALUES (?, ?, ?, ?, ?)`),
		run.ID.String(), run.Source, run.Status, run.StartedAt.Format(timeLayout), run.DocumentsSupplied,
	)
	if err != nil {
		r.log.Error("verification_run start failed", "source", source, "err", err)
		return nil, fmt.Errorf("%w: start run: %w", common.ErrDatabase, err)
	}
	r.log.Info("verification_run started", "run_id", run.ID, "source", source, "documents", documents)
	return run, nil
}

// Finish stores the summary counts and one row per result and unresolved document, in summary order.
func (r *runRepo) Finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, s *entity.VerificationSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, r.db.rebind(`UPDATE verification_run
		SET status = ?, finished_at = ?, documents_supplied = ?, documents_processed = ?, unresolved_count = ?,
		    extraction_failed = ?, complete = ?, overall_success_rate = ?
		WHERE id = ?`),
		string(status), r.now().UTC().Format(timeLayout), s.DocumentsSupplied, s.DocumentsProcessed, s.UnresolvedCount,
		s.ExtractionFailed, s.Complete, s.OverallSuccessRate, id.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: finish run: %w", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}

	insert := r.db.rebind(`INSERT INTO verification_result
		(run_id, seq, identifier, document, status, matched_fields, total_fields, success_rate, missing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	seq := 0
	for i := range s.Results {
		row := &s.Results[i]
		missing, _ := json.Marshal(nonNil(row.Missing))
		var rate sql.NullFloat64
		if v, ok := row.Rate(); ok {
			rate = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insert, id.String(), seq, row.Identifier, row.Document, string(row.Status),
			row.MatchedFields, row.TotalFields, rate, string(missing)); err != nil {
			return fmt.Errorf("%w: insert result: %w", common.ErrDatabase, err)
		}
		seq++
	}
	for _, u := range s.Unresolved {
		if _, err := tx.ExecContext(ctx, insert, id.String(), seq, u.Identifier, u.Document, StatusNoMatch,
			0, 0, sql.NullFloat64{}, "[]"); err != nil {
			return fmt.Errorf("%w: insert unresolved: %w", common.ErrDatabase, err)
		}
		seq++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	r.log.Info("verification_run finished", "run_id", id, "status", status, "rows", seq)
	return nil
}

func (r *runRepo) Fail(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE verification_run SET status = ?, finished_at = ?, error_message = ? WHERE id = ?`),
		string(constants.RunStatusFailed), r.now().UTC().Format(timeLayout), message, id.String(),
	)
	if err != nil {
		r.log.Error("verification_run fail update failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: fail run: %w", common.ErrDatabase, err)
	}
	r.log.Warn("verification_run finished (FAILED)", "run_id", id, "error", message)
	return nil
}

const runColumns = `id, source, status, started_at, finished_at, documents_supplied, documents_processed,
	unresolved_count, extraction_failed, complete, overall_success_rate, error_message`

func (r *runRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT `+runColumns+` FROM verification_run WHERE id = ?`), id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	return run, err
}

// List returns the newest runs first.
func (r *runRepo) List(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT `+runColumns+` FROM verification_run ORDER BY started_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func (r *runRepo) Results(ctx context.Context, id uuid.UUID) ([]entity.RunResult, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`SELECT seq, identifier, document, status, matched_fields, total_fields, success_rate, missing
		FROM verification_result WHERE run_id = ? ORDER BY seq`), id.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list results: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.RunResult
	for rows.Next() {
		rr := entity.RunResult{RunID: id}
		var rate sql.NullFloat64
		var missing string
		if err := rows.Scan(&rr.Seq, &rr.Identifier, &rr.Document, &rr.Status, &rr.MatchedFields, &rr.TotalFields, &rate, &missing); err != nil {
			return nil, err
		}
		if rate.Valid {
			v := rate.Float64
			rr.SuccessRate = &v
		}
		if err := json.Unmarshal([]byte(missing), &rr.Missing); err != nil {
			return nil, fmt.Errorf("decode missing fields: %w", err)
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*entity.Run, error) {
	var (
		run               entity.Run
		id, started       string
		finished, errText sql.NullString
	)
	if err := s.Scan(&id, &run.Source, &run.Status, &started, &finished, &run.DocumentsSupplied, &run.DocumentsProcessed,
		&run.UnresolvedCount, &run.ExtractionFailed, &run.Complete, &run.OverallSuccessRate, &errText); err != nil {
		return nil, err
	}
	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("run id %q: %w", id, err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("run started_at %q: %w", started, err)
	}
	if finished.Valid {
		t, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return nil, fmt.Errorf("run finished_at %q: %w", finished.String, err)
		}
		run.FinishedAt = &t
	}
	if errText.Valid {
		run.ErrorMessage = &errText.String
	}
	return &run, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
