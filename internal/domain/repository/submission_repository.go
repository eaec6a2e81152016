package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gradebox/internal/common"
	"gradebox/internal/domain/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error)
	// ResetForRerun moves a terminal submission back to queued with its
	// judging fields cleared. A submission that is already queued is left
	// untouched; a running one is not interrupted.
	ResetForRerun(ctx context.Context, id string) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionColumns = `id, problem_id, user_id, user_name, language, source_path,
	status, score, max_score, passed_tests, total_tests, compile_output, run_output,
	exec_time_ms, memory_used_kb, created_at, updated_at`

func scanSubmission(scan func(dest ...any) error) (*model.Submission, error) {
	s := &model.Submission{}
	err := scan(
		&s.ID, &s.ProblemID, &s.UserID, &s.UserName, &s.Language, &s.SourcePath,
		&s.Status, &s.Score, &s.MaxScore, &s.PassedTests, &s.TotalTests,
		&s.CompileOutput, &s.RunOutput, &s.ExecTimeMs, &s.MemoryUsedKb,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *pgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, problem_id, user_id, user_name, language, source_path, status, max_score)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, sub.ID, sub.ProblemID, sub.UserID, sub.UserName,
		sub.Language, sub.SourcePath, sub.Status, sub.MaxScore)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgSubmissionRepository.FindByID: %w", err)
	}
	return sub, err
}

func (r *pgSubmissionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUser: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) ResetForRerun(ctx context.Context, id string) error {
	// Guarding on a terminal status makes the reset a no-op for queued rows
	// and keeps running ones untouched.
	query := `UPDATE submissions
	          SET status = $2, score = 0, passed_tests = 0, total_tests = 0,
	              compile_output = '', run_output = '', exec_time_ms = 0,
	              memory_used_kb = 0, updated_at = now()
	          WHERE id = $1 AND status IN ($3, $4, $5, $6, $7, $8)`
	result, err := r.db.ExecContext(ctx, query, id, model.StatusQueued,
		model.StatusAccepted, model.StatusWrongAnswer, model.StatusRuntimeError,
		model.StatusTimeLimit, model.StatusCompileError, model.StatusInternalError)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.ResetForRerun: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		// Either the row does not exist, or it is queued/running already.
		sub, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if sub.Status == model.StatusQueued {
			return nil // idempotent: rerun of a queued submission changes nothing
		}
		return fmt.Errorf("submission %s is %s and cannot be requeued: %w", id, sub.Status, common.ErrConflict)
	}
	return nil
}
