package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gradebox/internal/common"
	"gradebox/internal/domain/model"
)

// PgJudgeStore is the judge workers' view of the database. It owns the two
// operations that have to be atomic for multi-worker safety: claiming the
// oldest queued submission and writing a terminal result together with the
// submitter's recomputed aggregates.
type PgJudgeStore struct {
	db *sql.DB
}

func NewPgJudgeStore(db *sql.DB) *PgJudgeStore {
	return &PgJudgeStore{db: db}
}

// ClaimOldestQueued atomically flips the oldest queued submission to running
// and returns it. FOR UPDATE SKIP LOCKED keeps concurrent workers from ever
// claiming the same row. Returns common.ErrNotFound when the queue is empty.
func (s *PgJudgeStore) ClaimOldestQueued(ctx context.Context) (*model.Submission, error) {
	query := `UPDATE submissions
	          SET status = $1, updated_at = now()
	          WHERE id = (
	              SELECT id FROM submissions
	              WHERE status = $2
	              ORDER BY created_at ASC, id ASC
	              LIMIT 1
	              FOR UPDATE SKIP LOCKED
	          )
	          RETURNING ` + submissionColumns
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, model.StatusRunning, model.StatusQueued).Scan)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("PgJudgeStore.ClaimOldestQueued: %w", err)
	}
	return sub, nil
}

// Problem resolves the judging target for a claimed submission.
func (s *PgJudgeStore) Problem(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	p, err := scanProblem(s.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("PgJudgeStore.Problem: %w", err)
	}
	return p, err
}

// Finalize persists a terminal judging result in a single transaction. When
// the submission was accepted the submitter's cumulative stats are recomputed
// from the submission history inside the same transaction, so readers never
// observe an accepted submission without its stats update.
func (s *PgJudgeStore) Finalize(ctx context.Context, sub *model.Submission) error {
	if !sub.Status.IsTerminal() {
		return fmt.Errorf("PgJudgeStore.Finalize: status %q is not terminal: %w", sub.Status, common.ErrBadRequest)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("PgJudgeStore.Finalize: begin: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE submissions
	          SET status = $2, score = $3, passed_tests = $4, total_tests = $5,
	              compile_output = $6, run_output = $7, exec_time_ms = $8,
	              memory_used_kb = $9, updated_at = now()
	          WHERE id = $1 AND status = $10`
	result, err := tx.ExecContext(ctx, query, sub.ID, sub.Status, sub.Score,
		sub.PassedTests, sub.TotalTests, sub.CompileOutput, sub.RunOutput,
		sub.ExecTimeMs, sub.MemoryUsedKb, model.StatusRunning)
	if err != nil {
		return fmt.Errorf("PgJudgeStore.Finalize: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("submission %s is no longer running: %w", sub.ID, common.ErrConflict)
	}

	if sub.Status == model.StatusAccepted {
		stats := `UPDATE users SET
		              total_score = COALESCE((
		                  SELECT SUM(score) FROM submissions
		                  WHERE user_id = $1 AND status = $2
		              ), 0),
		              problems_solved = COALESCE((
		                  SELECT COUNT(DISTINCT problem_id) FROM submissions
		                  WHERE user_id = $1 AND status = $2
		              ), 0),
		              updated_at = now()
		          WHERE id = $1`
		if _, err := tx.ExecContext(ctx, stats, sub.UserID, model.StatusAccepted); err != nil {
			return fmt.Errorf("PgJudgeStore.Finalize: recompute stats: %w", err)
		}
	}

	return tx.Commit()
}
