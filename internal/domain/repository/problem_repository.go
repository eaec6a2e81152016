package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gradebox/internal/common"
	"gradebox/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	Update(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindBySlug(ctx context.Context, slug string) (*model.Problem, error)
	List(ctx context.Context, limit, offset int) ([]model.Problem, error)
	// SetTestcaseCount records the number of matched pairs after an asset
	// upload replaced the problem's test data.
	SetTestcaseCount(ctx context.Context, id string, count int) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `id, title, slug, description, time_limit_ms, memory_limit_mb,
	max_score, testcase_count, COALESCE(created_by::text, ''), created_at, updated_at`

func scanProblem(scan func(dest ...any) error) (*model.Problem, error) {
	p := &model.Problem{}
	err := scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.TimeLimitMs, &p.MemoryLimitMb,
		&p.MaxScore, &p.TestcaseCount, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, description, time_limit_ms, memory_limit_mb, max_score, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::uuid)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description,
		p.TimeLimitMs, p.MemoryLimitMb, p.MaxScore, p.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("problem with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Update(ctx context.Context, p *model.Problem) error {
	query := `UPDATE problems
	          SET title = $2, description = $3, time_limit_ms = $4, memory_limit_mb = $5,
	              max_score = $6, updated_at = now()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, p.ID, p.Title, p.Description,
		p.TimeLimitMs, p.MemoryLimitMb, p.MaxScore)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Update: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	p, err := scanProblem(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, err
}

func (r *pgProblemRepository) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE slug = $1`
	p, err := scanProblem(r.db.QueryRowContext(ctx, query, slug).Scan)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgProblemRepository.FindBySlug: %w", err)
	}
	return p, err
}

func (r *pgProblemRepository) List(ctx context.Context, limit, offset int) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.List: %w", err)
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		p, err := scanProblem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.List: %w", err)
		}
		problems = append(problems, *p)
	}
	return problems, rows.Err()
}

func (r *pgProblemRepository) SetTestcaseCount(ctx context.Context, id string, count int) error {
	query := `UPDATE problems SET testcase_count = $2, updated_at = now() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.SetTestcaseCount: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return nil
}
