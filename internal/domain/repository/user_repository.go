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

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string, changesLeft int) error
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, hashed_password, display_name, name_changes_left, role,
	total_score, problems_solved, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.HashedPassword, &user.DisplayName,
		&user.NameChangesLeft, &user.Role, &user.TotalScore, &user.ProblemsSolved,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, hashed_password, display_name, name_changes_left, role)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.HashedPassword,
		user.DisplayName, user.NameChangesLeft, user.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) UpdateDisplayName(ctx context.Context, id, displayName string, changesLeft int) error {
	query := `UPDATE users SET display_name = $2, name_changes_left = $3, updated_at = now()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, displayName, changesLeft)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateDisplayName: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT id, display_name, total_score, problems_solved
	          FROM users
	          WHERE total_score > 0
	          ORDER BY total_score DESC, problems_solved DESC, username ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	rank := 0
	for rows.Next() {
		rank++
		entry := model.LeaderboardEntry{Rank: rank}
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.TotalScore, &entry.ProblemsSolved); err != nil {
			return nil, fmt.Errorf("pgUserRepository.Leaderboard: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
