package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate bootstraps the schema. Everything is additive (IF NOT EXISTS) so it
// is safe to run at every startup against an existing database.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			display_name TEXT NOT NULL,
			name_changes_left INT NOT NULL DEFAULT 2,
			role TEXT NOT NULL DEFAULT 'user',
			total_score INT NOT NULL DEFAULT 0,
			problems_solved INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS problems (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			time_limit_ms INT NOT NULL DEFAULT 2000,
			memory_limit_mb INT NOT NULL DEFAULT 256,
			max_score INT NOT NULL DEFAULT 100,
			testcase_count INT NOT NULL DEFAULT 0,
			created_by UUID REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY,
			problem_id UUID NOT NULL REFERENCES problems(id),
			user_id UUID NOT NULL REFERENCES users(id),
			user_name TEXT NOT NULL,
			language TEXT NOT NULL,
			source_path TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			score INT NOT NULL DEFAULT 0,
			max_score INT NOT NULL DEFAULT 100,
			passed_tests INT NOT NULL DEFAULT 0,
			total_tests INT NOT NULL DEFAULT 0,
			compile_output TEXT NOT NULL DEFAULT '',
			run_output TEXT NOT NULL DEFAULT '',
			exec_time_ms BIGINT NOT NULL DEFAULT 0,
			memory_used_kb BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// The claim query scans for the oldest queued row; keep that cheap.
		`CREATE INDEX IF NOT EXISTS idx_submissions_status_created_at
			ON submissions (status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_user_problem
			ON submissions (user_id, problem_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database.Migrate: %w", err)
		}
	}
	return nil
}
