package model

import "time"

type Problem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	TimeLimitMs   int `json:"time_limit_ms"`
	MemoryLimitMb int `json:"memory_limit_mb"`
	MaxScore      int `json:"max_score"`
	// TestcaseCount mirrors the number of matched input/output pairs on disk.
	// Replacing the test assets must reset it; the judge fails closed when the
	// on-disk pairs disagree with it.
	TestcaseCount int `json:"testcase_count"`

	CreatedByID string    `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
