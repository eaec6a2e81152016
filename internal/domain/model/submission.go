package model

import "time"

type SubmissionStatus string

const (
	StatusQueued        SubmissionStatus = "queued"
	StatusRunning       SubmissionStatus = "running"
	StatusAccepted      SubmissionStatus = "accepted"
	StatusWrongAnswer   SubmissionStatus = "wrong_answer"
	StatusRuntimeError  SubmissionStatus = "runtime_error"
	StatusTimeLimit     SubmissionStatus = "time_limit"
	StatusCompileError  SubmissionStatus = "compile_error"
	StatusInternalError SubmissionStatus = "internal_error"
)

// IsTerminal reports whether no further automatic transition happens from the
// status. Terminal rows only move again through an explicit rerun request.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusRuntimeError,
		StatusTimeLimit, StatusCompileError, StatusInternalError:
		return true
	}
	return false
}

type Submission struct {
	ID        string `json:"id"`
	ProblemID string `json:"problem_id"`
	UserID    string `json:"user_id"`
	// UserName is a denormalized snapshot of the submitter's display name at
	// submit time.
	UserName   string   `json:"user_name"`
	Language   Language `json:"language"`
	SourcePath string   `json:"-"`

	Status        SubmissionStatus `json:"status"`
	Score         int              `json:"score"`
	MaxScore      int              `json:"max_score"`
	PassedTests   int              `json:"passed_tests"`
	TotalTests    int              `json:"total_tests"`
	CompileOutput string           `json:"compile_output,omitempty"`
	RunOutput     string           `json:"run_output,omitempty"`
	ExecTimeMs    int64            `json:"exec_time_ms"`
	MemoryUsedKb  int64            `json:"memory_used_kb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
