package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gradebox/internal/assets"
	"gradebox/internal/common"
	"gradebox/internal/domain/model"
)

const errorBackoff = time.Second

// Store is the worker's view of the submission store. Claim and Finalize are
// the two operations that must be atomic for multi-worker safety; everything
// else is plain reads.
type Store interface {
	ClaimOldestQueued(ctx context.Context) (*model.Submission, error)
	Problem(ctx context.Context, id string) (*model.Problem, error)
	Finalize(ctx context.Context, sub *model.Submission) error
}

// AssetSource resolves a problem's ordered test pairs.
type AssetSource interface {
	TestCases(problemID string) ([]assets.TestCase, error)
}

// Worker is one judging loop. Any number of Workers may run against the same
// Store: the claim step guarantees a submission is judged by exactly one of
// them.
type Worker struct {
	store        Store
	assets       AssetSource
	compiler     Compiler
	executor     Executor
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewWorker(store Store, assetSource AssetSource, compiler Compiler, executor Executor, pollInterval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		store:        store,
		assets:       assetSource,
		compiler:     compiler,
		executor:     executor,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run polls for queued submissions until the context is cancelled. Faults
// inside a judging pass never escape: they finalize the submission as
// internal_error and the loop keeps going after a short backoff.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("judge worker started", "poll_interval", w.pollInterval)
	for {
		claimed, err := w.runOnce(ctx)
		if ctx.Err() != nil {
			w.logger.Info("judge worker stopping")
			return
		}
		switch {
		case err != nil:
			w.logger.Error("judge worker pass failed", "error", err)
			sleepCtx(ctx, errorBackoff)
		case !claimed:
			sleepCtx(ctx, w.pollInterval)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) (bool, error) {
	sub, err := w.store.ClaimOldestQueued(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("claim queued submission: %w", err)
	}
	w.judge(ctx, sub)
	return true, nil
}

// judge drives one claimed submission to a terminal status. It always
// finalizes: a panic anywhere in the pipeline resolves to internal_error so
// the row can never stay running forever.
func (w *Worker) judge(ctx context.Context, sub *model.Submission) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("judging pass panicked", "submission_id", sub.ID, "panic", r)
			sub.Status = model.StatusInternalError
			sub.Score = 0
			sub.RunOutput = fmt.Sprintf("internal judge fault: %v", r)
			w.finalize(ctx, sub)
		}
	}()

	w.logger.Info("judging submission", "submission_id", sub.ID,
		"problem_id", sub.ProblemID, "language", sub.Language)

	w.evaluate(ctx, sub)
	w.finalize(ctx, sub)
}

func (w *Worker) evaluate(ctx context.Context, sub *model.Submission) {
	problem, err := w.store.Problem(ctx, sub.ProblemID)
	if err != nil {
		w.internalError(sub, "resolve problem", err)
		return
	}

	cases, err := w.assets.TestCases(problem.ID)
	if err != nil {
		w.internalError(sub, "resolve test assets", err)
		return
	}
	if len(cases) != problem.TestcaseCount {
		w.internalError(sub, "verify test assets",
			fmt.Errorf("problem declares %d testcases but %d pairs exist on disk", problem.TestcaseCount, len(cases)))
		return
	}

	compiled := w.compiler.Compile(ctx, sub.SourcePath, sub.Language)
	sub.CompileOutput = compiled.Diagnostics
	if !compiled.OK {
		w.logger.Info("compilation failed", "submission_id", sub.ID)
		sub.Status = model.StatusCompileError
		sub.Score = 0
		return
	}

	// tests-total is fixed before the first run and never changes for this
	// pass, even when judging stops early.
	sub.TotalTests = len(cases)
	sub.PassedTests = 0

	var timedOut, faulted bool
	for _, tc := range cases {
		input, err := os.ReadFile(tc.InputPath)
		if err != nil {
			w.internalError(sub, "read test input", err)
			return
		}

		res := w.executor.Run(compiled.ExecutablePath, input, problem.TimeLimitMs)
		sub.ExecTimeMs += res.ExecTimeMs
		if res.PeakMemoryKb > sub.MemoryUsedKb {
			sub.MemoryUsedKb = res.PeakMemoryKb
		}

		if res.TimedOut {
			w.logger.Info("test timed out", "submission_id", sub.ID, "test", tc.Index)
			timedOut = true
			sub.RunOutput = "time limit exceeded"
			break
		}
		if res.Faulted {
			w.logger.Warn("test run faulted", "submission_id", sub.ID, "test", tc.Index, "error", res.ErrorText)
			faulted = true
			sub.RunOutput = res.ErrorText
			break
		}

		expected, err := os.ReadFile(tc.AnswerPath)
		if err != nil {
			w.internalError(sub, "read expected output", err)
			return
		}
		if OutputsMatch(res.Stdout, expected) {
			sub.PassedTests++
		}
	}

	sub.Status = Resolve(sub.PassedTests, sub.TotalTests, timedOut, faulted)
	sub.Score = ScoreFor(sub.Status, sub.PassedTests, sub.TotalTests, sub.MaxScore)
	switch sub.Status {
	case model.StatusAccepted:
		sub.RunOutput = "OK"
	case model.StatusWrongAnswer:
		sub.RunOutput = fmt.Sprintf("Passed %d/%d tests", sub.PassedTests, sub.TotalTests)
	}
}

func (w *Worker) internalError(sub *model.Submission, stage string, err error) {
	w.logger.Error("judging stage failed", "submission_id", sub.ID, "stage", stage, "error", err)
	sub.Status = model.StatusInternalError
	sub.Score = 0
	sub.RunOutput = err.Error()
}

func (w *Worker) finalize(ctx context.Context, sub *model.Submission) {
	if err := w.store.Finalize(ctx, sub); err != nil {
		w.logger.Error("persist terminal status failed", "submission_id", sub.ID,
			"status", sub.Status, "error", err)
		return
	}
	w.logger.Info("submission judged", "submission_id", sub.ID, "status", sub.Status,
		"score", sub.Score, "passed", sub.PassedTests, "total", sub.TotalTests)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
