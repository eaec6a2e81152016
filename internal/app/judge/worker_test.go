package judge_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"gradebox/internal/app/judge"
	"gradebox/internal/assets"
	"gradebox/internal/common"
	"gradebox/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore hands out a single queued submission and captures the finalized
// row. Finalizing cancels the worker context so Run returns after one pass.
type fakeStore struct {
	sub       *model.Submission
	problem   *model.Problem
	finalized *model.Submission
	cancel    context.CancelFunc
}

func (s *fakeStore) ClaimOldestQueued(ctx context.Context) (*model.Submission, error) {
	if s.sub == nil {
		return nil, common.ErrNotFound
	}
	sub := s.sub
	s.sub = nil
	sub.Status = model.StatusRunning
	return sub, nil
}

func (s *fakeStore) Problem(ctx context.Context, id string) (*model.Problem, error) {
	if s.problem == nil || s.problem.ID != id {
		return nil, common.ErrNotFound
	}
	return s.problem, nil
}

func (s *fakeStore) Finalize(ctx context.Context, sub *model.Submission) error {
	s.finalized = sub
	s.cancel()
	return nil
}

type stubCompiler struct {
	result judge.CompileResult
	calls  int
}

func (c *stubCompiler) Compile(ctx context.Context, sourcePath string, language model.Language) judge.CompileResult {
	c.calls++
	return c.result
}

// stubExecutor replays one canned result per call, repeating the last one.
type stubExecutor struct {
	results []judge.RunResult
	calls   int
}

func (e *stubExecutor) Run(executablePath string, input []byte, timeLimitMs int) judge.RunResult {
	i := e.calls
	e.calls++
	if i >= len(e.results) {
		i = len(e.results) - 1
	}
	return e.results[i]
}

func newTestAssets(t *testing.T, problemID string, pairs [][2][]byte) *assets.Store {
	t.Helper()
	store := assets.NewStore(t.TempDir())
	_, err := store.Replace(problemID, pairs)
	require.NoError(t, err)
	return store
}

// runPass drives the worker through exactly one judging pass and returns the
// finalized submission.
func runPass(t *testing.T, store *fakeStore, assetSource judge.AssetSource, compiler judge.Compiler, executor judge.Executor) *model.Submission {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store.cancel = cancel

	w := judge.NewWorker(store, assetSource, compiler, executor, time.Millisecond, slog.New(slog.DiscardHandler))
	w.Run(ctx)

	require.NotNil(t, store.finalized, "worker never finalized the submission")
	return store.finalized
}

func queuedSubmission(problemID string) *model.Submission {
	return &model.Submission{
		ID:         "sub-1",
		ProblemID:  problemID,
		UserID:     "user-1",
		Language:   model.LanguageC,
		SourcePath: "/nonexistent/code.c",
		Status:     model.StatusQueued,
		MaxScore:   100,
	}
}

func standardProblem(id string, testcases int) *model.Problem {
	return &model.Problem{
		ID:            id,
		TimeLimitMs:   2000,
		MaxScore:      100,
		TestcaseCount: testcases,
	}
}

func TestWorkerAcceptsFullPass(t *testing.T) {
	pairs := [][2][]byte{
		{[]byte("1\n"), []byte("2\n")},
		{[]byte("2\n"), []byte("3\n")},
		{[]byte("3\n"), []byte("4\n")},
	}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 3)}
	compiler := &stubCompiler{result: judge.CompileResult{OK: true, ExecutablePath: "/tmp/code.exe"}}
	executor := &stubExecutor{results: []judge.RunResult{
		{Stdout: []byte("2\n"), ExecTimeMs: 5, PeakMemoryKb: 1024},
		{Stdout: []byte("3\n"), ExecTimeMs: 7, PeakMemoryKb: 2048},
		{Stdout: []byte("4\n"), ExecTimeMs: 3, PeakMemoryKb: 512},
	}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), compiler, executor)

	assert.Equal(t, model.StatusAccepted, sub.Status)
	assert.Equal(t, 100, sub.Score)
	assert.Equal(t, 3, sub.PassedTests)
	assert.Equal(t, 3, sub.TotalTests)
	assert.Equal(t, "OK", sub.RunOutput)
	assert.Equal(t, int64(15), sub.ExecTimeMs)
	assert.Equal(t, int64(2048), sub.MemoryUsedKb)
	assert.Equal(t, 3, executor.calls)
}

func TestWorkerPartialPassScoresFloored(t *testing.T) {
	pairs := [][2][]byte{
		{[]byte("1\n"), []byte("2\n")},
		{[]byte("2\n"), []byte("3\n")},
		{[]byte("3\n"), []byte("4\n")},
	}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 3)}
	compiler := &stubCompiler{result: judge.CompileResult{OK: true, ExecutablePath: "/tmp/code.exe"}}
	executor := &stubExecutor{results: []judge.RunResult{
		{Stdout: []byte("2\n")},
		{Stdout: []byte("wrong\n")},
		{Stdout: []byte("wrong\n")},
	}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), compiler, executor)

	assert.Equal(t, model.StatusWrongAnswer, sub.Status)
	assert.Equal(t, 33, sub.Score)
	assert.Equal(t, 1, sub.PassedTests)
	assert.Equal(t, "Passed 1/3 tests", sub.RunOutput)
}

func TestWorkerCompileError(t *testing.T) {
	pairs := [][2][]byte{{[]byte("1\n"), []byte("2\n")}}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 1)}
	compiler := &stubCompiler{result: judge.CompileResult{
		OK:          false,
		Diagnostics: "Unsupported language: python. Only C and C++ are supported.",
	}}
	executor := &stubExecutor{results: []judge.RunResult{{}}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), compiler, executor)

	assert.Equal(t, model.StatusCompileError, sub.Status)
	assert.Equal(t, 0, sub.Score)
	assert.Contains(t, sub.CompileOutput, "Unsupported language")
	// No test ever ran.
	assert.Equal(t, 0, sub.TotalTests)
	assert.Equal(t, 0, executor.calls)
}

func TestWorkerStopsAtTimeout(t *testing.T) {
	pairs := [][2][]byte{
		{[]byte("1\n"), []byte("2\n")},
		{[]byte("2\n"), []byte("3\n")},
		{[]byte("3\n"), []byte("4\n")},
	}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 3)}
	compiler := &stubCompiler{result: judge.CompileResult{OK: true, ExecutablePath: "/tmp/code.exe"}}
	executor := &stubExecutor{results: []judge.RunResult{
		{Stdout: []byte("2\n"), ExecTimeMs: 5},
		{TimedOut: true, ExecTimeMs: 2000},
	}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), compiler, executor)

	assert.Equal(t, model.StatusTimeLimit, sub.Status)
	assert.Equal(t, "time limit exceeded", sub.RunOutput)
	assert.Equal(t, 1, sub.PassedTests)
	assert.Equal(t, 3, sub.TotalTests)
	assert.Equal(t, 33, sub.Score)
	// Judging stopped at the timed-out test.
	assert.Equal(t, 2, executor.calls)
	assert.Equal(t, int64(2005), sub.ExecTimeMs)
}

func TestWorkerStopsAtRuntimeFault(t *testing.T) {
	pairs := [][2][]byte{
		{[]byte("1\n"), []byte("2\n")},
		{[]byte("2\n"), []byte("3\n")},
	}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 2)}
	compiler := &stubCompiler{result: judge.CompileResult{OK: true, ExecutablePath: "/tmp/code.exe"}}
	executor := &stubExecutor{results: []judge.RunResult{
		{Faulted: true, ErrorText: "failed to launch executable: permission denied"},
	}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), compiler, executor)

	assert.Equal(t, model.StatusRuntimeError, sub.Status)
	assert.Equal(t, 0, sub.Score)
	assert.Contains(t, sub.RunOutput, "permission denied")
	assert.Equal(t, 1, executor.calls)
}

func TestWorkerFailsClosedOnAssetMismatch(t *testing.T) {
	// Problem declares 3 testcases but only 2 pairs exist on disk.
	pairs := [][2][]byte{
		{[]byte("1\n"), []byte("2\n")},
		{[]byte("2\n"), []byte("3\n")},
	}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 3)}
	compiler := &stubCompiler{result: judge.CompileResult{OK: true, ExecutablePath: "/tmp/code.exe"}}
	executor := &stubExecutor{results: []judge.RunResult{{}}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), compiler, executor)

	assert.Equal(t, model.StatusInternalError, sub.Status)
	assert.Equal(t, 0, sub.Score)
	assert.Contains(t, sub.RunOutput, "declares 3 testcases but 2 pairs")
	assert.Equal(t, 0, compiler.calls)
	assert.Equal(t, 0, executor.calls)
}

func TestWorkerMissingAssets(t *testing.T) {
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 1)}
	compiler := &stubCompiler{result: judge.CompileResult{OK: true}}
	executor := &stubExecutor{results: []judge.RunResult{{}}}

	sub := runPass(t, store, assets.NewStore(t.TempDir()), compiler, executor)

	assert.Equal(t, model.StatusInternalError, sub.Status)
	assert.Equal(t, 0, compiler.calls)
}

type panickingCompiler struct{}

func (panickingCompiler) Compile(ctx context.Context, sourcePath string, language model.Language) judge.CompileResult {
	panic("toolchain state corrupted")
}

func TestWorkerPanicFinalizesInternalError(t *testing.T) {
	pairs := [][2][]byte{{[]byte("1\n"), []byte("2\n")}}
	store := &fakeStore{sub: queuedSubmission("p1"), problem: standardProblem("p1", 1)}
	executor := &stubExecutor{results: []judge.RunResult{{}}}

	sub := runPass(t, store, newTestAssets(t, "p1", pairs), panickingCompiler{}, executor)

	assert.Equal(t, model.StatusInternalError, sub.Status)
	assert.Equal(t, 0, sub.Score)
	assert.Contains(t, sub.RunOutput, "internal judge fault")
	assert.Contains(t, sub.RunOutput, "toolchain state corrupted")
}
