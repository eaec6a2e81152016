package judge_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gradebox/internal/app/judge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script to stand in for a compiled
// program.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script executables are not runnable on windows")
	}
	path := filepath.Join(t.TempDir(), "prog")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecutorEchoesInput(t *testing.T) {
	exe := writeScript(t, "cat\n")
	ex := judge.NewProcessExecutor()

	res := ex.Run(exe, []byte("1 2 3\n"), 2000)
	assert.False(t, res.TimedOut)
	assert.False(t, res.Faulted)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "1 2 3\n", string(res.Stdout))
	assert.GreaterOrEqual(t, res.ExecTimeMs, int64(0))
}

func TestExecutorMergesStderr(t *testing.T) {
	exe := writeScript(t, "echo out\necho err 1>&2\n")
	ex := judge.NewProcessExecutor()

	res := ex.Run(exe, nil, 2000)
	assert.False(t, res.Faulted)
	assert.Contains(t, string(res.Stdout), "out")
	assert.Contains(t, string(res.Stdout), "err")
}

func TestExecutorTimeout(t *testing.T) {
	exe := writeScript(t, "echo early\nsleep 30\n")
	ex := judge.NewProcessExecutor()

	res := ex.Run(exe, nil, 1000)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Faulted)
	// Output from a timed-out run is discarded.
	assert.Empty(t, res.Stdout)
	assert.GreaterOrEqual(t, res.ExecTimeMs, int64(1000))
	assert.Less(t, res.ExecTimeMs, int64(10000))
}

func TestExecutorNonZeroExit(t *testing.T) {
	exe := writeScript(t, "echo partial\nexit 3\n")
	ex := judge.NewProcessExecutor()

	// A crashing program is a judged outcome, not an executor fault; its
	// output is still there for comparison.
	res := ex.Run(exe, nil, 2000)
	assert.False(t, res.Faulted)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", string(res.Stdout))
}

func TestExecutorMissingExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-script executables are not runnable on windows")
	}
	ex := judge.NewProcessExecutor()

	res := ex.Run(filepath.Join(t.TempDir(), "nope"), nil, 1000)
	assert.True(t, res.Faulted)
	assert.NotEmpty(t, res.ErrorText)
}
