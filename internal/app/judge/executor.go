package judge

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync/atomic"
	"time"
)

// Output beyond this is dropped so a print-looping program cannot exhaust the
// judge's memory.
const maxCapturedOutputBytes = 1 << 20

// minTimeLimitMs is the floor applied to every per-test wall-clock limit.
const minTimeLimitMs = 1000

type RunResult struct {
	Stdout       []byte
	ExitCode     int
	ExecTimeMs   int64
	PeakMemoryKb int64
	TimedOut     bool
	Faulted      bool
	ErrorText    string
}

// Executor runs one compiled executable against one test case. It holds no
// state across invocations.
type Executor interface {
	Run(executablePath string, input []byte, timeLimitMs int) RunResult
}

type processExecutor struct{}

// NewProcessExecutor builds an Executor that launches the executable as a
// fresh child process in its own process group, feeds the input on stdin,
// captures stdout and stderr merged, and force-kills the whole group when the
// wall-clock limit expires. Peak resident memory is taken from rusage on a
// best-effort basis.
func NewProcessExecutor() Executor {
	return processExecutor{}
}

func (processExecutor) Run(executablePath string, input []byte, timeLimitMs int) RunResult {
	if timeLimitMs < minTimeLimitMs {
		timeLimitMs = minTimeLimitMs
	}

	var output bytes.Buffer
	sink := &cappedWriter{buf: &output, remaining: maxCapturedOutputBytes}

	cmd := exec.Command(executablePath)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.SysProcAttr = childProcAttr()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return RunResult{
			Faulted:   true,
			ErrorText: fmt.Sprintf("failed to launch executable: %v", err),
		}
	}

	var timedOut atomic.Bool
	timer := time.AfterFunc(time.Duration(timeLimitMs)*time.Millisecond, func() {
		timedOut.Store(true)
		killProcessGroup(cmd.Process.Pid)
	})

	waitErr := cmd.Wait()
	timer.Stop()
	elapsed := time.Since(start).Milliseconds()
	memoryKb := peakMemoryKb(cmd.ProcessState)

	if timedOut.Load() {
		// Partial output from a killed run is meaningless; drop it.
		return RunResult{
			TimedOut:     true,
			ExecTimeMs:   elapsed,
			PeakMemoryKb: memoryKb,
		}
	}

	result := RunResult{
		Stdout:       output.Bytes(),
		ExecTimeMs:   elapsed,
		PeakMemoryKb: memoryKb,
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			// Wait itself failed; this is a communication fault, not a
			// program outcome.
			result.Faulted = true
			result.ErrorText = waitErr.Error()
			return result
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result
}

// cappedWriter keeps the first N bytes and silently discards the rest.
type cappedWriter struct {
	buf       *bytes.Buffer
	remaining int
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if w.remaining > 0 {
		keep := p
		if len(keep) > w.remaining {
			keep = keep[:w.remaining]
		}
		w.buf.Write(keep)
		w.remaining -= len(keep)
	}
	return n, nil
}
