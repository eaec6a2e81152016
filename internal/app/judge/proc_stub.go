//go:build !(linux || darwin)

package judge

import (
	"os"
	"syscall"
)

func childProcAttr() *syscall.SysProcAttr { return nil }

func killProcessGroup(pid int) {
	if proc, err := os.FindProcess(pid); err == nil {
		proc.Kill()
	}
}

// Memory measurement is best-effort; without rusage we report zero rather
// than failing the run.
func peakMemoryKb(*os.ProcessState) int64 { return 0 }
