//go:build linux || darwin

package judge

import (
	"os"
	"syscall"
)

func childProcAttr() *syscall.SysProcAttr {
	// Own process group so a timeout kill also reaps anything the program
	// forked.
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(pid int) {
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		// Group may be gone already; fall back to the direct pid.
		syscall.Kill(pid, syscall.SIGKILL)
	}
}

func peakMemoryKb(state *os.ProcessState) int64 {
	if state == nil {
		return 0
	}
	rusage, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || rusage == nil {
		return 0
	}
	return maxRssKb(rusage.Maxrss)
}
