// Package judge implements the grading pipeline: compiling a submission,
// running it against the problem's test cases under a wall-clock limit, and
// turning the per-test results into a terminal verdict and score.
package judge

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gradebox/internal/domain/model"
)

type CompileResult struct {
	OK             bool
	Diagnostics    string
	ExecutablePath string
}

// Compiler turns a single source file into an executable. Implementations
// never fail with an error: toolchain exits, timeouts and missing binaries
// all fold into an unsuccessful CompileResult.
type Compiler interface {
	Compile(ctx context.Context, sourcePath string, language model.Language) CompileResult
}

type toolchainCompiler struct {
	ccPath  string
	cxxPath string
	timeout time.Duration
}

// NewToolchainCompiler builds a Compiler that shells out to gcc/g++ with a
// fixed optimization level and language standard. Compilation is bounded by
// the given wall-clock ceiling.
func NewToolchainCompiler(ccPath, cxxPath string, timeout time.Duration) Compiler {
	return &toolchainCompiler{ccPath: ccPath, cxxPath: cxxPath, timeout: timeout}
}

func (c *toolchainCompiler) Compile(ctx context.Context, sourcePath string, language model.Language) CompileResult {
	exePath := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".exe"

	var args []string
	switch language {
	case model.LanguageC:
		args = []string{c.ccPath, "-O2", "-std=c17", sourcePath, "-o", exePath}
	case model.LanguageCpp:
		args = []string{c.cxxPath, "-O2", "-std=c++17", sourcePath, "-o", exePath}
	default:
		return CompileResult{
			OK:          false,
			Diagnostics: fmt.Sprintf("Unsupported language: %s. Only C and C++ are supported.", language),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return CompileResult{
				OK:          false,
				Diagnostics: fmt.Sprintf("compilation exceeded the %s ceiling and was aborted", c.timeout),
			}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return CompileResult{OK: false, Diagnostics: string(output)}
		}
		// Toolchain missing, I/O failure and the like.
		return CompileResult{OK: false, Diagnostics: err.Error()}
	}

	return CompileResult{OK: true, Diagnostics: string(output), ExecutablePath: exePath}
}
