package judge_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"gradebox/internal/app/judge"
	"gradebox/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileUnsupportedLanguage(t *testing.T) {
	c := judge.NewToolchainCompiler("gcc", "g++", 30*time.Second)

	res := c.Compile(context.Background(), "/tmp/code.py", model.Language("python"))
	assert.False(t, res.OK)
	assert.Equal(t, "Unsupported language: python. Only C and C++ are supported.", res.Diagnostics)
	assert.Empty(t, res.ExecutablePath)
}

func TestCompileMissingToolchain(t *testing.T) {
	c := judge.NewToolchainCompiler("definitely-not-a-compiler", "also-not-one", 30*time.Second)

	res := c.Compile(context.Background(), "/tmp/code.c", model.LanguageC)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Diagnostics)
}

func TestCompileC(t *testing.T) {
	requireCompiler(t, "gcc")

	dir := t.TempDir()
	src := filepath.Join(dir, "code.c")
	require.NoError(t, os.WriteFile(src, []byte("#include <stdio.h>\nint main(void){puts(\"hi\");return 0;}\n"), 0o644))

	c := judge.NewToolchainCompiler("gcc", "g++", 30*time.Second)
	res := c.Compile(context.Background(), src, model.LanguageC)
	require.True(t, res.OK, "diagnostics: %s", res.Diagnostics)
	assert.Equal(t, filepath.Join(dir, "code.exe"), res.ExecutablePath)

	_, err := os.Stat(res.ExecutablePath)
	assert.NoError(t, err)
}

func TestCompileCppError(t *testing.T) {
	requireCompiler(t, "g++")

	dir := t.TempDir()
	src := filepath.Join(dir, "code.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main() { return undeclared; }\n"), 0o644))

	c := judge.NewToolchainCompiler("gcc", "g++", 30*time.Second)
	res := c.Compile(context.Background(), src, model.LanguageCpp)
	assert.False(t, res.OK)
	assert.Contains(t, res.Diagnostics, "undeclared")
}

func requireCompiler(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}
