package judge_test

import (
	"testing"

	"gradebox/internal/app/judge"
	"gradebox/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestOutputsMatch(t *testing.T) {
	assert.True(t, judge.OutputsMatch([]byte("42\n"), []byte("42")))
	assert.True(t, judge.OutputsMatch([]byte("  hello world\n\n"), []byte("hello world")))
	assert.True(t, judge.OutputsMatch([]byte(""), []byte("\n")))
	assert.False(t, judge.OutputsMatch([]byte("42"), []byte("43")))
	assert.False(t, judge.OutputsMatch([]byte("a\nb"), []byte("a\n\nb")))
	assert.False(t, judge.OutputsMatch([]byte("hello  world"), []byte("hello world")))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, model.StatusAccepted, judge.Resolve(3, 3, false, false))
	assert.Equal(t, model.StatusWrongAnswer, judge.Resolve(2, 3, false, false))
	assert.Equal(t, model.StatusWrongAnswer, judge.Resolve(0, 3, false, false))

	// Timeouts and faults beat the pass count.
	assert.Equal(t, model.StatusTimeLimit, judge.Resolve(2, 3, true, false))
	assert.Equal(t, model.StatusRuntimeError, judge.Resolve(2, 3, false, true))

	// A timeout beats a fault when both are somehow set.
	assert.Equal(t, model.StatusTimeLimit, judge.Resolve(0, 3, true, true))
}

func TestScoreFor(t *testing.T) {
	assert.Equal(t, 100, judge.ScoreFor(model.StatusAccepted, 3, 3, 100))

	// Partial credit is floored.
	assert.Equal(t, 33, judge.ScoreFor(model.StatusWrongAnswer, 1, 3, 100))
	assert.Equal(t, 66, judge.ScoreFor(model.StatusWrongAnswer, 2, 3, 100))

	// Partial credit applies to early-stopped runs too.
	assert.Equal(t, 50, judge.ScoreFor(model.StatusTimeLimit, 1, 2, 100))
	assert.Equal(t, 25, judge.ScoreFor(model.StatusRuntimeError, 1, 4, 100))

	assert.Equal(t, 0, judge.ScoreFor(model.StatusWrongAnswer, 0, 3, 100))
	assert.Equal(t, 0, judge.ScoreFor(model.StatusCompileError, 0, 0, 100))
	assert.Equal(t, 0, judge.ScoreFor(model.StatusInternalError, 0, 0, 100))
}
