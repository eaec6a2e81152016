package judge

import (
	"bytes"

	"gradebox/internal/domain/model"
)

// OutputsMatch compares produced output against the expected answer: leading
// and trailing whitespace is ignored, everything else must match exactly.
// There is no partial-line or floating-point tolerance.
func OutputsMatch(actual, expected []byte) bool {
	return bytes.Equal(bytes.TrimSpace(actual), bytes.TrimSpace(expected))
}

// Resolve picks the verdict for a submission whose compile stage succeeded.
// Timeouts and executor faults take priority over the pass count because
// judging stops at the first one and the remaining tests never ran.
func Resolve(passed, total int, timedOut, faulted bool) model.SubmissionStatus {
	switch {
	case timedOut:
		return model.StatusTimeLimit
	case faulted:
		return model.StatusRuntimeError
	case passed == total:
		return model.StatusAccepted
	default:
		return model.StatusWrongAnswer
	}
}

// ScoreFor computes the numeric score for a terminal status. Acceptance is
// worth the full maximum; partial passes earn floor(passed/total*max); all
// other outcomes score zero.
func ScoreFor(status model.SubmissionStatus, passed, total, maxScore int) int {
	switch {
	case status == model.StatusAccepted:
		return maxScore
	case passed > 0 && total > 0:
		return passed * maxScore / total
	default:
		return 0
	}
}
