// Package assets maps a problem to its on-disk test data. A problem's
// directory holds matched files named inputN.txt and outputN.txt; input i is
// the stdin for test i and output i the expected stdout.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"gradebox/internal/common"
)

type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// TestCase is one matched (input, expected output) pair.
type TestCase struct {
	Index      int
	InputPath  string
	AnswerPath string
}

func (s *Store) ProblemDir(problemID string) string {
	return filepath.Join(s.baseDir, "problems", problemID)
}

var (
	inputPattern  = regexp.MustCompile(`^input(\d+)\.txt$`)
	outputPattern = regexp.MustCompile(`^output(\d+)\.txt$`)
)

// TestCases returns the problem's test pairs ordered by numeric index. A
// missing directory, an input without its output (or vice versa), or an empty
// set is reported as an error, never as a partial list.
func (s *Store) TestCases(problemID string) ([]TestCase, error) {
	dir := s.ProblemDir(problemID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no test assets for problem %s: %w", problemID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("read test assets for problem %s: %w", problemID, err)
	}

	inputs := map[int]string{}
	outputs := map[int]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if m := inputPattern.FindStringSubmatch(name); m != nil {
			idx, _ := strconv.Atoi(m[1])
			inputs[idx] = filepath.Join(dir, name)
		} else if m := outputPattern.FindStringSubmatch(name); m != nil {
			idx, _ := strconv.Atoi(m[1])
			outputs[idx] = filepath.Join(dir, name)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no test inputs for problem %s: %w", problemID, common.ErrNotFound)
	}
	if len(inputs) != len(outputs) {
		return nil, fmt.Errorf("problem %s has %d inputs but %d outputs", problemID, len(inputs), len(outputs))
	}

	indexes := make([]int, 0, len(inputs))
	for idx := range inputs {
		if _, ok := outputs[idx]; !ok {
			return nil, fmt.Errorf("problem %s: input %d has no matching output", problemID, idx)
		}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	cases := make([]TestCase, 0, len(indexes))
	for _, idx := range indexes {
		cases = append(cases, TestCase{
			Index:      idx,
			InputPath:  inputs[idx],
			AnswerPath: outputs[idx],
		})
	}
	return cases, nil
}

// Replace swaps out a problem's test data for the given pairs and returns the
// new pair count. The previous directory contents are removed first so stale
// files can never shift the count.
func (s *Store) Replace(problemID string, pairs [][2][]byte) (int, error) {
	dir := s.ProblemDir(problemID)
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("replace test assets for problem %s: %w", problemID, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("replace test assets for problem %s: %w", problemID, err)
	}
	for i, pair := range pairs {
		n := i + 1
		inPath := filepath.Join(dir, fmt.Sprintf("input%d.txt", n))
		outPath := filepath.Join(dir, fmt.Sprintf("output%d.txt", n))
		if err := os.WriteFile(inPath, pair[0], 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", inPath, err)
		}
		if err := os.WriteFile(outPath, pair[1], 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", outPath, err)
		}
	}
	return len(pairs), nil
}

// SubmissionDir returns the directory the given submission's source and
// compiled artifact live in. Artifacts are namespaced per submission so
// concurrent judging passes never share files.
func (s *Store) SubmissionDir(submissionID string) string {
	return filepath.Join(s.baseDir, "submissions", submissionID)
}

// SaveSource writes a submission's source file and returns its path.
func (s *Store) SaveSource(submissionID, filename string, source []byte) (string, error) {
	dir := s.SubmissionDir(submissionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create submission dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return "", fmt.Errorf("write submission source: %w", err)
	}
	return path, nil
}
