package assets_test

import (
	"os"
	"path/filepath"
	"testing"

	"gradebox/internal/assets"
	"gradebox/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceAndTestCases(t *testing.T) {
	store := assets.NewStore(t.TempDir())

	count, err := store.Replace("p1", [][2][]byte{
		{[]byte("in one"), []byte("out one")},
		{[]byte("in two"), []byte("out two")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	cases, err := store.TestCases("p1")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, 1, cases[0].Index)
	assert.Equal(t, 2, cases[1].Index)

	input, err := os.ReadFile(cases[0].InputPath)
	require.NoError(t, err)
	assert.Equal(t, "in one", string(input))
	answer, err := os.ReadFile(cases[1].AnswerPath)
	require.NoError(t, err)
	assert.Equal(t, "out two", string(answer))
}

func TestReplaceRemovesStaleFiles(t *testing.T) {
	store := assets.NewStore(t.TempDir())

	_, err := store.Replace("p1", [][2][]byte{
		{[]byte("a"), []byte("b")},
		{[]byte("c"), []byte("d")},
		{[]byte("e"), []byte("f")},
	})
	require.NoError(t, err)

	_, err = store.Replace("p1", [][2][]byte{
		{[]byte("only"), []byte("pair")},
	})
	require.NoError(t, err)

	cases, err := store.TestCases("p1")
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestTestCasesNumericOrder(t *testing.T) {
	// Indexes past 9 must sort numerically, not lexically.
	pairs := make([][2][]byte, 12)
	for i := range pairs {
		pairs[i] = [2][]byte{[]byte("in"), []byte("out")}
	}
	store := assets.NewStore(t.TempDir())
	_, err := store.Replace("p1", pairs)
	require.NoError(t, err)

	cases, err := store.TestCases("p1")
	require.NoError(t, err)
	require.Len(t, cases, 12)
	for i, tc := range cases {
		assert.Equal(t, i+1, tc.Index)
	}
}

func TestTestCasesMissingProblem(t *testing.T) {
	store := assets.NewStore(t.TempDir())

	_, err := store.TestCases("nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTestCasesUnmatchedPair(t *testing.T) {
	base := t.TempDir()
	store := assets.NewStore(base)
	_, err := store.Replace("p1", [][2][]byte{{[]byte("a"), []byte("b")}})
	require.NoError(t, err)

	// Orphan an input by removing its output.
	require.NoError(t, os.Remove(filepath.Join(store.ProblemDir("p1"), "output1.txt")))

	_, err = store.TestCases("p1")
	assert.Error(t, err)
}

func TestTestCasesIgnoresForeignFiles(t *testing.T) {
	store := assets.NewStore(t.TempDir())
	_, err := store.Replace("p1", [][2][]byte{{[]byte("a"), []byte("b")}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.ProblemDir("p1"), "notes.md"), []byte("x"), 0o644))

	cases, err := store.TestCases("p1")
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestSaveSource(t *testing.T) {
	store := assets.NewStore(t.TempDir())

	path, err := store.SaveSource("sub-1", "code.c", []byte("int main(){}"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.SubmissionDir("sub-1"), "code.c"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int main(){}", string(body))
}
