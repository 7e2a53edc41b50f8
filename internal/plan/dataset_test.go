package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextStoreAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.csv")

	s, err := OpenTextStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(100001, "A red square on a white background."))
	require.NoError(t, s.Append(100000, `He said "hi", twice.`))
	require.NoError(t, s.Close())

	// reopening appends
	s, err = OpenTextStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(100002, "An orange circle."))
	require.NoError(t, s.Close())

	rows, err := ReadTexts(path)
	require.NoError(t, err)
	assert.Equal(t, []Text{
		{100001, "A red square on a white background."},
		{100000, `He said "hi", twice.`},
		{100002, "An orange circle."},
	}, rows)

	rows, err = ReadTexts(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadTextsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.csv")
	require.NoError(t, os.WriteFile(path, []byte("abc,caption\n"), 0o644))
	_, err := ReadTexts(path)
	assert.Error(t, err)
}

func TestFailedIDs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "audio"), 0o755))

	p := &Plan{Content: map[int]Record{100000: {}, 100001: {}, 100002: {}}}
	require.NoError(t, os.WriteFile(AudioPath(dir, 100001), []byte("x"), 0o644))

	failed, err := FailedIDs(p, dir)
	require.NoError(t, err)
	assert.Equal(t, []int{100000, 100002}, failed)

	out := filepath.Join(dir, "failed_ids.json")
	require.NoError(t, WriteJSON(out, failed))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, "[100000, 100002]", string(data))
}

func TestSplit(t *testing.T) {
	ids := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		ids = append(ids, StartID+i)
	}

	train, test, err := Split(ids, 0, 0.2)
	require.NoError(t, err)
	assert.Len(t, train, 8)
	assert.Len(t, test, 2)
	assert.ElementsMatch(t, ids, append(append([]int(nil), train...), test...))

	// input order does not change the split
	reversed := make([]int, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	train2, test2, err := Split(reversed, 0, 0.2)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test3, err := Split(ids[:3], 0, 0.2)
	require.NoError(t, err)
	assert.Len(t, test3, 1)

	_, _, err = Split(ids, 0, 1.5)
	assert.Error(t, err)
}

func TestArtefactPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "audio", "100000.mp3"), AudioPath("data", 100000))
	assert.Equal(t, filepath.Join("data", "video", "100000.mp4"), VideoPath("data", 100000))
}
