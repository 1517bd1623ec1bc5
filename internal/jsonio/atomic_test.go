package jsonio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Label int    `json:"label"`
}

func TestAtomicWriteLines_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")

	in := []record{
		{Name: "a", Label: 1},
		{Name: "b", Label: 0},
	}
	require.NoError(t, AtomicWriteLines(path, in))

	out, err := ReadLines[record](path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAtomicWriteLines_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")

	require.NoError(t, AtomicWriteLines(path, []record{{Name: "old", Label: 1}}))
	require.NoError(t, AtomicWriteLines(path, []record{{Name: "new", Label: 0}}))

	out, err := ReadLines[record](path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].Name)
}

func TestAtomicWriteLines_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "corpus.jsonl")
	require.NoError(t, AtomicWriteLines(path, []record{{Name: "x"}}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestReadLines_SkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	content := "{\"name\":\"ok\",\"label\":1}\nnot json\n\n{\"name\":\"also ok\",\"label\":0}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := ReadLines[record](path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "ok", out[0].Name)
	assert.Equal(t, "also ok", out[1].Name)
}

func TestReadLines_MissingFile(t *testing.T) {
	_, err := ReadLines[record](filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestAtomicWriteRaw_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	require.NoError(t, AtomicWriteRaw(path, []byte("{}\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.jsonl", entries[0].Name())
}
