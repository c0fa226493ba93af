package scout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, paths ...string) string {
	t.Helper()
	listPath := filepath.Join(t.TempDir(), "files.txt")
	require.NoError(t, os.WriteFile(listPath, []byte(strings.Join(paths, "\n")+"\n"), 0644))
	return listPath
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScanList(t *testing.T) {
	dir := t.TempDir()
	hit1 := writeFile(t, dir, "hit1.txt", "the needle is here")
	miss := writeFile(t, dir, "miss.txt", "nothing of interest")
	hit2 := writeFile(t, dir, "hit2.txt", "another needle sighting")

	t.Run("MatchesInListOrder", func(t *testing.T) {
		matches, err := scanList(writeList(t, hit1, miss, hit2), "needle")
		require.NoError(t, err)
		assert.Equal(t, []string{hit1, hit2}, matches)
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		matches, err := scanList(writeList(t, hit1, hit2), "NEEDLE")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("PatternWithSpaces", func(t *testing.T) {
		matches, err := scanList(writeList(t, hit1, miss), "needle is here")
		require.NoError(t, err)
		assert.Equal(t, []string{hit1}, matches)
	})

	t.Run("NoMatches", func(t *testing.T) {
		matches, err := scanList(writeList(t, miss), "needle")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("UnopenablePathSkippedSilently", func(t *testing.T) {
		gone := filepath.Join(dir, "gone.txt")
		matches, err := scanList(writeList(t, gone, hit1), "needle")
		require.NoError(t, err)
		assert.Equal(t, []string{hit1}, matches)
	})

	t.Run("MissingListIsAnError", func(t *testing.T) {
		_, err := scanList(filepath.Join(dir, "no-such-list.txt"), "needle")
		assert.Error(t, err)
	})
}

// A read failure after a successful open aborts the whole scan, returning
// the matches accumulated so far. A directory opens fine but cannot be
// read as a file, which reproduces exactly that condition.
func TestScanListReadFailureAbortsScan(t *testing.T) {
	dir := t.TempDir()
	before := writeFile(t, dir, "before.txt", "needle ahead")
	after := writeFile(t, dir, "after.txt", "needle behind")
	unreadable := t.TempDir()

	matches, err := scanList(writeList(t, before, unreadable, after), "needle")

	require.Error(t, err)
	assert.Equal(t, []string{before}, matches, "paths after the failure are not scanned")
}

func TestScanListBinaryContent(t *testing.T) {
	dir := t.TempDir()
	blob := make([]byte, 3000)
	for i := range blob {
		blob[i] = byte(i % 251)
	}
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, blob, 0644))

	matches, err := scanList(writeList(t, path), string(blob[100:120]))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, matches)
}
