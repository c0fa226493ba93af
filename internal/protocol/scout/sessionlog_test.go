package scout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	sl, err := OpenSessionLog(dir, "alice", 42)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "alice_42.log"), sl.Path())

	sl.Log("User authenticated")
	sl.Log("Command: TRAVERSE /tmp")
	sl.Log("Session ended")
	require.NoError(t, sl.Close())

	data, err := os.ReadFile(sl.Path())
	require.NoError(t, err)
	assert.Equal(t, "User authenticated\nCommand: TRAVERSE /tmp\nSession ended\n", string(data))
}

func TestSessionLogAppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	sl, err := OpenSessionLog(dir, "bob", 1)
	require.NoError(t, err)
	sl.Log("first")
	require.NoError(t, sl.Close())

	sl, err = OpenSessionLog(dir, "bob", 1)
	require.NoError(t, err)
	sl.Log("second")
	require.NoError(t, sl.Close())

	data, err := os.ReadFile(sl.Path())
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestNilSessionLogIsSafe(t *testing.T) {
	var sl *SessionLog

	sl.Log("dropped")
	assert.Equal(t, "", sl.Path())
	assert.NoError(t, sl.Close())
}
