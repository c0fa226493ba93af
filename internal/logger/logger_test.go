package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	InitWithWriter(buf, level, format)
	t.Cleanup(func() { InitWithWriter(buf, "INFO", "text") })
	return buf
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugShowsEverything", func(t *testing.T) {
		buf := capture(t, "DEBUG", "text")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("WarnSuppressesLowerLevels", func(t *testing.T) {
		buf := capture(t, "WARN", "text")

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf := capture(t, "INFO", "text")

		SetLevel("NOISY")
		Info("still here")

		assert.Contains(t, buf.String(), "still here")
	})
}

func TestTextFormat(t *testing.T) {
	buf := capture(t, "INFO", "text")

	Info("session started", "client", "127.0.0.1:9999", "user", "alice")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "session started")
	assert.Contains(t, out, "client=127.0.0.1:9999")
	assert.Contains(t, out, "user=alice")
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "INFO", "json")

	Info("command received", "verb", "TRAVERSE")

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "command received", record["msg"])
	assert.Equal(t, "TRAVERSE", record["verb"])
}

func TestWithBindsAttributes(t *testing.T) {
	buf := capture(t, "INFO", "text")

	l := With("session_id", 7)
	l.Info("bound")

	assert.Contains(t, buf.String(), "session_id=7")
}
