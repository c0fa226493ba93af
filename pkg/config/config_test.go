package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultServerPort, cfg.Server.Port)
		assert.Equal(t, "INFO", cfg.Logging.Level)
		assert.Equal(t, "data/users.txt", cfg.Auth.UsersFile)
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 7070
logging:
  level: debug
auth:
  users_file: /var/lib/dirscout/users.txt
shutdown_timeout: 5s
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
		assert.Equal(t, "/var/lib/dirscout/users.txt", cfg.Auth.UsersFile)
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("PartialFileKeepsOtherDefaults", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: 7071\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7071, cfg.Server.Port)
		assert.Equal(t, "logs", cfg.Sessions.LogDir)
		assert.Equal(t, DefaultMetricsPort, cfg.Metrics.Port)
		assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("DurationAsString", func(t *testing.T) {
		path := writeConfig(t, "shutdown_timeout: 2m\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.ShutdownTimeout)
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		path := writeConfig(t, "server: [not a mapping\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.Port = 6000
	cfg.Logging.Format = "json"
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6000, loaded.Server.Port)
	assert.Equal(t, "json", loaded.Logging.Format)
}

func TestInitConfigToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, InitConfigToPath(path, false))

	t.Run("RefusesOverwrite", func(t *testing.T) {
		err := InitConfigToPath(path, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("ForceOverwrites", func(t *testing.T) {
		require.NoError(t, InitConfigToPath(path, true))
	})
}
