package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("EmptyConfig", func(t *testing.T) {
		cfg := &Config{}
		ApplyDefaults(cfg)

		assert.Equal(t, "INFO", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
		assert.Equal(t, "stdout", cfg.Logging.Output)
		assert.Equal(t, DefaultServerPort, cfg.Server.Port)
		assert.Equal(t, "data/users.txt", cfg.Auth.UsersFile)
		assert.Equal(t, "logs", cfg.Sessions.LogDir)
		assert.Equal(t, "data", cfg.Sessions.ScratchDir)
		assert.Equal(t, DefaultMetricsPort, cfg.Metrics.Port)
		assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
		assert.False(t, cfg.Metrics.Enabled, "metrics are opt-in")
	})

	t.Run("ExplicitValuesPreserved", func(t *testing.T) {
		cfg := &Config{}
		cfg.Server.Port = 1234
		cfg.Logging.Level = "error"
		ApplyDefaults(cfg)

		assert.Equal(t, 1234, cfg.Server.Port)
		assert.Equal(t, "ERROR", cfg.Logging.Level)
	})
}
