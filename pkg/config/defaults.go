package config

import (
	"strings"
	"time"
)

// Default ports. The scout protocol keeps the historical 9090; the ops
// endpoint sits next to it.
const (
	DefaultServerPort  = 9090
	DefaultMetricsPort = 9091
)

// GetDefaultConfig returns a fully-populated configuration with defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in defaults for any unset fields. Explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyAuthDefaults(&cfg.Auth)
	applySessionsDefaults(&cfg.Sessions)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultServerPort
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.UsersFile == "" {
		cfg.UsersFile = "data/users.txt"
	}
}

func applySessionsDefaults(cfg *SessionsConfig) {
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = "data"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}
