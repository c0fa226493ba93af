package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dirscout/dirscout/internal/logger"
	"github.com/dirscout/dirscout/internal/protocol/scout"
	"github.com/dirscout/dirscout/pkg/api"
	"github.com/dirscout/dirscout/pkg/config"
	"github.com/dirscout/dirscout/pkg/identity"
	"github.com/dirscout/dirscout/pkg/metrics"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/dirscout/dirscout/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the DirScout server",
	Long: `Start the DirScout server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/dirscout/config.yaml.

Examples:
  # Start with default config location
  dirscout start

  # Start with custom config file
  dirscout start --config /etc/dirscout/config.yaml

  # Start with environment variable overrides
  DIRSCOUT_LOGGING_LEVEL=DEBUG dirscout start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("DirScout - Remote directory inspection server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics FIRST so metrics.IsEnabled() is settled before the
	// protocol server asks for its collectors
	var scoutMetrics scout.Metrics
	var opsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		scoutMetrics = metrics.NewScoutMetrics()

		opsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Bind, cfg.Metrics.Port),
			Handler: api.NewRouter(),
		}
		go func() {
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Ops HTTP server error", "error", err)
			}
		}()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	store := identity.NewStore(cfg.Auth.UsersFile)
	logger.Info("Credential ledger configured", "path", store.Path())

	srv := scout.NewServer(scout.ServerConfig{
		Bind:          cfg.Server.Bind,
		Port:          cfg.Server.Port,
		Store:         store,
		SessionLogDir: cfg.Sessions.LogDir,
		ScratchDir:    cfg.Sessions.ScratchDir,
		Metrics:       scoutMetrics,
	})

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for in-flight sessions, but only up to the configured timeout
		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", "error", err)
				return err
			}
		case <-time.After(cfg.ShutdownTimeout):
			logger.Error("Shutdown timed out with sessions still active", "timeout", cfg.ShutdownTimeout)
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}

		shutdownOpsServer(opsServer)
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		shutdownOpsServer(opsServer)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

func shutdownOpsServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Ops HTTP server shutdown error", "error", err)
	}
}
