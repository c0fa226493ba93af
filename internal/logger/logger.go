// Package logger provides structured logging for the dirscout server.
//
// It wraps log/slog with a colored text handler for terminals and a JSON
// handler for log aggregation. The package keeps a single process-wide
// logger configured via Init; tests can swap the output writer with
// InitWithWriter to capture log lines.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	slogger  *slog.Logger
	levelVar slog.LevelVar
	format   = "text"
	output   io.Writer = os.Stdout
	useColor bool
)

func init() {
	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	rebuild()
}

// rebuild recreates the slog handler from the current settings.
// Callers must hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init configures the process-wide logger.
// Output may be "stdout", "stderr", or a file path (opened in append mode).
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
		useColor = isTerminal(os.Stdout.Fd())
	case "stderr":
		output = os.Stderr
		useColor = isTerminal(os.Stderr.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
		useColor = false
	}

	if lvl, ok := parseLevel(cfg.Level); ok {
		levelVar.Set(lvl)
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "json" {
		format = f
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at an arbitrary writer.
// Primarily useful for capturing output in tests.
func InitWithWriter(w io.Writer, level, fmtName string) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	useColor = false
	if lvl, ok := parseLevel(level); ok {
		levelVar.Set(lvl)
	}
	if f := strings.ToLower(fmtName); f == "text" || f == "json" {
		format = f
	}
	rebuild()
}

// SetLevel sets the minimum log level. Invalid levels are ignored.
func SetLevel(level string) {
	if lvl, ok := parseLevel(level); ok {
		levelVar.Set(lvl)
	}
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

func get() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

// Debug logs at debug level with structured key/value fields.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level with structured key/value fields.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level with structured key/value fields.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level with structured key/value fields.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a slog.Logger with pre-bound attributes.
func With(args ...any) *slog.Logger { return get().With(args...) }
