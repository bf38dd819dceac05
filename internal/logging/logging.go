// Package logging configures the process-wide slog logger. A TUI owns
// the terminal, so logs go to a file; tail it in a second terminal
// when debugging.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup opens the log file and installs a tint handler at the given
// level as the default logger. The returned closer flushes and closes
// the file; call it on shutdown.
func Setup(level, file string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", file, err)
	}

	handler := tint.NewHandler(f, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.DateTime,
		NoColor:    true,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, f, nil
}

// Module returns a child logger tagged with the module name.
func Module(l *slog.Logger, name string) *slog.Logger {
	return l.With("module", name)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
