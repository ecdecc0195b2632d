// Package logging points the default slog logger at a file, since the
// terminal belongs to the viewer while it runs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs a tint handler writing to path. An empty path discards
// all output. The returned closer releases the file.
func Setup(path string, debug bool) (io.Closer, error) {
	// Set up slog with appropriate level
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if path == "" {
		slog.SetDefault(slog.New(tint.NewHandler(io.Discard, &tint.Options{Level: level})))
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	handler := tint.NewHandler(f, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    true,
	})
	slog.SetDefault(slog.New(handler))
	return f, nil
}

// DefaultPath returns ~/.osa/view.log, or "" when there is no home dir.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".osa", "view.log")
}
