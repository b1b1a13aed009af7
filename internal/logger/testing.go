package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewTestLogger creates a logger for tests.
// Records below WARN are dropped unless TEST_DEBUG is set.
func NewTestLogger() *slog.Logger {
	return NewCaptureLogger(os.Stdout)
}

// NewCaptureLogger is NewTestLogger writing to w, for tests that assert on log output.
func NewCaptureLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
