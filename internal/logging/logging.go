// Package logging provides structured logging setup for domaindeck.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger writing to w.
// Dev mode uses human-readable text at debug level; prod uses JSON at info.
func New(w io.Writer, devMode bool) *slog.Logger {
	var handler slog.Handler
	if devMode {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.New(handler)
}

// Setup initializes the default slog logger on stdout and returns it.
func Setup(devMode bool) *slog.Logger {
	logger := New(os.Stdout, devMode)
	slog.SetDefault(logger)
	return logger
}
