package main

import (
	"io"
	"log/slog"
)

// newLogger returns a text logger. verbose enables debug output and quiet
// limits it to errors; quiet wins when both are set.
func newLogger(w io.Writer, verbose bool, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
