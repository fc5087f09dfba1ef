package main

import (
	"io"
	"log/slog"
)

// logLevel maps the logging flags to a level. --error wins over --warn,
// which wins over -v.
func logLevel(verbose int, warn, errorOnly bool) slog.Level {
	switch {
	case errorOnly:
		return slog.LevelError
	case warn:
		return slog.LevelWarn
	case verbose > 0:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// newLogger returns a text logger writing to w. Debug output carries the
// source location.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}))
}
