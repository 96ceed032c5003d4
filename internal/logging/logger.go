package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON slog logger on stdout tagged with the application name.
// An invalid level string falls back to info.
func New(level, app string) *slog.Logger {
	return NewWithWriter(os.Stdout, level).With(slog.String("app", app))
}

// NewWithWriter builds a JSON logger writing to w at the given level.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// Component scopes a logger to one subsystem, e.g. "store.credentials".
// A nil logger yields a discarding one so packages can log unconditionally.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With(slog.String("component", name))
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}
