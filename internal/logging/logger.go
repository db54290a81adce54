package logging

import (
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New returns the process logger: colored tint output in debug mode,
// JSON otherwise.
func New(w io.Writer, level slog.Level, debug bool, version string) *slog.Logger {
	if debug {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "navify")
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", "navify",
		"version", version,
	)
}

// Setup installs logger as the slog default and routes the standard log
// package through it.
func Setup(logger *slog.Logger) {
	slog.SetDefault(logger)
	log.SetFlags(0)
}
