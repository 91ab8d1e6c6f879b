// Package xc2log provides the logging facade threaded through every PAR
// stage. The pipeline itself never reaches for a process-wide logger
// (spec §5/§9); callers hand a Logger to each stage's entry point as a
// parameter, and a zero Logger is always valid (falls back to a no-op).
package xc2log

import (
	"log/slog"
	"os"

	"github.com/go-logr/logr"
)

// Logger is a thin alias over logr.Logger so packages that only need to
// log a handful of structured fields do not need to import logr directly.
type Logger = logr.Logger

// Discard returns a Logger that drops everything, used as the default when
// a stage is invoked without an explicit logger (e.g. from unit tests).
func Discard() Logger {
	return logr.Discard()
}

// NewSlog builds a Logger backed by the standard library's structured
// slog.Handler, writing leveled, key/value records to w (or os.Stderr when
// w is nil). This is the logger the CLI driver constructs at entry.
func NewSlog(level slog.Level, w *os.File) Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return logr.FromSlogHandler(handler)
}

// Stage returns a child logger tagged with the owning pipeline stage name,
// e.g. "placer" or "zia". Every stage should call this once at entry.
func Stage(l Logger, name string) Logger {
	return l.WithName(name).WithValues("stage", name)
}
