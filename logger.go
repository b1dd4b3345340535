package trail

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled is false, so callers never build
// the attributes of a disabled record.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var silent = slog.New(discard{})

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger installs the logger used by trail and its internal packages.
// Trail is silent until SetLogger is called; nil silences it again. It may
// be called while other goroutines are logging.
//
// Levels:
//   - [slog.LevelDebug]: sampler evictions, stream extensions
//   - [slog.LevelWarn]: measurement failures that end a walk early
//
// A typical command-line setup:
//
//	trail.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the installed logger.
func Logger() *slog.Logger {
	return current.Load()
}
