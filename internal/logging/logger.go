// Package logging wraps zerolog with the component-scoped child-logger and
// trace-ID-over-context conventions the rest of this module expects.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	initOnce      sync.Once
	defaultLogger zerolog.Logger
)

// Configure sets the process-wide default logger. Call once at startup;
// Default() before Configure lazily falls back to a stdout writer that sets
// no level of its own (only zerolog's global level filters it).
func Configure(level zerolog.Level, w io.Writer, pretty bool) {
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	zerolog.SetGlobalLevel(level)
	defaultLogger = zerolog.New(w).With().Timestamp().Logger()
	initOnce.Do(func() {})
}

// Default returns the process-wide logger, initializing a fallback the
// first time it is called without a prior Configure.
func Default() zerolog.Logger {
	initOnce.Do(func() {
		defaultLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	})
	return defaultLogger
}

// Component returns a child logger tagged with a component name, matching
// the teacher's `logger.With().Str("component", X).Logger()` convention
// used throughout its autopilot package.
func Component(name string) zerolog.Logger {
	return Default().With().Str("component", name).Logger()
}
