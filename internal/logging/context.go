package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	loggerKey  contextKey = "logger"
	traceIDKey contextKey = "trace_id"
)

// GenerateTraceID returns a random 16-byte hex trace identifier, one per
// orchestrator tick.
func GenerateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext retrieves the logger stashed in ctx, or Default() if none was
// attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return Default()
}

// NewContext attaches l to ctx.
func NewContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithTrace stamps ctx with a fresh trace ID and a logger carrying it,
// returning both so a caller can log the trace ID once at the call site.
func WithTrace(ctx context.Context) (context.Context, string, zerolog.Logger) {
	traceID := GenerateTraceID()
	l := Default().With().Str("trace_id", traceID).Logger()
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	ctx = NewContext(ctx, l)
	return ctx, traceID, l
}

// TraceID extracts the trace ID stashed by WithTrace, if any.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}
