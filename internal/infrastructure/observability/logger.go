package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type requestIDKey struct{}

// InitLogger configures the global zerolog logger. Development gets a
// console writer; everything else writes JSON with caller info. An
// unparseable level falls back to info.
func InitLogger(serviceName, env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var base zerolog.Logger
	if env == "development" {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		base = zerolog.New(os.Stdout).With().Caller().Logger()
	}
	log.Logger = base.With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}

// WithRequestID stores the request ID so every log line of the request carries it
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID stored by WithRequestID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggerFromContext returns the global logger enriched with the request ID
// and the active span of ctx
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	lc := log.With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	logger := lc.Logger()
	return &logger
}
