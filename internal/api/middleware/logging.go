package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
)

const requestIDHeader = "X-Request-ID"

// LoggingMiddleware assigns a request ID and logs every request once it completes
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(observability.WithRequestID(r.Context(), requestID))

		rw := newStatusRecorder(w)
		next.ServeHTTP(rw, r)

		logger := observability.LoggerFromContext(r.Context())
		var event *zerolog.Event
		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			event = logger.Error()
		case rw.statusCode >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_ip", clientIP(r)).
			Msg("HTTP request")
	})
}
