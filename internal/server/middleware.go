package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/logging"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count, duration, and an access log line for
// every API request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, elapsed)
		s.logger.Debug("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int(logging.KeyStatus, rec.status),
			slog.Duration(logging.KeyDuration, elapsed),
		)
	})
}
