package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/logging"
)

// errorResponse is the uniform error envelope for every failed API call.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", logging.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int(logging.KeyStatus, status),
		logging.Err(err),
	)

	s.writeJSON(w, status, errorResponse{OK: false, Error: err.Error()})
}

// statusFromError maps an upstream failure to the HTTP status the caller
// sees. Google API and OAuth errors mirror the upstream status; anything
// else is an internal error.
func statusFromError(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code
	}

	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) && tokenErr.Response != nil {
		return tokenErr.Response.StatusCode
	}

	return http.StatusInternalServerError
}
