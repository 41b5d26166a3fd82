// Package server implements the HTTP API: day agenda aggregation, event
// search, raw event CRUD, the calendar list, and the keyed Apps Script
// pass-through.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/calendar"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/config"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/google"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/instrumentation"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/logging"
)

// rfc3339Milli preserves millisecond precision on window boundaries in
// responses.
const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// forwardTimeout bounds one Apps Script round trip, redirects included.
const forwardTimeout = 30 * time.Second

// TokenSource mints a bearer token for one request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// CalendarAPI is the slice of the Google Calendar surface the handlers use.
// *calendar.Client implements it; tests substitute fakes.
type CalendarAPI interface {
	ListWindow(ctx context.Context, calendarID string, min, max time.Time) ([]*gcal.Event, error)
	ListPage(ctx context.Context, calendarID string, min, max time.Time, pageToken string) (*gcal.Events, error)
	Insert(ctx context.Context, calendarID string, input calendar.EventInput) (*gcal.Event, error)
	Patch(ctx context.Context, calendarID, eventID string, input calendar.EventInput) (*gcal.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
	ListCalendars(ctx context.Context) ([]calendar.Info, error)
}

// ClientFactory builds a CalendarAPI for one request's access token.
type ClientFactory func(ctx context.Context, accessToken string) (CalendarAPI, error)

// Server holds the request-handling dependencies. A fresh token and a fresh
// calendar client are created per request; the server itself carries no
// per-request state.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	health  *HealthChecker

	tokens    TokenSource
	newClient ClientFactory
	forward   *http.Client

	// now is the reference clock, swapped out in tests.
	now func() time.Time
}

// New creates a server wired against the real Google endpoints.
func New(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		health:  NewHealthChecker(),
		tokens: google.NewTokenBroker(google.Credentials{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GoogleRefreshToken,
		}),
		newClient: func(ctx context.Context, accessToken string) (CalendarAPI, error) {
			return calendar.NewClient(ctx, accessToken)
		},
		forward: &http.Client{Timeout: forwardTimeout},
		now:     time.Now,
	}
}

// Health returns the health checker so the serve command can flip readiness
// during startup and shutdown.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler builds the route table. Every API route passes through the
// instrumentation middleware; health probes stay unwrapped.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/agenda", s.handleAgenda)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/calendars", s.handleCalendars)
	mux.HandleFunc("/api/calendar", s.handleScript)
	mux.HandleFunc("/api/env-check", s.handleEnvCheck)

	root := http.NewServeMux()
	root.Handle("/api/", s.instrument(mux))
	s.health.RegisterHealthEndpoints(root)

	return root
}

// client mints a fresh access token and builds a calendar client for this
// request. Token failures mirror the upstream status.
func (s *Server) client(ctx context.Context) (CalendarAPI, int, error) {
	start := time.Now()
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		s.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultFailure)
		return nil, statusFromError(err), err
	}
	s.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultSuccess)
	s.logger.Debug("access token obtained",
		slog.String("token", logging.SanitizeToken(token)),
		slog.Duration("duration", time.Since(start)),
	)

	api, err := s.newClient(ctx, token)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return api, 0, nil
}

// recordOp reports one upstream calendar API call to the metrics layer.
func (s *Server) recordOp(ctx context.Context, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordCalendarAPIOperation(ctx, operation, status, time.Since(start))
}
