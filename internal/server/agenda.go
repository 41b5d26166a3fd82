package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/agenda"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/logging"
)

// Search window defaults, in days around the reference instant.
const (
	defaultSearchDaysBack    = 30
	defaultSearchDaysForward = 365
)

var errSourcesIncomplete = errors.New("calendar sources not configured: planner, booking and routines calendar IDs are all required")

// timeRange describes the resolved query window in a response.
type timeRange struct {
	Label   string `json:"label,omitempty"`
	TimeMin string `json:"timeMin"`
	TimeMax string `json:"timeMax"`
	Tz      string `json:"tz,omitempty"`
}

type agendaResponse struct {
	OK    bool            `json:"ok"`
	Range timeRange       `json:"range"`
	Count int             `json:"count"`
	Items agenda.Timeline `json:"items"`
}

// handleAgenda serves GET /api/agenda?when=...&date=... with the merged
// timeline of all three sources for one civil day.
func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	if !s.cfg.Sources.Complete() {
		s.writeError(w, r, http.StatusBadRequest, errSourcesIncomplete)
		return
	}

	spec, err := agenda.ParseDaySpec(r.URL.Query().Get("when"), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	window := agenda.Resolve(spec, s.cfg.Location(), s.now())

	ctx := r.Context()
	api, status, err := s.client(ctx)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	started := time.Now()
	timeline, err := agenda.Aggregate(ctx, api, s.cfg.Sources.IDs(), window.Start, window.End)
	s.recordOp(ctx, "list", started, err)
	if err != nil {
		s.writeError(w, r, statusFromError(err), err)
		return
	}
	if timeline == nil {
		timeline = agenda.Timeline{}
	}

	s.logger.Info("agenda served",
		logging.Operation("agenda"),
		logging.Calendar(window.Label),
		logging.Status(logging.StatusSuccess),
	)

	s.writeJSON(w, http.StatusOK, agendaResponse{
		OK: true,
		Range: timeRange{
			Label:   window.Label,
			TimeMin: window.Start.Format(rfc3339Milli),
			TimeMax: window.End.Format(rfc3339Milli),
			Tz:      window.Timezone,
		},
		Count: len(timeline),
		Items: timeline,
	})
}

type searchResponse struct {
	OK    bool            `json:"ok"`
	Query string          `json:"query"`
	Range timeRange       `json:"range"`
	Count int             `json:"count"`
	Items agenda.Timeline `json:"items"`
	Next  *agenda.Event   `json:"next"`
}

// handleSearch serves GET /api/search?q=...&daysBack=...&daysForward=...
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	if !s.cfg.Sources.Complete() {
		s.writeError(w, r, http.StatusBadRequest, errSourcesIncomplete)
		return
	}

	query := r.URL.Query().Get("q")
	daysBack, err := intParam(r, "daysBack", defaultSearchDaysBack)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	daysForward, err := intParam(r, "daysForward", defaultSearchDaysForward)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	api, status, err := s.client(ctx)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	started := time.Now()
	result, err := agenda.Search(ctx, api, s.cfg.Sources.IDs(), query, daysBack, daysForward, s.now())
	s.recordOp(ctx, "list", started, err)
	if err != nil {
		status := statusFromError(err)
		if errors.Is(err, agenda.ErrEmptyQuery) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, err)
		return
	}

	matches := result.Matches
	if matches == nil {
		matches = agenda.Timeline{}
	}

	s.logger.Info("search served",
		logging.Operation("search"),
		slog.String(logging.KeyQuery, query),
		logging.Status(logging.StatusSuccess),
	)

	s.writeJSON(w, http.StatusOK, searchResponse{
		OK:    true,
		Query: query,
		Range: timeRange{
			TimeMin: result.TimeMin.UTC().Format(rfc3339Milli),
			TimeMax: result.TimeMax.UTC().Format(rfc3339Milli),
		},
		Count: len(matches),
		Items: matches,
		Next:  result.Next,
	})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative integer", name, raw)
	}
	return v, nil
}
