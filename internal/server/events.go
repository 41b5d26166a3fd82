package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/calendar"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/logging"
)

// Raw list window defaults around the reference instant.
const (
	defaultListDaysBack    = 7
	defaultListDaysForward = 30
)

var (
	errMissingEventID    = errors.New("missing eventId")
	errMissingCalendarID = errors.New("missing calendarId")
)

// eventWriteRequest is the body for event writes. The event payload fields
// are promoted from the write payload type.
type eventWriteRequest struct {
	CalendarID string `json:"calendarId"`
	EventID    string `json:"eventId"`
	calendar.EventInput
}

type eventListResponse struct {
	OK bool `json:"ok"`
	*gcal.Events
}

// MarshalJSON splices the ok flag into the raw upstream list object. The
// embedded type carries its own generated MarshalJSON, which would otherwise
// take over and drop the envelope.
func (r eventListResponse) MarshalJSON() ([]byte, error) {
	out := []byte(`{"ok":`)
	out = strconv.AppendBool(out, r.OK)
	if r.Events == nil {
		return append(out, '}'), nil
	}

	raw, err := json.Marshal(r.Events)
	if err != nil {
		return nil, err
	}
	if len(raw) > 2 && raw[0] == '{' {
		out = append(out, ',')
		return append(out, raw[1:]...), nil
	}
	return append(out, '}'), nil
}

type eventResponse struct {
	OK    bool        `json:"ok"`
	Event *gcal.Event `json:"event"`
}

type eventDeleteResponse struct {
	OK      bool `json:"ok"`
	Deleted bool `json:"deleted"`
}

// handleEvents is the raw single-calendar CRUD surface. Unlike the agenda
// endpoints it exposes upstream pagination and does not normalize.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listEvents(w, r)
	case http.MethodPost:
		s.createEvent(w, r)
	case http.MethodPut, http.MethodPatch:
		s.updateEvent(w, r)
	case http.MethodDelete:
		s.deleteEvent(w, r)
	default:
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

// calendarOrDefault falls back to the planner calendar when the caller does
// not name one. Reads only: mutations must name their calendar explicitly.
func (s *Server) calendarOrDefault(id string) string {
	if id != "" {
		return id
	}
	return s.cfg.Sources.Planner
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	calendarID := s.calendarOrDefault(q.Get("calendarId"))
	if calendarID == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("missing calendarId and no planner calendar configured"))
		return
	}

	now := s.now()
	min, err := timeParam(q.Get("timeMin"), now.AddDate(0, 0, -defaultListDaysBack))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	max, err := timeParam(q.Get("timeMax"), now.AddDate(0, 0, defaultListDaysForward))
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
	page, err := api.ListPage(ctx, calendarID, min, max, q.Get("pageToken"))
	s.recordOp(ctx, "list", started, err)
	if err != nil {
		s.writeError(w, r, statusFromError(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, eventListResponse{OK: true, Events: page})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	calendarID := req.CalendarID
	if calendarID == "" {
		s.writeError(w, r, http.StatusBadRequest, errMissingCalendarID)
		return
	}

	ctx := r.Context()
	api, status, err := s.client(ctx)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	started := time.Now()
	created, err := api.Insert(ctx, calendarID, req.EventInput)
	s.recordOp(ctx, "insert", started, err)
	if err != nil {
		s.writeError(w, r, statusFromError(err), err)
		return
	}

	s.logger.Info("event created",
		logging.Operation("insert"),
		logging.Calendar(calendarID),
		logging.Status(logging.StatusSuccess),
	)

	s.writeJSON(w, http.StatusOK, eventResponse{OK: true, Event: created})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if req.EventID == "" {
		s.writeError(w, r, http.StatusBadRequest, errMissingEventID)
		return
	}

	calendarID := req.CalendarID
	if calendarID == "" {
		s.writeError(w, r, http.StatusBadRequest, errMissingCalendarID)
		return
	}

	ctx := r.Context()
	api, status, err := s.client(ctx)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	started := time.Now()
	updated, err := api.Patch(ctx, calendarID, req.EventID, req.EventInput)
	s.recordOp(ctx, "patch", started, err)
	if err != nil {
		s.writeError(w, r, statusFromError(err), err)
		return
	}

	s.logger.Info("event updated",
		logging.Operation("patch"),
		logging.Calendar(calendarID),
		logging.Status(logging.StatusSuccess),
	)

	s.writeJSON(w, http.StatusOK, eventResponse{OK: true, Event: updated})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eventID := q.Get("eventId")
	if eventID == "" {
		s.writeError(w, r, http.StatusBadRequest, errMissingEventID)
		return
	}

	calendarID := q.Get("calendarId")
	if calendarID == "" {
		s.writeError(w, r, http.StatusBadRequest, errMissingCalendarID)
		return
	}

	ctx := r.Context()
	api, status, err := s.client(ctx)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	started := time.Now()
	err = api.Delete(ctx, calendarID, eventID)
	s.recordOp(ctx, "delete", started, err)
	if err != nil {
		s.writeError(w, r, statusFromError(err), err)
		return
	}

	s.logger.Info("event deleted",
		logging.Operation("delete"),
		logging.Calendar(calendarID),
		logging.Status(logging.StatusSuccess),
	)

	s.writeJSON(w, http.StatusOK, eventDeleteResponse{OK: true, Deleted: true})
}

func timeParam(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC 3339", raw)
	}
	return t, nil
}
