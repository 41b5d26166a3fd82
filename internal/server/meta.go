package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/calendar"
)

type calendarsResponse struct {
	OK        bool            `json:"ok"`
	Calendars []calendar.Info `json:"calendars"`
}

// handleCalendars serves GET /api/calendars, the simplified calendar list
// for the configured account.
func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	ctx := r.Context()
	api, status, err := s.client(ctx)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	started := time.Now()
	infos, err := api.ListCalendars(ctx)
	s.recordOp(ctx, "calendarList", started, err)
	if err != nil {
		s.writeError(w, r, statusFromError(err), err)
		return
	}
	if infos == nil {
		infos = []calendar.Info{}
	}

	s.writeJSON(w, http.StatusOK, calendarsResponse{OK: true, Calendars: infos})
}

// envCheckResponse reports which configuration pieces are present, as
// booleans only. Values never leak.
type envCheckResponse struct {
	OK                  bool   `json:"ok"`
	HasClientID         bool   `json:"hasClientId"`
	HasClientSecret     bool   `json:"hasClientSecret"`
	HasRefreshToken     bool   `json:"hasRefreshToken"`
	HasPlannerCalendar  bool   `json:"hasPlannerCalendar"`
	HasBookingCalendar  bool   `json:"hasBookingCalendar"`
	HasRoutinesCalendar bool   `json:"hasRoutinesCalendar"`
	HasScriptURL        bool   `json:"hasScriptUrl"`
	HasScriptKey        bool   `json:"hasScriptKey"`
	HasProxyKey         bool   `json:"hasProxyKey"`
	Timezone            string `json:"timezone"`
}

// handleEnvCheck serves GET /api/env-check for deploy-time sanity checks.
func (s *Server) handleEnvCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	s.writeJSON(w, http.StatusOK, envCheckResponse{
		OK:                  true,
		HasClientID:         s.cfg.GoogleClientID != "",
		HasClientSecret:     s.cfg.GoogleClientSecret != "",
		HasRefreshToken:     s.cfg.GoogleRefreshToken != "",
		HasPlannerCalendar:  s.cfg.Sources.Planner != "",
		HasBookingCalendar:  s.cfg.Sources.Booking != "",
		HasRoutinesCalendar: s.cfg.Sources.Routines != "",
		HasScriptURL:        s.cfg.Script.TargetURL != "",
		HasScriptKey:        s.cfg.Script.BackendKey != "",
		HasProxyKey:         s.cfg.Script.ProxyKey != "",
		Timezone:            s.cfg.Timezone,
	})
}
