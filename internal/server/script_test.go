package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptConfig(t *testing.T, targetURL string) func(*Server) {
	t.Helper()
	return func(s *Server) {
		s.cfg.Script.TargetURL = targetURL
		s.cfg.Script.BackendKey = "backend-secret"
		s.cfg.Script.ProxyKey = "proxy-secret"
	}
}

func TestScript_WrongKeyIsUnauthorized(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, "https://script.example/exec")(s)

	rec := doRequest(t, s, http.MethodGet, "/api/calendar?key=wrong", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "unauthorized", resp.Error)
}

func TestScript_MissingKeyIsUnauthorized(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, "https://script.example/exec")(s)

	rec := doRequest(t, s, http.MethodGet, "/api/calendar", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScript_NotConfigured(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})

	rec := doRequest(t, s, http.MethodGet, "/api/calendar?key=proxy-secret", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "not configured")
}

func TestScript_ForwardSwapsKeyAndMirrorsResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "backend-secret", r.URL.Query().Get("key"), "caller key must be swapped for the backend key")
		assert.Equal(t, "listEvents", r.URL.Query().Get("action"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true,"events":[]}`))
	}))
	defer backend.Close()

	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, backend.URL)(s)

	rec := doRequest(t, s, http.MethodGet, "/api/calendar?key=proxy-secret&action=listEvents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true,"events":[]}`, rec.Body.String())
}

func TestScript_HeaderKeyAccepted(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "backend-secret", r.URL.Query().Get("key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, backend.URL)(s)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar", nil)
	req.Header.Set("X-Api-Key", "proxy-secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScript_PostBodyForwarded(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"createEvent"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, backend.URL)(s)

	req := httptest.NewRequest(http.MethodPost, "/api/calendar?key=proxy-secret", strings.NewReader(`{"action":"createEvent"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, "backend status is mirrored")
}

func TestScript_MethodForwardedVerbatim(t *testing.T) {
	var gotMethod, gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, backend.URL)(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/calendar?key=proxy-secret&id=e1", strings.NewReader(`{"id":"e1"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, `{"id":"e1"}`, gotBody)
}

func TestScript_BackendErrorStatusMirrored(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "script exploded", http.StatusBadGateway)
	}))
	defer backend.Close()

	s := newTestServer(t, testConfig(t), &fakeAPI{})
	scriptConfig(t, backend.URL)(s)

	rec := doRequest(t, s, http.MethodGet, "/api/calendar?key=proxy-secret", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "script exploded")
}
