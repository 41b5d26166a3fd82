package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/logging"
)

var errUnauthorized = errors.New("unauthorized")

// handleScript forwards requests to the Apps Script web app. Callers
// authenticate with the shared proxy key (query parameter or X-Api-Key
// header); the key is swapped for the backend key before forwarding and
// never reaches the script.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Script.Configured() {
		s.writeError(w, r, http.StatusInternalServerError, errors.New("script proxy not configured"))
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		key = r.Header.Get("X-Api-Key")
	}
	if key != s.cfg.Script.ProxyKey {
		s.writeError(w, r, http.StatusUnauthorized, errUnauthorized)
		return
	}

	target, err := s.scriptURL(r.URL.Query())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	// The method passes through untouched; GET and HEAD carry no body.
	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("failed to build upstream request: %w", err))
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	// Apps Script answers with a redirect to a one-time content URL; the
	// default client follows it.
	resp, err := s.forward.Do(req)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, fmt.Errorf("script backend unreachable: %w", err))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	s.metrics.RecordScriptForward(r.Context(), resp.StatusCode)
	s.logger.Info("script request forwarded",
		logging.Operation("script"),
		logging.Status(logging.StatusSuccess),
	)

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Error("failed to relay script response", logging.Err(err))
	}
}

// scriptURL rebuilds the caller's query against the script endpoint: the
// proxy key is dropped and the backend key takes its place.
func (s *Server) scriptURL(query url.Values) (string, error) {
	base, err := url.Parse(s.cfg.Script.TargetURL)
	if err != nil {
		return "", fmt.Errorf("invalid script target URL: %w", err)
	}

	forwarded := url.Values{}
	for name, values := range query {
		if name == "key" {
			continue
		}
		for _, v := range values {
			forwarded.Add(name, v)
		}
	}
	forwarded.Set("key", s.cfg.Script.BackendKey)

	base.RawQuery = forwarded.Encode()
	return base.String(), nil
}
