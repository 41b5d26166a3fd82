package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source role names. Aggregation endpoints require all three roles to be
// configured; a partial set is a configuration error, not a degraded mode.
const (
	RolePlanner  = "planner"
	RoleBooking  = "booking"
	RoleRoutines = "routines"
)

// DefaultTimezone is the zone used for civil-day resolution when none is
// configured.
const DefaultTimezone = "Europe/Prague"

// Sources maps the three calendar roles to Google calendar IDs.
type Sources struct {
	Planner  string `yaml:"planner"`
	Booking  string `yaml:"booking"`
	Routines string `yaml:"routines"`
}

// IDs returns the configured calendar IDs in role order (planner, booking,
// routines), skipping empty entries.
func (s Sources) IDs() []string {
	var ids []string
	for _, id := range []string{s.Planner, s.Booking, s.Routines} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Complete reports whether all three roles are configured.
func (s Sources) Complete() bool {
	return s.Planner != "" && s.Booking != "" && s.Routines != ""
}

// Script holds the Apps Script proxy settings. TargetURL is the /exec
// endpoint, BackendKey authenticates this service to the script, and
// ProxyKey is the shared secret callers must present.
type Script struct {
	TargetURL  string `yaml:"target_url"`
	BackendKey string `yaml:"backend_key"`
	ProxyKey   string `yaml:"proxy_key"`
}

// Configured reports whether the proxy has everything it needs to forward.
func (s Script) Configured() bool {
	return s.TargetURL != "" && s.BackendKey != "" && s.ProxyKey != ""
}

// Config is the top-level service configuration. Values come from an
// optional YAML file, with environment variables taking precedence.
type Config struct {
	// Listen is the HTTP listen address for the API server.
	Listen string `yaml:"listen"`

	// MetricsListen is the address for the dedicated metrics server.
	MetricsListen string `yaml:"metrics_listen"`

	// Timezone is the IANA zone used to resolve civil-day boundaries
	// (e.g. "Europe/Prague").
	Timezone string `yaml:"timezone"`

	// Google OAuth client credentials plus the long-lived refresh token.
	// A fresh access token is obtained per request; nothing is cached.
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	GoogleRefreshToken string `yaml:"google_refresh_token"`

	Sources Sources `yaml:"sources"`
	Script  Script  `yaml:"script"`

	loc *time.Location
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:        ":8080",
		MetricsListen: ":9090",
		Timezone:      DefaultTimezone,
	}
}

// Load builds the configuration from an optional YAML file at path (empty
// path skips the file) overlaid with environment variables. The timezone is
// validated here; missing credentials or sources are reported per request,
// matching the behavior of the endpoints.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	cfg.normalize()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.loc = loc

	return cfg, nil
}

// Location returns the validated time zone. Only set by Load; configs
// constructed by hand should call Validate first.
func (c *Config) Location() *time.Location {
	return c.loc
}

// Validate resolves the configured timezone. It is exposed for configs
// assembled directly in code (tests, embedding).
func (c *Config) Validate() error {
	c.normalize()
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.loc = loc
	return nil
}

// HasCredentials reports whether the Google OAuth credential triple is set.
func (c *Config) HasCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRefreshToken != ""
}

func (c *Config) normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.MetricsListen == "" {
		c.MetricsListen = ":9090"
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.Listen, "HTTP_ADDR")
	setIfEnv(&cfg.MetricsListen, "METRICS_ADDR")
	setIfEnv(&cfg.Timezone, "CALENDAR_TZ")
	setIfEnv(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setIfEnv(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setIfEnv(&cfg.GoogleRefreshToken, "GOOGLE_REFRESH_TOKEN")
	setIfEnv(&cfg.Sources.Planner, "CAL_PLANNER_ID")
	setIfEnv(&cfg.Sources.Booking, "CAL_BOOKING_ID")
	setIfEnv(&cfg.Sources.Routines, "CAL_ROUTINES_ID")
	setIfEnv(&cfg.Script.TargetURL, "TARGET_BASE_URL")
	setIfEnv(&cfg.Script.BackendKey, "APPSCRIPT_KEY")
	setIfEnv(&cfg.Script.ProxyKey, "PROXY_KEY")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
