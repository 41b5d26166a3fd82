// Package google handles credential exchange against the Google OAuth
// token endpoint. A fresh access token is obtained for every call; nothing
// is cached or reused across requests.
package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Credentials holds the OAuth client pair and the long-lived refresh token
// used to mint short-lived access tokens.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Complete reports whether all three credential parts are present.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// TokenBroker exchanges the refresh token for a fresh access token on every
// call. No token state is shared between requests.
type TokenBroker struct {
	conf         *oauth2.Config
	refreshToken string
}

// NewTokenBroker creates a broker against the standard Google token endpoint.
func NewTokenBroker(creds Credentials) *TokenBroker {
	return NewTokenBrokerWithEndpoint(creds, google.Endpoint)
}

// NewTokenBrokerWithEndpoint creates a broker against a custom OAuth
// endpoint. Used by tests to point at a local token server.
func NewTokenBrokerWithEndpoint(creds Credentials, endpoint oauth2.Endpoint) *TokenBroker {
	return &TokenBroker{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     endpoint,
		},
		refreshToken: creds.RefreshToken,
	}
}

// AccessToken performs one refresh-token exchange and returns the bearer
// token. Failures carry the upstream response via *oauth2.RetrieveError so
// callers can mirror the status code.
func (b *TokenBroker) AccessToken(ctx context.Context) (string, error) {
	if b.refreshToken == "" {
		return "", fmt.Errorf("no refresh token configured")
	}

	ts := b.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: b.refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	return tok.AccessToken, nil
}
