// Package calendar wraps the Google Calendar v3 API for the handful of
// operations this service needs: windowed event reads, event writes, and
// the calendar list.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// maxResultsPerSource caps each read at one page of 250 events. Aggregation
// does not follow pagination, so longer windows may silently truncate; only
// the raw list endpoint exposes page tokens.
const maxResultsPerSource = 250

// rfc3339Milli keeps millisecond precision on window boundaries
// (23:59:59.999 must not collapse to 23:59:59).
const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// Client wraps the Google Calendar service for one request's bearer token.
// Clients are built fresh per request and never shared.
type Client struct {
	svc *calendar.Service
}

// NewClient creates a client authenticated with the given access token.
// Extra options are appended after the token source, so tests can override
// the endpoint.
func NewClient(ctx context.Context, accessToken string, opts ...option.ClientOption) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ListWindow reads a single page of events for one calendar within the
// window, with recurring events expanded and results ordered by start time.
func (c *Client) ListWindow(ctx context.Context, calendarID string, min, max time.Time) ([]*calendar.Event, error) {
	events, err := c.listPage(ctx, calendarID, min, max, "")
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

// ListPage is ListWindow plus pagination, returning the raw upstream list
// response so callers can follow NextPageToken themselves.
func (c *Client) ListPage(ctx context.Context, calendarID string, min, max time.Time, pageToken string) (*calendar.Events, error) {
	return c.listPage(ctx, calendarID, min, max, pageToken)
}

func (c *Client) listPage(ctx context.Context, calendarID string, min, max time.Time, pageToken string) (*calendar.Events, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(min.Format(rfc3339Milli)).
		TimeMax(max.Format(rfc3339Milli)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResultsPerSource).
		Context(ctx)

	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Insert creates an event from the write payload. When the payload requests
// a meeting link the conferenceDataVersion flag is set so the API honors the
// conference create request.
func (c *Client) Insert(ctx context.Context, calendarID string, input EventInput) (*calendar.Event, error) {
	call := c.svc.Events.Insert(calendarID, BuildEvent(input)).Context(ctx)
	if input.WantsConference() {
		call = call.ConferenceDataVersion(1)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// Patch applies a partial update; only fields present in the payload are
// sent upstream.
func (c *Client) Patch(ctx context.Context, calendarID, eventID string, input EventInput) (*calendar.Event, error) {
	call := c.svc.Events.Patch(calendarID, eventID, BuildEvent(input)).Context(ctx)
	if input.WantsConference() {
		call = call.ConferenceDataVersion(1)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return updated, nil
}

// Delete removes an event.
func (c *Client) Delete(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListCalendars returns the calendars reachable by the token, reduced to
// name and ID.
func (c *Client) ListCalendars(ctx context.Context) ([]Info, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var infos []Info
	for _, entry := range list.Items {
		infos = append(infos, Info{Name: entry.Summary, ID: entry.Id})
	}
	return infos, nil
}
