package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/calendar"
)

func TestListEvents_DefaultsToPlannerAndRecentWindow(t *testing.T) {
	var gotCalendar, gotToken string
	var gotMin, gotMax time.Time
	api := &fakeAPI{
		listPage: func(_ context.Context, calendarID string, min, max time.Time, pageToken string) (*gcal.Events, error) {
			gotCalendar, gotToken = calendarID, pageToken
			gotMin, gotMax = min, max
			return &gcal.Events{
				Items:         []*gcal.Event{{Id: "e1"}},
				NextPageToken: "next-page",
			}, nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	rec := doRequest(t, s, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "planner-id", gotCalendar)
	assert.Empty(t, gotToken)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), gotMin)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), gotMax)

	resp := decodeBody[eventListResponse](t, rec)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Events)
	assert.Equal(t, "next-page", resp.NextPageToken)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "e1", resp.Items[0].Id)
}

func TestEventListResponse_MarshalKeepsEnvelope(t *testing.T) {
	// The embedded upstream list type brings its own MarshalJSON along; the
	// envelope must still come out with the ok flag next to the raw fields.
	raw, err := json.Marshal(eventListResponse{
		OK: true,
		Events: &gcal.Events{
			Items:         []*gcal.Event{{Id: "e1"}},
			NextPageToken: "tok",
		},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["ok"])
	assert.Equal(t, "tok", decoded["nextPageToken"])
	require.Contains(t, decoded, "items")

	raw, err = json.Marshal(eventListResponse{OK: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestListEvents_ExplicitParams(t *testing.T) {
	var gotCalendar, gotToken string
	var gotMin time.Time
	api := &fakeAPI{
		listPage: func(_ context.Context, calendarID string, min, _ time.Time, pageToken string) (*gcal.Events, error) {
			gotCalendar, gotToken, gotMin = calendarID, pageToken, min
			return &gcal.Events{}, nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	rec := doRequest(t, s, http.MethodGet, "/api/events?calendarId=booking-id&timeMin=2025-08-01T00:00:00Z&pageToken=tok", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "booking-id", gotCalendar)
	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), gotMin.UTC())
}

func TestListEvents_BadTime(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})

	rec := doRequest(t, s, http.MethodGet, "/api/events?timeMin=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "RFC 3339")
}

func TestCreateEvent(t *testing.T) {
	var gotCalendar string
	var gotInput calendar.EventInput
	api := &fakeAPI{
		insert: func(_ context.Context, calendarID string, input calendar.EventInput) (*gcal.Event, error) {
			gotCalendar, gotInput = calendarID, input
			return &gcal.Event{Id: "created-1", Summary: *input.Summary}, nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	body := `{"calendarId":"planner-id","summary":"Dentist","start":"2025-08-20T09:00:00+02:00","end":"2025-08-20T10:00:00+02:00"}`
	rec := doRequest(t, s, http.MethodPost, "/api/events", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "planner-id", gotCalendar)
	require.NotNil(t, gotInput.Summary)
	assert.Equal(t, "Dentist", *gotInput.Summary)

	resp := decodeBody[eventResponse](t, rec)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Event)
	assert.Equal(t, "created-1", resp.Event.Id)
}

func TestCreateEvent_MissingCalendarID(t *testing.T) {
	inserted := false
	api := &fakeAPI{
		insert: func(context.Context, string, calendar.EventInput) (*gcal.Event, error) {
			inserted = true
			return &gcal.Event{}, nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	rec := doRequest(t, s, http.MethodPost, "/api/events", strings.NewReader(`{"summary":"Dentist"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "calendarId")
	assert.False(t, inserted, "mutations never fall back to a default calendar")
}

func TestCreateEvent_InvalidBody(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})

	rec := doRequest(t, s, http.MethodPost, "/api/events", strings.NewReader("{not json"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEvent(t *testing.T) {
	var gotEventID string
	var gotInput calendar.EventInput
	api := &fakeAPI{
		patch: func(_ context.Context, _, eventID string, input calendar.EventInput) (*gcal.Event, error) {
			gotEventID, gotInput = eventID, input
			return &gcal.Event{Id: eventID}, nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	body := `{"calendarId":"booking-id","eventId":"e9","location":"Brno"}`
	rec := doRequest(t, s, http.MethodPatch, "/api/events", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "e9", gotEventID)
	require.NotNil(t, gotInput.Location)
	assert.Equal(t, "Brno", *gotInput.Location)
	assert.Nil(t, gotInput.Summary, "absent fields stay nil for partial updates")
}

func TestUpdateEvent_MissingEventID(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})

	rec := doRequest(t, s, http.MethodPut, "/api/events", strings.NewReader(`{"calendarId":"planner-id","summary":"x"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "eventId")
}

func TestUpdateEvent_MissingCalendarID(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})

	rec := doRequest(t, s, http.MethodPatch, "/api/events", strings.NewReader(`{"eventId":"e9","location":"Brno"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "calendarId")
}

func TestDeleteEvent(t *testing.T) {
	var gotCalendar, gotEventID string
	api := &fakeAPI{
		remove: func(_ context.Context, calendarID, eventID string) error {
			gotCalendar, gotEventID = calendarID, eventID
			return nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	rec := doRequest(t, s, http.MethodDelete, "/api/events?calendarId=routines-id&eventId=e7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "routines-id", gotCalendar)
	assert.Equal(t, "e7", gotEventID)

	resp := decodeBody[eventDeleteResponse](t, rec)
	assert.True(t, resp.OK)
	assert.True(t, resp.Deleted)
}

func TestDeleteEvent_MissingEventID(t *testing.T) {
	s := newTestServer(t, testConfig(t), &fakeAPI{})

	rec := doRequest(t, s, http.MethodDelete, "/api/events?calendarId=planner-id", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEvent_MissingCalendarID(t *testing.T) {
	removed := false
	api := &fakeAPI{
		remove: func(context.Context, string, string) error {
			removed = true
			return nil
		},
	}
	s := newTestServer(t, testConfig(t), api)

	rec := doRequest(t, s, http.MethodDelete, "/api/events?eventId=e7", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "calendarId")
	assert.False(t, removed)
}

func TestDeleteEvent_UpstreamNotFound(t *testing.T) {
	api := &fakeAPI{
		remove: func(context.Context, string, string) error {
			return &googleapi.Error{Code: 404, Message: "not found"}
		},
	}
	s := newTestServer(t, testConfig(t), api)

	rec := doRequest(t, s, http.MethodDelete, "/api/events?calendarId=planner-id&eventId=gone", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
