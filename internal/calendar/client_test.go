package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// fakeAPI stands in for the Google Calendar endpoint.
func fakeAPI(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), "test-token", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client, srv
}

func TestListWindow_QueryParameters(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	client, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"e1"},{"id":"e2"}]}`))
	})

	loc, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)
	min := time.Date(2025, 8, 14, 0, 0, 0, 0, loc)
	max := time.Date(2025, 8, 14, 23, 59, 59, 999_000_000, loc)

	items, err := client.ListWindow(context.Background(), "cal-1", min, max)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.Contains(t, gotPath, "/calendars/cal-1/events")
	assert.Equal(t, "true", gotQuery["singleEvents"])
	assert.Equal(t, "startTime", gotQuery["orderBy"])
	assert.Equal(t, "250", gotQuery["maxResults"])
	assert.Equal(t, "2025-08-14T00:00:00.000+02:00", gotQuery["timeMin"])
	assert.Equal(t, "2025-08-14T23:59:59.999+02:00", gotQuery["timeMax"])
	assert.Empty(t, gotQuery["pageToken"])
}

func TestListWindow_UpstreamErrorCarriesStatus(t *testing.T) {
	client, _ := fakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	})

	_, err := client.ListWindow(context.Background(), "cal-1", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr), "error should unwrap to *googleapi.Error")
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}

func TestListPage_PageToken(t *testing.T) {
	client, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "next-42", r.URL.Query().Get("pageToken"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"e3"}],"nextPageToken":"next-43"}`))
	})

	events, err := client.ListPage(context.Background(), "cal-1", time.Now(), time.Now().Add(time.Hour), "next-42")
	require.NoError(t, err)
	require.Len(t, events.Items, 1)
	assert.Equal(t, "next-43", events.NextPageToken)
}

func TestInsert_ConferenceRequest(t *testing.T) {
	var gotVersion string
	var gotBody calendar.Event

	client, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.URL.Query().Get("conferenceDataVersion")
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"created-1","summary":"Standup"}`))
	})

	summary := "Standup"
	created, err := client.Insert(context.Background(), "cal-1", EventInput{
		Summary:    &summary,
		Conference: &Conference{Type: ConferenceMeet},
	})
	require.NoError(t, err)
	assert.Equal(t, "created-1", created.Id)

	assert.Equal(t, "1", gotVersion)
	require.NotNil(t, gotBody.ConferenceData)
	require.NotNil(t, gotBody.ConferenceData.CreateRequest)
	assert.NotEmpty(t, gotBody.ConferenceData.CreateRequest.RequestId)
}

func TestPatch_SendsOnlyProvidedFields(t *testing.T) {
	var gotMethod string
	var gotRaw map[string]any

	client, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotRaw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"e9","location":"Prague"}`))
	})

	location := "Prague"
	updated, err := client.Patch(context.Background(), "cal-1", "e9", EventInput{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "Prague", updated.Location)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "Prague", gotRaw["location"])
	assert.NotContains(t, gotRaw, "summary")
	assert.NotContains(t, gotRaw, "start")
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string

	client, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Delete(context.Background(), "cal-1", "e7")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Contains(t, gotPath, "/calendars/cal-1/events/e7")
}

func TestListCalendars_Simplified(t *testing.T) {
	client, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/users/me/calendarList")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"a@group.calendar.google.com","summary":"Planner"},{"id":"b@group.calendar.google.com","summary":"Booking"}]}`))
	})

	infos, err := client.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, Info{Name: "Planner", ID: "a@group.calendar.google.com"}, infos[0])
}
