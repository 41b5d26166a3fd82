package agenda

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Raw is one upstream event together with its origin calendar. The tag is a
// plain value field added on ingestion, not a reference back into upstream
// state.
type Raw struct {
	Event  *calendar.Event
	Source string
}

// Event is the canonical simplified representation returned to callers.
// Pointer fields serialize as null when the source boundary is absent; a
// missing timestamp is never rendered as 0.
type Event struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Location         string  `json:"location"`
	Description      string  `json:"description"`
	Start            *string `json:"start"`
	End              *string `json:"end"`
	StartTs          *int64  `json:"startTs"`
	EndTs            *int64  `json:"endTs"`
	AllDay           bool    `json:"allDay"`
	SourceCalendarID string  `json:"sourceCalendarId"`
}

// Normalize converts one raw record into the canonical shape. It is total:
// missing fields become empty strings or nulls, never errors. AllDay is true
// exactly when the start boundary is date-only.
func Normalize(raw Raw) Event {
	out := Event{SourceCalendarID: raw.Source}

	ev := raw.Event
	if ev == nil {
		return out
	}

	out.ID = ev.Id
	out.Title = ev.Summary
	out.Location = ev.Location
	out.Description = ev.Description

	out.Start = boundary(ev.Start)
	out.End = boundary(ev.End)
	out.StartTs = epochMillis(out.Start)
	out.EndTs = epochMillis(out.End)

	out.AllDay = ev.Start != nil && ev.Start.Date != "" && ev.Start.DateTime == ""

	return out
}

// boundary picks the date-time form when present, the date-only form
// otherwise, and nil when the boundary is absent entirely.
func boundary(dt *calendar.EventDateTime) *string {
	if dt == nil {
		return nil
	}
	if dt.DateTime != "" {
		s := dt.DateTime
		return &s
	}
	if dt.Date != "" {
		s := dt.Date
		return &s
	}
	return nil
}

// epochMillis parses a boundary string into epoch milliseconds. Date-only
// boundaries are read as UTC midnight. Absent or unparseable strings yield
// nil, not an error.
func epochMillis(s *string) *int64 {
	if s == nil {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		ms := t.UnixMilli()
		return &ms
	}
	if t, err := time.Parse("2006-01-02", *s); err == nil {
		ms := t.UnixMilli()
		return &ms
	}
	return nil
}
