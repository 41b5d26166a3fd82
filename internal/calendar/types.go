package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// ConferenceMeet is the conference type that requests a generated Google
// Meet link on event creation.
const ConferenceMeet = "hangoutsMeet"

// Attendee mirrors the upstream attendee schema for write payloads.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
}

// ReminderOverride is a single reminder in a write payload.
type ReminderOverride struct {
	Method  string `json:"method"` // "email" or "popup"
	Minutes int64  `json:"minutes"`
}

// Reminders configures event reminders in a write payload.
type Reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

// Conference requests conference creation; only ConferenceMeet is understood.
type Conference struct {
	Type string `json:"type"`
}

// EventInput is the write payload accepted by the events endpoint. Pointer
// fields distinguish "absent" from "set to empty", so the same shape serves
// both full creates and partial updates.
type EventInput struct {
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`     // "confirmed", "tentative", "cancelled"
	ColorID     *string `json:"colorId"`
	Visibility  *string `json:"visibility"` // "default", "public", "private"

	// Timed boundary pair, RFC3339 dateTime strings.
	Start *string `json:"start"`
	End   *string `json:"end"`

	// All-day pair: when AllDay is set, Date (YYYY-MM-DD) is used for both
	// boundaries and the timed pair is ignored.
	AllDay bool   `json:"allDay"`
	Date   string `json:"date"`

	Attendees []Attendee `json:"attendees"`
	Reminders *Reminders `json:"reminders"`

	// Conference, when set to ConferenceMeet, asks the API to generate a
	// meeting link for the event.
	Conference *Conference `json:"conference"`
}

// WantsConference reports whether the payload requests a generated meeting
// link, which requires the conferenceDataVersion flag on the call.
func (in EventInput) WantsConference() bool {
	return in.Conference != nil && in.Conference.Type == ConferenceMeet
}

// BuildEvent translates an EventInput into the upstream event resource.
// Unset pointer fields are left out entirely, which gives PATCH its partial
// semantics.
func BuildEvent(in EventInput) *calendar.Event {
	ev := &calendar.Event{}

	if in.Summary != nil {
		ev.Summary = *in.Summary
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.Status != nil {
		ev.Status = *in.Status
	}
	if in.ColorID != nil {
		ev.ColorId = *in.ColorID
	}
	if in.Visibility != nil {
		ev.Visibility = *in.Visibility
	}

	if len(in.Attendees) > 0 {
		for _, a := range in.Attendees {
			ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{
				Email:          a.Email,
				DisplayName:    a.DisplayName,
				ResponseStatus: a.ResponseStatus,
				Optional:       a.Optional,
			})
		}
	}

	if in.Reminders != nil {
		reminders := &calendar.EventReminders{
			UseDefault:      in.Reminders.UseDefault,
			ForceSendFields: []string{"UseDefault"},
		}
		for _, o := range in.Reminders.Overrides {
			reminders.Overrides = append(reminders.Overrides, &calendar.EventReminder{
				Method:  o.Method,
				Minutes: o.Minutes,
			})
		}
		ev.Reminders = reminders
	}

	if in.AllDay && in.Date != "" {
		ev.Start = &calendar.EventDateTime{Date: in.Date}
		ev.End = &calendar.EventDateTime{Date: in.Date}
	} else {
		if in.Start != nil {
			ev.Start = &calendar.EventDateTime{DateTime: *in.Start}
		}
		if in.End != nil {
			ev.End = &calendar.EventDateTime{DateTime: *in.End}
		}
	}

	if in.WantsConference() {
		ev.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("req-%d", time.Now().UnixMilli()),
			},
		}
	}

	return ev
}

// Info is the simplified calendar listing entry returned to callers.
type Info struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
