package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramiro/assistant-core/internal/domain"
)

type CalendarEventInput struct {
	Title           string   `json:"title" jsonschema_description:"Short event title."`
	StartsAt        string   `json:"starts_at" jsonschema_description:"Event start as an RFC 3339 timestamp or YYYY-MM-DDTHH:MM local time."`
	DurationMinutes int      `json:"duration_minutes,omitempty" jsonschema_description:"Event length in minutes; defaults to 60."`
	Attendees       []string `json:"attendees,omitempty" jsonschema_description:"Attendee names or addresses."`
}

var CalendarEventDefinition = ToolDefinition{
	Name:        "create_calendar_event",
	Description: "Schedule a calendar event for the conversation's participant and return its reference.",
	InputSchema: CalendarEventInputSchema,
	Function:    CreateCalendarEvent,
}

var CalendarEventInputSchema = GenerateSchema[CalendarEventInput]()

// CreateCalendarEvent validates the request and returns the booked event.
// Values such as the event id and timestamps are left in their native types;
// the dispatcher stringifies them before submission.
func CreateCalendarEvent(_ context.Context, input json.RawMessage, call domain.Context) (any, error) {
	var in CalendarEventInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("calendar event: title is required")
	}

	start, err := parseEventTime(in.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("calendar event: %w", err)
	}

	duration := in.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	return map[string]any{
		"event_id":   uuid.New(),
		"title":      in.Title,
		"starts_at":  start,
		"ends_at":    start.Add(time.Duration(duration) * time.Minute),
		"attendees":  in.Attendees,
		"booked_for": call.ParticipantRef,
		"status":     "scheduled",
	}, nil
}

func parseEventTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("starts_at is required")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized starts_at %q", raw)
}
