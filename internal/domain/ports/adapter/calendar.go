package adapter

import (
	"context"
	"time"
)

// CalendarEvent is what the external event source supplies for a meeting.
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
	HTMLLink    string
}

// CalendarAdapter is the port for the calendar collaborator.
type CalendarAdapter interface {
	FetchEvent(ctx context.Context, eventID string) (*CalendarEvent, error)
}
