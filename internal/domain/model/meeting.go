package model

import "time"

// Meeting is persisted alongside the brief for history, once per job,
// immutable thereafter.
type Meeting struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Attendees     string        `json:"attendees"`
	MeetingType   MeetingType   `json:"meeting_type"`
	AudienceLevel AudienceLevel `json:"audience_level"`
	CreatedAt     time.Time     `json:"created_at"`
}
