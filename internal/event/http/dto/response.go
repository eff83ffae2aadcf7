// Package dto provides data transfer objects for security event endpoints.
package dto

import (
	"time"

	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

// EventResponse represents a security event in API responses.
type EventResponse struct {
	ID        string         `json:"id"`
	SubjectID string         `json:"subject_id,omitempty"`
	EventType string         `json:"event_type"`
	Severity  string         `json:"severity"`
	Details   map[string]any `json:"details,omitempty"`
	ClientIP  string         `json:"client_ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	DeviceID  string         `json:"device_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListEventsResponse wraps a page of events, newest first.
type ListEventsResponse struct {
	Data []EventResponse `json:"data"`
}

// MapEventsToListResponse converts domain events to the list response.
func MapEventsToListResponse(events []*eventDomain.SecurityEvent) ListEventsResponse {
	data := make([]EventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, EventResponse{
			ID:        event.ID.String(),
			SubjectID: stringValue(event.SubjectID),
			EventType: event.EventType,
			Severity:  string(event.Severity),
			Details:   event.Details,
			ClientIP:  stringValue(event.ClientIP),
			UserAgent: stringValue(event.UserAgent),
			DeviceID:  stringValue(event.DeviceID),
			CreatedAt: event.CreatedAt,
		})
	}
	return ListEventsResponse{Data: data}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
