// Package activity defines the event vocabulary shared by the monitor
// agent and the ingestion service: event types, the committed event
// record, and the wire payload for the /track_event endpoint.
package activity

import (
	"errors"
	"fmt"
	"time"
)

// TimeFormat is the wire and storage timestamp format.
const TimeFormat = "2006-01-02 15:04:05"

// EventType identifies the kind of activity event.
type EventType string

const (
	// PresenceEnter fires when a subject appears in frame.
	PresenceEnter EventType = "presence_enter"
	// PresenceLeave fires when a subject disappears from frame.
	PresenceLeave EventType = "presence_leave"
	// DeviceUsage carries accumulated device-use time in seconds.
	DeviceUsage EventType = "device_usage"
	// Affect carries a dominant-affect label for a single frame.
	Affect EventType = "affect"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case PresenceEnter, PresenceLeave, DeviceUsage, Affect:
		return true
	}
	return false
}

// Event is a committed activity event. Immutable once created;
// corrections are new events, never updates.
type Event struct {
	EmployeeID int64
	Type       EventType
	OccurredAt time.Time
	Duration   float64 // seconds, 0 for instantaneous events
	Details    string
}

// TrackEventRequest is the JSON body of POST /track_event.
type TrackEventRequest struct {
	EmployeeID int64   `json:"employee_id"`
	EventType  string  `json:"event_type"`
	EventTime  string  `json:"event_time"`
	Duration   float64 `json:"duration"`
	Details    string  `json:"details,omitempty"`
}

// Validation errors returned by TrackEventRequest.Validate.
var (
	ErrMissingEmployee  = errors.New("employee_id must be a positive integer")
	ErrUnknownEventType = errors.New("unknown event_type")
	ErrBadEventTime     = errors.New("event_time must be formatted as 2006-01-02 15:04:05")
	ErrNegativeDuration = errors.New("duration must not be negative")
)

// Validate checks the payload against the ingestion contract.
func (r TrackEventRequest) Validate() error {
	if r.EmployeeID <= 0 {
		return ErrMissingEmployee
	}
	if !EventType(r.EventType).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, r.EventType)
	}
	if _, err := time.ParseInLocation(TimeFormat, r.EventTime, time.Local); err != nil {
		return fmt.Errorf("%w: %q", ErrBadEventTime, r.EventTime)
	}
	if r.Duration < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// Event converts a validated payload into an Event.
func (r TrackEventRequest) Event() (Event, error) {
	if err := r.Validate(); err != nil {
		return Event{}, err
	}
	at, _ := time.ParseInLocation(TimeFormat, r.EventTime, time.Local)
	return Event{
		EmployeeID: r.EmployeeID,
		Type:       EventType(r.EventType),
		OccurredAt: at,
		Duration:   r.Duration,
		Details:    r.Details,
	}, nil
}

// Payload converts an Event into the wire payload.
func (e Event) Payload() TrackEventRequest {
	return TrackEventRequest{
		EmployeeID: e.EmployeeID,
		EventType:  string(e.Type),
		EventTime:  e.OccurredAt.Format(TimeFormat),
		Duration:   e.Duration,
		Details:    e.Details,
	}
}
