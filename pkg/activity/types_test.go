package activity

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTrackEventRequest_Validate(t *testing.T) {
	valid := TrackEventRequest{
		EmployeeID: 1,
		EventType:  "device_usage",
		EventTime:  "2026-08-30 09:15:00",
		Duration:   12.5,
		Details:    "Detected phone usage",
	}

	tests := []struct {
		name    string
		mutate  func(*TrackEventRequest)
		wantErr error
	}{
		{
			name:   "valid payload",
			mutate: func(r *TrackEventRequest) {},
		},
		{
			name:    "zero employee id",
			mutate:  func(r *TrackEventRequest) { r.EmployeeID = 0 },
			wantErr: ErrMissingEmployee,
		},
		{
			name:    "negative employee id",
			mutate:  func(r *TrackEventRequest) { r.EmployeeID = -3 },
			wantErr: ErrMissingEmployee,
		},
		{
			name:    "missing event type",
			mutate:  func(r *TrackEventRequest) { r.EventType = "" },
			wantErr: ErrUnknownEventType,
		},
		{
			name:    "unknown event type",
			mutate:  func(r *TrackEventRequest) { r.EventType = "coffee_break" },
			wantErr: ErrUnknownEventType,
		},
		{
			name:    "unparseable event time",
			mutate:  func(r *TrackEventRequest) { r.EventTime = "yesterday" },
			wantErr: ErrBadEventTime,
		},
		{
			name:    "negative duration",
			mutate:  func(r *TrackEventRequest) { r.Duration = -1 },
			wantErr: ErrNegativeDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventType_Valid(t *testing.T) {
	for _, et := range []EventType{PresenceEnter, PresenceLeave, DeviceUsage, Affect} {
		if !et.Valid() {
			t.Errorf("%q should be valid", et)
		}
	}
	if EventType("emotion").Valid() {
		t.Error("legacy name should not be valid")
	}
}

func TestPayloadAlwaysCarriesDuration(t *testing.T) {
	ev := Event{
		EmployeeID: 1,
		Type:       PresenceEnter,
		OccurredAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local),
	}

	data, err := json.Marshal(ev.Payload())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Instantaneous events report duration 0 explicitly; the key is
	// part of the wire contract, not optional.
	if !strings.Contains(string(data), `"duration":0`) {
		t.Errorf("payload missing explicit duration: %s", data)
	}
}

func TestEventPayloadRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 3, 7, 0, time.Local)
	ev := Event{
		EmployeeID: 42,
		Type:       Affect,
		OccurredAt: at,
		Details:    "happy",
	}

	got, err := ev.Payload().Event()
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if got.EmployeeID != ev.EmployeeID || got.Type != ev.Type ||
		got.Duration != ev.Duration || got.Details != ev.Details {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, ev)
	}
	if !got.OccurredAt.Equal(at) {
		t.Errorf("timestamp mismatch: got %v, want %v", got.OccurredAt, at)
	}
}
