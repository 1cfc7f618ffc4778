package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deskwatch/deskwatch/pkg/activity"
)

func testEvent() activity.Event {
	return activity.Event{
		EmployeeID: 1,
		Type:       activity.DeviceUsage,
		OccurredAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local),
		Duration:   12.5,
		Details:    "Detected device usage",
	}
}

func TestTransportDeliversEvent(t *testing.T) {
	received := make(chan activity.TrackEventRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/track_event" {
			t.Errorf("path = %q, want /track_event", r.URL.Path)
		}
		var req activity.TrackEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- req
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(DefaultConfig(srv.URL))
	tr.Start()

	if err := tr.Enqueue(testEvent()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	tr.Close()

	select {
	case req := <-received:
		if req.EmployeeID != 1 || req.EventType != "device_usage" || req.Duration != 12.5 {
			t.Errorf("unexpected payload: %+v", req)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestTransportRetriesThenDrops(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultConfig(srv.URL)
	cfg.MaxRetries = 2
	cfg.RetryBackoff = 10 * time.Millisecond
	tr := New(cfg)
	tr.Start()

	if err := tr.Enqueue(testEvent()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	tr.Close()

	if got := hits.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3 (1 try + 2 retries)", got)
	}
}

func TestTransportUnreachableBackend(t *testing.T) {
	cfg := DefaultConfig("http://127.0.0.1:1") // nothing listens here
	cfg.MaxRetries = 0
	cfg.RetryBackoff = time.Millisecond
	cfg.Timeout = 500 * time.Millisecond
	tr := New(cfg)
	tr.Start()

	// Must not panic or block; the event is dropped with a log line.
	if err := tr.Enqueue(testEvent()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	tr.Close()
}

func TestEnqueueQueueFull(t *testing.T) {
	cfg := DefaultConfig("http://127.0.0.1:1")
	cfg.QueueSize = 1
	tr := New(cfg)
	// Worker not started, so the queue never drains.

	if err := tr.Enqueue(testEvent()); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if err := tr.Enqueue(testEvent()); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second Enqueue = %v, want ErrQueueFull", err)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	tr := New(DefaultConfig("http://127.0.0.1:1"))
	tr.Start()
	tr.Close()

	if err := tr.Enqueue(testEvent()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Enqueue after close = %v, want ErrClosed", err)
	}

	// Close is idempotent.
	tr.Close()
}
