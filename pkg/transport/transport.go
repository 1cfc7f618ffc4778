// Package transport delivers committed activity events to the
// ingestion service. Delivery is best-effort and at-most-once: a
// bounded queue decouples the frame loop from the network, failed
// sends are retried a bounded number of times, and exhausted events
// are dropped with an operator-visible log line. A failing backend
// never stalls or corrupts the engine.
package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/deskwatch/deskwatch/internal/httpc"
	"github.com/deskwatch/deskwatch/pkg/activity"
)

// ErrQueueFull is returned by Enqueue when the hand-off queue is
// saturated. The event is dropped, not blocked on.
var ErrQueueFull = errors.New("transport queue full")

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("transport closed")

// Config holds transport tunables.
type Config struct {
	BackendURL   string        // ingestion service base URL
	QueueSize    int           // bounded hand-off queue length
	MaxRetries   int           // retries after the first attempt; 0 means single try
	RetryBackoff time.Duration // pause between attempts
	Timeout      time.Duration // per-request timeout
}

// DefaultConfig returns the recommended transport configuration.
func DefaultConfig(backendURL string) Config {
	return Config{
		BackendURL:   backendURL,
		QueueSize:    256,
		MaxRetries:   2,
		RetryBackoff: 500 * time.Millisecond,
		Timeout:      httpc.DefaultTimeout,
	}
}

// Transport posts events to the ingestion endpoint from a single
// worker goroutine.
type Transport struct {
	cfg    Config
	client *http.Client
	queue  chan activity.Event

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a Transport. Call Start before enqueueing.
func New(cfg Config) *Transport {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = httpc.DefaultTimeout
	}
	return &Transport{
		cfg:    cfg,
		client: httpc.NewClient(cfg.Timeout),
		queue:  make(chan activity.Event, cfg.QueueSize),
	}
}

// Start launches the sender worker.
func (t *Transport) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for ev := range t.queue {
			t.send(ev)
		}
	}()
}

// Enqueue hands an event to the sender without blocking. When the
// queue is full the event is dropped and ErrQueueFull returned; the
// caller's state is already committed and is not rolled back.
func (t *Transport) Enqueue(ev activity.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	select {
	case t.queue <- ev:
		return nil
	default:
		slog.Warn("transport queue full, dropping event",
			"employee_id", ev.EmployeeID, "event_type", ev.Type)
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the queue best-effort, and
// waits for the worker to finish.
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()

	t.wg.Wait()
}

// send posts one event, retrying on failure. Exhausted events are
// logged with their payload so the loss is visible to an operator.
func (t *Transport) send(ev activity.Event) {
	payload := ev.Payload()
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode event", "err", err, "event_type", ev.Type)
		return
	}

	url := t.cfg.BackendURL + "/track_event"
	attempts := t.cfg.MaxRetries + 1

	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(t.cfg.RetryBackoff)
		}
		if err = t.post(url, body); err == nil {
			return
		}
	}

	slog.Error("event dropped after retries",
		"err", err,
		"attempts", attempts,
		"payload", string(body),
	)
}

func (t *Transport) post(url string, body []byte) error {
	resp, err := t.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// A rejected or failed ingest reads the same as a network error:
	// the event is not durable, retry or drop.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d", url, resp.StatusCode)
	}
	return nil
}
