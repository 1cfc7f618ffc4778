// Package hub provides a thread-safe websocket broadcast hub using the
// idiomatic Go channel-based fan-out pattern. Delivery is best-effort
// and at-most-once per connection: observers that connect late never
// see earlier events, and slow observers are dropped rather than
// allowed to block the broadcast. The store is the source of truth.
package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// EventName is the name wrapped around every broadcast payload.
const EventName = "new_event"

// envelope is the wire shape pushed to observers.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub maintains the set of active observers and broadcasts ingested
// events to them.
type Hub struct {
	// Registered observers
	clients map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan []byte

	// Register requests from observers
	register chan *Client

	// Unregister requests from observers
	unregister chan *Client

	// Guards clients for read access from outside the Run loop
	mu sync.RWMutex
}

// New creates a Hub. Call Run in a goroutine before serving upgrades.
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. It must be the only goroutine mutating it.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			slog.Info("observer connected", "client", client.id, "total", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			slog.Info("observer disconnected", "client", client.id, "remaining", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Saturated observer: drop the connection, never
					// the broadcast.
					close(client.send)
					delete(h.clients, client)
					slog.Warn("dropped slow observer", "client", client.id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent wraps the payload in the new_event envelope and
// queues it for all connected observers.
func (h *Hub) BroadcastEvent(payload any) error {
	data, err := json.Marshal(envelope{Event: EventName, Data: payload})
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}

	select {
	case h.broadcast <- data:
		return nil
	default:
		slog.Warn("broadcast channel full, dropping event")
		return nil
	}
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
