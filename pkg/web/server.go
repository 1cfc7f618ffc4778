// Package web provides the ingestion and query HTTP service plus the
// live websocket channel for observers.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/deskwatch/deskwatch/pkg/hub"
	"github.com/deskwatch/deskwatch/pkg/store"
)

// Server wires the store and the fan-out hub behind the HTTP surface.
type Server struct {
	app     *fiber.App
	store   *store.Store
	hub     *hub.Hub
	version string
	startAt time.Time
}

// NewServer creates the service. The hub's Run loop is started here;
// callers only need to Listen.
func NewServer(st *store.Store, h *hub.Hub, version string) *Server {
	s := &Server{
		store:   st,
		hub:     h,
		version: version,
		startAt: time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "deskwatchd",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Post("/track_event", s.handleTrackEvent)
	app.Get("/activity_summary/:employee_id", s.handleActivitySummary)
	app.Get("/events/:employee_id", s.handleRecentEvents)
	app.Put("/employees/:id", s.handlePutEmployee)
	app.Get("/employees/:id", s.handleGetEmployee)
	app.Get("/health", s.handleHealth)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	go h.Run()

	s.app = app
	return s
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
