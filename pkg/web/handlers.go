package web

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/deskwatch/deskwatch/pkg/activity"
	"github.com/deskwatch/deskwatch/pkg/hub"
	"github.com/deskwatch/deskwatch/pkg/store"
)

// handleTrackEvent validates and persists one event, then pushes it to
// observers. Persistence happens before fan-out, so an observer never
// sees an event a concurrent summary query would miss.
func (s *Server) handleTrackEvent(c *fiber.Ctx) error {
	var req activity.TrackEventRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("malformed track_event body", "err", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed JSON body",
		})
	}

	if err := req.Validate(); err != nil {
		slog.Warn("rejected track_event payload", "err", err, "payload", req)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	row := store.Activity{
		EmployeeID: req.EmployeeID,
		EventType:  req.EventType,
		EventTime:  req.EventTime,
		Duration:   req.Duration,
		Details:    req.Details,
	}
	if err := s.store.Append(c.Context(), &row); err != nil {
		slog.Error("failed to persist event", "err", err, "employee_id", req.EmployeeID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to persist event",
		})
	}

	if err := s.hub.BroadcastEvent(req); err != nil {
		// The row is durable; a fan-out hiccup is not the caller's
		// problem.
		slog.Warn("failed to broadcast event", "err", err)
	}

	return c.JSON(fiber.Map{"message": "Event tracked successfully"})
}

// handleActivitySummary returns per-type duration totals for the
// current local date.
func (s *Server) handleActivitySummary(c *fiber.Ctx) error {
	employeeID, ok := employeeParam(c, "employee_id")
	if !ok {
		return nil
	}

	date := time.Now().Format(time.DateOnly)
	summary, err := s.store.DailySummary(c.Context(), employeeID, date)
	if err != nil {
		slog.Error("failed to summarize activity", "err", err, "employee_id", employeeID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to summarize activity",
		})
	}

	return c.JSON(fiber.Map{
		"employee_id": employeeID,
		"date":        date,
		"summary":     summary,
	})
}

// handleRecentEvents returns the 100 most recent events, newest first.
func (s *Server) handleRecentEvents(c *fiber.Ctx) error {
	employeeID, ok := employeeParam(c, "employee_id")
	if !ok {
		return nil
	}

	events, err := s.store.RecentEvents(c.Context(), employeeID, 100)
	if err != nil {
		slog.Error("failed to load events", "err", err, "employee_id", employeeID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load events",
		})
	}
	if events == nil {
		events = []store.Activity{}
	}

	return c.JSON(fiber.Map{
		"employee_id": employeeID,
		"events":      events,
	})
}

func (s *Server) handlePutEmployee(c *fiber.Ctx) error {
	id, ok := employeeParam(c, "id")
	if !ok {
		return nil
	}

	var emp store.Employee
	if err := c.BodyParser(&emp); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed JSON body",
		})
	}
	emp.ID = id

	if err := s.store.UpsertEmployee(c.Context(), &emp); err != nil {
		slog.Error("failed to save employee", "err", err, "id", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save employee",
		})
	}
	return c.JSON(emp)
}

func (s *Server) handleGetEmployee(c *fiber.Ctx) error {
	id, ok := employeeParam(c, "id")
	if !ok {
		return nil
	}

	emp, err := s.store.GetEmployee(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "employee not found",
		})
	}
	if err != nil {
		slog.Error("failed to load employee", "err", err, "id", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load employee",
		})
	}
	return c.JSON(emp)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"version":   s.version,
		"start_at":  s.startAt.Format(time.DateTime),
		"observers": s.hub.ClientCount(),
	})
}

// handleEventsWS upgrades an observer connection into the hub.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.hub, c)
	client.Run()
}

// employeeParam parses a positive integer route parameter, writing
// the 400 response itself when the value is unusable.
func employeeParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": name + " must be a positive integer",
		})
		return 0, false
	}
	return id, true
}
