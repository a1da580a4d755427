// Package handler exposes HTTP handlers for both authenticated and
// public endpoints. This file defines the public schedule API: any
// visitor can browse events and their timetable grid without
// authentication.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-session-scheduler/internal/repository"
	"github.com/iliyamo/conference-session-scheduler/internal/schedule"
)

// ScheduleHandler aggregates the repositories needed to assemble the
// schedule grid of an event. The grid itself is computed by the pure
// schedule package; this handler only loads its inputs and serializes
// the result.
type ScheduleHandler struct {
	EventRepo    *repository.EventRepo
	RoomRepo     *repository.RoomRepo
	TimeSlotRepo *repository.TimeSlotRepo
	TalkRepo     *repository.TalkRepo
	TalkSlotRepo *repository.TalkSlotRepo
}

// NewScheduleHandler constructs a ScheduleHandler with the provided
// repositories. All dependencies must be non-nil.
func NewScheduleHandler(events *repository.EventRepo, rooms *repository.RoomRepo, slots *repository.TimeSlotRepo, talks *repository.TalkRepo, talkSlots *repository.TalkSlotRepo) *ScheduleHandler {
	if events == nil || rooms == nil || slots == nil || talks == nil || talkSlots == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	return &ScheduleHandler{
		EventRepo:    events,
		RoomRepo:     rooms,
		TimeSlotRepo: slots,
		TalkRepo:     talks,
		TalkSlotRepo: talkSlots,
	}
}

// publicEvent is the sanitized event representation for listings.
type publicEvent struct {
	ID       uint64    `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ListEvents handles GET /v1/events. It returns all events, newest
// edition first.
func (h *ScheduleHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.EventRepo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]publicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, publicEvent{ID: e.ID, Name: e.Name, Slug: e.Slug, StartsAt: e.StartsAt, EndsAt: e.EndsAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetSchedule handles GET /v1/events/:id/schedule. It loads the
// event's time slots, rooms, talks and assignments and returns the
// rendered grid. The response is a pure function of stored data and
// is therefore a prime candidate for the response cache middleware.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.EventRepo.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	slots, err := h.TimeSlotRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	rooms, err := h.RoomRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	talks, err := h.TalkRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	assignments, err := h.TalkSlotRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	grid := schedule.Build(slots, rooms, assignments, talks)
	return c.JSON(http.StatusOK, grid)
}
