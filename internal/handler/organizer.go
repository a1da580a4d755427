package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
	"github.com/iliyamo/conference-session-scheduler/internal/repository"
)

// OrganizerHandler bundles the endpoints reserved for users with the
// ORGANIZER role: managing rooms, time slots, talks and schedule
// assignments. Role enforcement happens in the middleware layer; the
// handlers here only validate payloads and touch the repositories.
type OrganizerHandler struct {
	EventRepo    *repository.EventRepo
	RoomRepo     *repository.RoomRepo
	TimeSlotRepo *repository.TimeSlotRepo
	TalkRepo     *repository.TalkRepo
	TalkSlotRepo *repository.TalkSlotRepo
}

// NewOrganizerHandler constructs an OrganizerHandler with the given
// repositories. All dependencies must be non-nil.
func NewOrganizerHandler(events *repository.EventRepo, rooms *repository.RoomRepo, slots *repository.TimeSlotRepo, talks *repository.TalkRepo, talkSlots *repository.TalkSlotRepo) *OrganizerHandler {
	if events == nil || rooms == nil || slots == nil || talks == nil || talkSlots == nil {
		panic("nil repository passed to NewOrganizerHandler")
	}
	return &OrganizerHandler{
		EventRepo:    events,
		RoomRepo:     rooms,
		TimeSlotRepo: slots,
		TalkRepo:     talks,
		TalkSlotRepo: talkSlots,
	}
}

// createRoomReq is the payload for POST /v1/events/:id/rooms.
type createRoomReq struct {
	Name     string `json:"name"`
	Priority int32  `json:"priority"`
}

// CreateRoom handles POST /v1/events/:id/rooms.
func (h *OrganizerHandler) CreateRoom(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req createRoomReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.EventRepo.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	room := &model.Room{EventID: eventID, Name: req.Name, Priority: req.Priority}
	if err := h.RoomRepo.Create(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create room"})
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/events/:id/rooms.
func (h *OrganizerHandler) ListRooms(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	rooms, err := h.RoomRepo.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// DeleteRoom handles DELETE /v1/rooms/:id. Rooms with scheduled
// talks cannot be removed.
func (h *OrganizerHandler) DeleteRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	switch err := h.RoomRepo.Delete(c.Request().Context(), id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "room still has scheduled talks"})
	case repository.ErrRoomNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// createTimeSlotReq is the payload for POST /v1/events/:id/timeslots.
// Times are RFC 3339 and interpreted in UTC. A non-empty text_body
// turns the slot into a full-width label row such as "Lunch break".
type createTimeSlotReq struct {
	Name      string    `json:"name"`
	Block     string    `json:"block"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	TextBody  string    `json:"text_body"`
}

// CreateTimeSlot handles POST /v1/events/:id/timeslots.
func (h *OrganizerHandler) CreateTimeSlot(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req createTimeSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if req.Name == "" || req.Block == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and block are required"})
	}
	if !req.EndTime.After(req.StartTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	ctx := c.Request().Context()
	if _, err := h.EventRepo.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slot := &model.TimeSlot{
		EventID:   eventID,
		Name:      req.Name,
		Block:     req.Block,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		TextBody:  req.TextBody,
	}
	if err := h.TimeSlotRepo.Create(ctx, slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create time slot"})
	}
	return c.JSON(http.StatusCreated, slot)
}

// ListTimeSlots handles GET /v1/events/:id/timeslots.
func (h *OrganizerHandler) ListTimeSlots(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	slots, err := h.TimeSlotRepo.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// DeleteTimeSlot handles DELETE /v1/timeslots/:id. Slots with
// scheduled talks cannot be removed.
func (h *OrganizerHandler) DeleteTimeSlot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot id"})
	}
	switch err := h.TimeSlotRepo.Delete(c.Request().Context(), id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot still has scheduled talks"})
	case repository.ErrTimeSlotNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// createTalkReq is the payload for POST /v1/events/:id/talks. A zero
// spots value means unlimited attendance with no reservations.
type createTalkReq struct {
	Title       string  `json:"title"`
	SpeakerName string  `json:"speaker_name"`
	Spots       uint32  `json:"spots"`
	TrackID     *uint64 `json:"track_id"`
}

// CreateTalk handles POST /v1/events/:id/talks.
func (h *OrganizerHandler) CreateTalk(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req createTalkReq
	if err := c.Bind(&req); err != nil || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.EventRepo.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	talk := &model.Talk{
		EventID:     eventID,
		TrackID:     req.TrackID,
		Title:       req.Title,
		SpeakerName: req.SpeakerName,
		Spots:       req.Spots,
	}
	if err := h.TalkRepo.Create(ctx, talk); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create talk"})
	}
	return c.JSON(http.StatusCreated, talk)
}

// assignSlotReq is the payload for PUT /v1/talks/:id/slot.
type assignSlotReq struct {
	RoomID     uint64 `json:"room_id"`
	TimeSlotID uint64 `json:"time_slot_id"`
}

// AssignSlot handles PUT /v1/talks/:id/slot. Re-assigning moves the
// talk; a talk occupies at most one slot at any time.
func (h *OrganizerHandler) AssignSlot(c echo.Context) error {
	talkID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid talk id"})
	}
	var req assignSlotReq
	if err := c.Bind(&req); err != nil || req.RoomID == 0 || req.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and time_slot_id are required"})
	}
	ctx := c.Request().Context()
	talk, err := h.TalkRepo.GetByID(ctx, talkID)
	if err != nil {
		if err == repository.ErrTalkNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "talk not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	room, err := h.RoomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slot, err := h.TimeSlotRepo.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if err == repository.ErrTimeSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if room.EventID != talk.EventID || slot.EventID != talk.EventID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room and time slot must belong to the talk's event"})
	}
	if err := h.TalkSlotRepo.Assign(ctx, talkID, req.RoomID, req.TimeSlotID); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "assignment conflicts with existing data"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not assign slot"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "talk scheduled"})
}

// UnassignSlot handles DELETE /v1/talks/:id/slot. Unassigning a talk
// that was never scheduled succeeds silently.
func (h *OrganizerHandler) UnassignSlot(c echo.Context) error {
	talkID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid talk id"})
	}
	if err := h.TalkSlotRepo.Unassign(c.Request().Context(), talkID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not unassign slot"})
	}
	return c.NoContent(http.StatusNoContent)
}
