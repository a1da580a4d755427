package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-session-scheduler/internal/ledger"
	"github.com/iliyamo/conference-session-scheduler/internal/repository"
)

// ReservationHandler exposes the attendee-facing seat reservation
// flow. All state transitions run through the ledger; the handler
// only authenticates the caller, checks that the talk is open for
// reservations and translates ledger errors into HTTP responses.
type ReservationHandler struct {
	Users  *repository.UserRepo
	Events *repository.EventRepo
	Talks  *repository.TalkRepo
	Store  *repository.LedgerStore
	Ledger *ledger.Ledger
	// Now is the clock used for the event-started check. Tests may
	// override it; nil means time.Now.
	Now func() time.Time
}

// NewReservationHandler constructs a ReservationHandler. All
// dependencies must be non-nil.
func NewReservationHandler(users *repository.UserRepo, events *repository.EventRepo, talks *repository.TalkRepo, store *repository.LedgerStore, lg *ledger.Ledger) *ReservationHandler {
	if users == nil || events == nil || talks == nil || store == nil || lg == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Users: users, Events: events, Talks: talks, Store: store, Ledger: lg, Now: time.Now}
}

// ledgerError maps the ledger's sentinel errors onto HTTP responses.
// ErrOverbooked is deliberately a 409 with its own message: the
// attendee is enrolled on the waiting list, not rejected outright.
func ledgerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrAlreadyReserved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already hold a reservation for this talk"})
	case errors.Is(err, ledger.ErrOverbooked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "talk is full, you have been added to the waiting list"})
	case errors.Is(err, ledger.ErrExpiredToken):
		return c.JSON(http.StatusGone, echo.Map{"error": "confirmation token has expired"})
	case errors.Is(err, ledger.ErrInvalidToken):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirmation token is invalid"})
	case errors.Is(err, ledger.ErrWrongUser):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "token was issued to another user"})
	case errors.Is(err, ledger.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation or talk not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation ledger error"})
	}
}

// Reserve handles POST /v1/talks/:id/reservations. It validates that
// the talk is open for reservations, records a pending reservation
// and returns the confirmation token.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	talkID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid talk id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
	}
	talk, err := h.Talks.GetByID(ctx, talkID)
	if err != nil {
		if err == repository.ErrTalkNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "talk not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	event, err := h.Events.GetByID(ctx, talk.EventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !talk.Reservable(event, h.Now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "talk is not open for reservations"})
	}

	token, err := h.Ledger.Reserve(ctx, &user, talkID)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":            "reservation created, confirm to claim your seat",
		"confirmation_token": token,
	})
}

// confirmReq is the payload for POST /v1/reservations/confirm.
type confirmReq struct {
	Token string `json:"token"`
}

// Confirm handles POST /v1/reservations/confirm. A valid token turns
// the pending reservation into a confirmed seat, or enrolls the
// attendee on the waiting list when the talk is full.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
	}
	if err := h.Ledger.Confirm(ctx, &user, req.Token); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation confirmed"})
}

// Cancel handles DELETE /v1/talks/:id/reservations. Cancelling a
// confirmed seat promotes the oldest waiting attendee, if any.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	talkID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid talk id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	if err := h.Ledger.Cancel(c.Request().Context(), userID, talkID); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// CancelAll handles DELETE /v1/me/reservations, releasing every
// reservation the attendee holds across all talks.
func (h *ReservationHandler) CancelAll(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	if err := h.Ledger.CancelAll(c.Request().Context(), userID); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "all reservations cancelled"})
}

// ListMine handles GET /v1/me/reservations, returning each held
// reservation with its talk title and current status.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	items, err := h.Store.DetailsByAttendee(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
