// Package ledger implements the seat-reservation state machine for
// spot-limited talks: reserve, confirm by signed token, cancel and
// waiting-list promotion. These sentinel values let handlers map
// each failure scenario to a distinct HTTP response. All of them are
// recoverable, user-facing conditions; none is fatal to the process.
package ledger

import "errors"

// ErrAlreadyReserved is returned by Reserve when the attendee
// already holds a reservation for the talk, in whatever state.
// Handlers should translate this into an HTTP 409 response.
var ErrAlreadyReserved = errors.New("already reserved")

// ErrExpiredToken is returned by Confirm when the confirmation
// token's signature is valid but its age exceeds the configured
// maximum. No state change occurs.
var ErrExpiredToken = errors.New("confirmation token expired")

// ErrInvalidToken is returned by Confirm when the confirmation
// token does not verify at all. No state change occurs.
var ErrInvalidToken = errors.New("invalid confirmation token")

// ErrWrongUser is returned by Confirm when the token is valid but
// was issued to a different attendee than the caller. No state
// change occurs.
var ErrWrongUser = errors.New("token issued to a different user")

// ErrOverbooked is returned by Confirm when every seat of the talk
// is taken. Unlike the other failures it leaves persisted state
// behind: the reservation is kept with is_waiting set, enrolling
// the attendee on the waiting list.
var ErrOverbooked = errors.New("talk is fully booked")

// ErrNotFound is returned when a talk or reservation the operation
// refers to does not exist.
var ErrNotFound = errors.New("not found")
