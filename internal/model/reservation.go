package model

import "time"

// SessionReservation records an attendee's claim on a seat of a
// spot-limited talk, corresponding to a row in the
// `session_reservations` table. The (attendee_id, talk_id) pair is
// unique. A reservation is in exactly one of three states:
//
//  pending   – created but not yet confirmed (both flags false)
//  confirmed – holds one of the talk's seats (IsConfirmed true)
//  waiting   – enrolled on the waiting list because the talk was
//              full at confirmation time (IsWaiting true)
//
// IsConfirmed and IsWaiting are never both true. Cancellation
// deletes the row; the oldest waiting reservation of the same talk
// is then promoted into the freed seat.
//
// Fields:
//  ID         – primary key identifier.
//  AttendeeID – user holding the reservation.
//  TalkID     – talk the seat belongs to.
//  IsConfirmed – reservation occupies a seat.
//  IsWaiting  – reservation is queued on the waiting list.
//  CreatedAt  – creation timestamp; orders the waiting list FIFO.
type SessionReservation struct {
	ID          uint64    // session_reservations.id
	AttendeeID  uint64    // session_reservations.attendee_id
	TalkID      uint64    // session_reservations.talk_id
	IsConfirmed bool      // session_reservations.is_confirmed
	IsWaiting   bool      // session_reservations.is_waiting
	CreatedAt   time.Time // session_reservations.created_at
}
