// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource they do not own,
// while ErrConflict signals that an operation cannot proceed due to
// existing dependent records (e.g. deleting a time slot that still
// has talks assigned to it).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as removing a room
// that still has talks scheduled in it. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEventNotFound is returned when an event lookup fails.
var ErrEventNotFound = errors.New("event not found")

// ErrTalkNotFound is returned when a talk lookup fails.
var ErrTalkNotFound = errors.New("talk not found")

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// ErrTimeSlotNotFound is returned when a time slot lookup fails.
var ErrTimeSlotNotFound = errors.New("time slot not found")
