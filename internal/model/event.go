package model

import "time"

// Event represents a single conference edition as stored in the
// `events` table. Talks, rooms and time slots all reference one
// event. Reservations for a talk are only accepted while the
// event has not started yet.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the conference edition.
//  Slug      – URL-friendly unique identifier.
//  StartsAt  – when the conference opens.
//  EndsAt    – when the conference closes.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Event struct {
	ID        uint64    // events.id
	Name      string    // events.name
	Slug      string    // events.slug
	StartsAt  time.Time // events.starts_at
	EndsAt    time.Time // events.ends_at
	CreatedAt time.Time // events.created_at
	UpdatedAt time.Time // events.updated_at
}

// Started reports whether the event has already begun at the given
// instant. Reservation endpoints use this to reject late requests.
func (e *Event) Started(now time.Time) bool {
	return !now.Before(e.StartsAt)
}
