package model

import "time"

// Track represents a thematic grouping of talks within an event,
// corresponding to a row in the `tracks` table. A talk is assigned
// a track once it has been accepted and published; talks without a
// track are considered unpublished.
//
// Fields:
//  ID      – primary key identifier.
//  EventID – event this track belongs to.
//  Name    – unique track name per event.
type Track struct {
	ID      uint64 // tracks.id
	EventID uint64 // tracks.event_id
	Name    string // tracks.name
}

// Talk represents a submitted conference session as stored in the
// `talks` table. A talk may be assigned to at most one schedule
// slot (see TalkSlot). Talks with a positive Spots value are
// workshop-style sessions with limited attendance that require a
// seat reservation.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event the talk belongs to.
//  TrackID     – track assignment (nil while unpublished).
//  Title       – talk title.
//  SpeakerName – display name of the speaker.
//  Spots       – seat capacity; 0 means unlimited, no reservation needed.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Talk struct {
	ID          uint64    // talks.id
	EventID     uint64    // talks.event_id
	TrackID     *uint64   // talks.track_id (nullable)
	Title       string    // talks.title
	SpeakerName string    // talks.speaker_name
	Spots       uint32    // talks.spots
	CreatedAt   time.Time // talks.created_at
	UpdatedAt   time.Time // talks.updated_at
}

// Reservable reports whether seats on this talk can currently be
// reserved: the talk must have a seat cap, be published on a track,
// and its event must not have started yet.
func (t *Talk) Reservable(event *Event, now time.Time) bool {
	return t.Spots > 0 && t.TrackID != nil && !event.Started(now)
}
