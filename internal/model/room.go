package model

// Room represents a physical room of the conference venue as stored
// in the `rooms` table. Rooms form the columns of the schedule grid
// and are ordered by their Priority value.
//
// Fields:
//  ID       – primary key identifier.
//  EventID  – event the room belongs to.
//  Name     – display name (e.g. "Main Hall").
//  Priority – ordering weight; lower values render further left.
type Room struct {
	ID       uint64 // rooms.id
	EventID  uint64 // rooms.event_id
	Name     string // rooms.name
	Priority int32  // rooms.priority
}
