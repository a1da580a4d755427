package model

import "time"

// TimeSlot represents an entry of the conference timetable as stored
// in the `time_slots` table. Slots are grouped into blocks (usually
// one block per day) for grid layout. A slot whose TextBody is
// non-empty renders as a label row (e.g. "Coffee break") instead of
// holding talks.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – event the slot belongs to.
//  Name      – display name (e.g. "Session 1").
//  Block     – grouping key for grid layout.
//  StartTime – when the slot begins.
//  EndTime   – when the slot ends (must be after StartTime).
//  TextBody  – label text; non-empty turns the slot into a label row.
type TimeSlot struct {
	ID        uint64    // time_slots.id
	EventID   uint64    // time_slots.event_id
	Name      string    // time_slots.name
	Block     string    // time_slots.block
	StartTime time.Time // time_slots.start_time
	EndTime   time.Time // time_slots.end_time
	TextBody  string    // time_slots.text_body
}

// Contains reports whether this slot fully encloses other within the
// same block: it starts no later and ends no earlier. A slot does
// not contain itself.
func (s *TimeSlot) Contains(other *TimeSlot) bool {
	if s.ID == other.ID {
		return false
	}
	return !s.StartTime.After(other.StartTime) && !other.EndTime.After(s.EndTime)
}
