package model

import "time"

// TalkSlot assigns a talk to exactly one room and one time slot,
// corresponding to a row in the `talk_slots` table. The talk_id
// column carries a unique constraint so a talk can never be
// scheduled twice.
//
// Fields:
//  ID         – primary key identifier.
//  TalkID     – scheduled talk (unique).
//  RoomID     – room the talk takes place in.
//  TimeSlotID – slot of the timetable.
//  CreatedAt  – timestamp of creation.
type TalkSlot struct {
	ID         uint64    // talk_slots.id
	TalkID     uint64    // talk_slots.talk_id
	RoomID     uint64    // talk_slots.room_id
	TimeSlotID uint64    // talk_slots.time_slot_id
	CreatedAt  time.Time // talk_slots.created_at
}
