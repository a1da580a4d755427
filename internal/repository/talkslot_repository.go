package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// TalkSlotRepo provides access to the `talk_slots` table, which maps
// each scheduled talk to exactly one room and time slot. The talk_id
// column carries a unique constraint enforcing the one-slot-per-talk
// invariant at the database level.
type TalkSlotRepo struct {
	db *sql.DB
}

// NewTalkSlotRepo returns a TalkSlotRepo bound to the given database.
func NewTalkSlotRepo(db *sql.DB) *TalkSlotRepo { return &TalkSlotRepo{db: db} }

// Assign schedules a talk into a room and time slot. When the talk
// already has a slot the assignment is replaced, keeping the
// one-to-one relation intact.
func (r *TalkSlotRepo) Assign(ctx context.Context, talkID, roomID, timeSlotID uint64) error {
	const q = `INSERT INTO talk_slots (talk_id, room_id, time_slot_id) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE room_id = VALUES(room_id), time_slot_id = VALUES(time_slot_id)`
	_, err := r.db.ExecContext(ctx, q, talkID, roomID, timeSlotID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1452") {
		// foreign key failure: the talk, room or slot does not exist
		return ErrConflict
	}
	return err
}

// Unassign removes a talk from the schedule. Removing a talk that
// was never scheduled is a no-op.
func (r *TalkSlotRepo) Unassign(ctx context.Context, talkID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM talk_slots WHERE talk_id = ?", talkID)
	return err
}

// ListByEvent returns every talk assignment of an event. The join
// through talks restricts assignments to the requested event.
func (r *TalkSlotRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TalkSlot, error) {
	const q = `SELECT ts.id, ts.talk_id, ts.room_id, ts.time_slot_id, ts.created_at
	           FROM talk_slots ts
	           JOIN talks t ON t.id = ts.talk_id
	           WHERE t.event_id = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TalkSlot, 0)
	for rows.Next() {
		var a model.TalkSlot
		if err := rows.Scan(&a.ID, &a.TalkID, &a.RoomID, &a.TimeSlotID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
