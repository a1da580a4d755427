package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// TimeSlotRepo provides CRUD access to the `time_slots` table. All
// timestamp fields are assumed to be stored in UTC.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo returns a TimeSlotRepo bound to the given database.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

const timeSlotColumns = "id, event_id, name, block, start_time, end_time, text_body"

// Create inserts a new time slot and populates the generated ID on
// the provided struct. StartTime and EndTime are stored in UTC.
func (r *TimeSlotRepo) Create(ctx context.Context, s *model.TimeSlot) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO time_slots (event_id, name, block, start_time, end_time, text_body) VALUES (?, ?, ?, ?, ?, ?)",
		s.EventID, s.Name, s.Block, s.StartTime.UTC(), s.EndTime.UTC(), s.TextBody)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID retrieves a time slot by its ID. It returns
// ErrTimeSlotNotFound when no row matches.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	var s model.TimeSlot
	err := r.db.QueryRowContext(ctx,
		"SELECT "+timeSlotColumns+" FROM time_slots WHERE id = ?",
		id).Scan(&s.ID, &s.EventID, &s.Name, &s.Block, &s.StartTime, &s.EndTime, &s.TextBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByEvent returns the time slots of an event in grid order:
// block, start time, end time, then name for stable ties. This is
// the input ordering the schedule builder expects.
func (r *TimeSlotRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TimeSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+timeSlotColumns+" FROM time_slots WHERE event_id = ? ORDER BY block, start_time, end_time, name",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0)
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.EventID, &s.Name, &s.Block, &s.StartTime, &s.EndTime, &s.TextBody); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Delete removes a time slot. It returns ErrConflict when talks are
// still assigned to the slot and ErrTimeSlotNotFound when the slot
// does not exist.
func (r *TimeSlotRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM talk_slots WHERE time_slot_id = ?", id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM time_slots WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTimeSlotNotFound
	}
	return nil
}
