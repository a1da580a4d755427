package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// RoomRepo provides CRUD access to the `rooms` table. Rooms form the
// columns of the schedule grid and are ordered by priority.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// Create inserts a new room and populates the generated ID on the
// provided struct.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO rooms (event_id, name, priority) VALUES (?, ?, ?)",
		room.EventID, room.Name, room.Priority)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound
// when no row matches.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	var room model.Room
	err := r.db.QueryRowContext(ctx,
		"SELECT id, event_id, name, priority FROM rooms WHERE id = ?",
		id).Scan(&room.ID, &room.EventID, &room.Name, &room.Priority)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// ListByEvent returns the rooms of an event in priority order, ties
// broken by name for deterministic grid columns.
func (r *RoomRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, event_id, name, priority FROM rooms WHERE event_id = ? ORDER BY priority, name",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.EventID, &room.Name, &room.Priority); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Delete removes a room. It returns ErrConflict when talks are still
// scheduled in the room and ErrRoomNotFound when the room does not
// exist.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM talk_slots WHERE room_id = ?", id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
