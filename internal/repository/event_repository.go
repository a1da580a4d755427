package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// EventRepo provides read access to the `events` table. Events are
// seeded by operations tooling rather than through the API, so the
// repository only exposes lookups.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = "id, name, slug, starts_at, ends_at, created_at, updated_at"

// GetByID retrieves an event by its ID. It returns ErrEventNotFound
// when no row matches.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?",
		id).Scan(&e.ID, &e.Name, &e.Slug, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListAll returns every event ordered by start time descending
// (upcoming editions first).
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events ORDER BY starts_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
