package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// TalkRepo provides CRUD access to the `talks` table.
type TalkRepo struct {
	db *sql.DB
}

// NewTalkRepo returns a TalkRepo bound to the given database.
func NewTalkRepo(db *sql.DB) *TalkRepo { return &TalkRepo{db: db} }

const talkColumns = "id, event_id, track_id, title, speaker_name, spots, created_at, updated_at"

func scanTalk(row interface{ Scan(...interface{}) error }) (*model.Talk, error) {
	var t model.Talk
	var trackID sql.NullInt64
	err := row.Scan(&t.ID, &t.EventID, &trackID, &t.Title, &t.SpeakerName, &t.Spots, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if trackID.Valid {
		id := uint64(trackID.Int64)
		t.TrackID = &id
	}
	return &t, nil
}

// Create inserts a new talk and populates the generated ID on the
// provided struct. TrackID may be nil for unpublished talks.
func (r *TalkRepo) Create(ctx context.Context, t *model.Talk) error {
	var trackID interface{}
	if t.TrackID != nil {
		trackID = *t.TrackID
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO talks (event_id, track_id, title, speaker_name, spots) VALUES (?, ?, ?, ?, ?)",
		t.EventID, trackID, t.Title, t.SpeakerName, t.Spots)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID retrieves a talk by its ID. It returns ErrTalkNotFound
// when no row matches.
func (r *TalkRepo) GetByID(ctx context.Context, id uint64) (*model.Talk, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+talkColumns+" FROM talks WHERE id = ?", id)
	t, err := scanTalk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTalkNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByEvent returns every talk of an event ordered by title. The
// schedule builder uses this list both to fill grid cells and to
// collect unscheduled talks.
func (r *TalkRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Talk, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+talkColumns+" FROM talks WHERE event_id = ? ORDER BY title",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	talks := make([]model.Talk, 0)
	for rows.Next() {
		t, err := scanTalk(rows)
		if err != nil {
			return nil, err
		}
		talks = append(talks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return talks, nil
}
