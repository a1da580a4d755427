package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/conference-session-scheduler/internal/ledger"
	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// LedgerStore is the MySQL implementation of ledger.Store. Every
// ledger operation runs inside a transaction that first locks the
// talk row with SELECT ... FOR UPDATE, so concurrent confirmations
// and cancellations of the same talk serialize at the database and
// can never both pass the capacity check. All timestamps are stored
// in UTC.
type LedgerStore struct {
	db *sql.DB
}

// NewLedgerStore returns a LedgerStore bound to the given database.
func NewLedgerStore(db *sql.DB) *LedgerStore { return &LedgerStore{db: db} }

// InTx opens a transaction, takes the per-talk row lock and runs fn.
// A non-nil error from fn rolls the transaction back; otherwise it
// commits. Locking a talk ID that does not exist locks nothing; the
// ledger detects the missing talk through Tx.Talk.
func (s *LedgerStore) InTx(ctx context.Context, talkID uint64, fn func(ledger.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var lockedID uint64
	err = tx.QueryRowContext(ctx, "SELECT id FROM talks WHERE id = ? FOR UPDATE", talkID).Scan(&lockedID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReservationsByAttendee lists every reservation the attendee holds,
// ordered by creation time. Used by the withdraw-from-event flow to
// learn which talks need a promotion pass.
func (s *LedgerStore) ReservationsByAttendee(ctx context.Context, attendeeID uint64) ([]model.SessionReservation, error) {
	const q = `SELECT id, attendee_id, talk_id, is_confirmed, is_waiting, created_at
	           FROM session_reservations WHERE attendee_id = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, q, attendeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SessionReservation, 0)
	for rows.Next() {
		var r model.SessionReservation
		if err := rows.Scan(&r.ID, &r.AttendeeID, &r.TalkID, &r.IsConfirmed, &r.IsWaiting, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReservationDetail pairs a reservation with the talk it belongs to
// for display to attendees. Status is derived from the state flags:
// CONFIRMED, WAITING or PENDING.
type ReservationDetail struct {
	ID          uint64 `json:"id"`
	TalkID      uint64 `json:"talk_id"`
	TalkTitle   string `json:"talk_title"`
	SpeakerName string `json:"speaker_name"`
	Spots       uint32 `json:"spots"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// DetailsByAttendee returns the attendee's reservations joined with
// talk information, oldest first. When no reservations exist, an
// empty slice is returned.
func (s *LedgerStore) DetailsByAttendee(ctx context.Context, attendeeID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.talk_id, t.title, t.speaker_name, t.spots, r.is_confirmed, r.is_waiting, r.created_at
	           FROM session_reservations r
	           JOIN talks t ON t.id = r.talk_id
	           WHERE r.attendee_id = ?
	           ORDER BY r.created_at, r.id`
	rows, err := s.db.QueryContext(ctx, q, attendeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var confirmed, waiting bool
		var created time.Time
		if err := rows.Scan(&d.ID, &d.TalkID, &d.TalkTitle, &d.SpeakerName, &d.Spots, &confirmed, &waiting, &created); err != nil {
			return nil, err
		}
		switch {
		case confirmed:
			d.Status = "CONFIRMED"
		case waiting:
			d.Status = "WAITING"
		default:
			d.Status = "PENDING"
		}
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ledgerTx adapts one *sql.Tx to the ledger.Tx interface. Finders
// return (nil, nil) when no row matches; only infrastructure
// failures surface as errors.
type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) Talk(ctx context.Context, talkID uint64) (*model.Talk, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+talkColumns+" FROM talks WHERE id = ?", talkID)
	talk, err := scanTalk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return talk, nil
}

func (t *ledgerTx) Attendee(ctx context.Context, userID uint64) (*model.User, error) {
	var u model.User
	err := t.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?",
		userID).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

const reservationColumns = "id, attendee_id, talk_id, is_confirmed, is_waiting, created_at"

func (t *ledgerTx) scanReservation(row *sql.Row) (*model.SessionReservation, error) {
	var r model.SessionReservation
	err := row.Scan(&r.ID, &r.AttendeeID, &r.TalkID, &r.IsConfirmed, &r.IsWaiting, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (t *ledgerTx) FindReservation(ctx context.Context, attendeeID, talkID uint64) (*model.SessionReservation, error) {
	return t.scanReservation(t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM session_reservations WHERE attendee_id = ? AND talk_id = ?",
		attendeeID, talkID))
}

func (t *ledgerTx) CreateReservation(ctx context.Context, attendeeID, talkID uint64) (*model.SessionReservation, error) {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO session_reservations (attendee_id, talk_id) VALUES (?, ?)",
		attendeeID, talkID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	// query back the row so created_at reflects the database default
	return t.scanReservation(t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM session_reservations WHERE id = ?", id))
}

func (t *ledgerTx) CountConfirmed(ctx context.Context, talkID uint64) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM session_reservations WHERE talk_id = ? AND is_confirmed = 1",
		talkID).Scan(&n)
	return n, err
}

func (t *ledgerTx) OldestWaiting(ctx context.Context, talkID uint64) (*model.SessionReservation, error) {
	// id breaks ties between reservations created in the same second
	return t.scanReservation(t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM session_reservations WHERE talk_id = ? AND is_waiting = 1 ORDER BY created_at, id LIMIT 1",
		talkID))
}

func (t *ledgerTx) Save(ctx context.Context, r *model.SessionReservation) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE session_reservations SET is_confirmed = ?, is_waiting = ? WHERE id = ?",
		r.IsConfirmed, r.IsWaiting, r.ID)
	return err
}

func (t *ledgerTx) Delete(ctx context.Context, r *model.SessionReservation) error {
	_, err := t.tx.ExecContext(ctx, "DELETE FROM session_reservations WHERE id = ?", r.ID)
	return err
}
