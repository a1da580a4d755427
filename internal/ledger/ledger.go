package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// Tx exposes the persistence operations a single ledger transaction
// needs. All finders return (nil, nil) when no matching row exists;
// errors are reserved for infrastructure failures. Implementations
// are expected to run every method of one Tx inside the same
// database transaction.
type Tx interface {
	// Talk loads the talk the operation refers to.
	Talk(ctx context.Context, talkID uint64) (*model.Talk, error)
	// Attendee loads a user by ID; needed to address promotion mail.
	Attendee(ctx context.Context, userID uint64) (*model.User, error)
	// FindReservation returns the reservation of the (attendee, talk)
	// pair, if any.
	FindReservation(ctx context.Context, attendeeID, talkID uint64) (*model.SessionReservation, error)
	// CreateReservation inserts a pending reservation and returns it
	// with ID and creation time populated.
	CreateReservation(ctx context.Context, attendeeID, talkID uint64) (*model.SessionReservation, error)
	// CountConfirmed returns the number of confirmed reservations of
	// the talk (COUNT WHERE is_confirmed).
	CountConfirmed(ctx context.Context, talkID uint64) (int, error)
	// OldestWaiting returns the waiting reservation with the earliest
	// creation time (ORDER BY created ASC LIMIT 1).
	OldestWaiting(ctx context.Context, talkID uint64) (*model.SessionReservation, error)
	// Save persists the state flags of an existing reservation.
	Save(ctx context.Context, res *model.SessionReservation) error
	// Delete removes a reservation permanently.
	Delete(ctx context.Context, res *model.SessionReservation) error
}

// Store is the persistence port of the ledger. InTx runs fn inside a
// transaction serialized per talk: two concurrent invocations for
// the same talk must not interleave, so the capacity check in
// Confirm and the promotion scan in Cancel can never race into an
// overbooked state. A non-nil error from fn rolls the transaction
// back.
type Store interface {
	InTx(ctx context.Context, talkID uint64, fn func(Tx) error) error
	// ReservationsByAttendee lists every reservation the attendee
	// holds across all talks, outside any transaction.
	ReservationsByAttendee(ctx context.Context, attendeeID uint64) ([]model.SessionReservation, error)
}

// Notifier is the outbound notification port. Sending is best
// effort: the ledger never rolls back a state change because a
// notification failed, it only logs the error.
type Notifier interface {
	Send(ctx context.Context, user model.User, subject, body string) error
}

// Ledger coordinates the reservation state machine of spot-limited
// talks. Each reservation of an (attendee, talk) pair is in exactly
// one of three states: pending (created, unconfirmed), confirmed, or
// waiting. Confirmation happens via signed token; cancellation frees
// the seat and promotes the oldest waiting reservation FIFO.
type Ledger struct {
	store    Store
	signer   *TokenSigner
	notifier Notifier
}

// New assembles a Ledger from its ports. All dependencies must be
// non-nil.
func New(store Store, signer *TokenSigner, notifier Notifier) *Ledger {
	if store == nil || signer == nil || notifier == nil {
		panic("nil dependency passed to ledger.New")
	}
	return &Ledger{store: store, signer: signer, notifier: notifier}
}

// Reserve creates a pending reservation for the attendee on the
// given talk and returns the confirmation token the attendee must
// present to Confirm. It fails with ErrAlreadyReserved when a
// reservation for the pair exists in any state, and with ErrNotFound
// when the talk does not exist. Capacity is not checked here: the
// registration flow calls Confirm immediately afterwards, which
// re-checks capacity under the transaction.
func (l *Ledger) Reserve(ctx context.Context, attendee *model.User, talkID uint64) (string, error) {
	err := l.store.InTx(ctx, talkID, func(tx Tx) error {
		talk, err := tx.Talk(ctx, talkID)
		if err != nil {
			return err
		}
		if talk == nil {
			return ErrNotFound
		}
		existing, err := tx.FindReservation(ctx, attendee.ID, talkID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyReserved
		}
		_, err = tx.CreateReservation(ctx, attendee.ID, talkID)
		return err
	})
	if err != nil {
		return "", err
	}
	return l.signer.Sign(attendee.Username, talkID)
}

// Confirm validates a confirmation token and moves the attendee's
// reservation from pending to confirmed. Token failures
// (ErrExpiredToken, ErrInvalidToken, ErrWrongUser) and a missing
// reservation (ErrNotFound) cause no state change. Re-confirming an
// already confirmed reservation is a no-op. When the talk's seats
// are all taken the reservation is persisted with is_waiting set and
// ErrOverbooked is returned: a soft failure that enrolls the
// attendee on the waiting list rather than rolling back.
func (l *Ledger) Confirm(ctx context.Context, attendee *model.User, token string) error {
	username, talkID, err := l.signer.Verify(token)
	if err != nil {
		return err
	}
	if username != attendee.Username {
		return ErrWrongUser
	}
	overbooked := false
	err = l.store.InTx(ctx, talkID, func(tx Tx) error {
		res, err := tx.FindReservation(ctx, attendee.ID, talkID)
		if err != nil {
			return err
		}
		if res == nil {
			return ErrNotFound
		}
		if res.IsConfirmed {
			return nil
		}
		talk, err := tx.Talk(ctx, talkID)
		if err != nil {
			return err
		}
		if talk == nil {
			return ErrNotFound
		}
		confirmed, err := tx.CountConfirmed(ctx, talkID)
		if err != nil {
			return err
		}
		if confirmed >= int(talk.Spots) {
			res.IsWaiting = true
			res.IsConfirmed = false
			overbooked = true
			// committed, not rolled back: the waiting enrollment is
			// the durable outcome of an overbooked confirmation
			return tx.Save(ctx, res)
		}
		res.IsConfirmed = true
		res.IsWaiting = false
		return tx.Save(ctx, res)
	})
	if err != nil {
		return err
	}
	if overbooked {
		return ErrOverbooked
	}
	return nil
}

// promotion captures everything needed to notify a promoted attendee
// after the transaction that promoted them has committed.
type promotion struct {
	user model.User
	talk model.Talk
}

// Cancel deletes the attendee's reservation on the talk. When the
// deleted reservation held a confirmed seat, the oldest waiting
// reservation of the talk (created ascending) is promoted into the
// freed seat and its attendee is notified. Promotion moves exactly
// one reservation per cancellation, so capacity is conserved 1:1 and
// no global recount is needed.
func (l *Ledger) Cancel(ctx context.Context, attendeeID, talkID uint64) error {
	var promoted *promotion
	err := l.store.InTx(ctx, talkID, func(tx Tx) error {
		res, err := tx.FindReservation(ctx, attendeeID, talkID)
		if err != nil {
			return err
		}
		if res == nil {
			return ErrNotFound
		}
		freedSeat := res.IsConfirmed
		if err := tx.Delete(ctx, res); err != nil {
			return err
		}
		if !freedSeat {
			return nil
		}
		promoted, err = l.promoteNext(ctx, tx, talkID)
		return err
	})
	if err != nil {
		return err
	}
	l.notifyPromotion(ctx, promoted)
	return nil
}

// CancelAll removes every reservation the attendee holds, e.g. when
// an attendee withdraws from the event entirely. After all of the
// attendee's own reservations are gone, the single-talk promotion
// step runs for each affected talk. Each talk is handled in its own
// transaction; missing rows are skipped silently since another
// cancellation may have raced ahead.
func (l *Ledger) CancelAll(ctx context.Context, attendeeID uint64) error {
	reservations, err := l.store.ReservationsByAttendee(ctx, attendeeID)
	if err != nil {
		return err
	}
	for _, res := range reservations {
		if err := l.Cancel(ctx, attendeeID, res.TalkID); err != nil && err != ErrNotFound {
			return err
		}
	}
	return nil
}

// promoteNext confirms the oldest waiting reservation of the talk,
// if any, and returns the data needed to notify its attendee. The
// freed seat makes the direct confirmation safe: capacity was just
// released by the caller.
func (l *Ledger) promoteNext(ctx context.Context, tx Tx, talkID uint64) (*promotion, error) {
	next, err := tx.OldestWaiting(ctx, talkID)
	if err != nil || next == nil {
		return nil, err
	}
	next.IsWaiting = false
	next.IsConfirmed = true
	if err := tx.Save(ctx, next); err != nil {
		return nil, err
	}
	user, err := tx.Attendee(ctx, next.AttendeeID)
	if err != nil {
		return nil, err
	}
	talk, err := tx.Talk(ctx, talkID)
	if err != nil {
		return nil, err
	}
	if user == nil || talk == nil {
		// reservation outlived its attendee or talk; promote silently
		return nil, nil
	}
	return &promotion{user: *user, talk: *talk}, nil
}

// notifyPromotion sends the confirmation mail for a promoted
// reservation. It runs after the promoting transaction committed and
// never influences its outcome; failures are logged only.
func (l *Ledger) notifyPromotion(ctx context.Context, p *promotion) {
	if p == nil {
		return
	}
	token, err := l.signer.Sign(p.user.Username, p.talk.ID)
	if err != nil {
		log.Printf("ledger: sign promotion token for user=%d talk=%d: %v", p.user.ID, p.talk.ID, err)
		return
	}
	subject := fmt.Sprintf("Your seat for %q is confirmed", p.talk.Title)
	body := fmt.Sprintf(
		"A seat for the session %q has been freed and your waiting-list reservation is now confirmed.\n\nReservation reference: %s\n",
		p.talk.Title, token,
	)
	if err := l.notifier.Send(ctx, p.user, subject, body); err != nil {
		log.Printf("ledger: notify promoted user=%d talk=%d: %v", p.user.ID, p.talk.ID, err)
	}
}
