package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// memStore is an in-memory Store used to exercise the state machine
// without a database. A single mutex stands in for the per-talk
// transaction serialization the SQL implementation provides.
type memStore struct {
	mu           sync.Mutex
	talks        map[uint64]model.Talk
	users        map[uint64]model.User
	reservations map[uint64]*model.SessionReservation
	nextID       uint64
	clock        time.Time
}

func newMemStore() *memStore {
	return &memStore{
		talks:        make(map[uint64]model.Talk),
		users:        make(map[uint64]model.User),
		reservations: make(map[uint64]*model.SessionReservation),
		clock:        time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) InTx(ctx context.Context, talkID uint64, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s})
}

func (s *memStore) ReservationsByAttendee(ctx context.Context, attendeeID uint64) ([]model.SessionReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SessionReservation
	for _, r := range s.reservations {
		if r.AttendeeID == attendeeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type memTx struct{ s *memStore }

func (t *memTx) Talk(ctx context.Context, talkID uint64) (*model.Talk, error) {
	if talk, ok := t.s.talks[talkID]; ok {
		return &talk, nil
	}
	return nil, nil
}

func (t *memTx) Attendee(ctx context.Context, userID uint64) (*model.User, error) {
	if u, ok := t.s.users[userID]; ok {
		return &u, nil
	}
	return nil, nil
}

func (t *memTx) FindReservation(ctx context.Context, attendeeID, talkID uint64) (*model.SessionReservation, error) {
	for _, r := range t.s.reservations {
		if r.AttendeeID == attendeeID && r.TalkID == talkID {
			return r, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreateReservation(ctx context.Context, attendeeID, talkID uint64) (*model.SessionReservation, error) {
	t.s.nextID++
	t.s.clock = t.s.clock.Add(time.Second)
	res := &model.SessionReservation{
		ID:         t.s.nextID,
		AttendeeID: attendeeID,
		TalkID:     talkID,
		CreatedAt:  t.s.clock,
	}
	t.s.reservations[res.ID] = res
	return res, nil
}

func (t *memTx) CountConfirmed(ctx context.Context, talkID uint64) (int, error) {
	n := 0
	for _, r := range t.s.reservations {
		if r.TalkID == talkID && r.IsConfirmed {
			n++
		}
	}
	return n, nil
}

func (t *memTx) OldestWaiting(ctx context.Context, talkID uint64) (*model.SessionReservation, error) {
	var oldest *model.SessionReservation
	for _, r := range t.s.reservations {
		if r.TalkID != talkID || !r.IsWaiting {
			continue
		}
		if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
			oldest = r
		}
	}
	return oldest, nil
}

func (t *memTx) Save(ctx context.Context, res *model.SessionReservation) error {
	t.s.reservations[res.ID] = res
	return nil
}

func (t *memTx) Delete(ctx context.Context, res *model.SessionReservation) error {
	delete(t.s.reservations, res.ID)
	return nil
}

// recordingNotifier captures every Send call and can be told to fail.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []sentMail
	err   error
}

type sentMail struct {
	user    model.User
	subject string
	body    string
}

func (n *recordingNotifier) Send(ctx context.Context, user model.User, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, sentMail{user: user, subject: subject, body: body})
	return n.err
}

func newTestLedger(t *testing.T) (*Ledger, *memStore, *recordingNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	signer := NewTokenSigner("test-secret", "talk-reservation", 7)
	return New(store, signer, notifier), store, notifier
}

func addUser(s *memStore, id uint64, username string) *model.User {
	u := model.User{ID: id, Username: username, Email: username + "@example.org", Role: "ATTENDEE", IsActive: true}
	s.users[id] = u
	return &u
}

func addTalk(s *memStore, id uint64, spots uint32) {
	track := uint64(1)
	s.talks[id] = model.Talk{ID: id, EventID: 1, TrackID: &track, Title: "Intro to Workshopping", Spots: spots}
}

func confirmedCount(s *memStore, talkID uint64) int {
	n, _ := (&memTx{s: s}).CountConfirmed(context.Background(), talkID)
	return n
}

func findRes(s *memStore, attendeeID, talkID uint64) *model.SessionReservation {
	r, _ := (&memTx{s: s}).FindReservation(context.Background(), attendeeID, talkID)
	return r
}

func TestReserveThenConfirm(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 2)
	alice := addUser(store, 1, "alice")

	token, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	res := findRes(store, 1, 10)
	require.NotNil(t, res)
	assert.False(t, res.IsConfirmed, "reservation starts pending")
	assert.False(t, res.IsWaiting)

	require.NoError(t, l.Confirm(context.Background(), alice, token))
	res = findRes(store, 1, 10)
	assert.True(t, res.IsConfirmed)
	assert.False(t, res.IsWaiting)
}

func TestReserveTwiceFails(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 2)
	alice := addUser(store, 1, "alice")

	_, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	_, err = l.Reserve(context.Background(), alice, 10)
	assert.ErrorIs(t, err, ErrAlreadyReserved)
}

func TestReserveUnknownTalk(t *testing.T) {
	l, store, _ := newTestLedger(t)
	alice := addUser(store, 1, "alice")

	_, err := l.Reserve(context.Background(), alice, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmWrongUser(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 2)
	alice := addUser(store, 1, "alice")
	bob := addUser(store, 2, "bob")

	token, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)

	err = l.Confirm(context.Background(), bob, token)
	assert.ErrorIs(t, err, ErrWrongUser)
	// no state change on either side
	assert.False(t, findRes(store, 1, 10).IsConfirmed)
	assert.Nil(t, findRes(store, 2, 10))
}

func TestConfirmGarbageToken(t *testing.T) {
	l, store, _ := newTestLedger(t)
	alice := addUser(store, 1, "alice")

	err := l.Confirm(context.Background(), alice, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmWithoutReservation(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 2)
	alice := addUser(store, 1, "alice")

	token, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NoError(t, l.Cancel(context.Background(), 1, 10))

	err = l.Confirm(context.Background(), alice, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmIsIdempotent(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 1)
	alice := addUser(store, 1, "alice")

	token, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(context.Background(), alice, token))
	require.NoError(t, l.Confirm(context.Background(), alice, token), "re-confirming a confirmed reservation is a no-op")
	assert.Equal(t, 1, confirmedCount(store, 10))
}

func TestOverbookedEnrollsOnWaitingList(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 1)
	alice := addUser(store, 1, "alice")
	bob := addUser(store, 2, "bob")

	tokenA, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(context.Background(), alice, tokenA))

	tokenB, err := l.Reserve(context.Background(), bob, 10)
	require.NoError(t, err)
	err = l.Confirm(context.Background(), bob, tokenB)
	assert.ErrorIs(t, err, ErrOverbooked)

	// soft failure: the waiting enrollment is persisted
	res := findRes(store, 2, 10)
	require.NotNil(t, res)
	assert.True(t, res.IsWaiting)
	assert.False(t, res.IsConfirmed)
	assert.Equal(t, 1, confirmedCount(store, 10))
}

func TestCapacityNeverExceeded(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 2)

	for id := uint64(1); id <= 5; id++ {
		u := addUser(store, id, fmt.Sprintf("user%d", id))
		token, err := l.Reserve(context.Background(), u, 10)
		require.NoError(t, err)
		err = l.Confirm(context.Background(), u, token)
		if id <= 2 {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, ErrOverbooked)
		}
		assert.LessOrEqual(t, confirmedCount(store, 10), 2)
	}
}

func TestCancelPromotesOldestWaiting(t *testing.T) {
	l, store, notifier := newTestLedger(t)
	addTalk(store, 10, 1)
	alice := addUser(store, 1, "alice")
	w1 := addUser(store, 2, "first-in-line")
	w2 := addUser(store, 3, "second-in-line")

	tokenA, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(context.Background(), alice, tokenA))

	for _, u := range []*model.User{w1, w2} {
		token, err := l.Reserve(context.Background(), u, 10)
		require.NoError(t, err)
		require.ErrorIs(t, l.Confirm(context.Background(), u, token), ErrOverbooked)
	}

	require.NoError(t, l.Cancel(context.Background(), alice.ID, 10))

	assert.Nil(t, findRes(store, alice.ID, 10), "cancelled reservation is gone")

	promoted := findRes(store, w1.ID, 10)
	require.NotNil(t, promoted)
	assert.True(t, promoted.IsConfirmed, "oldest waiting reservation is promoted")
	assert.False(t, promoted.IsWaiting)

	stillWaiting := findRes(store, w2.ID, 10)
	require.NotNil(t, stillWaiting)
	assert.True(t, stillWaiting.IsWaiting, "younger reservation keeps waiting")

	require.Len(t, notifier.sends, 1, "exactly one promotion mail")
	assert.Equal(t, w1.ID, notifier.sends[0].user.ID)
	assert.Contains(t, notifier.sends[0].subject, "confirmed")
	assert.Equal(t, 1, confirmedCount(store, 10))
}

func TestCancelPendingDoesNotPromote(t *testing.T) {
	l, store, notifier := newTestLedger(t)
	addTalk(store, 10, 1)
	alice := addUser(store, 1, "alice")
	bob := addUser(store, 2, "bob")
	carol := addUser(store, 3, "carol")

	tokenA, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(context.Background(), alice, tokenA))

	tokenB, err := l.Reserve(context.Background(), bob, 10)
	require.NoError(t, err)
	require.ErrorIs(t, l.Confirm(context.Background(), bob, tokenB), ErrOverbooked)

	// carol reserves but never confirms, then cancels: no seat was freed
	_, err = l.Reserve(context.Background(), carol, 10)
	require.NoError(t, err)
	require.NoError(t, l.Cancel(context.Background(), carol.ID, 10))

	assert.True(t, findRes(store, bob.ID, 10).IsWaiting, "waiting entry untouched")
	assert.Empty(t, notifier.sends)
}

func TestCancelUnknownReservation(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addTalk(store, 10, 1)
	assert.ErrorIs(t, l.Cancel(context.Background(), 1, 10), ErrNotFound)
}

func TestCancelAllPromotesPerTalk(t *testing.T) {
	l, store, notifier := newTestLedger(t)
	addTalk(store, 10, 1)
	addTalk(store, 20, 1)
	alice := addUser(store, 1, "alice")
	bob := addUser(store, 2, "bob")
	carol := addUser(store, 3, "carol")

	// alice holds the only seat of both talks
	for _, talkID := range []uint64{10, 20} {
		token, err := l.Reserve(context.Background(), alice, talkID)
		require.NoError(t, err)
		require.NoError(t, l.Confirm(context.Background(), alice, token))
	}
	// bob waits on talk 10, carol on talk 20
	tokenB, err := l.Reserve(context.Background(), bob, 10)
	require.NoError(t, err)
	require.ErrorIs(t, l.Confirm(context.Background(), bob, tokenB), ErrOverbooked)
	tokenC, err := l.Reserve(context.Background(), carol, 20)
	require.NoError(t, err)
	require.ErrorIs(t, l.Confirm(context.Background(), carol, tokenC), ErrOverbooked)

	require.NoError(t, l.CancelAll(context.Background(), alice.ID))

	list, err := store.ReservationsByAttendee(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "withdrawing removes every reservation")
	assert.True(t, findRes(store, bob.ID, 10).IsConfirmed)
	assert.True(t, findRes(store, carol.ID, 20).IsConfirmed)
	assert.Len(t, notifier.sends, 2)
}

func TestNotifierFailureKeepsPromotion(t *testing.T) {
	l, store, notifier := newTestLedger(t)
	notifier.err = errors.New("smtp unreachable")
	addTalk(store, 10, 1)
	alice := addUser(store, 1, "alice")
	bob := addUser(store, 2, "bob")

	tokenA, err := l.Reserve(context.Background(), alice, 10)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(context.Background(), alice, tokenA))
	tokenB, err := l.Reserve(context.Background(), bob, 10)
	require.NoError(t, err)
	require.ErrorIs(t, l.Confirm(context.Background(), bob, tokenB), ErrOverbooked)

	require.NoError(t, l.Cancel(context.Background(), alice.ID, 10), "send failure does not surface")
	assert.True(t, findRes(store, bob.ID, 10).IsConfirmed, "promotion survives the failed notification")
}
