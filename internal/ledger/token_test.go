package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenSigner("secret", "talk-reservation", 7)

	token, err := s.Sign("alice", 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, talkID, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, uint64(42), talkID)
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	maxAge := 7 * 24 * time.Hour

	s := NewTokenSigner("secret", "talk-reservation", 7)
	s.now = func() time.Time { return issued }
	token, err := s.Sign("alice", 42)
	require.NoError(t, err)

	// still valid one second before the deadline
	s.now = func() time.Time { return issued.Add(maxAge - time.Second) }
	_, _, err = s.Verify(token)
	assert.NoError(t, err)

	// one second past max age the token is rejected as expired
	s.now = func() time.Time { return issued.Add(maxAge + time.Second) }
	_, _, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenWrongSalt(t *testing.T) {
	issuer := NewTokenSigner("secret", "talk-reservation", 7)
	verifier := NewTokenSigner("secret", "another-purpose", 7)

	token, err := issuer.Sign("alice", 42)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	s := NewTokenSigner("secret", "talk-reservation", 7)
	_, _, err := s.Verify("definitely not a token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
