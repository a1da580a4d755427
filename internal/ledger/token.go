package ledger

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSigner issues and verifies the signed, time-limited
// confirmation tokens that prove an attendee's intent to hold a
// specific reservation. Tokens are HS256 JWTs binding the attendee's
// username and the talk ID; the signing key is scoped by a salt so
// confirmation tokens can never be mistaken for access tokens signed
// with the bare application secret.
type TokenSigner struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenSigner builds a signer from the application secret, the
// confirmation salt and the token lifetime in days
// (TALK_RESERVATION_CONFIRMATION_DAYS).
func NewTokenSigner(secret, salt string, maxAgeDays int) *TokenSigner {
	return &TokenSigner{
		key:    []byte(salt + ":" + secret),
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
		now:    time.Now,
	}
}

// Sign produces a confirmation token for the given attendee username
// and talk. The token expires maxAge after issuance.
func (s *TokenSigner) Sign(username string, talkID uint64) (string, error) {
	issued := s.now().UTC()
	claims := jwt.MapClaims{
		"sub": username,
		"tid": talkID,
		"iat": issued.Unix(),
		"exp": issued.Add(s.maxAge).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Verify checks a confirmation token and returns the username and
// talk ID it was issued for. An over-age token yields
// ErrExpiredToken; any other verification failure yields
// ErrInvalidToken.
func (s *TokenSigner) Verify(token string) (string, uint64, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", 0, ErrExpiredToken
		}
		return "", 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", 0, ErrInvalidToken
	}
	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return "", 0, ErrInvalidToken
	}
	// numeric claims round-trip through JSON as float64
	tid, ok := claims["tid"].(float64)
	if !ok || tid <= 0 {
		return "", 0, ErrInvalidToken
	}
	return username, uint64(tid), nil
}
