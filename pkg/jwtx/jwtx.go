// Package jwtx issues and validates the signed session tokens that stand in
// for server-side session state. Tokens are HS256 JWTs carrying only a
// subject and an expiry; everything else about a session is derivable or
// deny-listed elsewhere.
package jwtx

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of an issued session token.
const DefaultSessionTTL = 10 * time.Minute

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// SessionClaims are the claims encoded into a session token: subject (the
// account email) and expiry. The token itself is the only durable
// representation of a session.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// NewSessionClaims builds claims for subject expiring ttl from now.
func NewSessionClaims(subject string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// CheckFormat verifies the three-segment structural shape of a token without
// doing any cryptographic work. This is part of the external contract and is
// always checked before signature verification.
func CheckFormat(token string) error {
	if token == "" || strings.Count(token, ".") != 2 {
		return ErrMalformed
	}
	return nil
}

// Signer issues and validates HS256-signed session tokens with a process-wide
// secret. The secret is loaded once at startup and must never be logged.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a Signer for the given secret and token TTL.
// ttl <= 0 defaults to DefaultSessionTTL.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Signer{secret: secret, ttl: ttl}, nil
}

// TTL reports the configured token lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Generate issues a signed token for subject expiring TTL from now.
func (s *Signer) Generate(subject string) (string, SessionClaims, error) {
	claims := NewSessionClaims(subject, s.ttl, time.Now())
	token, err := s.SignClaims(claims)
	if err != nil {
		return "", SessionClaims{}, err
	}
	return token, claims, nil
}

// SignClaims signs arbitrary session claims. Exposed so tests can mint
// tokens with controlled expiries.
func (s *Signer) SignClaims(claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate re-derives the signature over header+payload, rejects on mismatch
// or expiry, and returns the claims. The structural check runs first so
// garbage never reaches the crypto path.
func (s *Signer) Validate(token string) (SessionClaims, error) {
	if err := CheckFormat(token); err != nil {
		return SessionClaims{}, err
	}

	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSig
		}
		return s.secret, nil
	})
	switch {
	case err == nil:
		// fallthrough to claim checks below
	case errors.Is(err, jwt.ErrTokenExpired):
		return SessionClaims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return SessionClaims{}, ErrMalformed
	default:
		return SessionClaims{}, ErrInvalidSig
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return SessionClaims{}, ErrInvalidClaim
	}

	return claims, nil
}
