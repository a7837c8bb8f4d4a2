package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// TwoFactorCodeLength is the exact length of a two-factor code. Candidate
// codes of any other length are rejected before any store lookup.
const TwoFactorCodeLength = 6

// LoginAttemptID identifies a pending two-factor login. It is a randomly
// generated 128-bit identifier rendered as a UUID string.
type LoginAttemptID string

// NewLoginAttemptID generates a fresh random attempt ID.
func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID(uuid.NewString())
}

// ParseLoginAttemptID validates a caller-supplied attempt ID.
func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", ErrIncorrectCredentials
	}
	return LoginAttemptID(raw), nil
}

func (id LoginAttemptID) String() string { return string(id) }

// TwoFactorCode is a 6-digit numeric challenge code.
type TwoFactorCode string

// NewTwoFactorCode generates a random 6-digit code with crypto/rand.
func NewTwoFactorCode() (TwoFactorCode, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate two-factor code: %w", err)
	}
	return TwoFactorCode(fmt.Sprintf("%06d", n.Int64())), nil
}

// ParseTwoFactorCode validates a caller-supplied code: exactly six ASCII digits.
func ParseTwoFactorCode(raw string) (TwoFactorCode, error) {
	if len(raw) != TwoFactorCodeLength {
		return "", ErrIncorrectCredentials
	}
	for i := range TwoFactorCodeLength {
		if raw[i] < '0' || raw[i] > '9' {
			return "", ErrIncorrectCredentials
		}
	}
	return TwoFactorCode(raw), nil
}

func (c TwoFactorCode) String() string { return string(c) }

// TwoFactorChallenge is the single live challenge for an email: the attempt
// ID returned to the caller and the code delivered out of band. Issuing a new
// challenge overwrites any prior unconsumed one.
type TwoFactorChallenge struct {
	AttemptID LoginAttemptID
	Code      TwoFactorCode
}
