package domain

import "strings"

// MinPasswordLength is the minimum accepted password length after trimming
// surrounding whitespace.
const MinPasswordLength = 8

// Password is a plaintext password that has passed the length policy. It is
// never stored; only its hash is.
type Password string

// ParsePassword enforces the minimum-length policy before the value reaches
// the hasher.
func ParsePassword(raw string) (Password, error) {
	if len(strings.TrimSpace(raw)) < MinPasswordLength {
		return "", ErrInvalidCredentials
	}
	return Password(raw), nil
}

func (p Password) String() string { return string(p) }
