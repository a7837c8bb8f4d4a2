package domain

import "strings"

// Email is a validated account identifier. Beyond requiring an "@" the
// address is treated as an opaque, case-sensitive string.
type Email string

// ParseEmail validates and normalises a raw email value.
func ParseEmail(raw string) (Email, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.Contains(raw, "@") {
		return "", ErrInvalidCredentials
	}
	return Email(raw), nil
}

func (e Email) String() string { return string(e) }
