package domain

import "errors"

// Error taxonomy surfaced by the authentication flow. Validation failures are
// produced at the point of parsing; infrastructure failures are wrapped into
// ErrUnexpected with the cause retained for server-side diagnostics only.
var (
	// ErrInvalidCredentials covers malformed input or an unknown identity.
	// The two are deliberately indistinguishable so login cannot be used to
	// enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIncorrectCredentials means the identity resolved but the secret or
	// challenge did not match.
	ErrIncorrectCredentials = errors.New("incorrect credentials")

	// ErrInvalidToken means a token failed signature, expiry, or revocation
	// checks.
	ErrInvalidToken = errors.New("invalid auth token")

	// ErrMissingToken means no token was supplied where one is required.
	ErrMissingToken = errors.New("missing auth token")

	// ErrMalformedToken means the token is structurally invalid (wrong
	// segment count), rejected before any cryptographic work.
	ErrMalformedToken = errors.New("malformed auth token")

	// ErrUserAlreadyExists is returned when signing up an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUnexpected wraps infrastructure, store, or crypto failures. The
	// underlying cause never crosses the API boundary.
	ErrUnexpected = errors.New("unexpected error")
)
