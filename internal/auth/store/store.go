package store

import (
	"context"
	"errors"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Users is the credential store: the durable record of accounts keyed by
// email. Concrete drivers (memory, sqlite, postgres) implement this; callers
// depend only on the interface and the error taxonomy above.
type Users interface {
	// AddUser inserts a new user. It rejects duplicates by email atomically
	// with respect to concurrent AddUser calls for the same email, returning
	// ErrAlreadyExists.
	AddUser(ctx context.Context, u domain.User) error

	// GetUser returns the user for email or ErrNotFound.
	GetUser(ctx context.Context, email domain.Email) (domain.User, error)
}

// BannedToken is a revocation entry: the exact signed token string plus the
// TTL it should remain registered for - the token's remaining validity at
// registration time, which lets the store self-prune.
type BannedToken struct {
	Token string
	TTL   time.Duration
}

// BannedTokens is the revocation registry consulted before trusting an
// otherwise valid session token.
type BannedTokens interface {
	// Register marks each token as revoked for its TTL. Re-registering an
	// already-registered token is a no-op; entries with TTL <= 0 are skipped
	// since the token is already expired.
	Register(ctx context.Context, tokens []BannedToken) error

	// Check reports whether token is currently revoked.
	Check(ctx context.Context, token string) (bool, error)
}

// TwoFactorCodes holds at most one live challenge per email, with a fixed TTL
// from insertion.
type TwoFactorCodes interface {
	// AddCode upserts the challenge for email, overwriting any existing one.
	AddCode(ctx context.Context, email domain.Email, challenge domain.TwoFactorChallenge) error

	// GetCode returns the live challenge for email or ErrNotFound.
	GetCode(ctx context.Context, email domain.Email) (domain.TwoFactorChallenge, error)

	// RemoveCode deletes the challenge for email, ErrNotFound if absent.
	RemoveCode(ctx context.Context, email domain.Email) error

	// ConsumeCode atomically compares the supplied challenge against the
	// stored one and deletes it on match. A missing entry or any mismatch
	// returns ErrNotFound and leaves nothing consumed. This is the one-step
	// fetch-compare-delete that prevents the same code being accepted twice
	// under concurrent verification attempts.
	ConsumeCode(ctx context.Context, email domain.Email, challenge domain.TwoFactorChallenge) error
}

// Pruner is implemented by in-memory stores that need periodic expiry sweeps.
// Backends with native TTLs (redis, sql with expiry filters) don't need it.
type Pruner interface {
	PruneExpired(ctx context.Context) error
}
