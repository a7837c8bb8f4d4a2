package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/store"
)

type BannedTokenStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // token -> expiry

	now func() time.Time
}

func NewBannedTokenStore() *BannedTokenStore {
	return &BannedTokenStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Register marks tokens as revoked until their TTL elapses. Entries whose TTL
// is already non-positive are skipped; re-registration is a no-op.
func (s *BannedTokenStore) Register(_ context.Context, tokens []store.BannedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, t := range tokens {
		if t.TTL <= 0 {
			continue
		}
		if _, ok := s.entries[t.Token]; ok {
			continue
		}
		s.entries[t.Token] = now.Add(t.TTL)
	}
	return nil
}

func (s *BannedTokenStore) Check(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, ok := s.entries[token]
	if !ok {
		return false, nil
	}
	// Expired entries are treated as absent even before the next prune.
	return s.now().Before(expiry), nil
}

// PruneExpired drops entries whose underlying token would have expired anyway.
func (s *BannedTokenStore) PruneExpired(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, token)
		}
	}
	return nil
}
