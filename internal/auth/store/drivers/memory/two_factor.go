package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/store"
)

type twoFactorEntry struct {
	challenge domain.TwoFactorChallenge
	expiry    time.Time
}

type TwoFactorStore struct {
	mu      sync.RWMutex
	entries map[domain.Email]twoFactorEntry
	ttl     time.Duration

	now func() time.Time
}

func NewTwoFactorStore(ttl time.Duration) *TwoFactorStore {
	return &TwoFactorStore{
		entries: make(map[domain.Email]twoFactorEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// AddCode upserts the single live challenge for email. Any prior unconsumed
// challenge is overwritten and its attempt ID and code become unusable.
func (s *TwoFactorStore) AddCode(_ context.Context, email domain.Email, challenge domain.TwoFactorChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[email] = twoFactorEntry{
		challenge: challenge,
		expiry:    s.now().Add(s.ttl),
	}
	return nil
}

func (s *TwoFactorStore) GetCode(_ context.Context, email domain.Email) (domain.TwoFactorChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[email]
	if !ok || !s.now().Before(entry.expiry) {
		return domain.TwoFactorChallenge{}, store.ErrNotFound
	}
	return entry.challenge, nil
}

func (s *TwoFactorStore) RemoveCode(_ context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[email]; !ok {
		return store.ErrNotFound
	}
	delete(s.entries, email)
	return nil
}

// ConsumeCode is the atomic fetch-compare-delete: the lookup, comparison and
// removal all happen under one write lock, so a code can only ever be
// accepted once.
func (s *TwoFactorStore) ConsumeCode(_ context.Context, email domain.Email, challenge domain.TwoFactorChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok || !s.now().Before(entry.expiry) {
		return store.ErrNotFound
	}
	if entry.challenge.AttemptID != challenge.AttemptID || entry.challenge.Code != challenge.Code {
		return store.ErrNotFound
	}
	delete(s.entries, email)
	return nil
}

// PruneExpired drops challenges past their TTL.
func (s *TwoFactorStore) PruneExpired(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for email, entry := range s.entries {
		if !now.Before(entry.expiry) {
			delete(s.entries, email)
		}
	}
	return nil
}
