// Package memory provides map-backed store drivers guarded by reader/writer
// locks. They are the default for tests and ephemeral deployments and satisfy
// the same contracts as the network-backed drivers.
package memory

import (
	"context"
	"sync"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/store"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[domain.Email]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[domain.Email]domain.User)}
}

// AddUser inserts u. The existence check and insert happen under one write
// lock, so two concurrent signups for the same email cannot both succeed.
func (s *UserStore) AddUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Email]; ok {
		return store.ErrAlreadyExists
	}
	s.users[u.Email] = u
	return nil
}

func (s *UserStore) GetUser(_ context.Context, email domain.Email) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}
