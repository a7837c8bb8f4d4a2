package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/vitalstudio/auth-service/internal/auth/store"
)

const bannedTokenKeyPrefix = "banned_token:"

type BannedTokenStore struct {
	client *redis.Client
}

func NewBannedTokenStore(client *redis.Client) *BannedTokenStore {
	return &BannedTokenStore{client: client}
}

// Register writes one key per token with the token's remaining validity as
// the key TTL, so revocation entries disappear exactly when the token would
// have expired anyway.
func (s *BannedTokenStore) Register(ctx context.Context, tokens []store.BannedToken) error {
	for _, t := range tokens {
		if t.TTL <= 0 {
			continue
		}
		if err := s.client.Set(ctx, bannedTokenKeyPrefix+t.Token, "1", t.TTL).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *BannedTokenStore) Check(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, bannedTokenKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
