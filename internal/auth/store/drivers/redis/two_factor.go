package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/store"
)

const twoFactorKeyPrefix = "two_factor:"

// consumeScript deletes the challenge only if it matches the supplied value,
// making compare and delete a single server-side step.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v or v ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

type TwoFactorStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTwoFactorStore(client *redis.Client, ttl time.Duration) *TwoFactorStore {
	return &TwoFactorStore{client: client, ttl: ttl}
}

// Challenges are stored as a two-element JSON array [attempt_id, code].
func encodeChallenge(c domain.TwoFactorChallenge) (string, error) {
	raw, err := json.Marshal([2]string{string(c.AttemptID), string(c.Code)})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeChallenge(raw string) (domain.TwoFactorChallenge, error) {
	var tuple [2]string
	if err := json.Unmarshal([]byte(raw), &tuple); err != nil {
		return domain.TwoFactorChallenge{}, err
	}
	return domain.TwoFactorChallenge{
		AttemptID: domain.LoginAttemptID(tuple[0]),
		Code:      domain.TwoFactorCode(tuple[1]),
	}, nil
}

func (s *TwoFactorStore) AddCode(ctx context.Context, email domain.Email, challenge domain.TwoFactorChallenge) error {
	payload, err := encodeChallenge(challenge)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, twoFactorKeyPrefix+string(email), payload, s.ttl).Err()
}

func (s *TwoFactorStore) GetCode(ctx context.Context, email domain.Email) (domain.TwoFactorChallenge, error) {
	raw, err := s.client.Get(ctx, twoFactorKeyPrefix+string(email)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.TwoFactorChallenge{}, store.ErrNotFound
	}
	if err != nil {
		return domain.TwoFactorChallenge{}, err
	}
	return decodeChallenge(raw)
}

func (s *TwoFactorStore) RemoveCode(ctx context.Context, email domain.Email) error {
	n, err := s.client.Del(ctx, twoFactorKeyPrefix+string(email)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *TwoFactorStore) ConsumeCode(ctx context.Context, email domain.Email, challenge domain.TwoFactorChallenge) error {
	payload, err := encodeChallenge(challenge)
	if err != nil {
		return err
	}
	n, err := consumeScript.Run(ctx, s.client, []string{twoFactorKeyPrefix + string(email)}, payload).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
