package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/store"
	redisdriver "github.com/vitalstudio/auth-service/internal/auth/store/drivers/redis"
)

/*
 * End-to-end tests for the redis-backed revocation and two-factor stores,
 * run against a real redis container.
 */

func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestBannedTokenStore(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	client, err := redisdriver.NewClient(ctx, addr, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := redisdriver.NewBannedTokenStore(client)

	require.NoError(t, s.Register(ctx, []store.BannedToken{
		{Token: "revoked-token", TTL: time.Minute},
		{Token: "expired-token", TTL: 0},
	}))

	banned, err := s.Check(ctx, "revoked-token")
	require.NoError(t, err)
	require.True(t, banned)

	banned, err = s.Check(ctx, "expired-token")
	require.NoError(t, err)
	require.False(t, banned)

	banned, err = s.Check(ctx, "never-registered")
	require.NoError(t, err)
	require.False(t, banned)
}

func TestBannedTokenExpiry(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	client, err := redisdriver.NewClient(ctx, addr, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := redisdriver.NewBannedTokenStore(client)
	require.NoError(t, s.Register(ctx, []store.BannedToken{{Token: "short-lived", TTL: time.Second}}))

	require.Eventually(t, func() bool {
		banned, err := s.Check(ctx, "short-lived")
		return err == nil && !banned
	}, 5*time.Second, 100*time.Millisecond)
}

func TestTwoFactorStoreLifecycle(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	client, err := redisdriver.NewClient(ctx, addr, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := redisdriver.NewTwoFactorStore(client, 10*time.Minute)
	challenge := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "123456"}

	require.NoError(t, s.AddCode(ctx, "alice@example.com", challenge))

	got, err := s.GetCode(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, challenge, got)

	// Overwrite invalidates the previous challenge.
	replacement := domain.TwoFactorChallenge{AttemptID: "attempt-2", Code: "654321"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", replacement))
	require.ErrorIs(t, s.ConsumeCode(ctx, "alice@example.com", challenge), store.ErrNotFound)

	require.NoError(t, s.RemoveCode(ctx, "alice@example.com"))
	_, err = s.GetCode(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.RemoveCode(ctx, "alice@example.com"), store.ErrNotFound)
}

func TestTwoFactorConsumeCodeSingleWinner(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	client, err := redisdriver.NewClient(ctx, addr, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := redisdriver.NewTwoFactorStore(client, 10*time.Minute)
	challenge := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "123456"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", challenge))

	// Mismatches never consume the stored challenge.
	wrong := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "000000"}
	require.ErrorIs(t, s.ConsumeCode(ctx, "alice@example.com", wrong), store.ErrNotFound)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.ConsumeCode(ctx, "alice@example.com", challenge)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, store.ErrNotFound)
		}
	}
	require.Equal(t, 1, ok)
}
