package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/store"
)

func TestUserStoreAddAndGet(t *testing.T) {
	t.Parallel()

	s := NewUserStore()
	ctx := context.Background()

	u := domain.User{Email: "alice@example.com", PasswordHash: "hash", Requires2FA: true}
	require.NoError(t, s.AddUser(ctx, u))

	got, err := s.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = s.GetUser(ctx, "bob@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	s := NewUserStore()
	ctx := context.Background()

	require.NoError(t, s.AddUser(ctx, domain.User{Email: "alice@example.com", PasswordHash: "one"}))
	err := s.AddUser(ctx, domain.User{Email: "alice@example.com", PasswordHash: "two"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "one", got.PasswordHash)
}

func TestUserStoreConcurrentSignupSingleWinner(t *testing.T) {
	t.Parallel()

	s := NewUserStore()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.AddUser(ctx, domain.User{Email: "race@example.com"})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, store.ErrAlreadyExists)
		}
	}
	require.Equal(t, 1, ok)
}

func TestBannedTokenStoreRegisterAndCheck(t *testing.T) {
	t.Parallel()

	s := NewBannedTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, []store.BannedToken{
		{Token: "live", TTL: time.Minute},
		{Token: "dead", TTL: 0},
	}))

	banned, err := s.Check(ctx, "live")
	require.NoError(t, err)
	require.True(t, banned)

	banned, err = s.Check(ctx, "dead")
	require.NoError(t, err)
	require.False(t, banned)

	banned, err = s.Check(ctx, "never-registered")
	require.NoError(t, err)
	require.False(t, banned)
}

func TestBannedTokenStoreEntriesLapse(t *testing.T) {
	t.Parallel()

	s := NewBannedTokenStore()
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	require.NoError(t, s.Register(ctx, []store.BannedToken{{Token: "t", TTL: time.Minute}}))

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	banned, err := s.Check(ctx, "t")
	require.NoError(t, err)
	require.False(t, banned)

	require.NoError(t, s.PruneExpired(ctx))
	require.Empty(t, s.entries)
}

func TestTwoFactorStoreLifecycle(t *testing.T) {
	t.Parallel()

	s := NewTwoFactorStore(10 * time.Minute)
	ctx := context.Background()

	challenge := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "123456"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", challenge))

	got, err := s.GetCode(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, challenge, got)

	require.NoError(t, s.RemoveCode(ctx, "alice@example.com"))
	_, err = s.GetCode(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.RemoveCode(ctx, "alice@example.com"), store.ErrNotFound)
}

func TestTwoFactorStoreAddCodeOverwrites(t *testing.T) {
	t.Parallel()

	s := NewTwoFactorStore(10 * time.Minute)
	ctx := context.Background()

	first := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "111111"}
	second := domain.TwoFactorChallenge{AttemptID: "attempt-2", Code: "222222"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", first))
	require.NoError(t, s.AddCode(ctx, "alice@example.com", second))

	require.ErrorIs(t, s.ConsumeCode(ctx, "alice@example.com", first), store.ErrNotFound)
	require.NoError(t, s.ConsumeCode(ctx, "alice@example.com", second))
}

func TestTwoFactorStoreConsumeCode(t *testing.T) {
	t.Parallel()

	s := NewTwoFactorStore(10 * time.Minute)
	ctx := context.Background()

	challenge := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "123456"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", challenge))

	wrong := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "654321"}
	require.ErrorIs(t, s.ConsumeCode(ctx, "alice@example.com", wrong), store.ErrNotFound)

	// A mismatch must not consume the stored challenge.
	require.NoError(t, s.ConsumeCode(ctx, "alice@example.com", challenge))
	require.ErrorIs(t, s.ConsumeCode(ctx, "alice@example.com", challenge), store.ErrNotFound)
}

func TestTwoFactorStoreConsumeCodeSingleWinner(t *testing.T) {
	t.Parallel()

	s := NewTwoFactorStore(10 * time.Minute)
	ctx := context.Background()

	challenge := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "123456"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", challenge))

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

func TestTwoFactorStoreExpiry(t *testing.T) {
	t.Parallel()

	s := NewTwoFactorStore(10 * time.Minute)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	challenge := domain.TwoFactorChallenge{AttemptID: "attempt-1", Code: "123456"}
	require.NoError(t, s.AddCode(ctx, "alice@example.com", challenge))

	s.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, err := s.GetCode(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.ConsumeCode(ctx, "alice@example.com", challenge), store.ErrNotFound)

	require.NoError(t, s.PruneExpired(ctx))
	require.Empty(t, s.entries)
}
