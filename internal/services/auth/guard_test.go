package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/magabrotheeeer/visionlab-auth/internal/cache"
	"github.com/magabrotheeeer/visionlab-auth/internal/config"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/password"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newRedisCounter(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCounterGuard_LocksAfterMaxAttempts(t *testing.T) {
	counter, mr := newRedisCounter(t)
	guard := services.NewCounterGuard(counter, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, guard.Attempt(ctx, "a@x.com"))
	}
	assert.ErrorIs(t, guard.Attempt(ctx, "a@x.com"), services.ErrTooManyAttempts)
	assert.NoError(t, guard.Attempt(ctx, "b@x.com"), "other emails are not affected")

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, guard.Attempt(ctx, "a@x.com"), "lock expires with the window")
}

func TestCounterGuard_ConcurrentAttempts(t *testing.T) {
	counter, _ := newRedisCounter(t)
	guard := services.NewCounterGuard(counter, 3, time.Minute)
	ctx := context.Background()

	const workers = 20
	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
		locked  atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := guard.Attempt(ctx, "a@x.com"); {
			case err == nil:
				allowed.Add(1)
			case errors.Is(err, services.ErrTooManyAttempts):
				locked.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), allowed.Load())
	assert.Equal(t, int32(workers-3), locked.Load())
}

func TestCounterGuard_ResetClearsAttempts(t *testing.T) {
	counter, _ := newRedisCounter(t)
	guard := services.NewCounterGuard(counter, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, guard.Attempt(ctx, "a@x.com"))
	require.NoError(t, guard.Attempt(ctx, "a@x.com"))
	require.NoError(t, guard.Reset(ctx, "a@x.com"))
	assert.NoError(t, guard.Attempt(ctx, "a@x.com"))
}

func TestCounterGuard_Disabled(t *testing.T) {
	counter, mr := newRedisCounter(t)
	guard := services.NewCounterGuard(counter, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, guard.Attempt(ctx, "a@x.com"))
	}
	assert.False(t, mr.Exists("login_failures:a@x.com"))
}

func TestCounterGuard_RedisDown(t *testing.T) {
	counter, mr := newRedisCounter(t)
	guard := services.NewCounterGuard(counter, 3, time.Minute)
	mr.Close()

	err := guard.Attempt(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrTooManyAttempts)
}

func TestAuthService_LoginWithCounterGuard(t *testing.T) {
	counter, _ := newRedisCounter(t)
	store := newMemoryStore()
	hash, err := password.GetHash("pw123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), &models.User{Email: "a@x.com", PasswordHash: hash, Role: models.RoleStudent}))

	maker := new(JwtMakerMock)
	maker.On("GenerateToken", "a@x.com", "student").Return("tok", nil)

	svc := services.NewAuthService(store, maker, services.WithLoginGuard(services.NewCounterGuard(counter, 2, time.Minute)))
	ctx := context.Background()

	_, _, err = svc.Login(ctx, "a@x.com", "bad")
	require.ErrorIs(t, err, services.ErrWrongPassword)
	_, _, err = svc.Login(ctx, "a@x.com", "bad")
	require.ErrorIs(t, err, services.ErrWrongPassword)

	_, _, err = svc.Login(ctx, "a@x.com", "pw123")
	require.ErrorIs(t, err, services.ErrTooManyAttempts, "correct password is refused while locked")
	maker.AssertNotCalled(t, "GenerateToken", "a@x.com", "student")
}
