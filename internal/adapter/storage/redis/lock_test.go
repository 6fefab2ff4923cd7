package redis_test

import (
	"context"
	"testing"
	"time"

	"transaction-service/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := redis.NewLock(client)
	ctx := context.Background()

	t.Run("second acquirer is refused", func(t *testing.T) {
		token, ok, err := lock.TryLock(ctx, "sweep", 10*time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotEmpty(t, token)
		assert.Equal(t, token, mustGet(t, mr, "lock:sweep"))

		_, ok, err = lock.TryLock(ctx, "sweep", 10*time.Second)
		require.NoError(t, err)
		assert.False(t, ok)

		released, err := lock.Unlock(ctx, "sweep", token)
		require.NoError(t, err)
		assert.True(t, released)
		assert.False(t, mr.Exists("lock:sweep"))
	})

	t.Run("foreign token cannot release", func(t *testing.T) {
		token, ok, err := lock.TryLock(ctx, "other", 10*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		released, err := lock.Unlock(ctx, "other", "not-the-owner")
		require.NoError(t, err)
		assert.False(t, released)
		assert.True(t, mr.Exists("lock:other"))

		released, err = lock.Unlock(ctx, "other", token)
		require.NoError(t, err)
		assert.True(t, released)
	})

	t.Run("lease expires", func(t *testing.T) {
		_, ok, err := lock.TryLock(ctx, "lease", time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Second)

		_, ok, err = lock.TryLock(ctx, "lease", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
