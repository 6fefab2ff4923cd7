package redis_test

import (
	"context"
	"testing"
	"time"

	"transaction-service/internal/adapter/storage/redis"
	"transaction-service/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBalanceCache(t *testing.T) (*redis.BalanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewBalanceCache(client, 30*time.Second), mr
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBalanceCache_PopulateAndRead(t *testing.T) {
	cache, mr := setupBalanceCache(t)
	ctx := context.Background()

	err := cache.PopulateBalance(ctx, 1, decPtr("1000.00"), decPtr("950.50"), "USD")
	require.NoError(t, err)

	assert.Equal(t, "100000", mr.HGet("balance:1", "balance"))
	assert.Equal(t, "95050", mr.HGet("balance:1", "available"))
	assert.Equal(t, "USD", mr.HGet("balance:1", "currency"))

	bal, err := cache.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, dec("1000.00").Equal(*bal))

	avail, err := cache.GetAvailable(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, avail)
	assert.True(t, dec("950.50").Equal(*avail))

	entry, err := cache.GetEntry(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "USD", entry.Currency)
	assert.True(t, dec("950.50").Equal(*entry.Available))
}

func TestBalanceCache_AbsentIsNotZero(t *testing.T) {
	cache, _ := setupBalanceCache(t)
	ctx := context.Background()

	bal, err := cache.GetBalance(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, bal)

	avail, err := cache.GetAvailable(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, avail)

	entry, err := cache.GetEntry(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, cache.PopulateBalance(ctx, 5, decPtr("0"), decPtr("0"), "USD"))
	bal, err = cache.GetBalance(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, bal.IsZero())
}

func TestBalanceCache_PopulateNilRemovesField(t *testing.T) {
	cache, mr := setupBalanceCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PopulateBalance(ctx, 2, decPtr("10.00"), decPtr("10.00"), "EUR"))
	require.NoError(t, cache.PopulateBalance(ctx, 2, decPtr("12.00"), nil, ""))

	assert.Equal(t, "1200", mr.HGet("balance:2", "balance"))
	assert.Empty(t, mr.HGet("balance:2", "available"))
	assert.Empty(t, mr.HGet("balance:2", "currency"))

	avail, err := cache.GetAvailable(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, avail)
}

func TestBalanceCache_PopulateRejectsSubCent(t *testing.T) {
	cache, mr := setupBalanceCache(t)

	err := cache.PopulateBalance(context.Background(), 3, decPtr("10.005"), decPtr("10.00"), "USD")
	assert.Error(t, err)
	assert.False(t, mr.Exists("balance:3"))
}

func TestBalanceCache_Reserve(t *testing.T) {
	t.Run("ok decrements available and records reservation", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("1000.00"), decPtr("1000.00"), "USD"))

		res, err := cache.Reserve(ctx, 1, dec("100.00"), "tx-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ReserveOK, res)

		assert.Equal(t, "90000", mr.HGet("balance:1", "available"))
		assert.Equal(t, "100000", mr.HGet("balance:1", "balance"))
		v, err := mr.Get("reservation:tx-1")
		require.NoError(t, err)
		assert.Equal(t, "10000", v)
		assert.Equal(t, 30*time.Second, mr.TTL("reservation:tx-1"))
	})

	t.Run("cold cache", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)

		res, err := cache.Reserve(context.Background(), 9, dec("1.00"), "tx-2")
		require.NoError(t, err)
		assert.Equal(t, domain.ReserveNoAccount, res)
		assert.False(t, mr.Exists("reservation:tx-2"))
	})

	t.Run("insufficient funds leaves state untouched", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("10.00"), decPtr("10.00"), "USD"))

		res, err := cache.Reserve(ctx, 1, dec("100.00"), "tx-3")
		require.NoError(t, err)
		assert.Equal(t, domain.ReserveInsufficientFunds, res)
		assert.Equal(t, "1000", mr.HGet("balance:1", "available"))
		assert.False(t, mr.Exists("reservation:tx-3"))
	})

	t.Run("exact available amount is allowed", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("10.00"), decPtr("10.00"), "USD"))

		res, err := cache.Reserve(ctx, 1, dec("10.00"), "tx-4")
		require.NoError(t, err)
		assert.Equal(t, domain.ReserveOK, res)
		assert.Equal(t, "0", mr.HGet("balance:1", "available"))
	})

	t.Run("comparison is exact beyond 2^53 cents", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		// 2^53 cents available, one cent more requested
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("90071992547409.92"), decPtr("90071992547409.92"), "USD"))

		res, err := cache.Reserve(ctx, 1, dec("90071992547409.93"), "tx-big")
		require.NoError(t, err)
		assert.Equal(t, domain.ReserveInsufficientFunds, res)
		assert.Equal(t, "9007199254740992", mr.HGet("balance:1", "available"))
		assert.False(t, mr.Exists("reservation:tx-big"))
	})

	t.Run("amount wrapping int64 cents panics", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("10.00"), decPtr("10.00"), "USD"))

		assert.Panics(t, func() {
			_, _ = cache.Reserve(ctx, 1, dec("184467440737095517.16"), "tx-huge")
		})
		assert.Equal(t, "1000", mr.HGet("balance:1", "available"))
	})

	t.Run("store fault is ERROR", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		mr.Close()

		res, err := cache.Reserve(context.Background(), 1, dec("1.00"), "tx-5")
		assert.Error(t, err)
		assert.Equal(t, domain.ReserveError, res)
	})

	t.Run("sub-cent amount panics", func(t *testing.T) {
		cache, _ := setupBalanceCache(t)
		assert.Panics(t, func() {
			_, _ = cache.Reserve(context.Background(), 1, dec("0.001"), "tx-6")
		})
	})
}

func TestBalanceCache_Concurrent_Reserve_NeverOverdraws(t *testing.T) {
	cache, mr := setupBalanceCache(t)
	ctx := context.Background()
	require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("100.00"), decPtr("100.00"), "USD"))

	results := make(chan domain.ReserveResult, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			res, _ := cache.Reserve(ctx, 1, dec("30.00"), "tx-c-"+string(rune('a'+i)))
			results <- res
		}(i)
	}

	ok := 0
	for i := 0; i < 10; i++ {
		if <-results == domain.ReserveOK {
			ok++
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, "1000", mr.HGet("balance:1", "available"))
}

func TestBalanceCache_CommitAndRollback(t *testing.T) {
	t.Run("commit moves balance and drops reservation", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("1000.00"), decPtr("1000.00"), "USD"))

		_, err := cache.Reserve(ctx, 1, dec("100.00"), "tx-1")
		require.NoError(t, err)
		require.NoError(t, cache.Commit(ctx, 1, dec("100.00"), "tx-1"))

		assert.Equal(t, "90000", mr.HGet("balance:1", "balance"))
		assert.Equal(t, "90000", mr.HGet("balance:1", "available"))
		assert.False(t, mr.Exists("reservation:tx-1"))
	})

	t.Run("rollback restores available", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("1000.00"), decPtr("1000.00"), "USD"))

		_, err := cache.Reserve(ctx, 1, dec("100.00"), "tx-2")
		require.NoError(t, err)
		require.NoError(t, cache.Rollback(ctx, 1, dec("100.00"), "tx-2"))

		assert.Equal(t, "100000", mr.HGet("balance:1", "balance"))
		assert.Equal(t, "100000", mr.HGet("balance:1", "available"))
		assert.False(t, mr.Exists("reservation:tx-2"))
	})

	t.Run("evicted entry is not recreated partially", func(t *testing.T) {
		cache, mr := setupBalanceCache(t)
		ctx := context.Background()
		require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("1000.00"), decPtr("1000.00"), "USD"))
		_, err := cache.Reserve(ctx, 1, dec("100.00"), "tx-3")
		require.NoError(t, err)

		mr.Del("balance:1")
		require.NoError(t, cache.Rollback(ctx, 1, dec("100.00"), "tx-3"))

		assert.False(t, mr.Exists("balance:1"))
		assert.False(t, mr.Exists("reservation:tx-3"))
	})
}

func TestBalanceCache_Credit(t *testing.T) {
	cache, mr := setupBalanceCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PopulateBalance(ctx, 1, decPtr("100.00"), decPtr("80.00"), "USD"))
	require.NoError(t, cache.Credit(ctx, 1, dec("25.50")))

	assert.Equal(t, "12550", mr.HGet("balance:1", "balance"))
	assert.Equal(t, "10550", mr.HGet("balance:1", "available"))

	// uncached accounts stay uncached
	require.NoError(t, cache.Credit(ctx, 2, dec("10")))
	assert.False(t, mr.Exists("balance:2"))
}
