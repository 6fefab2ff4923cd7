package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"transaction-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	fieldBalance   = "balance"
	fieldAvailable = "available"
	fieldCurrency  = "currency"
)

// reserveScript checks and decrements the cached available balance and
// records the reservation in one step. Lua numbers are doubles, exact only
// up to 2^53 cents, so the sufficiency check is the sign of an int64
// HINCRBY rather than a comparison.
// KEYS[1] balance hash, KEYS[2] reservation key.
// ARGV[1] amount in cents, ARGV[2] tx id, ARGV[3] ttl seconds.
var reserveScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return "NO_ACCOUNT"
end
if redis.call("HEXISTS", KEYS[1], "available") == 0 then
  return "NO_ACCOUNT"
end

local left = redis.call("HINCRBY", KEYS[1], "available", "-" .. ARGV[1])
if left < 0 then
  redis.call("HINCRBY", KEYS[1], "available", ARGV[1])
  return "INSUFFICIENT_FUNDS"
end

redis.call("SET", KEYS[2], ARGV[1], "EX", ARGV[3])
return "OK"
`)

// settleScript adjusts one field of the balance hash, when present, and
// drops the reservation.
// KEYS[1] balance hash, KEYS[2] reservation key.
// ARGV[1] field, ARGV[2] signed delta in cents.
var settleScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HINCRBY", KEYS[1], ARGV[1], ARGV[2])
end
redis.call("DEL", KEYS[2])
return 1
`)

// creditScript raises both balances of a cached account.
// KEYS[1] balance hash. ARGV[1] amount in cents.
var creditScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HINCRBY", KEYS[1], "balance", ARGV[1])
redis.call("HINCRBY", KEYS[1], "available", ARGV[1])
return 1
`)

// BalanceCache implements ports.BalanceCache on a Redis hash per account.
type BalanceCache struct {
	client            *goredis.Client
	balancePrefix     string
	reservationPrefix string
	reservationTTL    time.Duration
}

// NewBalanceCache creates a Redis-backed balance mirror. reservationTTL is
// rounded down to whole seconds.
func NewBalanceCache(client *goredis.Client, reservationTTL time.Duration) *BalanceCache {
	return &BalanceCache{
		client:            client,
		balancePrefix:     "balance:",
		reservationPrefix: "reservation:",
		reservationTTL:    reservationTTL,
	}
}

func (c *BalanceCache) balanceKey(accountID int64) string {
	return c.balancePrefix + strconv.FormatInt(accountID, 10)
}

func (c *BalanceCache) reservationKey(txID string) string {
	return c.reservationPrefix + txID
}

// Reserve runs the reservation script. Any reply that is not a known token
// is reported as domain.ReserveError.
func (c *BalanceCache) Reserve(ctx context.Context, accountID int64, amount decimal.Decimal, txID string) (domain.ReserveResult, error) {
	cents := domain.MustMinorUnits(amount)
	ttl := int64(c.reservationTTL / time.Second)

	reply, err := reserveScript.Run(ctx, c.client,
		[]string{c.balanceKey(accountID), c.reservationKey(txID)},
		cents, txID, ttl,
	).Text()
	if err != nil {
		return domain.ReserveError, fmt.Errorf("redis reserve: %w", err)
	}

	switch {
	case reply == string(domain.ReserveOK):
		return domain.ReserveOK, nil
	case strings.Contains(reply, string(domain.ReserveNoAccount)):
		return domain.ReserveNoAccount, nil
	case strings.Contains(reply, string(domain.ReserveInsufficientFunds)):
		return domain.ReserveInsufficientFunds, nil
	}
	return domain.ReserveError, fmt.Errorf("redis reserve: unexpected reply %q", reply)
}

// Commit applies the reserved amount to the cached balance. Available was
// already reduced at reserve time.
func (c *BalanceCache) Commit(ctx context.Context, accountID int64, amount decimal.Decimal, txID string) error {
	cents := domain.MustMinorUnits(amount)
	err := settleScript.Run(ctx, c.client,
		[]string{c.balanceKey(accountID), c.reservationKey(txID)},
		fieldBalance, -cents,
	).Err()
	if err != nil {
		return fmt.Errorf("redis commit reservation: %w", err)
	}
	return nil
}

// Rollback returns the reserved amount to the cached available balance.
func (c *BalanceCache) Rollback(ctx context.Context, accountID int64, amount decimal.Decimal, txID string) error {
	cents := domain.MustMinorUnits(amount)
	err := settleScript.Run(ctx, c.client,
		[]string{c.balanceKey(accountID), c.reservationKey(txID)},
		fieldAvailable, cents,
	).Err()
	if err != nil {
		return fmt.Errorf("redis rollback reservation: %w", err)
	}
	return nil
}

// Credit mirrors a committed ledger credit.
func (c *BalanceCache) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	cents := domain.MustMinorUnits(amount)
	err := creditScript.Run(ctx, c.client, []string{c.balanceKey(accountID)}, cents).Err()
	if err != nil {
		return fmt.Errorf("redis credit: %w", err)
	}
	return nil
}

// GetBalance returns the cached balance, or nil when the account is not cached.
func (c *BalanceCache) GetBalance(ctx context.Context, accountID int64) (*decimal.Decimal, error) {
	return c.getAmount(ctx, accountID, fieldBalance)
}

// GetAvailable returns the cached available balance, or nil when absent.
func (c *BalanceCache) GetAvailable(ctx context.Context, accountID int64) (*decimal.Decimal, error) {
	return c.getAmount(ctx, accountID, fieldAvailable)
}

func (c *BalanceCache) getAmount(ctx context.Context, accountID int64, field string) (*decimal.Decimal, error) {
	val, err := c.client.HGet(ctx, c.balanceKey(accountID), field).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", field, err)
	}
	return parseCents(val)
}

// GetEntry returns the whole mirror, or nil when the account is not cached.
func (c *BalanceCache) GetEntry(ctx context.Context, accountID int64) (*domain.CacheBalance, error) {
	fields, err := c.client.HGetAll(ctx, c.balanceKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get balance entry: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	entry := &domain.CacheBalance{Currency: fields[fieldCurrency]}
	if v, ok := fields[fieldBalance]; ok {
		if entry.Balance, err = parseCents(v); err != nil {
			return nil, err
		}
	}
	if v, ok := fields[fieldAvailable]; ok {
		if entry.Available, err = parseCents(v); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// PopulateBalance overwrites the mirror from ledger values. A nil amount or
// empty currency removes that field instead of writing a placeholder.
func (c *BalanceCache) PopulateBalance(ctx context.Context, accountID int64, balance, available *decimal.Decimal, currency string) error {
	for _, amount := range []*decimal.Decimal{balance, available} {
		if amount != nil && !domain.HasMinorUnitPrecision(*amount) {
			return fmt.Errorf("populate balance: %s has sub-cent precision", amount.String())
		}
	}

	key := c.balanceKey(accountID)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		setOrDelete(ctx, pipe, key, fieldBalance, balance)
		setOrDelete(ctx, pipe, key, fieldAvailable, available)
		if currency == "" {
			pipe.HDel(ctx, key, fieldCurrency)
		} else {
			pipe.HSet(ctx, key, fieldCurrency, currency)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis populate balance: %w", err)
	}
	return nil
}

func setOrDelete(ctx context.Context, pipe goredis.Pipeliner, key, field string, amount *decimal.Decimal) {
	if amount == nil {
		pipe.HDel(ctx, key, field)
		return
	}
	pipe.HSet(ctx, key, field, domain.MustMinorUnits(*amount))
}

func parseCents(val string) (*decimal.Decimal, error) {
	cents, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse cached amount %q: %w", val, err)
	}
	d := domain.FromMinorUnits(cents)
	return &d, nil
}
