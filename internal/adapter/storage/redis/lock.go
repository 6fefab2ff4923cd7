package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock only if it still holds the caller's token.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock implements ports.DistributedLock with SET NX PX and a random owner token.
type Lock struct {
	client *goredis.Client
	prefix string
}

// NewLock creates a Redis-backed distributed lock.
func NewLock(client *goredis.Client) *Lock {
	return &Lock{
		client: client,
		prefix: "lock:",
	}
}

// TryLock acquires key for ttl without blocking.
func (l *Lock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis lock acquire: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases key if token still owns it. It reports whether the lock was released.
func (l *Lock) Unlock(ctx context.Context, key, token string) (bool, error) {
	n, err := unlockScript.Run(ctx, l.client, []string{l.prefix + key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("redis lock release: %w", err)
	}
	return n == 1, nil
}
