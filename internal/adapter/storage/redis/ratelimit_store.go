package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// rateLimitScript increments the window counter and sets its expiry on first use.
var rateLimitScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimitStore implements fixed-window rate limiting counters backed by Redis.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// NewRateLimitStore creates a new Redis-backed rate limit store.
func NewRateLimitStore(client *goredis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// Allow checks if a request is within the rate limit. The window is keyed by
// now / window so counters roll over on fixed boundaries.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	windowSec := int64(window / time.Second)
	if windowSec <= 0 {
		return nil, fmt.Errorf("invalid rate limit window %s", window)
	}

	windowID := s.now().Unix() / windowSec
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowID)
	expiry := (window + time.Second).Milliseconds()

	count, err := rateLimitScript.Run(ctx, s.client, []string{redisKey}, expiry).Int64()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit incr: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (windowID + 1) * windowSec,
	}, nil
}
