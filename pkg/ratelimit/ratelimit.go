// Package ratelimit is the gateway's per-caller request limiter
// (spec.md §4.1: distinct anonymous / authenticated limits, 429 +
// Retry-After on breach).
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter enforces a sliding one-minute window per key using a Redis
// sorted set: one member per request, scored by its timestamp, trimmed to
// the window on every check.
type Limiter struct {
	client *redis.Client
}

func New(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow reports whether key may make one more request within its
// requestsPerMinute budget, and if not, how long until it may retry.
func (l *Limiter) Allow(ctx context.Context, key string, requestsPerMinute int) (allowed bool, retryAfter time.Duration, err error) {
	now := time.Now()
	windowStart := now.Add(-time.Minute)
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	card := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, redisKey, 2*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("ratelimit: pipeline: %w", err)
	}

	if card.Val() >= int64(requestsPerMinute) {
		// the request just added above counts against the next window;
		// remove it since this call is being rejected.
		l.client.ZRem(ctx, redisKey, now.UnixNano())
		return false, time.Minute, nil
	}

	return true, 0, nil
}
