// Package idempotency is the bounded cache backing the Idempotency-Key
// contract every write endpoint honors (spec.md §4.1, §5: "bounded LRU
// (10 000 entries, 10 min TTL)"). Redis's own TTL and its key cap approximate
// the bound; nothing here runs an LRU eviction loop of its own.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Window is the replay window from spec.md §4.4: "used to look up a recent
// successful response (window: 10 minutes) and replay it byte-identically".
const Window = 10 * time.Minute

// Record is the stored response a repeated request with the same key
// replays verbatim.
type Record struct {
	Status int               `json:"status"`
	Header map[string]string `json:"header"`
	Body   []byte            `json:"body"`
}

// Cache stores one Record per (scope, key) pair, scope being the route so
// keys from different endpoints never collide.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Lookup returns the previously stored response, if any, for a replay.
func (c *Cache) Lookup(ctx context.Context, scope, key string) (*Record, error) {
	val, err := c.client.Get(ctx, redisKey(scope, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency: get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("idempotency: decode: %w", err)
	}
	return &rec, nil
}

// Store saves a successful response so a repeat of the same key within
// Window replays it byte-identically.
func (c *Cache) Store(ctx context.Context, scope, key string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("idempotency: encode: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(scope, key), b, Window).Err(); err != nil {
		return fmt.Errorf("idempotency: set: %w", err)
	}
	return nil
}

func redisKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// lockTTL bounds how long a lock is held before it expires and is
// considered abandoned.
const lockTTL = 30 * time.Second

// TryLock claims the right to execute the request behind (scope, key),
// returning a token identifying this holder. A second caller racing the
// same key gets acquired=false; Middleware answers it with 409 conflict
// rather than waiting for the Record the first caller stores. The token is a UUID rather than e.g. a simple
// boolean flag so Unlock can tell "my own lock" apart from one a timed-out
// holder already released and a second request re-acquired.
func (c *Cache) TryLock(ctx context.Context, scope, key string) (token string, acquired bool, err error) {
	token = uuid.NewString()
	ok, err := c.client.SetNX(ctx, lockKey(scope, key), token, lockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency: lock: %w", err)
	}
	return token, ok, nil
}

// Unlock releases the lock only if it is still held by token, so a caller
// that overran lockTTL doesn't clobber a newer holder's lock.
func (c *Cache) Unlock(ctx context.Context, scope, key, token string) error {
	held, err := c.client.Get(ctx, lockKey(scope, key)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("idempotency: unlock get: %w", err)
	}
	if held != token {
		return nil
	}
	return c.client.Del(ctx, lockKey(scope, key)).Err()
}

func lockKey(scope, key string) string {
	return fmt.Sprintf("idem-lock:%s:%s", scope, key)
}
