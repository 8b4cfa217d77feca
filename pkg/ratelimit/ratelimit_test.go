package ratelimit

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestLimiter_Allow_BlocksAfterBudgetExhausted(t *testing.T) {
	client := setupTestRedis(t)
	limiter := New(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "key-a", 3)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "key-a", 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter.Seconds(), 0.0)
}

func TestLimiter_Allow_KeysAreIndependent(t *testing.T) {
	client := setupTestRedis(t)
	limiter := New(client)
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "key-b", 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "key-c", 1)
	require.NoError(t, err)
	assert.True(t, allowed, "a different key should have its own budget")
}
