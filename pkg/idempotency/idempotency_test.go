package idempotency

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

func TestCache_StoreThenLookup_ReplaysRecord(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	rec := Record{Status: 200, Header: map[string]string{"Content-Type": "application/json"}, Body: []byte(`{"ok":true}`)}
	require.NoError(t, cache.Store(ctx, "discovery.like", "key-1", rec))

	got, err := cache.Lookup(ctx, "discovery.like", "key-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.Body, got.Body)
}

func TestCache_Lookup_MissReturnsNil(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	got, err := cache.Lookup(ctx, "discovery.like", "never-stored")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_Scopes_DontCollide(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "discovery.like", "same-key", Record{Status: 200}))

	got, err := cache.Lookup(ctx, "discovery.pass", "same-key")
	require.NoError(t, err)
	assert.Nil(t, got, "a different scope must not see another scope's record")
}

func TestCache_TryLock_SecondCallerIsRefusedUntilUnlock(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	token, acquired, err := cache.TryLock(ctx, "chat.send_message", "lock-key")
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = cache.TryLock(ctx, "chat.send_message", "lock-key")
	require.NoError(t, err)
	assert.False(t, acquired, "a concurrent caller must not acquire the same lock")

	require.NoError(t, cache.Unlock(ctx, "chat.send_message", "lock-key", token))

	_, acquired, err = cache.TryLock(ctx, "chat.send_message", "lock-key")
	require.NoError(t, err)
	assert.True(t, acquired, "the lock should be free again after Unlock")
}

func TestCache_Unlock_DoesNotReleaseAnotherHoldersLock(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	_, acquired, err := cache.TryLock(ctx, "chat.send_message", "lock-key")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, cache.Unlock(ctx, "chat.send_message", "lock-key", "not-the-real-token"))

	_, acquired, err = cache.TryLock(ctx, "chat.send_message", "lock-key")
	require.NoError(t, err)
	assert.False(t, acquired, "a stale token must not release a still-valid lock")
}
