package repositories

import (
	"context"
	"testing"

	apperrors "dating-core/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Integration_UpsertByTelegramID_CreatesThenTouches(t *testing.T) {
	require.NotNil(t, testPool, "testPool not initialized")
	cleanupTables(t, testPool)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	username := "ivan"
	created, err := repo.UpsertByTelegramID(ctx, 555, &username)
	require.NoError(t, err)
	assert.Equal(t, int64(555), created.TelegramID)
	assert.Equal(t, "ivan", *created.TelegramUsername)

	updatedUsername := "ivan_new"
	touched, err := repo.UpsertByTelegramID(ctx, 555, &updatedUsername)
	require.NoError(t, err)
	assert.Equal(t, created.ID, touched.ID, "upsert on the same telegram_id must not create a second row")
	assert.Equal(t, "ivan_new", *touched.TelegramUsername)
}

func TestUserRepository_Integration_FindByID_NotFound(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewUserRepository(testPool)

	_, err := repo.FindByID(context.Background(), 999999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_Integration_SetBlocked(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	id := seedUser(t, testPool, 777)

	require.NoError(t, repo.SetBlocked(ctx, id, true))

	u, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsBlocked)

	err = repo.SetBlocked(ctx, 999999, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_Integration_TouchLastSeen(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	id := seedUser(t, testPool, 888)
	before, err := repo.FindByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, repo.TouchLastSeen(ctx, id))

	after, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, !after.LastSeenAt.Before(before.LastSeenAt))
}
