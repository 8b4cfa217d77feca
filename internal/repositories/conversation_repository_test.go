package repositories

import (
	"context"
	"testing"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationRepository_Integration_GetOrCreate_IsIdempotentRegardlessOfOrder(t *testing.T) {
	require.NotNil(t, testPool, "testPool not initialized")
	cleanupTables(t, testPool)
	repo := NewConversationRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 1001)
	userB := seedUser(t, testPool, 1002)

	first, err := repo.GetOrCreate(ctx, userA, userB)
	require.NoError(t, err)

	second, err := repo.GetOrCreate(ctx, userB, userA)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "requesting the pair in either order must resolve to the same conversation")
}

func TestConversationRepository_Integration_SetBlockedBy(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewConversationRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 1101)
	userB := seedUser(t, testPool, 1102)
	conv, err := repo.GetOrCreate(ctx, userA, userB)
	require.NoError(t, err)

	require.NoError(t, repo.SetBlockedBy(ctx, conv.ID, userA))

	got, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BlockedBy)
	assert.Equal(t, userA, *got.BlockedBy)

	err = repo.SetBlockedBy(ctx, 999999, userA)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConversationRepository_Integration_ListForUser_ReportsUnreadCount(t *testing.T) {
	cleanupTables(t, testPool)
	convRepo := NewConversationRepository(testPool)
	msgRepo := NewMessageRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 1201)
	userB := seedUser(t, testPool, 1202)
	conv, err := convRepo.GetOrCreate(ctx, userA, userB)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		msg := &entities.Message{ConversationID: conv.ID, SenderID: userB, Content: "hi", ContentType: entities.MessageContentText}
		_, err := msgRepo.Create(ctx, msg)
		require.NoError(t, err)
	}

	page, err := convRepo.ListForUser(ctx, userA, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 2, page[0].UnreadCount)
}
