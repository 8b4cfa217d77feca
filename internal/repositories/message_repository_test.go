package repositories

import (
	"context"
	"testing"

	"dating-core/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_Integration_ListBefore_OrdersNewestFirst(t *testing.T) {
	require.NotNil(t, testPool, "testPool not initialized")
	cleanupTables(t, testPool)
	convRepo := NewConversationRepository(testPool)
	msgRepo := NewMessageRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 2001)
	userB := seedUser(t, testPool, 2002)
	conv, err := convRepo.GetOrCreate(ctx, userA, userB)
	require.NoError(t, err)

	var lastID int64
	for i := 0; i < 3; i++ {
		m, err := msgRepo.Create(ctx, &entities.Message{
			ConversationID: conv.ID,
			SenderID:       userA,
			Content:        "hello",
			ContentType:    entities.MessageContentText,
		})
		require.NoError(t, err)
		lastID = m.ID
	}

	page, err := msgRepo.ListBefore(ctx, conv.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, lastID, page[0].ID)
}

func TestMessageRepository_Integration_MarkReadUpTo(t *testing.T) {
	cleanupTables(t, testPool)
	convRepo := NewConversationRepository(testPool)
	msgRepo := NewMessageRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 2101)
	userB := seedUser(t, testPool, 2102)
	conv, err := convRepo.GetOrCreate(ctx, userA, userB)
	require.NoError(t, err)

	first, err := msgRepo.Create(ctx, &entities.Message{ConversationID: conv.ID, SenderID: userB, Content: "a", ContentType: entities.MessageContentText})
	require.NoError(t, err)
	second, err := msgRepo.Create(ctx, &entities.Message{ConversationID: conv.ID, SenderID: userB, Content: "b", ContentType: entities.MessageContentText})
	require.NoError(t, err)

	require.NoError(t, msgRepo.MarkReadUpTo(ctx, conv.ID, first.ID))

	gotFirst, err := msgRepo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotFirst.ReadAt)

	gotSecond, err := msgRepo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, gotSecond.ReadAt, "a message past the read cursor must stay unread")
}
