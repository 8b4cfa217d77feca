package repositories

import (
	"context"
	"testing"

	"dating-core/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionRepository_Integration_Upsert_OverwritesPriorKind(t *testing.T) {
	require.NotNil(t, testPool, "testPool not initialized")
	cleanupTables(t, testPool)
	repo := NewInteractionRepository(testPool)
	ctx := context.Background()

	actor := seedUser(t, testPool, 101)
	target := seedUser(t, testPool, 102)

	first, err := repo.Upsert(ctx, actor, target, entities.InteractionPass)
	require.NoError(t, err)
	assert.Equal(t, entities.InteractionPass, first.Kind)

	second, err := repo.Upsert(ctx, actor, target, entities.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, entities.InteractionLike, second.Kind, "re-swiping must overwrite the prior interaction")

	ids, err := repo.ListTargetIDsByActor(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, []int64{target}, ids)
}

func TestInteractionRepository_Integration_ExistsLike(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewInteractionRepository(testPool)
	ctx := context.Background()

	actor := seedUser(t, testPool, 201)
	target := seedUser(t, testPool, 202)

	exists, err := repo.ExistsLike(ctx, actor, target)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Upsert(ctx, actor, target, entities.InteractionSuperlike)
	require.NoError(t, err)

	exists, err = repo.ExistsLike(ctx, actor, target)
	require.NoError(t, err)
	assert.True(t, exists, "a superlike counts as a like for mutual-match detection")
}
