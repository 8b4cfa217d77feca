package repositories

import (
	"context"
	"testing"

	apperrors "dating-core/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_Integration_Create_CanonicalizesPairOrder(t *testing.T) {
	require.NotNil(t, testPool, "testPool not initialized")
	cleanupTables(t, testPool)
	repo := NewMatchRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 301)
	userB := seedUser(t, testPool, 302)

	m, err := repo.Create(ctx, userB, userA, 0.75)
	require.NoError(t, err)

	lo, hi := userA, userB
	if userB < userA {
		lo, hi = userB, userA
	}
	assert.Equal(t, lo, m.User1ID)
	assert.Equal(t, hi, m.User2ID)
}

func TestMatchRepository_Integration_Create_DuplicateCollapses(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewMatchRepository(testPool)
	ctx := context.Background()

	userA := seedUser(t, testPool, 401)
	userB := seedUser(t, testPool, 402)

	first, err := repo.Create(ctx, userA, userB, 0.5)
	require.NoError(t, err)

	second, err := repo.Create(ctx, userA, userB, 0.9)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "a duplicate create must collapse to the existing match")
	assert.Equal(t, first.CompatibilityScore, second.CompatibilityScore, "the original score must be preserved, not overwritten")
}

func TestMatchRepository_Integration_FindByPair_NotFound(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewMatchRepository(testPool)

	userA := seedUser(t, testPool, 501)
	userB := seedUser(t, testPool, 502)

	_, err := repo.FindByPair(context.Background(), userA, userB)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMatchRepository_Integration_ListForUser_PaginatesNewestFirst(t *testing.T) {
	cleanupTables(t, testPool)
	repo := NewMatchRepository(testPool)
	ctx := context.Background()

	me := seedUser(t, testPool, 601)
	var lastID int64
	for i := int64(0); i < 3; i++ {
		other := seedUser(t, testPool, 700+i)
		m, err := repo.Create(ctx, me, other, 0.1)
		require.NoError(t, err)
		lastID = m.ID
	}

	page, err := repo.ListForUser(ctx, me, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, lastID, page[0].ID, "newest match should come first")

	next, err := repo.ListForUser(ctx, me, page[1].ID, 2)
	require.NoError(t, err)
	assert.Len(t, next, 1)
}
