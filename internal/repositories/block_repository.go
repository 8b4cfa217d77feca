package repositories

import (
	"context"
	"fmt"
)

const blockTable = "blocks"

type BlockRepositoryInterface interface {
	Create(ctx context.Context, blockerID, blockedID int64) error
	IsBlocked(ctx context.Context, userA, userB int64) (bool, error)
}

type BlockRepository struct {
	db Querier
}

func NewBlockRepository(db Querier) BlockRepositoryInterface {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING`, blockTable)
	_, err := r.db.Exec(ctx, query, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// IsBlocked checks either direction, used by discovery exclusion (spec.md
// §8 property 4 is silent on direction, so a block either way hides both
// parties from each other).
func (r *BlockRepository) IsBlocked(ctx context.Context, userA, userB int64) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE (blocker_id = $1 AND blocked_id = $2) OR (blocker_id = $2 AND blocked_id = $1)
		)`, blockTable)
	var exists bool
	if err := r.db.QueryRow(ctx, query, userA, userB).Scan(&exists); err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return exists, nil
}
