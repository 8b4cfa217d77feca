package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"

	"github.com/jackc/pgx/v5"
)

const interactionTable = "interactions"

type InteractionRepositoryInterface interface {
	// Upsert records actor's swipe on target, overwriting a prior kind for
	// the same pair (spec.md §4.4: "re-swiping the same target overwrites
	// the prior interaction"). The (actor_id, target_id) unique constraint
	// makes this race-safe under concurrent swipes from the same actor.
	Upsert(ctx context.Context, actorID, targetID int64, kind entities.InteractionKind) (*entities.Interaction, error)
	// ExistsLike reports whether actor already has a like/superlike recorded
	// against target, used to detect mutual likes (spec.md §4.4 step 3).
	ExistsLike(ctx context.Context, actorID, targetID int64) (bool, error)
	ListTargetIDsByActor(ctx context.Context, actorID int64) ([]int64, error)
}

type InteractionRepository struct {
	db Querier
}

func NewInteractionRepository(db Querier) InteractionRepositoryInterface {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Upsert(ctx context.Context, actorID, targetID int64, kind entities.InteractionKind) (*entities.Interaction, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (actor_id, target_id, kind, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (actor_id, target_id) DO UPDATE
			SET kind = EXCLUDED.kind, updated_at = NOW()
		RETURNING actor_id, target_id, kind, created_at, updated_at`, interactionTable)

	var i entities.Interaction
	row := r.db.QueryRow(ctx, query, actorID, targetID, kind)
	if err := row.Scan(&i.ActorID, &i.TargetID, &i.Kind, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert interaction: %w", err)
	}
	return &i, nil
}

func (r *InteractionRepository) ExistsLike(ctx context.Context, actorID, targetID int64) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE actor_id = $1 AND target_id = $2 AND kind IN ('like', 'superlike')
		)`, interactionTable)
	var exists bool
	if err := r.db.QueryRow(ctx, query, actorID, targetID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check mutual like: %w", err)
	}
	return exists, nil
}

func (r *InteractionRepository) ListTargetIDsByActor(ctx context.Context, actorID int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT target_id FROM %s WHERE actor_id = $1`, interactionTable)
	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("list interaction targets: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
