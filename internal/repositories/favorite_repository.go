package repositories

import (
	"context"
	"fmt"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"
)

const favoriteTable = "favorites"

type FavoriteRepositoryInterface interface {
	Add(ctx context.Context, actorID, targetID int64) error
	Remove(ctx context.Context, actorID, targetID int64) error
	ListByActor(ctx context.Context, actorID int64) ([]entities.Favorite, error)
	CountByActor(ctx context.Context, actorID int64) (int, error)
}

type FavoriteRepository struct {
	db Querier
}

func NewFavoriteRepository(db Querier) FavoriteRepositoryInterface {
	return &FavoriteRepository{db: db}
}

// Add is idempotent: favoriting an already-favorited target is a no-op, not
// a conflict, matching the teacher's ON CONFLICT DO NOTHING idiom for
// toggle-style relations.
func (r *FavoriteRepository) Add(ctx context.Context, actorID, targetID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (actor_id, target_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (actor_id, target_id) DO NOTHING`, favoriteTable)
	_, err := r.db.Exec(ctx, query, actorID, targetID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, actorID, targetID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE actor_id = $1 AND target_id = $2`, favoriteTable)
	tag, err := r.db.Exec(ctx, query, actorID, targetID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *FavoriteRepository) ListByActor(ctx context.Context, actorID int64) ([]entities.Favorite, error) {
	query := fmt.Sprintf(`SELECT actor_id, target_id, created_at FROM %s WHERE actor_id = $1 ORDER BY created_at DESC`, favoriteTable)
	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]entities.Favorite, 0)
	for rows.Next() {
		var f entities.Favorite
		if err := rows.Scan(&f.ActorID, &f.TargetID, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// CountByActor backs the 500-favorite cap in spec.md §4.4.
func (r *FavoriteRepository) CountByActor(ctx context.Context, actorID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE actor_id = $1`, favoriteTable)
	var count int
	if err := r.db.QueryRow(ctx, query, actorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}
