package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const matchTable = "matches"
const matchSelectFields = "id, user1_id, user2_id, created_at, compatibility_score"

type MatchRepositoryInterface interface {
	// Create inserts the canonical (user1_id < user2_id) pair. A concurrent
	// duplicate insert hits the unique constraint on (user1_id, user2_id)
	// and collapses to fetching the row the other goroutine/request just
	// committed (spec.md §4.4: "collapses to a single Match").
	Create(ctx context.Context, userA, userB int64, score float64) (*entities.Match, error)
	FindByPair(ctx context.Context, userA, userB int64) (*entities.Match, error)
	ListForUser(ctx context.Context, userID int64, afterID int64, limit int) ([]entities.Match, error)
}

type MatchRepository struct {
	db Querier
}

func NewMatchRepository(db Querier) MatchRepositoryInterface {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) scan(row pgx.Row, m *entities.Match) error {
	return row.Scan(&m.ID, &m.User1ID, &m.User2ID, &m.CreatedAt, &m.CompatibilityScore)
}

// canonicalPair returns (lower, higher) so every (user1_id, user2_id) row is
// written in one consistent order regardless of swipe direction.
func canonicalPair(userA, userB int64) (int64, int64) {
	if userA < userB {
		return userA, userB
	}
	return userB, userA
}

func (r *MatchRepository) Create(ctx context.Context, userA, userB int64, score float64) (*entities.Match, error) {
	lo, hi := canonicalPair(userA, userB)
	query := fmt.Sprintf(`
		INSERT INTO %s (user1_id, user2_id, created_at, compatibility_score)
		VALUES ($1, $2, NOW(), $3)
		RETURNING %s`, matchTable, matchSelectFields)

	var m entities.Match
	err := r.scan(r.db.QueryRow(ctx, query, lo, hi, score), &m)
	if err == nil {
		return &m, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return r.FindByPair(ctx, lo, hi)
	}
	return nil, fmt.Errorf("create match: %w", err)
}

func (r *MatchRepository) FindByPair(ctx context.Context, userA, userB int64) (*entities.Match, error) {
	lo, hi := canonicalPair(userA, userB)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user1_id = $1 AND user2_id = $2`, matchSelectFields, matchTable)
	var m entities.Match
	if err := r.scan(r.db.QueryRow(ctx, query, lo, hi), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find match by pair: %w", err)
	}
	return &m, nil
}

// ListForUser returns matches touching userID, newest-first, paginated by
// a strictly-decreasing match id cursor (0 means "from the start").
func (r *MatchRepository) ListForUser(ctx context.Context, userID int64, afterID int64, limit int) ([]entities.Match, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (user1_id = $1 OR user2_id = $1)
			AND ($2 = 0 OR id < $2)
		ORDER BY id DESC
		LIMIT $3`, matchSelectFields, matchTable)

	rows, err := r.db.Query(ctx, query, userID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]entities.Match, 0)
	for rows.Next() {
		var m entities.Match
		if err := r.scan(rows, &m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
