package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const userTable = "users"
const userSelectFields = "id, telegram_id, telegram_username, created_at, last_seen_at, is_blocked, risk_score"

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error)
	// UpsertByTelegramID creates the user on first sight or touches
	// last_seen_at/telegram_username on return (spec.md §4.2 auth/validate).
	UpsertByTelegramID(ctx context.Context, telegramID int64, username *string) (*entities.User, error)
	TouchLastSeen(ctx context.Context, id int64) error
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) UserRepositoryInterface {
	return &UserRepository{db: db}
}

func (r *UserRepository) scan(row pgx.Row, u *entities.User) error {
	return row.Scan(&u.ID, &u.TelegramID, &u.TelegramUsername, &u.CreatedAt, &u.LastSeenAt, &u.IsBlocked, &u.RiskScore)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userSelectFields, userTable)
	var u entities.User
	if err := r.scan(r.db.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE telegram_id = $1`, userSelectFields, userTable)
	var u entities.User
	if err := r.scan(r.db.QueryRow(ctx, query, telegramID), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user by telegram id: %w", err)
	}
	return &u, nil
}

// UpsertByTelegramID relies on a unique constraint on telegram_id, same
// idiom as the teacher's upsert-on-conflict inserts, avoiding the
// check-then-insert race between concurrent /auth/validate calls for a
// brand-new telegram_id.
func (r *UserRepository) UpsertByTelegramID(ctx context.Context, telegramID int64, username *string) (*entities.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (telegram_id, telegram_username, created_at, last_seen_at, is_blocked, risk_score)
		VALUES ($1, $2, NOW(), NOW(), false, 0)
		ON CONFLICT (telegram_id) DO UPDATE
			SET telegram_username = EXCLUDED.telegram_username,
				last_seen_at = NOW()
		RETURNING %s`, userTable, userSelectFields)

	var u entities.User
	if err := r.scan(r.db.QueryRow(ctx, query, telegramID, username), &u); err != nil {
		return nil, fmt.Errorf("upsert user by telegram id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) TouchLastSeen(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET last_seen_at = $1 WHERE id = $2`, userTable)
	tag, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_blocked = $1 WHERE id = $2`, userTable)
	tag, err := r.db.Exec(ctx, query, blocked, id)
	if err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
