package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const profileTable = "profiles"
const profileSelectFields = `user_id, name, birth_date, gender, orientation, goal, bio, interests,
	height_cm, education, has_children, wants_children, smoking, drinking,
	country, city, lat, lon, geohash, hide_age, hide_distance, hide_online,
	allow_messages_from, is_visible, is_complete, created_at, updated_at`

type ProfileRepositoryInterface interface {
	FindByUserID(ctx context.Context, userID int64) (*entities.Profile, error)
	Create(ctx context.Context, p *entities.Profile) (*entities.Profile, error)
	Update(ctx context.Context, p *entities.Profile) (*entities.Profile, error)
	SetVisible(ctx context.Context, userID int64, visible bool) error
}

type ProfileRepository struct {
	db Querier
}

func NewProfileRepository(db Querier) ProfileRepositoryInterface {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) scan(row pgx.Row, p *entities.Profile) error {
	return row.Scan(
		&p.UserID, &p.Name, &p.BirthDate, &p.Gender, &p.Orientation, &p.Goal, &p.Bio, &p.Interests,
		&p.HeightCm, &p.Education, &p.HasChildren, &p.WantsChildren, &p.Smoking, &p.Drinking,
		&p.Country, &p.City, &p.Lat, &p.Lon, &p.Geohash, &p.HideAge, &p.HideDistance, &p.HideOnline,
		&p.AllowMessagesFrom, &p.IsVisible, &p.IsComplete, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID int64) (*entities.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, profileSelectFields, profileTable)
	var p entities.Profile
	if err := r.scan(r.db.QueryRow(ctx, query, userID), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find profile by user id: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entities.Profile) (*entities.Profile, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			user_id, name, birth_date, gender, orientation, goal, bio, interests,
			height_cm, education, has_children, wants_children, smoking, drinking,
			country, city, lat, lon, geohash, hide_age, hide_distance, hide_online,
			allow_messages_from, is_visible, is_complete, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, NOW(), NOW()
		) RETURNING %s`, profileTable, profileSelectFields)

	var created entities.Profile
	row := r.db.QueryRow(ctx, query,
		p.UserID, p.Name, p.BirthDate, p.Gender, p.Orientation, p.Goal, p.Bio, p.Interests,
		p.HeightCm, p.Education, p.HasChildren, p.WantsChildren, p.Smoking, p.Drinking,
		p.Country, p.City, p.Lat, p.Lon, p.Geohash, p.HideAge, p.HideDistance, p.HideOnline,
		p.AllowMessagesFrom, p.IsVisible, p.IsComplete,
	)
	if err := r.scan(row, &created); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &created, nil
}

// Update writes every mutable field in one statement; the service layer is
// responsible for rejecting attempts to change birth_date/gender after
// creation (spec.md §4.3 "immutable after creation").
func (r *ProfileRepository) Update(ctx context.Context, p *entities.Profile) (*entities.Profile, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET
			name = $1, goal = $2, bio = $3, interests = $4, height_cm = $5,
			education = $6, has_children = $7, wants_children = $8, smoking = $9,
			drinking = $10, country = $11, city = $12, lat = $13, lon = $14,
			geohash = $15, hide_age = $16, hide_distance = $17, hide_online = $18,
			allow_messages_from = $19, is_visible = $20, is_complete = $21, updated_at = NOW()
		WHERE user_id = $22
		RETURNING %s`, profileTable, profileSelectFields)

	var updated entities.Profile
	row := r.db.QueryRow(ctx, query,
		p.Name, p.Goal, p.Bio, p.Interests, p.HeightCm,
		p.Education, p.HasChildren, p.WantsChildren, p.Smoking,
		p.Drinking, p.Country, p.City, p.Lat, p.Lon,
		p.Geohash, p.HideAge, p.HideDistance, p.HideOnline,
		p.AllowMessagesFrom, p.IsVisible, p.IsComplete, p.UserID,
	)
	if err := r.scan(row, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &updated, nil
}

func (r *ProfileRepository) SetVisible(ctx context.Context, userID int64, visible bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_visible = $1, updated_at = NOW() WHERE user_id = $2`, profileTable)
	tag, err := r.db.Exec(ctx, query, visible, userID)
	if err != nil {
		return fmt.Errorf("set profile visible: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
