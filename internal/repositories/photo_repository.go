package repositories

import (
	"context"
	"errors"
	"fmt"

	"dating-core/internal/entities"
	apperrors "dating-core/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const photoTable = "photos"
const photoSelectFields = "id, profile_id, url, sort_order, is_primary, nsfw_score, status, created_at"

type PhotoRepositoryInterface interface {
	ListByProfileID(ctx context.Context, profileID int64) ([]entities.Photo, error)
	FindByID(ctx context.Context, id int64) (*entities.Photo, error)
	Create(ctx context.Context, p *entities.Photo) (*entities.Photo, error)
	UpdateSortOrder(ctx context.Context, id int64, sortOrder int) error
	UpdateStatus(ctx context.Context, id int64, status entities.PhotoStatus, nsfwScore float64) error
	Delete(ctx context.Context, id int64) error
	CountByProfileID(ctx context.Context, profileID int64) (int, error)
}

type PhotoRepository struct {
	db Querier
}

func NewPhotoRepository(db Querier) PhotoRepositoryInterface {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) scan(row pgx.Row, p *entities.Photo) error {
	return row.Scan(&p.ID, &p.ProfileID, &p.URL, &p.SortOrder, &p.IsPrimary, &p.NSFWScore, &p.Status, &p.CreatedAt)
}

func (r *PhotoRepository) ListByProfileID(ctx context.Context, profileID int64) ([]entities.Photo, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE profile_id = $1 ORDER BY sort_order ASC`, photoSelectFields, photoTable)
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := make([]entities.Photo, 0)
	for rows.Next() {
		var p entities.Photo
		if err := r.scan(rows, &p); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) FindByID(ctx context.Context, id int64) (*entities.Photo, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, photoSelectFields, photoTable)
	var p entities.Photo
	if err := r.scan(r.db.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find photo: %w", err)
	}
	return &p, nil
}

func (r *PhotoRepository) Create(ctx context.Context, p *entities.Photo) (*entities.Photo, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (profile_id, url, sort_order, is_primary, nsfw_score, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING %s`, photoTable, photoSelectFields)
	var created entities.Photo
	row := r.db.QueryRow(ctx, query, p.ProfileID, p.URL, p.SortOrder, p.IsPrimary, p.NSFWScore, p.Status)
	if err := r.scan(row, &created); err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return &created, nil
}

func (r *PhotoRepository) UpdateSortOrder(ctx context.Context, id int64, sortOrder int) error {
	query := fmt.Sprintf(`UPDATE %s SET sort_order = $1 WHERE id = $2`, photoTable)
	tag, err := r.db.Exec(ctx, query, sortOrder, id)
	if err != nil {
		return fmt.Errorf("update photo sort order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) UpdateStatus(ctx context.Context, id int64, status entities.PhotoStatus, nsfwScore float64) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $1, nsfw_score = $2 WHERE id = $3`, photoTable)
	tag, err := r.db.Exec(ctx, query, status, nsfwScore, id)
	if err != nil {
		return fmt.Errorf("update photo status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, photoTable)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) CountByProfileID(ctx context.Context, profileID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE profile_id = $1`, photoTable)
	var count int
	if err := r.db.QueryRow(ctx, query, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}
