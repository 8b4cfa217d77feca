package services

import (
	"context"
	"fmt"
	"time"

	"dating-core/internal/dto"
	"dating-core/internal/entities"
	"dating-core/internal/repositories"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/utils"
)

type ProfileServiceInterface interface {
	Get(ctx context.Context, userID int64) (*dto.ProfileDTO, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, in *dto.CreateProfileDTO) (*dto.ProfileDTO, error)
	Update(ctx context.Context, userID int64, in *dto.UpdateProfileDTO) (*dto.ProfileDTO, error)
	AddPhoto(ctx context.Context, userID int64, in *dto.CreatePhotoDTO) (*dto.PhotoDTO, error)
	DeletePhoto(ctx context.Context, userID int64, photoID int64) error
	ReorderPhotos(ctx context.Context, userID int64, photoIDs []int64) error
}

type ProfileService struct {
	profiles repositories.ProfileRepositoryInterface
	photos   repositories.PhotoRepositoryInterface
}

func NewProfileService(profiles repositories.ProfileRepositoryInterface, photos repositories.PhotoRepositoryInterface) ProfileServiceInterface {
	return &ProfileService{profiles: profiles, photos: photos}
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*dto.ProfileDTO, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByProfileID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos for profile: %w", err)
	}
	return toProfileDTO(p, photos), nil
}

func (s *ProfileService) Exists(ctx context.Context, userID int64) (bool, error) {
	_, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *ProfileService) Create(ctx context.Context, in *dto.CreateProfileDTO) (*dto.ProfileDTO, error) {
	birthDate, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return nil, apperrors.FieldErrors(map[string]string{"birth_date": "must be YYYY-MM-DD"})
	}
	if fieldErrs := validateAge(birthDate); fieldErrs != nil {
		return nil, fieldErrs
	}

	allowFrom := entities.AllowMessagesFromMatches
	if in.AllowMessagesFrom != "" {
		allowFrom = entities.AllowMessagesFrom(in.AllowMessagesFrom)
	}

	p := &entities.Profile{
		UserID:            in.UserID,
		Name:              in.Name,
		BirthDate:         birthDate,
		Gender:            entities.Gender(in.Gender),
		Orientation:       entities.Orientation(in.Orientation),
		Goal:              entities.Goal(in.Goal),
		Bio:               utils.PtrOrNil(in.Bio),
		Interests:         in.Interests,
		HeightCm:          in.HeightCm,
		Education:         entities.Education(in.Education),
		HasChildren:       in.HasChildren,
		WantsChildren:     in.WantsChildren,
		Smoking:           in.Smoking,
		Drinking:          in.Drinking,
		Country:           utils.PtrOrNil(in.Country),
		City:              utils.PtrOrNil(in.City),
		Lat:               in.Lat,
		Lon:               in.Lon,
		HideAge:           in.HideAge,
		HideDistance:      in.HideDistance,
		HideOnline:        in.HideOnline,
		AllowMessagesFrom: allowFrom,
		IsVisible:         true,
		IsComplete:        true,
	}
	if p.Lat != nil && p.Lon != nil {
		p.Geohash = utils.Ptr(EncodeGeohash(*p.Lat, *p.Lon))
	}

	created, err := s.profiles.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return toProfileDTO(created, nil), nil
}

// Update enforces the immutable-field rule (birth_date, gender may not
// change once set) and recomputes is_complete (spec.md §4.3).
func (s *ProfileService) Update(ctx context.Context, userID int64, in *dto.UpdateProfileDTO) (*dto.ProfileDTO, error) {
	existing, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.BirthDate != nil {
		parsed, err := time.Parse("2006-01-02", *in.BirthDate)
		if err != nil {
			return nil, apperrors.FieldErrors(map[string]string{"birth_date": "must be YYYY-MM-DD"})
		}
		if !parsed.Equal(existing.BirthDate) {
			return nil, apperrors.FieldErrors(map[string]string{"birth_date": "immutable after creation"})
		}
	}
	if in.Gender != nil && entities.Gender(*in.Gender) != existing.Gender {
		return nil, apperrors.FieldErrors(map[string]string{"gender": "immutable after creation"})
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Orientation != nil {
		existing.Orientation = entities.Orientation(*in.Orientation)
	}
	if in.Goal != nil {
		existing.Goal = entities.Goal(*in.Goal)
	}
	if in.Bio != nil {
		existing.Bio = in.Bio
	}
	if in.Interests != nil {
		existing.Interests = in.Interests
	}
	if in.HeightCm != nil {
		existing.HeightCm = *in.HeightCm
	}
	if in.Education != nil {
		existing.Education = entities.Education(*in.Education)
	}
	if in.HasChildren != nil {
		existing.HasChildren = in.HasChildren
	}
	if in.WantsChildren != nil {
		existing.WantsChildren = in.WantsChildren
	}
	if in.Smoking != nil {
		existing.Smoking = in.Smoking
	}
	if in.Drinking != nil {
		existing.Drinking = in.Drinking
	}
	if in.Country != nil {
		existing.Country = in.Country
	}
	if in.City != nil {
		existing.City = in.City
	}
	if in.Lat != nil {
		existing.Lat = in.Lat
	}
	if in.Lon != nil {
		existing.Lon = in.Lon
	}
	if existing.Lat != nil && existing.Lon != nil {
		existing.Geohash = utils.Ptr(EncodeGeohash(*existing.Lat, *existing.Lon))
	}
	if in.HideAge != nil {
		existing.HideAge = *in.HideAge
	}
	if in.HideDistance != nil {
		existing.HideDistance = *in.HideDistance
	}
	if in.HideOnline != nil {
		existing.HideOnline = *in.HideOnline
	}
	if in.AllowMessagesFrom != nil {
		existing.AllowMessagesFrom = entities.AllowMessagesFrom(*in.AllowMessagesFrom)
	}

	existing.IsComplete = isProfileComplete(existing)

	updated, err := s.profiles.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	photos, err := s.photos.ListByProfileID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos for profile: %w", err)
	}
	return toProfileDTO(updated, photos), nil
}

// isProfileComplete re-checks every field POST requires, so a PATCH that
// blanks a required field flips is_complete false (spec.md §4.3).
func isProfileComplete(p *entities.Profile) bool {
	if p.Name == "" || p.HeightCm == 0 {
		return false
	}
	if p.Gender == "" || p.Orientation == "" || p.Goal == "" || p.Education == "" {
		return false
	}
	return true
}

func validateAge(birthDate time.Time) *apperrors.HttpError {
	age := utils.Age(birthDate)
	if age < 18 {
		return apperrors.FieldErrors(map[string]string{"birth_date": "must be at least 18 years old"})
	}
	if age > 120 {
		return apperrors.FieldErrors(map[string]string{"birth_date": "implausible age"})
	}
	return nil
}

func (s *ProfileService) AddPhoto(ctx context.Context, userID int64, in *dto.CreatePhotoDTO) (*dto.PhotoDTO, error) {
	if _, err := s.profiles.FindByUserID(ctx, userID); err != nil {
		return nil, err
	}

	photo := &entities.Photo{
		ProfileID: userID,
		URL:       in.URL,
		SortOrder: in.SortOrder,
		Status:    entities.PhotoStatusPending,
	}

	existing, err := s.photos.ListByProfileID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos before add: %w", err)
	}
	photo.IsPrimary = len(existing) == 0

	created, err := s.photos.Create(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return toPhotoDTO(created), nil
}

func (s *ProfileService) DeletePhoto(ctx context.Context, userID int64, photoID int64) error {
	photo, err := s.photos.FindByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.ProfileID != userID {
		return apperrors.ErrForbidden
	}
	if err := s.photos.Delete(ctx, photoID); err != nil {
		return err
	}
	return s.renumberSortOrder(ctx, userID)
}

// renumberSortOrder keeps sort_order dense (0..n-1) after a delete or
// reorder (spec.md §4.3 "renumbering sort_order to be dense").
func (s *ProfileService) renumberSortOrder(ctx context.Context, profileID int64) error {
	photos, err := s.photos.ListByProfileID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("list photos for renumber: %w", err)
	}
	for i, p := range photos {
		if p.SortOrder == i {
			continue
		}
		if err := s.photos.UpdateSortOrder(ctx, p.ID, i); err != nil {
			return fmt.Errorf("renumber photo %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *ProfileService) ReorderPhotos(ctx context.Context, userID int64, photoIDs []int64) error {
	existing, err := s.photos.ListByProfileID(ctx, userID)
	if err != nil {
		return fmt.Errorf("list photos for reorder: %w", err)
	}
	owned := make(map[int64]bool, len(existing))
	for _, p := range existing {
		owned[p.ID] = true
	}
	for _, id := range photoIDs {
		if !owned[id] {
			return apperrors.ErrForbidden
		}
	}

	for i, id := range photoIDs {
		if err := s.photos.UpdateSortOrder(ctx, id, i); err != nil {
			return fmt.Errorf("reorder photo %d: %w", id, err)
		}
	}
	return s.renumberSortOrder(ctx, userID)
}

func toProfileDTO(p *entities.Profile, photos []entities.Photo) *dto.ProfileDTO {
	out := &dto.ProfileDTO{
		UserID:            p.UserID,
		Name:              p.Name,
		Gender:            string(p.Gender),
		Orientation:       string(p.Orientation),
		Goal:              string(p.Goal),
		Interests:         p.Interests,
		HeightCm:          p.HeightCm,
		Education:         string(p.Education),
		HasChildren:       p.HasChildren,
		WantsChildren:     p.WantsChildren,
		Smoking:           p.Smoking,
		Drinking:          p.Drinking,
		HideAge:           p.HideAge,
		HideDistance:      p.HideDistance,
		HideOnline:        p.HideOnline,
		AllowMessagesFrom: string(p.AllowMessagesFrom),
		IsVisible:         p.IsVisible,
		IsComplete:        p.IsComplete,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
	if !p.HideAge {
		out.BirthDate = p.BirthDate.Format("2006-01-02")
		out.Age = utils.Age(p.BirthDate)
	}
	if p.Bio != nil {
		out.Bio = *p.Bio
	}
	if p.Country != nil {
		out.Country = *p.Country
	}
	if p.City != nil {
		out.City = *p.City
	}
	for _, photo := range photos {
		out.Photos = append(out.Photos, *toPhotoDTO(&photo))
	}
	return out
}

func toPhotoDTO(p *entities.Photo) *dto.PhotoDTO {
	return &dto.PhotoDTO{
		ID:        p.ID,
		URL:       p.URL,
		SortOrder: p.SortOrder,
		IsPrimary: p.IsPrimary,
		Status:    string(p.Status),
		NSFWScore: p.NSFWScore,
	}
}
