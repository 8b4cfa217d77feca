package repositories

import (
	"context"
	"fmt"
	"time"

	"dating-core/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

// CandidateFilter carries the optional query parameters from
// GET /discovery/candidates (spec.md §4.4 step 4). Nil/zero fields mean
// "no constraint".
type CandidateFilter struct {
	AgeMin        *int
	AgeMax        *int
	HeightMin     *int
	HeightMax     *int
	Goal          *entities.Goal
	Education     *entities.Education
	HasChildren   *bool
	WantsChildren *bool
	Smoking       *bool
	Drinking      *bool
	VerifiedOnly  bool
}

// CandidateProfile pairs a candidate's Profile with their owning User's
// last_seen_at, which the ranking formula decays on (spec.md §4.4 step 5)
// but which lives on the users table, not profiles.
type CandidateProfile struct {
	entities.Profile
	LastSeenAt time.Time
}

type DiscoveryRepositoryInterface interface {
	// ListCandidateProfiles returns the unranked base set for U: complete,
	// visible, not U, owner not blocked, orientation-symmetric, hard
	// filters applied except max_distance_km (checked by the service once
	// distances are computed), minus anyone U has interacted with, matched with,
	// or blocked either direction (spec.md §4.4 steps 1-4). Ranking,
	// scoring and cursor pagination happen in the service layer since the
	// score formula mixes Go-side geodistance and decay math that SQL
	// would awkwardly duplicate.
	ListCandidateProfiles(ctx context.Context, userID int64, userGender entities.Gender, userOrientation entities.Orientation, filter CandidateFilter) ([]CandidateProfile, error)
}

type DiscoveryRepository struct {
	db Querier
}

func NewDiscoveryRepository(db Querier) DiscoveryRepositoryInterface {
	return &DiscoveryRepository{db: db}
}

// orientationGenders expands S_U.orientation into the concrete Gender set
// a candidate's gender must fall within (spec.md §4.4 step 3's mapping of
// `any` to {male, female, other}).
func orientationGenders(o entities.Orientation) []entities.Gender {
	switch o {
	case entities.OrientationMale:
		return []entities.Gender{entities.GenderMale}
	case entities.OrientationFemale:
		return []entities.Gender{entities.GenderFemale}
	default:
		return []entities.Gender{entities.GenderMale, entities.GenderFemale, entities.GenderOther}
	}
}

// ageCutoff returns the birth_date at/before which someone is at least
// years old today.
func ageCutoff(years int) time.Time {
	return time.Now().AddDate(-years, 0, 0)
}

func (r *DiscoveryRepository) ListCandidateProfiles(ctx context.Context, userID int64, userGender entities.Gender, userOrientation entities.Orientation, filter CandidateFilter) ([]CandidateProfile, error) {
	wantedGenders := make([]string, 0, 3)
	for _, g := range orientationGenders(userOrientation) {
		wantedGenders = append(wantedGenders, string(g))
	}

	builder := sq.Select(
		"p.user_id", "p.name", "p.birth_date", "p.gender", "p.orientation", "p.goal", "p.bio", "p.interests",
		"p.height_cm", "p.education", "p.has_children", "p.wants_children", "p.smoking", "p.drinking",
		"p.country", "p.city", "p.lat", "p.lon", "p.geohash", "p.hide_age", "p.hide_distance", "p.hide_online",
		"p.allow_messages_from", "p.is_visible", "p.is_complete", "p.created_at", "p.updated_at", "u.last_seen_at",
	).
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.is_complete": true}).
		Where(sq.Eq{"p.is_visible": true}).
		Where(sq.NotEq{"p.user_id": userID}).
		Where(sq.Eq{"u.is_blocked": false}).
		Where(sq.Eq{"p.gender": wantedGenders}).
		// symmetric orientation: candidate must be willing to see U's gender too
		Where("(p.orientation = 'any' OR p.orientation = ?)", string(userGender)).
		Where(`p.user_id NOT IN (SELECT target_id FROM interactions WHERE actor_id = ?)`, userID).
		Where(`p.user_id NOT IN (
			SELECT user1_id FROM matches WHERE user2_id = ?
			UNION
			SELECT user2_id FROM matches WHERE user1_id = ?
		)`, userID, userID).
		Where(`p.user_id NOT IN (
			SELECT blocked_id FROM blocks WHERE blocker_id = ?
			UNION
			SELECT blocker_id FROM blocks WHERE blocked_id = ?
		)`, userID, userID).
		PlaceholderFormat(sq.Dollar)

	if filter.AgeMin != nil {
		builder = builder.Where("p.birth_date <= ?", ageCutoff(*filter.AgeMin))
	}
	if filter.AgeMax != nil {
		builder = builder.Where("p.birth_date >= ?", ageCutoff(*filter.AgeMax+1))
	}
	if filter.HeightMin != nil {
		builder = builder.Where(sq.GtOrEq{"p.height_cm": *filter.HeightMin})
	}
	if filter.HeightMax != nil {
		builder = builder.Where(sq.LtOrEq{"p.height_cm": *filter.HeightMax})
	}
	if filter.Goal != nil {
		builder = builder.Where(sq.Eq{"p.goal": string(*filter.Goal)})
	}
	if filter.Education != nil {
		builder = builder.Where(sq.Eq{"p.education": string(*filter.Education)})
	}
	if filter.HasChildren != nil {
		builder = builder.Where(sq.Eq{"p.has_children": *filter.HasChildren})
	}
	if filter.WantsChildren != nil {
		builder = builder.Where(sq.Eq{"p.wants_children": *filter.WantsChildren})
	}
	if filter.Smoking != nil {
		builder = builder.Where(sq.Eq{"p.smoking": *filter.Smoking})
	}
	if filter.Drinking != nil {
		builder = builder.Where(sq.Eq{"p.drinking": *filter.Drinking})
	}
	if filter.VerifiedOnly {
		builder = builder.Where(`EXISTS (SELECT 1 FROM photos ph WHERE ph.profile_id = p.user_id AND ph.is_primary AND ph.status = 'approved')`)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	profiles := make([]CandidateProfile, 0)
	for rows.Next() {
		var c CandidateProfile
		p := &c.Profile
		if err := rows.Scan(
			&p.UserID, &p.Name, &p.BirthDate, &p.Gender, &p.Orientation, &p.Goal, &p.Bio, &p.Interests,
			&p.HeightCm, &p.Education, &p.HasChildren, &p.WantsChildren, &p.Smoking, &p.Drinking,
			&p.Country, &p.City, &p.Lat, &p.Lon, &p.Geohash, &p.HideAge, &p.HideDistance, &p.HideOnline,
			&p.AllowMessagesFrom, &p.IsVisible, &p.IsComplete, &p.CreatedAt, &p.UpdatedAt, &c.LastSeenAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, c)
	}
	return profiles, rows.Err()
}
