package dto

// CandidateQuery binds GET /discovery/candidates query params (spec.md §4.4).
type CandidateQuery struct {
	UserID        int64  `query:"user_id" validate:"required"`
	Limit         int    `query:"limit"`
	Cursor        string `query:"cursor"`
	AgeMin        *int   `query:"age_min"`
	AgeMax        *int   `query:"age_max"`
	HeightMin     *int   `query:"height_min"`
	HeightMax     *int   `query:"height_max"`
	Goal          string `query:"goal"`
	Education     string `query:"education"`
	HasChildren   *bool  `query:"has_children"`
	WantsChildren *bool  `query:"wants_children"`
	Smoking       *bool  `query:"smoking"`
	Drinking      *bool  `query:"drinking"`
	VerifiedOnly  bool   `query:"verified_only"`
	MaxDistanceKm *float64 `query:"max_distance_km"`
}

type CandidateListDTO struct {
	Candidates []ProfileDTO `json:"candidates"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type LikeRequest struct {
	TargetID int64  `json:"target_id" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=like superlike"`
}

type PassRequest struct {
	TargetID int64 `json:"target_id" validate:"required"`
}

type InteractionResultDTO struct {
	Success         bool   `json:"success"`
	Matched         bool   `json:"matched"`
	MatchID         *int64 `json:"match_id,omitempty"`
	InteractionKind string `json:"interaction_kind,omitempty"`
}

type MatchDTO struct {
	MatchID            int64      `json:"match_id"`
	Counterparty       ProfileDTO `json:"counterparty"`
	CompatibilityScore float64    `json:"compatibility_score"`
	CreatedAt          string     `json:"created_at"`
}

type MatchListDTO struct {
	Matches    []MatchDTO `json:"matches"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type FavoriteRequest struct {
	TargetID int64 `json:"target_id" validate:"required"`
}

type FavoriteListDTO struct {
	Favorites []ProfileDTO `json:"favorites"`
}
