package dto

// CreateProfileDTO is the body of POST /profiles (spec.md §4.3).
type CreateProfileDTO struct {
	UserID            int64    `json:"user_id" validate:"required"`
	Name              string   `json:"name" validate:"required,min=2,max=100"`
	BirthDate         string   `json:"birth_date" validate:"required"`
	Gender            string   `json:"gender" validate:"required,oneof=male female other"`
	Orientation       string   `json:"orientation" validate:"required,oneof=male female any"`
	Goal              string   `json:"goal" validate:"required,oneof=friendship dating relationship networking serious casual"`
	Bio               string   `json:"bio" validate:"omitempty,max=1000"`
	Interests         []string `json:"interests" validate:"omitempty,max=20,dive,interest_tag"`
	HeightCm          int      `json:"height_cm" validate:"required,min=100,max=250"`
	Education         string   `json:"education" validate:"required,oneof=high_school bachelor master phd other"`
	HasChildren       *bool    `json:"has_children,omitempty"`
	WantsChildren     *bool    `json:"wants_children,omitempty"`
	Smoking           *bool    `json:"smoking,omitempty"`
	Drinking          *bool    `json:"drinking,omitempty"`
	Country           string   `json:"country,omitempty"`
	City              string   `json:"city,omitempty"`
	Lat               *float64 `json:"lat,omitempty"`
	Lon               *float64 `json:"lon,omitempty"`
	HideAge           bool     `json:"hide_age,omitempty"`
	HideDistance      bool     `json:"hide_distance,omitempty"`
	HideOnline        bool     `json:"hide_online,omitempty"`
	AllowMessagesFrom string   `json:"allow_messages_from" validate:"omitempty,oneof=matches anyone"`
}

// UpdateProfileDTO is the body of PATCH /profiles/{user_id}; birth_date and
// gender are rejected if present and different from the stored value
// (enforced in the service layer, not by validate tags, since "present but
// unchanged" must be allowed while "present and different" must not).
type UpdateProfileDTO struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	BirthDate         *string  `json:"birth_date,omitempty"`
	Gender            *string  `json:"gender,omitempty"`
	Orientation       *string  `json:"orientation,omitempty" validate:"omitempty,oneof=male female any"`
	Goal              *string  `json:"goal,omitempty" validate:"omitempty,oneof=friendship dating relationship networking serious casual"`
	Bio               *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Interests         []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,interest_tag"`
	HeightCm          *int     `json:"height_cm,omitempty" validate:"omitempty,min=100,max=250"`
	Education         *string  `json:"education,omitempty" validate:"omitempty,oneof=high_school bachelor master phd other"`
	HasChildren       *bool    `json:"has_children,omitempty"`
	WantsChildren     *bool    `json:"wants_children,omitempty"`
	Smoking           *bool    `json:"smoking,omitempty"`
	Drinking          *bool    `json:"drinking,omitempty"`
	Country           *string  `json:"country,omitempty"`
	City              *string  `json:"city,omitempty"`
	Lat               *float64 `json:"lat,omitempty"`
	Lon               *float64 `json:"lon,omitempty"`
	HideAge           *bool    `json:"hide_age,omitempty"`
	HideDistance      *bool    `json:"hide_distance,omitempty"`
	HideOnline        *bool    `json:"hide_online,omitempty"`
	AllowMessagesFrom *string  `json:"allow_messages_from,omitempty" validate:"omitempty,oneof=matches anyone"`
}

type ProfileDTO struct {
	UserID            int64    `json:"user_id"`
	Name              string   `json:"name"`
	BirthDate         string   `json:"birth_date,omitempty"`
	Age               int      `json:"age,omitempty"`
	Gender            string   `json:"gender"`
	Orientation       string   `json:"orientation"`
	Goal              string   `json:"goal"`
	Bio               string   `json:"bio,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	HeightCm          int      `json:"height_cm"`
	Education         string   `json:"education"`
	HasChildren       *bool    `json:"has_children,omitempty"`
	WantsChildren     *bool    `json:"wants_children,omitempty"`
	Smoking           *bool    `json:"smoking,omitempty"`
	Drinking          *bool    `json:"drinking,omitempty"`
	Country           string   `json:"country,omitempty"`
	City              string   `json:"city,omitempty"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	HideAge           bool     `json:"hide_age"`
	HideDistance      bool     `json:"hide_distance"`
	HideOnline        bool     `json:"hide_online"`
	AllowMessagesFrom string   `json:"allow_messages_from"`
	IsVisible         bool     `json:"is_visible"`
	IsComplete        bool     `json:"is_complete"`
	Photos            []PhotoDTO `json:"photos,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

type ProfileExistsDTO struct {
	Exists bool `json:"exists"`
}

type PhotoDTO struct {
	ID        int64   `json:"id"`
	URL       string  `json:"url"`
	SortOrder int     `json:"sort_order"`
	IsPrimary bool    `json:"is_primary"`
	Status    string  `json:"status"`
	NSFWScore float64 `json:"nsfw_score,omitempty"`
}

type CreatePhotoDTO struct {
	URL       string `json:"url" validate:"required,url"`
	SortOrder int    `json:"sort_order"`
}

type ReorderPhotosDTO struct {
	PhotoIDs []int64 `json:"photo_ids" validate:"required,min=1"`
}
