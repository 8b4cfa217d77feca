// Package entities holds the persisted shapes from spec.md §3, scanned
// straight off repository queries — no ORM, no reflection, same as the
// teacher's internal/entities package.
package entities

import "time"

// User is the identity record keyed by external telegram_id (spec.md §3).
type User struct {
	ID               int64
	TelegramID       int64
	TelegramUsername *string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	IsBlocked        bool
	RiskScore        float64
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Orientation string

const (
	OrientationMale   Orientation = "male"
	OrientationFemale Orientation = "female"
	OrientationAny    Orientation = "any"
)

type Goal string

const (
	GoalFriendship   Goal = "friendship"
	GoalDating       Goal = "dating"
	GoalRelationship Goal = "relationship"
	GoalNetworking   Goal = "networking"
	GoalSerious      Goal = "serious"
	GoalCasual       Goal = "casual"
)

type Education string

const (
	EducationHighSchool Education = "high_school"
	EducationBachelor   Education = "bachelor"
	EducationMaster     Education = "master"
	EducationPhD        Education = "phd"
	EducationOther      Education = "other"
)

// EducationTier maps Education to the proximity scale from spec.md §4.4
// step 5 ("education-tier proximity"); higher tiers are "more education".
var EducationTier = map[Education]int{
	EducationHighSchool: 0,
	EducationBachelor:   1,
	EducationMaster:     2,
	EducationPhD:        3,
	EducationOther:      0,
}

const MaxEducationTier = 3

type AllowMessagesFrom string

const (
	AllowMessagesFromMatches AllowMessagesFrom = "matches"
	AllowMessagesFromAnyone  AllowMessagesFrom = "anyone"
)

// Profile is 1:1 with User, keyed by user_id (spec.md §3).
type Profile struct {
	UserID            int64
	Name              string
	BirthDate         time.Time
	Gender            Gender
	Orientation       Orientation
	Goal              Goal
	Bio               *string
	Interests         []string
	HeightCm          int
	Education         Education
	HasChildren       *bool
	WantsChildren     *bool
	Smoking           *bool
	Drinking          *bool
	Country           *string
	City              *string
	Lat               *float64
	Lon               *float64
	Geohash           *string
	HideAge           bool
	HideDistance      bool
	HideOnline        bool
	AllowMessagesFrom AllowMessagesFrom
	IsVisible         bool
	IsComplete        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PhotoStatus string

const (
	PhotoStatusPending  PhotoStatus = "pending"
	PhotoStatusApproved PhotoStatus = "approved"
	PhotoStatusRejected PhotoStatus = "rejected"
)

// Photo is N:1 to Profile (spec.md §3).
type Photo struct {
	ID         int64
	ProfileID  int64
	URL        string
	SortOrder  int
	IsPrimary  bool
	NSFWScore  float64
	Status     PhotoStatus
	CreatedAt  time.Time
}

type InteractionKind string

const (
	InteractionLike      InteractionKind = "like"
	InteractionSuperlike InteractionKind = "superlike"
	InteractionPass      InteractionKind = "pass"
)

// Interaction is the N:M user→user swipe event (spec.md §3).
type Interaction struct {
	ActorID   int64
	TargetID  int64
	Kind      InteractionKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Match is the canonical (user1_id < user2_id) mutual-like link (spec.md §3).
type Match struct {
	ID                 int64
	User1ID             int64
	User2ID             int64
	CreatedAt           time.Time
	CompatibilityScore  float64
}

// Favorite is an actor→target bookmark (spec.md §3).
type Favorite struct {
	ActorID   int64
	TargetID  int64
	CreatedAt time.Time
}

// Conversation is the canonical (user1_id < user2_id) message thread
// (spec.md §3).
type Conversation struct {
	ID        int64
	User1ID   int64
	User2ID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	BlockedBy *int64
}

type MessageContentType string

const (
	MessageContentText   MessageContentType = "text"
	MessageContentSystem MessageContentType = "system"
)

// Message is N:1 to Conversation, append-only (spec.md §3).
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	Content        string
	ContentType    MessageContentType
	CreatedAt      time.Time
	ReadAt         *time.Time
	IsDeleted      bool
}

// ReadCursor is the per-(conversation,user) high-water mark (spec.md §3).
type ReadCursor struct {
	ConversationID    int64
	UserID            int64
	LastReadMessageID int64
	LastReadAt        time.Time
}

// Block prevents both parties from exchanging messages (spec.md §3).
type Block struct {
	ID         int64
	BlockerID  int64
	BlockedID  int64
	CreatedAt  time.Time
}

// Report is a free-text moderation record; never affects matching
// directly (spec.md §3). ConversationID is set when the report was filed
// via POST /chat/conversations/{id}/report.
type Report struct {
	ID             int64
	ReporterID     int64
	TargetID       int64
	ConversationID *int64
	Category       string
	Reason         string
	CreatedAt      time.Time
}
