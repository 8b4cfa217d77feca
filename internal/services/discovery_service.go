package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"dating-core/internal/dto"
	"dating-core/internal/entities"
	"dating-core/internal/repositories"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/eventqueue"
	"dating-core/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	defaultCandidateLimit = 10
	maxCandidateLimit     = 50
	maxFavorites          = 500
	rankHalfLifeDays      = 7.0
	defaultMaxDistanceKm  = 100.0
)

// Ranking weights from spec.md §4.4 step 5; they sum to 1.0.
const (
	weightInterests  = 0.40
	weightSameGoal   = 0.20
	weightEducation  = 0.10
	weightLocation   = 0.20
	weightFreshness  = 0.10
)

type DiscoveryServiceInterface interface {
	Candidates(ctx context.Context, userID int64, q *dto.CandidateQuery) (*dto.CandidateListDTO, error)
	Like(ctx context.Context, actorID int64, in *dto.LikeRequest) (*dto.InteractionResultDTO, error)
	Pass(ctx context.Context, actorID int64, in *dto.PassRequest) (*dto.InteractionResultDTO, error)
	Matches(ctx context.Context, userID int64, cursor string, limit int) (*dto.MatchListDTO, error)
	AddFavorite(ctx context.Context, actorID int64, targetID int64) error
	RemoveFavorite(ctx context.Context, actorID int64, targetID int64) error
	ListFavorites(ctx context.Context, actorID int64) (*dto.FavoriteListDTO, error)
}

type DiscoveryService struct {
	discovery     repositories.DiscoveryRepositoryInterface
	profiles      repositories.ProfileRepositoryInterface
	users         repositories.UserRepositoryInterface
	interactions  repositories.InteractionRepositoryInterface
	matches       repositories.MatchRepositoryInterface
	conversations repositories.ConversationRepositoryInterface
	favorites     repositories.FavoriteRepositoryInterface
	blocks        repositories.BlockRepositoryInterface
	tx            repositories.TxManagerInterface
	events        *eventqueue.Queue
	logger        *zap.Logger
}

func NewDiscoveryService(
	discovery repositories.DiscoveryRepositoryInterface,
	profiles repositories.ProfileRepositoryInterface,
	users repositories.UserRepositoryInterface,
	interactions repositories.InteractionRepositoryInterface,
	matches repositories.MatchRepositoryInterface,
	conversations repositories.ConversationRepositoryInterface,
	favorites repositories.FavoriteRepositoryInterface,
	blocks repositories.BlockRepositoryInterface,
	tx repositories.TxManagerInterface,
	events *eventqueue.Queue,
	logger *zap.Logger,
) DiscoveryServiceInterface {
	return &DiscoveryService{
		discovery: discovery, profiles: profiles, users: users, interactions: interactions,
		matches: matches, conversations: conversations, favorites: favorites, blocks: blocks,
		tx: tx, events: events, logger: logger,
	}
}

type scoredProfile struct {
	profile repositories.CandidateProfile
	score   float64
}

func (s *DiscoveryService) Candidates(ctx context.Context, userID int64, q *dto.CandidateQuery) (*dto.CandidateListDTO, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	if limit > maxCandidateLimit {
		limit = maxCandidateLimit
	}

	cursor, err := utils.DecodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	me, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter := repositories.CandidateFilter{
		AgeMin: q.AgeMin, AgeMax: q.AgeMax,
		HeightMin: q.HeightMin, HeightMax: q.HeightMax,
		HasChildren: q.HasChildren, WantsChildren: q.WantsChildren,
		Smoking: q.Smoking, Drinking: q.Drinking,
		VerifiedOnly: q.VerifiedOnly,
	}
	if q.Goal != "" {
		g := entities.Goal(q.Goal)
		filter.Goal = &g
	}
	if q.Education != "" {
		e := entities.Education(q.Education)
		filter.Education = &e
	}

	candidates, err := s.discovery.ListCandidateProfiles(ctx, userID, me.Gender, me.Orientation, filter)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}

	maxDistance := defaultMaxDistanceKm
	if q.MaxDistanceKm != nil {
		maxDistance = *q.MaxDistanceKm
	}

	scored := make([]scoredProfile, 0, len(candidates))
	for _, c := range candidates {
		if q.MaxDistanceKm != nil && me.Lat != nil && me.Lon != nil && c.Lat != nil && c.Lon != nil {
			if haversineKm(*me.Lat, *me.Lon, *c.Lat, *c.Lon) > *q.MaxDistanceKm {
				continue
			}
		}
		score := rankScore(me, &c, maxDistance)
		scored = append(scored, scoredProfile{profile: c, score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].profile.UserID > scored[j].profile.UserID
	})

	page := make([]scoredProfile, 0, limit)
	for _, sp := range scored {
		if cursor.Score != 0 || cursor.UserID != 0 {
			if !isBeforeCursor(sp.score, sp.profile.UserID, cursor) {
				continue
			}
		}
		page = append(page, sp)
		if len(page) == limit {
			break
		}
	}

	out := &dto.CandidateListDTO{Candidates: make([]dto.ProfileDTO, 0, len(page))}
	for _, sp := range page {
		out.Candidates = append(out.Candidates, *toProfileDTO(&sp.profile.Profile, nil))
	}
	if len(page) == limit {
		last := page[len(page)-1]
		out.NextCursor = utils.EncodeCursor(last.score, last.profile.UserID)
	}
	return out, nil
}

// isBeforeCursor reports whether (score, userID) is strictly less than the
// cursor under the ranking order (descending score, descending user_id).
func isBeforeCursor(score float64, userID int64, cursor utils.Cursor) bool {
	if score != cursor.Score {
		return score < cursor.Score
	}
	return userID < cursor.UserID
}

func rankScore(me *entities.Profile, target *repositories.CandidateProfile, maxDistanceKm float64) float64 {
	interestScore := jaccard(me.Interests, target.Interests)

	goalScore := 0.0
	if me.Goal == target.Goal {
		goalScore = 1.0
	}

	meTier := entities.EducationTier[me.Education]
	targetTier := entities.EducationTier[target.Education]
	tierDiff := math.Abs(float64(meTier - targetTier))
	educationScore := 1 - tierDiff/float64(entities.MaxEducationTier)

	locationScore := 0.5
	if me.Lat != nil && me.Lon != nil && target.Lat != nil && target.Lon != nil && maxDistanceKm > 0 {
		d := haversineKm(*me.Lat, *me.Lon, *target.Lat, *target.Lon)
		if d > maxDistanceKm {
			d = maxDistanceKm
		}
		locationScore = 1 - d/maxDistanceKm
	}

	return weightInterests*interestScore +
		weightSameGoal*goalScore +
		weightEducation*educationScore +
		weightLocation*locationScore +
		weightFreshness*freshnessScore(target.LastSeenAt)
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}

	intersection := 0
	for v := range setA {
		if setB[v] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// freshnessScore is an exponential decay on time since last_seen_at with
// a 7-day half-life (spec.md §4.4 step 5).
func freshnessScore(lastSeenAt time.Time) float64 {
	days := time.Since(lastSeenAt).Hours() / 24
	return math.Exp(-math.Ln2 * days / rankHalfLifeDays)
}

// Like and Pass share everything but the interaction kind and the
// mutuality/match-creation branch, so a common path upserts the
// interaction and Like alone runs the mutuality check (spec.md §4.4).
func (s *DiscoveryService) Like(ctx context.Context, actorID int64, in *dto.LikeRequest) (*dto.InteractionResultDTO, error) {
	return s.swipe(ctx, actorID, in.TargetID, entities.InteractionKind(in.Kind))
}

func (s *DiscoveryService) Pass(ctx context.Context, actorID int64, in *dto.PassRequest) (*dto.InteractionResultDTO, error) {
	return s.swipe(ctx, actorID, in.TargetID, entities.InteractionPass)
}

func (s *DiscoveryService) swipe(ctx context.Context, actorID, targetID int64, kind entities.InteractionKind) (*dto.InteractionResultDTO, error) {
	if actorID == targetID {
		return nil, apperrors.FieldErrors(map[string]string{"target_id": "cannot target yourself"})
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, apperrors.ErrNotFound
	}
	blocked, err := s.blocks.IsBlocked(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, apperrors.ErrForbidden
	}

	result := &dto.InteractionResultDTO{Success: true, InteractionKind: string(kind)}
	var matchEvent *eventqueue.DiscoveryMatchCreated

	err = s.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		txInteractions := repositories.NewInteractionRepository(tx)
		txMatches := repositories.NewMatchRepository(tx)
		txConversations := repositories.NewConversationRepository(tx)

		if _, err := txInteractions.Upsert(ctx, actorID, targetID, kind); err != nil {
			return fmt.Errorf("upsert interaction: %w", err)
		}

		if kind == entities.InteractionLike || kind == entities.InteractionSuperlike {
			reciprocated, err := txInteractions.ExistsLike(ctx, targetID, actorID)
			if err != nil {
				return fmt.Errorf("check reciprocal like: %w", err)
			}
			if reciprocated {
				score, err := s.compatibilityScore(ctx, actorID, targetID)
				if err != nil {
					s.logger.Warn("compatibility score fell back to 0", zap.Error(err))
				}

				match, err := txMatches.Create(ctx, actorID, targetID, score)
				if err != nil {
					return fmt.Errorf("create match: %w", err)
				}
				// Conversation is 1:1 with Match (spec.md §3): create it in
				// the same transaction so a matched pair can message
				// immediately, with no separate "start conversation" step.
				if _, err := txConversations.GetOrCreate(ctx, actorID, targetID); err != nil {
					return fmt.Errorf("create conversation for match: %w", err)
				}
				result.Matched = true
				result.MatchID = utils.Ptr(match.ID)
				matchEvent = &eventqueue.DiscoveryMatchCreated{
					MatchID:           match.ID,
					RecipientUserID:   targetID,
					CounterpartUserID: actorID,
				}
				return nil
			}
		}

		existing, err := txMatches.FindByPair(ctx, actorID, targetID)
		if err == nil {
			result.Matched = true
			result.MatchID = utils.Ptr(existing.ID)
		} else if err != apperrors.ErrNotFound {
			return fmt.Errorf("check existing match: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if matchEvent != nil && s.events != nil {
		recipientUser, err := s.users.FindByID(ctx, matchEvent.RecipientUserID)
		if err == nil {
			matchEvent.RecipientTelegramID = recipientUser.TelegramID
		}
		if counterpartUser, err := s.users.FindByID(ctx, matchEvent.CounterpartUserID); err == nil {
			matchEvent.CounterpartTelegramID = counterpartUser.TelegramID
		}
		if err := s.events.Publish(ctx, eventqueue.SubjectDiscoveryMatchCreated, matchEvent); err != nil {
			s.logger.Warn("publish discovery.match.created failed", zap.Error(err))
		}
	}

	return result, nil
}

// compatibilityScore re-runs the candidate ranking formula (spec.md §4.4
// step 5) for an already-confirmed pair, so a Match's stored
// compatibility_score (spec.md §3, ∈[0,1]) reflects the same inputs that
// surfaced the candidate in the first place rather than a placeholder.
func (s *DiscoveryService) compatibilityScore(ctx context.Context, userA, userB int64) (float64, error) {
	profileA, err := s.profiles.FindByUserID(ctx, userA)
	if err != nil {
		return 0, fmt.Errorf("load profile %d: %w", userA, err)
	}
	profileB, err := s.profiles.FindByUserID(ctx, userB)
	if err != nil {
		return 0, fmt.Errorf("load profile %d: %w", userB, err)
	}
	userBRow, err := s.users.FindByID(ctx, userB)
	if err != nil {
		return 0, fmt.Errorf("load user %d: %w", userB, err)
	}

	candidateB := repositories.CandidateProfile{Profile: *profileB, LastSeenAt: userBRow.LastSeenAt}
	return rankScore(profileA, &candidateB, defaultMaxDistanceKm), nil
}

func (s *DiscoveryService) Matches(ctx context.Context, userID int64, cursor string, limit int) (*dto.MatchListDTO, error) {
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	if limit > maxCandidateLimit {
		limit = maxCandidateLimit
	}

	var afterID int64
	if cursor != "" {
		c, err := utils.DecodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		afterID = c.UserID
	}

	rows, err := s.matches.ListForUser(ctx, userID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := &dto.MatchListDTO{Matches: make([]dto.MatchDTO, 0, len(rows))}
	for _, m := range rows {
		counterpartyID := m.User1ID
		if counterpartyID == userID {
			counterpartyID = m.User2ID
		}
		profile, err := s.profiles.FindByUserID(ctx, counterpartyID)
		if err != nil {
			continue
		}
		out.Matches = append(out.Matches, dto.MatchDTO{
			MatchID:            m.ID,
			Counterparty:       *toProfileDTO(profile, nil),
			CompatibilityScore: m.CompatibilityScore,
			CreatedAt:          m.CreatedAt.Format(time.RFC3339),
		})
	}
	if len(rows) == limit {
		out.NextCursor = utils.EncodeCursor(0, rows[len(rows)-1].ID)
	}
	return out, nil
}

func (s *DiscoveryService) AddFavorite(ctx context.Context, actorID int64, targetID int64) error {
	count, err := s.favorites.CountByActor(ctx, actorID)
	if err != nil {
		return fmt.Errorf("count favorites: %w", err)
	}
	if count >= maxFavorites {
		return apperrors.FieldErrors(map[string]string{"target_id": "favorites limit reached"})
	}
	return s.favorites.Add(ctx, actorID, targetID)
}

func (s *DiscoveryService) RemoveFavorite(ctx context.Context, actorID int64, targetID int64) error {
	return s.favorites.Remove(ctx, actorID, targetID)
}

func (s *DiscoveryService) ListFavorites(ctx context.Context, actorID int64) (*dto.FavoriteListDTO, error) {
	favs, err := s.favorites.ListByActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	out := &dto.FavoriteListDTO{Favorites: make([]dto.ProfileDTO, 0, len(favs))}
	for _, f := range favs {
		profile, err := s.profiles.FindByUserID(ctx, f.TargetID)
		if err != nil {
			continue
		}
		out.Favorites = append(out.Favorites, *toProfileDTO(profile, nil))
	}
	return out, nil
}
