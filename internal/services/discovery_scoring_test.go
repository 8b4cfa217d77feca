package services

import (
	"testing"
	"time"

	"dating-core/internal/entities"
	"dating-core/internal/repositories"
	"dating-core/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func TestJaccard_IdenticalSetsScoreOne(t *testing.T) {
	score := jaccard([]string{"hiking", "coffee"}, []string{"hiking", "coffee"})
	assert.Equal(t, 1.0, score)
}

func TestJaccard_DisjointSetsScoreZero(t *testing.T) {
	score := jaccard([]string{"hiking"}, []string{"chess"})
	assert.Equal(t, 0.0, score)
}

func TestJaccard_BothEmptyScoreZero(t *testing.T) {
	score := jaccard(nil, nil)
	assert.Equal(t, 0.0, score)
}

func TestJaccard_PartialOverlap(t *testing.T) {
	score := jaccard([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	assert.InDelta(t, 2.0/4.0, score, 1e-9)
}

func TestFreshnessScore_MoreRecentScoresHigher(t *testing.T) {
	now := time.Now()
	recent := freshnessScore(now.Add(-1 * time.Hour))
	old := freshnessScore(now.Add(-30 * 24 * time.Hour))
	assert.Greater(t, recent, old)
}

func TestFreshnessScore_DecaysToHalfAtHalfLife(t *testing.T) {
	score := freshnessScore(time.Now().Add(-time.Duration(rankHalfLifeDays*24) * time.Hour))
	assert.InDelta(t, 0.5, score, 0.01)
}

func TestRankScore_IdenticalProfilesOutscoreDisjointOnes(t *testing.T) {
	lat, lon := 40.0, -70.0
	base := &entities.Profile{
		Interests: []string{"music", "travel"},
		Goal:      entities.GoalSerious,
		Education: entities.EducationBachelor,
		Lat:       &lat, Lon: &lon,
	}
	similar := &repositories.CandidateProfile{
		Profile: entities.Profile{
			Interests: []string{"music", "travel"},
			Goal:      entities.GoalSerious,
			Education: entities.EducationBachelor,
			Lat:       &lat, Lon: &lon,
		},
		LastSeenAt: time.Now(),
	}
	dissimilarLat, dissimilarLon := -10.0, 120.0
	dissimilar := &repositories.CandidateProfile{
		Profile: entities.Profile{
			Interests: []string{"chess"},
			Goal:      entities.GoalCasual,
			Education: entities.EducationHighSchool,
			Lat:       &dissimilarLat, Lon: &dissimilarLon,
		},
		LastSeenAt: time.Now().Add(-60 * 24 * time.Hour),
	}

	similarScore := rankScore(base, similar, 100)
	dissimilarScore := rankScore(base, dissimilar, 100)

	assert.Greater(t, similarScore, dissimilarScore)
}

func TestIsBeforeCursor_OrdersByScoreThenUserIDDescending(t *testing.T) {
	cursor := utils.Cursor{Score: 0.5, UserID: 10}

	assert.True(t, isBeforeCursor(0.4, 99, cursor), "a strictly lower score is always before the cursor")
	assert.False(t, isBeforeCursor(0.6, 1, cursor), "a strictly higher score is never before the cursor")
	assert.True(t, isBeforeCursor(0.5, 5, cursor), "tied score breaks by lower user id")
	assert.False(t, isBeforeCursor(0.5, 20, cursor), "tied score with a higher user id is not before the cursor")
}
