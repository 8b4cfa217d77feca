package customvalidator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type interestsFixture struct {
	Interests []string `validate:"dive,interest_tag"`
}

func TestInterestTag_AcceptsShortTags(t *testing.T) {
	cv := New()
	fixture := interestsFixture{Interests: []string{"hiking", "jazz", strings.Repeat("a", 50)}}
	assert.NoError(t, cv.Validate(&fixture))
}

func TestInterestTag_RejectsOverlongTag(t *testing.T) {
	cv := New()
	fixture := interestsFixture{Interests: []string{strings.Repeat("a", 51)}}
	assert.Error(t, cv.Validate(&fixture))
}
