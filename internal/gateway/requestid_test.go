package gateway

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID_ProducesParseableULID(t *testing.T) {
	id := newRequestID()
	parsed, err := ulid.ParseStrict(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed.String())
}

func TestNewRequestID_ConsecutiveCallsAreUnique(t *testing.T) {
	a := newRequestID()
	b := newRequestID()
	assert.NotEqual(t, a, b)
}
