package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_EncodeDecode_RoundTrip(t *testing.T) {
	encoded := EncodeCursor(0.8457, 123)
	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.InDelta(t, 0.8457, decoded.Score, 1e-9)
	assert.Equal(t, int64(123), decoded.UserID)
}

func TestCursor_DecodeEmptyIsZeroValue(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, Cursor{}, decoded)
}

func TestCursor_DecodeMalformed(t *testing.T) {
	cases := []string{"nocolon", "abc:123", "1.5:notanumber", ""}
	for _, c := range cases[:len(cases)-1] {
		_, err := DecodeCursor(c)
		assert.Error(t, err, "expected error for input %q", c)
	}
}

func TestCursor_NegativeScoreRoundTrips(t *testing.T) {
	encoded := EncodeCursor(-12.5, 7)
	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.InDelta(t, -12.5, decoded.Score, 1e-9)
	assert.Equal(t, int64(7), decoded.UserID)
}
