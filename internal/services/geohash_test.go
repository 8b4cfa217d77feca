package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeGeohash_KnownValue(t *testing.T) {
	// 57.64911,10.40744 is the canonical geohash wiki example ("u4pruydqqvj").
	got := EncodeGeohash(57.64911, 10.40744)
	assert.Equal(t, "u4pru", got)
}

func TestEncodeGeohash_NearbyPointsShareAPrefix(t *testing.T) {
	a := EncodeGeohash(40.7128, -74.0060)
	b := EncodeGeohash(40.7129, -74.0061)
	assert.Equal(t, a[:4], b[:4])
}

func TestEncodeGeohash_DistantPointsDiffer(t *testing.T) {
	nyc := EncodeGeohash(40.7128, -74.0060)
	tokyo := EncodeGeohash(35.6762, 139.6503)
	assert.NotEqual(t, nyc, tokyo)
}

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	d := haversineKm(40.0, -74.0, 40.0, -74.0)
	assert.InDelta(t, 0.0, d, 0.001)
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// New York to Los Angeles is roughly 3935km.
	d := haversineKm(40.7128, -74.0060, 34.0522, -118.2437)
	assert.InDelta(t, 3935, d, 50)
}
