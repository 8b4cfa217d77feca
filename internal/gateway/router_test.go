package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_WebSocketChatRoute(t *testing.T) {
	upstream, egress, isWS, ok := resolve("/v1/chat/ws")
	assert.True(t, ok)
	assert.Equal(t, "chat", upstream)
	assert.True(t, isWS)
	assert.Equal(t, "/v1/chat/ws", egress)
}

func TestResolve_AuthRouteStripsAPIPrefix(t *testing.T) {
	upstream, egress, isWS, ok := resolve("/api/auth/validate")
	assert.True(t, ok)
	assert.Equal(t, "auth", upstream)
	assert.False(t, isWS)
	assert.Equal(t, "/auth/validate", egress)
}

func TestResolve_PhotosRouteRewritesToMediaPath(t *testing.T) {
	upstream, egress, _, ok := resolve("/api/photos/42")
	assert.True(t, ok)
	assert.Equal(t, "media", upstream)
	assert.Equal(t, "/media/42", egress)
}

func TestResolve_DiscoverRouteRewritesExactPrefix(t *testing.T) {
	upstream, egress, _, ok := resolve("/api/discover")
	assert.True(t, ok)
	assert.Equal(t, "discovery", upstream)
	assert.Equal(t, "/discovery/candidates", egress)
}

func TestResolve_FavoritesRouteWithSuffix(t *testing.T) {
	upstream, egress, _, ok := resolve("/api/favorites/55")
	assert.True(t, ok)
	assert.Equal(t, "discovery", upstream)
	assert.Equal(t, "/discovery/favorites/55", egress)
}

func TestResolve_UnknownPathIsNotFound(t *testing.T) {
	_, _, _, ok := resolve("/nonexistent/thing")
	assert.False(t, ok)
}

func TestResolve_PrefixMustMatchSegmentBoundary(t *testing.T) {
	// "/authxyz" must not match the "/auth" route just by string prefix.
	_, _, _, ok := resolve("/authxyz")
	assert.False(t, ok)
}
