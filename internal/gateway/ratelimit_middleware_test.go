package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dating-core/pkg/ratelimit"
	"dating-core/pkg/service"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRateLimit_AnonymousCallerKeyedByIP(t *testing.T) {
	client := setupTestRedis(t)
	limiter := ratelimit.New(client)
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	e := echo.New()

	handler := RateLimit(limiter, jwtSvc, 1, 100)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/discover", nil)
	rec1 := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req1, rec1)))
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/api/discover", nil)
	rec2 := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req2, rec2)))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.NotEmpty(t, rec2.Header().Get("Retry-After"))
}

func TestRateLimit_AuthenticatedCallerGetsHigherBudget(t *testing.T) {
	client := setupTestRedis(t)
	limiter := ratelimit.New(client)
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	e := echo.New()

	token, err := jwtSvc.Generate(42, 1001)
	require.NoError(t, err)

	handler := RateLimit(limiter, jwtSvc, 1, 5)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/discover", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code, "authenticated caller should get the higher budget, not the anon one")
	}
}

func TestRateLimit_InvalidTokenFallsBackToAnonBudget(t *testing.T) {
	client := setupTestRedis(t)
	limiter := ratelimit.New(client)
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	e := echo.New()

	handler := RateLimit(limiter, jwtSvc, 1, 100)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/discover", nil)
	req1.Header.Set("Authorization", "Bearer not-a-real-token")
	rec1 := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req1, rec1)))
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/api/discover", nil)
	req2.Header.Set("Authorization", "Bearer not-a-real-token")
	rec2 := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req2, rec2)))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code, "an unparseable token must not grant the authenticated budget")
}
