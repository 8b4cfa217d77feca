package idempotency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_ReplaysIdenticalResponseForSameKey(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	e := echo.New()

	var calls int32
	handler := Middleware(cache, "test.scope")(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]interface{}{"call": calls})
	})

	req1 := httptest.NewRequest(http.MethodPost, "/", nil)
	req1.Header.Set("Idempotency-Key", "abc-123")
	rec1 := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req1, rec1)))

	req2 := httptest.NewRequest(http.MethodPost, "/", nil)
	req2.Header.Set("Idempotency-Key", "abc-123")
	rec2 := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req2, rec2)))

	assert.Equal(t, rec1.Code, rec2.Code)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
	assert.Equal(t, 1, int(calls), "the handler must run exactly once for a repeated key")
}

func TestMiddleware_DifferentKeysRunIndependently(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	e := echo.New()

	var calls int32
	handler := Middleware(cache, "test.scope2")(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int32{"call": calls})
	})

	for _, key := range []string{"k1", "k2", "k3"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Idempotency-Key", key)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
	}

	assert.Equal(t, 3, int(calls))
}

func TestMiddleware_NoHeaderPassesThroughUntouched(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	e := echo.New()

	var calls int32
	handler := Middleware(cache, "test.scope3")(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
	}

	assert.Equal(t, 3, int(calls), "requests without a key must never be deduped")
}

func TestMiddleware_ConcurrentSameKey_HandlerRunsOnce(t *testing.T) {
	client := setupTestRedis(t)
	cache := New(client)
	e := echo.New()

	var calls int32
	var mu sync.Mutex
	handler := Middleware(cache, "test.scope4")(func(c echo.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return c.JSON(http.StatusOK, map[string]string{"result": "done"})
	})

	const n = 5
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Idempotency-Key", "race-key")
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req.WithContext(context.Background()), rec)
			_ = handler(ctx)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, int(calls), 1, "at most one concurrent caller should execute the handler body for the same key")

	successCount := 0
	for _, code := range codes {
		if code == http.StatusOK {
			successCount++
		}
	}
	assert.GreaterOrEqual(t, successCount, 1)
	_ = strconv.Itoa(successCount)
}
