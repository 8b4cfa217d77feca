package idempotency

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"
)

// Middleware replays a cached Record when the client retries the same
// Idempotency-Key within Window, and otherwise records the handler's
// response for future replays (spec.md §4.4, §8 property 9: "two POSTs
// with the same Idempotency-Key within the window produce byte-identical
// responses"). scope namespaces keys per route so two endpoints never
// collide on the same client-chosen key. Requests without the header pass
// through untouched.
func Middleware(cache *Cache, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("Idempotency-Key")
			if key == "" {
				return next(c)
			}
			ctx := c.Request().Context()

			if rec, err := cache.Lookup(ctx, scope, key); err == nil && rec != nil {
				return replay(c, rec)
			}

			token, acquired, err := cache.TryLock(ctx, scope, key)
			if err != nil || !acquired {
				if err == nil {
					return api.Error(c, apperrors.ErrConflict)
				}
				return next(c)
			}
			defer cache.Unlock(ctx, scope, key, token)

			rec, err := cache.Lookup(ctx, scope, key)
			if err == nil && rec != nil {
				return replay(c, rec)
			}

			recorder := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, body: &bytes.Buffer{}}
			c.Response().Writer = recorder

			if err := next(c); err != nil {
				return err
			}

			if recorder.status < 500 {
				header := make(map[string]string, len(recorder.Header()))
				for k := range recorder.Header() {
					header[k] = recorder.Header().Get(k)
				}
				_ = cache.Store(ctx, scope, key, Record{Status: recorder.status, Header: header, Body: recorder.body.Bytes()})
			}
			return nil
		}
	}
}

func replay(c echo.Context, rec *Record) error {
	for k, v := range rec.Header {
		c.Response().Header().Set(k, v)
	}
	return c.Blob(rec.Status, rec.Header["Content-Type"], rec.Body)
}

// bodyRecorder tees the handler's response into an in-memory buffer so it
// can be cached alongside the status/headers actually sent to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
