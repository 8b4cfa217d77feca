package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dating-core/pkg/contextkeys"
)

// InjectLogger attaches the service's zap.Logger to the echo context so
// handlers can log without threading a logger through every call.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("logger", logger)
			return next(c)
		}
	}
}

// PropagateRequestID copies the X-Request-Id the gateway minted (or a
// caller supplied directly) onto the request context and response header,
// so logs across services can be correlated (spec.md gateway responsibilities).
func PropagateRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get("X-Request-Id")
			if reqID == "" {
				return next(c)
			}

			ctx := context.WithValue(c.Request().Context(), contextkeys.RequestIDKey, reqID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Request-Id", reqID)
			return next(c)
		}
	}
}
