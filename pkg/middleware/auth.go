package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"dating-core/pkg/api"
	"dating-core/pkg/contextkeys"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/service"
)

// Auth verifies the bearer token minted by the auth service and stamps the
// request context with the caller's identity (spec.md §4.2). It does not
// itself re-check is_blocked on every call — callers that must refuse
// blocked users do so at the point of use (discovery excludes blocked
// owners, chat checks blocked_by), the same way /auth/verify does it
// explicitly.
func Auth(jwtSvc service.JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return api.Error(c, err)
			}

			claims, err := jwtSvc.Validate(tokenString)
			if err != nil {
				return api.Error(c, err)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, contextkeys.TelegramIDKey, claims.TelegramID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header, or from the
// `token` query parameter for the chat WebSocket upgrade (spec.md §6.2:
// "query token=<bearer> (or Authorization header)").
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		if q := c.QueryParam("token"); q != "" {
			return q, nil
		}
		return "", apperrors.ErrMissingAuth
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.ErrMissingAuth
	}
	return parts[1], nil
}

// UserID reads the authenticated user id stamped by Auth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextkeys.UserIDKey).(int64)
	return id, ok
}

// TelegramID reads the authenticated Telegram id stamped by Auth.
func TelegramID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextkeys.TelegramIDKey).(int64)
	return id, ok
}
