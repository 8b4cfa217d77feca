package gateway

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/ratelimit"
	"dating-core/pkg/service"
)

// RateLimit enforces the anonymous/authenticated per-minute quotas
// (spec.md §4.1) with pkg/ratelimit's sliding one-minute window; it is not
// a token bucket and allows no burst beyond the per-minute count. It is
// keyed by the bearer subject when the request
// carries a token, otherwise by source IP. The gateway does not itself
// reject invalid tokens (that is the services' job) — it only uses a
// present-and-parseable token to pick the subject key and the higher
// authenticated quota.
func RateLimit(limiter *ratelimit.Limiter, jwtSvc service.JWTService, anonRPM, authRPM int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			key := "ip:" + c.RealIP()
			limit := anonRPM

			if token := bearerFromHeader(c.Request().Header.Get("Authorization")); token != "" {
				if claims, err := jwtSvc.Validate(token); err == nil {
					key = "user:" + strconv.FormatInt(claims.UserID, 10)
					limit = authRPM
				}
			}

			allowed, retryAfter, err := limiter.Allow(ctx, key, limit)
			if err != nil {
				return next(c)
			}
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				return api.Error(c, apperrors.ErrRateLimited)
			}
			return next(c)
		}
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
