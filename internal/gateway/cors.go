package gateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	allowedMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	allowedHeaders = "Content-Type, Authorization, X-Requested-With"
)

// CORS answers preflight requests locally and stamps the allow headers on
// every response (spec.md §4.1). webAppDomain is either a concrete origin
// or "*" for wildcard.
func CORS(webAppDomain string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if webAppDomain != "*" {
				c.Response().Header().Set("Access-Control-Allow-Credentials", "true")
			}
			c.Response().Header().Set("Access-Control-Allow-Origin", webAppDomain)
			c.Response().Header().Set("Access-Control-Allow-Methods", allowedMethods)
			c.Response().Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
