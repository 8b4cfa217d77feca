package routes

import (
	"dating-core/internal/controllers"

	"github.com/labstack/echo/v4"
)

// RegisterAuthRoutes mounts the Auth service's public surface (spec.md
// §4.2). None of these routes require a bearer token — that's the point.
func RegisterAuthRoutes(e *echo.Echo, ctrl *controllers.AuthController) {
	group := e.Group("/auth")
	group.POST("/validate", ctrl.Validate)
	group.GET("/verify", ctrl.Verify)
	group.POST("/refresh", ctrl.Refresh)
}
