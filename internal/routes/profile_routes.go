package routes

import (
	"dating-core/internal/controllers"

	"github.com/labstack/echo/v4"
)

// RegisterProfileRoutes mounts the Profile service's surface (spec.md
// §4.3). authMW is the bearer-token middleware shared by every protected
// route; /profiles/{id} and /profiles/check are readable without it since
// discovery and matches need to render a counterparty's public profile.
func RegisterProfileRoutes(e *echo.Echo, ctrl *controllers.ProfileController, authMW echo.MiddlewareFunc) {
	group := e.Group("/profiles")

	group.GET("/check", ctrl.Exists)
	group.GET("/:user_id", ctrl.Get)

	secure := group.Group("", authMW)
	secure.POST("", ctrl.Create)
	secure.PATCH("/:user_id", ctrl.Update)
	secure.POST("/me/photos", ctrl.AddPhoto)
	secure.DELETE("/me/photos/:photo_id", ctrl.DeletePhoto)
	secure.PUT("/me/photos/order", ctrl.ReorderPhotos)
}
