package routes

import (
	"dating-core/internal/controllers"
	"dating-core/pkg/idempotency"

	"github.com/labstack/echo/v4"
)

// RegisterDiscoveryRoutes mounts the Discovery service's surface (spec.md
// §4.4), all of it behind authMW since every operation acts as the caller.
// like/pass/favorites additionally honor a client-supplied Idempotency-Key
// (spec.md §8 property 9, §9 scenario 3).
func RegisterDiscoveryRoutes(e *echo.Echo, ctrl *controllers.DiscoveryController, authMW echo.MiddlewareFunc, idemCache *idempotency.Cache) {
	group := e.Group("/discovery", authMW)

	group.GET("/candidates", ctrl.Candidates)
	group.POST("/like", ctrl.Like, idempotency.Middleware(idemCache, "discovery.like"))
	group.POST("/pass", ctrl.Pass, idempotency.Middleware(idemCache, "discovery.pass"))
	group.GET("/matches", ctrl.Matches)
	group.POST("/favorites", ctrl.AddFavorite, idempotency.Middleware(idemCache, "discovery.favorites.add"))
	group.DELETE("/favorites/:target_id", ctrl.RemoveFavorite)
	group.GET("/favorites", ctrl.ListFavorites)
}
