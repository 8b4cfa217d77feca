package routes

import (
	"dating-core/internal/controllers"
	"dating-core/pkg/idempotency"

	"github.com/labstack/echo/v4"
)

// RegisterChatRoutes mounts the Chat service's HTTP surface and the
// WebSocket upgrade endpoint (spec.md §4.5, §6.2). The WS route validates
// its own bearer token (query or header) since echo's middleware chain
// runs before the protocol switch and a 401 there would need to look like
// a plain HTTP response anyway. The WebSocket message.send frame carries
// its own idempotency_key handled inside ChatService directly; the HTTP
// fallback honors the same header-based contract as discovery's writes.
func RegisterChatRoutes(e *echo.Echo, ctrl *controllers.ChatController, authMW echo.MiddlewareFunc, idemCache *idempotency.Cache) {
	e.GET("/chat/ws", ctrl.ServeWs)

	group := e.Group("/chat", authMW)
	group.GET("/conversations", ctrl.ListConversations)
	group.GET("/conversations/:conversation_id/messages", ctrl.ListMessages)
	group.POST("/messages", ctrl.SendMessage, idempotency.Middleware(idemCache, "chat.send_message"))
	group.PUT("/messages/:message_id/read", ctrl.MarkRead)
	group.POST("/conversations/:conversation_id/block", ctrl.Block)
	group.POST("/conversations/:conversation_id/report", ctrl.Report)
}
