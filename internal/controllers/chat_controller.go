package controllers

import (
	"net/http"
	"strconv"

	"dating-core/internal/dto"
	"dating-core/internal/services"
	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/service"
	wsock "dating-core/pkg/websocket"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// upgrader accepts every origin; the gateway's CORS layer is the actual
// origin boundary (spec.md §4.1).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ChatController struct {
	chat   services.ChatServiceInterface
	hub    *wsock.Hub
	jwt    service.JWTService
	logger *zap.Logger
}

func NewChatController(chat services.ChatServiceInterface, hub *wsock.Hub, jwt service.JWTService, logger *zap.Logger) *ChatController {
	return &ChatController{chat: chat, hub: hub, jwt: jwt, logger: logger}
}

// ServeWs upgrades GET /chat/ws. The bearer token arrives either in the
// Authorization header or the `token` query parameter (spec.md §6.2),
// since browsers cannot set headers on the WebSocket handshake request.
func (c *ChatController) ServeWs(ctx echo.Context) error {
	tokenString := ctx.QueryParam("token")
	if tokenString == "" {
		if header := ctx.Request().Header.Get("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
			tokenString = header[7:]
		}
	}
	if tokenString == "" {
		return ctx.String(http.StatusUnauthorized, "missing token")
	}

	claims, err := c.jwt.Validate(tokenString)
	if err != nil {
		return ctx.String(http.StatusUnauthorized, "invalid token")
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed", zap.Error(err))
		return err
	}

	handler, ok := c.chat.(wsock.Handler)
	if !ok {
		c.logger.Error("chat service does not implement wsock.Handler")
		_ = conn.Close()
		return nil
	}

	client := wsock.NewClient(c.hub, conn, claims.UserID, c.logger)
	c.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(handler)

	return nil
}

func (c *ChatController) ListConversations(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var q dto.ConversationListQuery
	if err := ctx.Bind(&q); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	q.UserID = callerID

	conversations, err := c.chat.ListConversations(ctx.Request().Context(), callerID, &q)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, conversations)
}

func (c *ChatController) ListMessages(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	conversationID, err := strconv.ParseInt(ctx.Param("conversation_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	var q dto.MessageHistoryQuery
	if err := ctx.Bind(&q); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	messages, err := c.chat.ListMessages(ctx.Request().Context(), callerID, conversationID, &q)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, messages)
}

func (c *ChatController) SendMessage(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.SendMessageRequest
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	resp, err := c.chat.SendMessageHTTP(ctx.Request().Context(), callerID, &body)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusCreated, resp)
}

func (c *ChatController) MarkRead(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	messageID, err := strconv.ParseInt(ctx.Param("message_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	if err := c.chat.MarkRead(ctx.Request().Context(), callerID, messageID); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *ChatController) Block(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	conversationID, err := strconv.ParseInt(ctx.Param("conversation_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	if err := c.chat.Block(ctx.Request().Context(), callerID, conversationID); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *ChatController) Report(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	conversationID, err := strconv.ParseInt(ctx.Param("conversation_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	var body dto.ReportConversationRequest
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	if err := c.chat.Report(ctx.Request().Context(), callerID, conversationID, &body); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
