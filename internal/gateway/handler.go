package gateway

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"
)

// Handler dispatches every inbound request against the static route table,
// proxying HTTP normally and upgrading to a WebSocket proxy where the
// request carries Upgrade: websocket (spec.md §4.1).
type Handler struct {
	proxy  *Proxy
	logger *zap.Logger
}

func NewHandler(proxy *Proxy, logger *zap.Logger) *Handler {
	return &Handler{proxy: proxy, logger: logger}
}

func (h *Handler) ServeHTTP(c echo.Context) error {
	req := c.Request()
	upstreamName, egressPath, isWS, ok := resolve(req.URL.Path)
	if !ok {
		return api.Error(c, apperrors.ErrNotFound)
	}

	target := h.proxy.Target(upstreamName)
	if target == nil {
		return api.Error(c, apperrors.ErrServiceUnavailable)
	}

	if isWS || isWebSocketUpgrade(req) {
		ProxyWebSocket(c.Response(), req, target, egressPath, h.logger)
		return nil
	}

	h.proxy.ServeHTTP(c.Response(), req, target, egressPath)
	return nil
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
