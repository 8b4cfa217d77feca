package gateway

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var clientUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProxyWebSocket dials target as a WebSocket, completes the handshake to
// the client, then forwards frames in both directions until either side
// closes (spec.md §4.1). A broken upstream socket closes the client side
// with close code 1011, per the gateway's failure model.
func ProxyWebSocket(w http.ResponseWriter, r *http.Request, target *url.URL, egressPath string, logger *zap.Logger) {
	upstreamURL := *target
	upstreamURL.Scheme = wsScheme(target.Scheme)
	upstreamURL.Path = egressPath
	upstreamURL.RawQuery = r.URL.RawQuery

	header := http.Header{}
	if auth := r.Header.Get("Authorization"); auth != "" {
		header.Set("Authorization", auth)
	}

	upstreamConn, resp, err := websocket.DefaultDialer.Dial(upstreamURL.String(), header)
	if err != nil {
		logger.Warn("websocket dial to upstream failed", zap.Error(err), zap.String("upstream", upstreamURL.String()))
		status := http.StatusServiceUnavailable
		if resp != nil {
			status = resp.StatusCode
		}
		http.Error(w, "upstream websocket unavailable", status)
		return
	}
	defer upstreamConn.Close()

	clientConn, err := clientUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade to client failed", zap.Error(err))
		return
	}
	defer clientConn.Close()

	done := make(chan struct{}, 2)
	go forward(clientConn, upstreamConn, done, logger)
	go forward(upstreamConn, clientConn, done, logger)
	<-done
}

// forward copies messages from src to dst until src closes or errors, then
// signals done and sends a best-effort close frame carrying src's close code.
func forward(src, dst *websocket.Conn, done chan<- struct{}, logger *zap.Logger) {
	defer func() { done <- struct{}{} }()
	for {
		msgType, data, err := src.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			if ce, ok := err.(*websocket.CloseError); ok {
				code = ce.Code
			} else {
				code = websocket.CloseInternalServerErr
			}
			closeMsg := websocket.FormatCloseMessage(code, "")
			_ = dst.WriteMessage(websocket.CloseMessage, closeMsg)
			return
		}
		if err := dst.WriteMessage(msgType, data); err != nil {
			logger.Debug("websocket forward write failed", zap.Error(err))
			return
		}
	}
}

func wsScheme(httpScheme string) string {
	if strings.EqualFold(httpScheme, "https") {
		return "wss"
	}
	return "ws"
}
