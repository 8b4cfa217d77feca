package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second // spec.md §4.5: "server sends a ping every 30 s"
	outboxSize = 256              // spec.md §4.5: "bounded outbound queue (default 256 messages)"
)

// Handler is implemented by the chat service and invoked for every inbound
// frame a client sends; the hub/client pair knows nothing about
// conversations, messages or authorization.
type Handler interface {
	HandleSend(c *Client, in MessageSendIn)
	HandleReadSet(c *Client, in ReadSetIn)
	HandleTypingSet(c *Client, in TypingSetIn)
}

// Client is one WebSocket connection bound to an authenticated user.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID int64
	logger *zap.Logger

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, logger *zap.Logger) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, outboxSize),
		UserID: userID,
		logger: logger,
	}
}

// CloseOverflow force-closes the connection with 1011 when the outbound
// queue overflows (spec.md §4.5).
func (c *Client) CloseOverflow() {
	c.closeOnce.Do(func() {
		_ = c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "outbound queue overflow"),
			time.Now().Add(writeWait))
		_ = c.Conn.Close()
	})
}

// ReadPump decodes inbound frames and dispatches them to h until the
// connection errors or the peer goes silent past pongWait.
func (c *Client) ReadPump(h Handler) {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket: read error", zap.Error(err))
			}
			return
		}
		c.dispatch(h, raw)
	}
}

func (c *Client) dispatch(h Handler, raw []byte) {
	msgType, err := inboundType(raw)
	if err != nil {
		c.WriteError("invalid_frame", "frame is not valid JSON")
		return
	}

	switch msgType {
	case TypeMessageSend:
		var in MessageSendIn
		if json.Unmarshal(raw, &in) != nil {
			c.WriteError("invalid_frame", "message.send payload malformed")
			return
		}
		h.HandleSend(c, in)
	case TypeReadSet:
		var in ReadSetIn
		if json.Unmarshal(raw, &in) != nil {
			c.WriteError("invalid_frame", "read.set payload malformed")
			return
		}
		h.HandleReadSet(c, in)
	case TypeTypingSet:
		var in TypingSetIn
		if json.Unmarshal(raw, &in) != nil {
			c.WriteError("invalid_frame", "typing.set payload malformed")
			return
		}
		h.HandleTypingSet(c, in)
	case TypePing:
		c.WritePong()
	default:
		c.WriteError("unknown_type", "unrecognized frame type")
	}
}

// WritePong answers a client ping; used both for the spec's client-driven
// ping type and to keep parity with the server's own heartbeat.
func (c *Client) WritePong() {
	frame, err := encode(TypePong, struct{}{})
	if err != nil {
		return
	}
	select {
	case c.Send <- frame:
	default:
		c.Hub.logger.Warn("websocket: dropped pong, queue full", zap.Int64("user_id", c.UserID))
	}
}

// WriteError sends a best-effort error frame; it never blocks on a full
// queue since the caller already failed and should not wait further.
func (c *Client) WriteError(code, message string) {
	frame, err := encode(TypeError, ErrorOut{Code: code, Message: message})
	if err != nil {
		return
	}
	select {
	case c.Send <- frame:
	default:
	}
}

// WritePump owns the socket writer: it drains Send and emits the 30 s
// heartbeat ping, per spec.md §4.5.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
