// Package websocket is the chat session manager: the in-process map from
// user id to live sessions, and the per-connection read/write pumps
// (spec.md §4.5, §5 "session map in Chat Service").
package websocket

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks every live session, keyed by the authenticated user id. A
// user may hold several concurrent sessions (web, phone); all of them
// receive the same fan-out. Mutations are O(1) and the map is guarded by
// a single mutex, never held across I/O (spec.md §5 locking discipline).
type Hub struct {
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[int64]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		sessions:   make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the sessions map; it must be started once per process before
// any client connects.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.sessions[c.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.sessions[c.UserID] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.sessions[c.UserID]; ok {
				delete(set, c)
				if len(set) == 0 {
					delete(h.sessions, c.UserID)
				}
			}
			h.mu.Unlock()
			close(c.Send)
		}
	}
}

// Register adds a client to the session map; it does not block on the
// client's own goroutines.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes a client, closing its outbound queue.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Send delivers a pre-encoded frame to every live session of userID.
// Overflowing a session's outbound queue closes that session with 1011
// (spec.md §4.5 backpressure); it never blocks the caller on a slow peer.
func (h *Hub) Send(userID int64, frame []byte) {
	h.mu.RLock()
	set := h.sessions[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.Send <- frame:
		default:
			h.logger.Warn("websocket: outbound queue overflow, closing session", zap.Int64("user_id", userID))
			c.CloseOverflow()
		}
	}
}

// SendExcept delivers frame to every live session of userID other than
// except, which is skipped even if it belongs to userID. Passing a nil
// except behaves exactly like Send (used when the caller has no
// originating session to exclude, e.g. an HTTP-triggered send).
func (h *Hub) SendExcept(userID int64, frame []byte, except *Client) {
	h.mu.RLock()
	set := h.sessions[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		if c == except {
			continue
		}
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.Send <- frame:
		default:
			h.logger.Warn("websocket: outbound queue overflow, closing session", zap.Int64("user_id", userID))
			c.CloseOverflow()
		}
	}
}

// SessionCount reports how many live sessions a user currently holds;
// used only for diagnostics.
func (h *Hub) SessionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
