package ws

import (
	"sync"

	"go.uber.org/zap"

	"factory-chat-service/internal/chat"
	"factory-chat-service/internal/observability"
)

// Hub routes events to channels: one personal channel per user id and
// one channel per conversation. Connections land in their personal
// channel at registration; conversation channels are joined only after
// the membership check upstream.
type Hub struct {
	mu            sync.RWMutex
	personal      map[int]map[chat.Conn]bool
	conversations map[int]map[chat.Conn]bool
	// joined tracks each connection's conversation channels for
	// cleanup on disconnect.
	joined map[chat.Conn]map[int]struct{}

	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		personal:      make(map[int]map[chat.Conn]bool),
		conversations: make(map[int]map[chat.Conn]bool),
		joined:        make(map[chat.Conn]map[int]struct{}),
		logger:        logger,
	}
}

// Register subscribes a connection to its user's personal channel.
func (h *Hub) Register(conn chat.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID := conn.UserID()
	if _, ok := h.personal[userID]; !ok {
		h.personal[userID] = make(map[chat.Conn]bool)
	}
	h.personal[userID][conn] = true
	h.joined[conn] = make(map[int]struct{})
}

// Unregister removes a connection from its personal channel and every
// conversation channel it joined. Safe to call for an unknown conn.
func (h *Hub) Unregister(conn chat.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn chat.Conn) {
	userID := conn.UserID()
	if conns, ok := h.personal[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.personal, userID)
		}
	}
	for conversationID := range h.joined[conn] {
		if conns, ok := h.conversations[conversationID]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.conversations, conversationID)
			}
		}
	}
	delete(h.joined, conn)
}

// JoinConversation subscribes a registered connection to a
// conversation channel. Membership is validated by the caller.
func (h *Hub) JoinConversation(conversationID int, conn chat.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conversations[conversationID]; !ok {
		h.conversations[conversationID] = make(map[chat.Conn]bool)
	}
	h.conversations[conversationID][conn] = true
	if _, ok := h.joined[conn]; !ok {
		h.joined[conn] = make(map[int]struct{})
	}
	h.joined[conn][conversationID] = struct{}{}
}

// ToUser delivers an event to every connection on the user's personal
// channel. A no-op when the user is offline.
func (h *Hub) ToUser(userID int, event string, data any) {
	h.mu.RLock()
	conns := make([]chat.Conn, 0, len(h.personal[userID]))
	for conn := range h.personal[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.deliver(conns, event, data)
}

// ToConversation delivers an event to every subscriber of the
// conversation channel, the originator included.
func (h *Hub) ToConversation(conversationID int, event string, data any) {
	h.ToConversationExcept(conversationID, "", event, data)
}

// ToConversationExcept delivers to the conversation channel, skipping
// the connection with the given id. Used for relay-style events so the
// originator does not receive its own echo.
func (h *Hub) ToConversationExcept(conversationID int, exceptConnID string, event string, data any) {
	h.mu.RLock()
	conns := make([]chat.Conn, 0, len(h.conversations[conversationID]))
	for conn := range h.conversations[conversationID] {
		if exceptConnID != "" && conn.ID() == exceptConnID {
			continue
		}
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.deliver(conns, event, data)
}

func (h *Hub) deliver(conns []chat.Conn, event string, data any) {
	for _, conn := range conns {
		if err := conn.Send(event, data); err != nil {
			h.logger.Warn("websocket write failed, evicting connection",
				zap.String("conn_id", conn.ID()),
				zap.Int("user_id", conn.UserID()),
				zap.Error(err))
			observability.IncWSEvent("ws_error")
			_ = conn.Close()
			h.Unregister(conn)
		}
	}
}
