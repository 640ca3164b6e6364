package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"factory-chat-service/internal/ws"
)

// PresenceHandler exposes the in-memory presence registry.
type PresenceHandler struct {
	presence *ws.Presence
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(presence *ws.Presence) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// ListOnlineUsers returns the ids of users with at least one live
// connection.
func (h *PresenceHandler) ListOnlineUsers(c *gin.Context) {
	users := h.presence.OnlineUsers()
	sort.Ints(users)
	c.JSON(http.StatusOK, gin.H{"online_user_ids": users})
}
