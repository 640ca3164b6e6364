package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-chat-service/internal/ws"
)

func TestListOnlineUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	presence := ws.NewPresence()
	presence.AddConnection(2, "a")
	presence.AddConnection(1, "b")
	presence.AddConnection(1, "c")

	router := gin.New()
	router.GET("/presence/online", NewPresenceHandler(presence).ListOnlineUsers)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/presence/online", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OnlineUserIDs []int `json:"online_user_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int{1, 2}, body.OnlineUserIDs)
}
