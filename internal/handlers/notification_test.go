package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"factory-chat-service/internal/mocks"
	"factory-chat-service/internal/models"
	"factory-chat-service/internal/repositories"
)

func setupNotificationRouter(repo repositories.NotificationRepository, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})

	h := NewNotificationHandler(repo)
	router.GET("/notifications", h.ListNotifications)
	router.PATCH("/notifications/:notification_id/read", h.MarkNotificationRead)
	router.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	return router
}

func TestListNotifications(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	repo.On("ListForUser", mock.Anything, 7, false).Return([]models.Notification{
		{ID: 2, UserID: 7, Type: models.NotificationNewMessage, Title: "New message from alice"},
		{ID: 1, UserID: 7, Type: models.NotificationSystem, Title: "Shift change"},
	}, nil)

	router := setupNotificationRouter(repo, 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/notifications", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 2)
	assert.Equal(t, 2, body.Notifications[0].ID)
	repo.AssertExpectations(t)
}

func TestListNotificationsUnreadFilter(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	repo.On("ListForUser", mock.Anything, 7, true).Return([]models.Notification{}, nil)

	router := setupNotificationRouter(repo, 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/notifications?unread=true", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestMarkNotificationRead(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	repo.On("MarkRead", mock.Anything, 5, 7).Return(nil)

	router := setupNotificationRouter(repo, 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PATCH", "/notifications/5/read", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	repo.On("MarkRead", mock.Anything, 5, 7).Return(repositories.ErrNotificationNotFound)

	router := setupNotificationRouter(repo, 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PATCH", "/notifications/5/read", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	router := setupNotificationRouter(new(mocks.NotificationRepositoryMock), 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PATCH", "/notifications/abc/read", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	repo.On("MarkAllRead", mock.Anything, 7).Return(nil)

	router := setupNotificationRouter(repo, 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/notifications/read-all", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}
