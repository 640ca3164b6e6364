package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-chat-service/internal/mocks"
	"factory-chat-service/internal/telemetry"
)

func TestDebugAuditTestEmitsCallerIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, "audit.chat", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		return ok &&
			envelope.Payload.Level == "INFO" &&
			envelope.UserID != nil && *envelope.UserID == "7"
	})).Return(nil)

	emitter := telemetry.NewAuditEmitter(publisher, "audit.chat", "factory-chat-service", "test", zap.NewNop())
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", 7)
		c.Next()
	})
	RegisterDebugRoutes(router, emitter, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/debug/audit-test", nil))

	require.Equal(t, http.StatusOK, w.Code)
	publisher.AssertExpectations(t)
}

func TestDebugRoutesDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, nil, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/debug/audit-test", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
