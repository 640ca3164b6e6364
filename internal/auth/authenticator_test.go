package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"factory-chat-service/internal/auth"
	"factory-chat-service/internal/mocks"
	"factory-chat-service/internal/models"
	"factory-chat-service/internal/repositories"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func accessToken(t *testing.T, userID int) string {
	return signToken(t, testSecret, jwt.MapClaims{
		"userId": userID,
		"type":   "access",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
}

func TestAuthenticateResolvesActiveUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetActiveUser", mock.Anything, 7).Return(models.User{
		ID:       7,
		Username: "alice",
		Email:    "alice@factory.example",
		Role:     "SUPERVISOR",
		IsActive: true,
	}, nil)

	a := auth.NewJWTAuthenticator(testSecret, users)
	identity, err := a.Authenticate(context.Background(), accessToken(t, 7))
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{
		UserID:   7,
		Username: "alice",
		Email:    "alice@factory.example",
		Role:     "SUPERVISOR",
	}, identity)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	a := auth.NewJWTAuthenticator(testSecret, new(mocks.UserRepositoryMock))
	_, err := a.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	a := auth.NewJWTAuthenticator(testSecret, new(mocks.UserRepositoryMock))

	cases := map[string]string{
		"garbage":      "not.a.jwt",
		"wrong secret": signToken(t, "other-secret", jwt.MapClaims{"userId": 7, "type": "access", "exp": time.Now().Add(time.Hour).Unix()}),
		"refresh type": signToken(t, testSecret, jwt.MapClaims{"userId": 7, "type": "refresh", "exp": time.Now().Add(time.Hour).Unix()}),
		"expired":      signToken(t, testSecret, jwt.MapClaims{"userId": 7, "type": "access", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no user id":   signToken(t, testSecret, jwt.MapClaims{"type": "access", "exp": time.Now().Add(time.Hour).Unix()}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestAuthenticateRejectsInactiveOrMissingUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetActiveUser", mock.Anything, 7).Return(nil, repositories.ErrUserNotFound)

	a := auth.NewJWTAuthenticator(testSecret, users)
	_, err := a.Authenticate(context.Background(), accessToken(t, 7))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
