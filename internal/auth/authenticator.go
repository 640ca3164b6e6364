package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"factory-chat-service/internal/repositories"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the minimal user summary attached to a connection for
// its lifetime. Re-authentication does not occur mid-connection.
type Identity struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Authenticator validates a bearer credential and resolves the account
// behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

type accessClaims struct {
	UserID    int    `json:"userId"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 access tokens issued by the auth
// service and checks the account is still active.
type JWTAuthenticator struct {
	secret []byte
	users  repositories.UserRepository
}

// NewJWTAuthenticator constructs a JWTAuthenticator.
func NewJWTAuthenticator(secret string, users repositories.UserRepository) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), users: users}
}

// Authenticate parses and validates the token, requires an access-type
// claim, and loads the active account it references. Any failure is
// terminal for the connection attempt.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNoToken
	}

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.TokenType != "access" || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}

	user, err := a.users.GetActiveUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, fmt.Errorf("load user: %w", err)
	}

	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}
