package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"factory-chat-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads account rows owned by the auth subsystem.
type UserRepository interface {
	GetActiveUser(ctx context.Context, userID int) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetActiveUser fetches a user that exists and is active. Inactive or
// missing accounts both map to ErrUserNotFound.
func (r *UserRepo) GetActiveUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, email, role, is_active, created_at FROM users WHERE id=$1 AND is_active`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
