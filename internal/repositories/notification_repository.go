package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"factory-chat-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// CreateNotificationParams carries the insert payload for a notification.
type CreateNotificationParams struct {
	UserID  int
	Type    string
	Title   string
	Content string
	Data    json.RawMessage
}

// NotificationRepository abstracts notification persistence.
type NotificationRepository interface {
	FindRecentDuplicate(ctx context.Context, userID int, nType, title, content string, since time.Time) (*models.Notification, error)
	Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error)
	ListForUser(ctx context.Context, userID int, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// FindRecentDuplicate returns the newest notification with identical
// (user, type, title, content) created at or after since, or nil.
func (r *NotificationRepo) FindRecentDuplicate(ctx context.Context, userID int, nType, title, content string, since time.Time) (*models.Notification, error) {
	var notif models.Notification
	query := `SELECT id, user_id, type, title, content, data, is_read, created_at FROM notifications
        WHERE user_id=$1 AND type=$2 AND title=$3 AND content=$4 AND created_at >= $5
        ORDER BY created_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &notif, query, userID, nType, title, content, since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// Create persists a notification row.
func (r *NotificationRepo) Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error) {
	var notif models.Notification
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications (user_id, type, title, content, data) VALUES ($1, $2, $3, $4, $5)
        RETURNING id, user_id, type, title, content, data, is_read, created_at`,
		params.UserID, params.Type, params.Title, params.Content, params.Data).
		StructScan(&notif)
	return notif, err
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, title, content, data, is_read, created_at FROM notifications WHERE user_id=$1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	var notifs []models.Notification
	err := r.db.SelectContext(ctx, &notifs, query, userID)
	return notifs, err
}

// MarkRead marks one notification read for its recipient.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id=$1 AND user_id=$2`, notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification read for the recipient.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id=$1 AND is_read = FALSE`, userID)
	return err
}
