package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"factory-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// CreateMessageParams carries the insert payload for a message. File
// fields are only set for attachment messages.
type CreateMessageParams struct {
	ConversationID int
	SenderID       int
	Content        string
	MessageType    string
	FileURL        sql.NullString
	FileName       sql.NullString
	FileSize       sql.NullInt64
	MimeType       sql.NullString
}

// MessageRepository defines interactions for messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListConversationMessages(ctx context.Context, conversationID int) ([]models.Message, error)
	UnreadCount(ctx context.Context, conversationID int, userID int) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns it hydrated with sender
// display fields.
func (r *MessageRepo) CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error) {
	if params.MessageType == "" {
		params.MessageType = models.MessageTypeText
	}
	var msg models.Message
	query := `WITH inserted AS (
            INSERT INTO messages (conversation_id, sender_id, content, message_type, file_url, file_name, file_size, mime_type)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, conversation_id, sender_id, content, message_type, file_url, file_name, file_size, mime_type, is_deleted, created_at
        )
        SELECT inserted.*, u.username AS sender_username, u.role AS sender_role
        FROM inserted JOIN users u ON u.id = inserted.sender_id`
	err := r.db.GetContext(ctx, &msg, query,
		params.ConversationID, params.SenderID, params.Content, params.MessageType,
		params.FileURL, params.FileName, params.FileSize, params.MimeType)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	query := `SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type, m.file_url, m.file_name, m.file_size, m.mime_type, m.is_deleted, m.created_at,
            u.username AS sender_username, u.role AS sender_role
        FROM messages m JOIN users u ON u.id = m.sender_id WHERE m.id=$1`
	err := r.db.GetContext(ctx, &msg, query, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListConversationMessages returns messages ordered by creation,
// excluding soft-deleted rows, hydrated with sender display fields.
func (r *MessageRepo) ListConversationMessages(ctx context.Context, conversationID int) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type, m.file_url, m.file_name, m.file_size, m.mime_type, m.is_deleted, m.created_at,
            u.username AS sender_username, u.role AS sender_role
        FROM messages m JOIN users u ON u.id = m.sender_id
        WHERE m.conversation_id=$1 AND m.is_deleted = FALSE
        ORDER BY m.created_at ASC`
	err := r.db.SelectContext(ctx, &msgs, query, conversationID)
	return msgs, err
}

// UnreadCount recomputes the unread count for a user from receipts:
// messages sent by someone else with no receipt row for this user.
func (r *MessageRepo) UnreadCount(ctx context.Context, conversationID int, userID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages m
        WHERE m.conversation_id=$1 AND m.sender_id<>$2 AND m.is_deleted = FALSE
        AND NOT EXISTS (SELECT 1 FROM message_read_receipts r WHERE r.message_id = m.id AND r.user_id=$2)`
	err := r.db.GetContext(ctx, &count, query, conversationID, userID)
	return count, err
}
