package models

import (
	"database/sql"
	"time"
)

// Message types. Attachment messages carry the file descriptor columns.
const (
	MessageTypeText  = "TEXT"
	MessageTypeImage = "IMAGE"
	MessageTypeVideo = "VIDEO"
	MessageTypeFile  = "FILE"
)

// Message is a chat message. Immutable once created; is_deleted is a
// soft-delete flag owned by the moderation endpoints, read-only here.
type Message struct {
	ID             int            `db:"id" json:"id"`
	ConversationID int            `db:"conversation_id" json:"conversation_id"`
	SenderID       int            `db:"sender_id" json:"sender_id"`
	Content        string         `db:"content" json:"content"`
	MessageType    string         `db:"message_type" json:"message_type"`
	FileURL        sql.NullString `db:"file_url" json:"file_url,omitempty"`
	FileName       sql.NullString `db:"file_name" json:"file_name,omitempty"`
	FileSize       sql.NullInt64  `db:"file_size" json:"file_size,omitempty"`
	MimeType       sql.NullString `db:"mime_type" json:"mime_type,omitempty"`
	IsDeleted      bool           `db:"is_deleted" json:"is_deleted"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`

	// Hydrated sender display fields, not columns of messages.
	SenderUsername string `db:"sender_username" json:"sender_username,omitempty"`
	SenderRole     string `db:"sender_role" json:"sender_role,omitempty"`
}

// ReadReceipt marks a message read by a user. At most one row per
// (message, user) pair.
type ReadReceipt struct {
	MessageID int       `db:"message_id" json:"message_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
}
