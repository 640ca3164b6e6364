package models

import (
	"database/sql"
	"time"
)

// Conversation is a direct or group chat. updated_at is bumped on
// every new message and drives recency ordering in clients.
type Conversation struct {
	ID        int            `db:"id" json:"id"`
	Name      sql.NullString `db:"name" json:"name,omitempty"`
	IsGroup   bool           `db:"is_group" json:"is_group"`
	CreatedBy int            `db:"created_by" json:"created_by"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Participant links a user to a conversation. A user may act on a
// conversation only while its row is active.
type Participant struct {
	ConversationID int          `db:"conversation_id" json:"conversation_id"`
	UserID         int          `db:"user_id" json:"user_id"`
	IsActive       bool         `db:"is_active" json:"is_active"`
	LastReadAt     sql.NullTime `db:"last_read_at" json:"last_read_at,omitempty"`
}
