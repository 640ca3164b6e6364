package models

import (
	"encoding/json"
	"time"
)

// Notification types.
const (
	NotificationNewMessage       = "NEW_MESSAGE"
	NotificationMention          = "MENTION"
	NotificationSystem           = "SYSTEM"
	NotificationPerformanceAlert = "PERFORMANCE_ALERT"
)

// Notification is a durable per-user notification. Identical
// (user, type, title, content) rows are deduplicated within a trailing
// 5-minute window by the dispatcher.
type Notification struct {
	ID        int             `db:"id" json:"id"`
	UserID    int             `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Content   string          `db:"content" json:"content"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
