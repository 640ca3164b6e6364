package chat

import (
	"context"

	"factory-chat-service/internal/models"
	"factory-chat-service/internal/notifications"
)

// Conn is a live authenticated connection as seen by the chat core.
// The websocket layer implements it; the identity behind it never
// changes for the connection's lifetime.
type Conn interface {
	ID() string
	UserID() int
	Username() string
	Send(event string, data any) error
	Close() error
}

// Broadcaster fans events out to channels. ToConversationExcept is the
// sender-exclusive variant used for typing and read events.
type Broadcaster interface {
	JoinConversation(conversationID int, conn Conn)
	ToUser(userID int, event string, data any)
	ToConversation(conversationID int, event string, data any)
	ToConversationExcept(conversationID int, exceptConnID string, event string, data any)
}

// Notifier creates durable notifications and pushes them to recipients.
type Notifier interface {
	Notify(ctx context.Context, userID int, input notifications.Input) (models.Notification, error)
}
