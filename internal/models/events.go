package models

// Outbound websocket event names.
const (
	EventConversationsJoined = "conversations_joined"
	EventNewMessage          = "new_message"
	EventMessageError        = "message_error"
	EventUserTyping          = "user_typing"
	EventUserStoppedTyping   = "user_stopped_typing"
	EventMessagesRead        = "messages_read"
	EventNewNotification     = "new_notification"
)

// Outbound websocket payloads. The envelope around them lives in the
// ws package.

// TypingEvent is relayed for user_typing / user_stopped_typing.
type TypingEvent struct {
	UserID         int    `json:"userId"`
	Username       string `json:"username,omitempty"`
	ConversationID int    `json:"conversationId"`
}

// MessagesReadEvent is broadcast when a participant marks messages read.
type MessagesReadEvent struct {
	UserID         int   `json:"userId"`
	MessageIDs     []int `json:"messageIds"`
	ConversationID int   `json:"conversationId"`
}

// ErrorEvent is sent to the originating connection only.
type ErrorEvent struct {
	Error string `json:"error"`
}
