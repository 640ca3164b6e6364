package ws

import (
	"encoding/json"
	"fmt"

	"factory-chat-service/internal/models"
)

// Inbound events form a closed set of typed variants dispatched with an
// exhaustive switch, rather than a string-keyed handler table.

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// InboundEvent is one of the variant types below.
type InboundEvent interface {
	isInboundEvent()
}

// JoinConversations asks to subscribe to conversation channels.
type JoinConversations struct {
	ConversationIDs []int
}

// SendMessage submits a text message to a conversation.
type SendMessage struct {
	ConversationID int    `json:"conversationId"`
	Content        string `json:"content"`
	MessageType    string `json:"messageType"`
}

// TypingStart signals the user began typing in a conversation.
type TypingStart struct {
	ConversationID int `json:"conversationId"`
}

// TypingStop signals the user stopped typing.
type TypingStop struct {
	ConversationID int `json:"conversationId"`
}

// MarkMessagesRead records read receipts for the listed messages.
type MarkMessagesRead struct {
	ConversationID int   `json:"conversationId"`
	MessageIDs     []int `json:"messageIds"`
}

// TokenRefreshed is informational; the server takes no action.
type TokenRefreshed struct{}

func (JoinConversations) isInboundEvent() {}
func (SendMessage) isInboundEvent()       {}
func (TypingStart) isInboundEvent()       {}
func (TypingStop) isInboundEvent()        {}
func (MarkMessagesRead) isInboundEvent()  {}
func (TokenRefreshed) isInboundEvent()    {}

// ParseInbound decodes a raw frame into its typed variant. Unknown
// event names and malformed payloads are errors scoped to the sending
// connection.
func ParseInbound(raw []byte) (InboundEvent, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed event frame: %w", err)
	}

	switch env.Event {
	case "join_conversations":
		var ids []int
		if err := json.Unmarshal(env.Data, &ids); err != nil {
			return nil, fmt.Errorf("join_conversations: %w", err)
		}
		return JoinConversations{ConversationIDs: ids}, nil
	case "send_message":
		var ev SendMessage
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("send_message: %w", err)
		}
		if ev.ConversationID <= 0 {
			return nil, fmt.Errorf("send_message: missing conversationId")
		}
		if ev.Content == "" {
			return nil, fmt.Errorf("send_message: empty content")
		}
		switch ev.MessageType {
		case "", models.MessageTypeText, models.MessageTypeImage, models.MessageTypeVideo, models.MessageTypeFile:
		default:
			return nil, fmt.Errorf("send_message: invalid messageType %q", ev.MessageType)
		}
		return ev, nil
	case "typing_start":
		var ev TypingStart
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("typing_start: %w", err)
		}
		return ev, nil
	case "typing_stop":
		var ev TypingStop
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("typing_stop: %w", err)
		}
		return ev, nil
	case "mark_messages_read":
		var ev MarkMessagesRead
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("mark_messages_read: %w", err)
		}
		if ev.ConversationID <= 0 {
			return nil, fmt.Errorf("mark_messages_read: missing conversationId")
		}
		return ev, nil
	case "token_refreshed":
		return TokenRefreshed{}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}
