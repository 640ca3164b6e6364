package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"factory-chat-service/internal/models"
	"factory-chat-service/internal/notifications"
	"factory-chat-service/internal/repositories"
	"factory-chat-service/internal/telemetry"
)

// ErrNotParticipant rejects actions by users without an active
// participant row on the target conversation.
var ErrNotParticipant = errors.New("not an active participant of the conversation")

const notificationPreviewLimit = 100

// Service implements the message, read-receipt and typing pipelines on
// top of the storage collaborators and the broadcast hub.
type Service struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	receipts      repositories.ReceiptRepository
	broadcaster   Broadcaster
	notifier      Notifier
	audit         *telemetry.AuditEmitter
	logger        *zap.Logger
}

// NewService constructs a Service. audit may be nil.
func NewService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	receipts repositories.ReceiptRepository,
	broadcaster Broadcaster,
	notifier Notifier,
	audit *telemetry.AuditEmitter,
	logger *zap.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		receipts:      receipts,
		broadcaster:   broadcaster,
		notifier:      notifier,
		audit:         audit,
		logger:        logger,
	}
}

// JoinConversations validates membership per requested id, subscribes
// the connection to the surviving conversation channels and
// acknowledges with the accepted list. Ids failing the check are
// silently dropped, not erred.
func (s *Service) JoinConversations(ctx context.Context, conn Conn, conversationIDs []int) []int {
	accepted := make([]int, 0, len(conversationIDs))
	for _, conversationID := range conversationIDs {
		member, err := s.conversations.IsActiveParticipant(ctx, conversationID, conn.UserID())
		if err != nil {
			s.logger.Warn("membership check failed during join",
				zap.Int("conversation_id", conversationID),
				zap.Int("user_id", conn.UserID()),
				zap.Error(err))
			continue
		}
		if !member {
			continue
		}
		s.broadcaster.JoinConversation(conversationID, conn)
		accepted = append(accepted, conversationID)
	}

	if err := conn.Send(models.EventConversationsJoined, accepted); err != nil {
		s.logger.Warn("join acknowledgement failed", zap.String("conn_id", conn.ID()), zap.Error(err))
	}
	return accepted
}

// SendMessageInput is the live-socket send payload.
type SendMessageInput struct {
	ConversationID int
	Content        string
	MessageType    string
}

// SendMessage runs the message pipeline for a live connection:
// membership gate, persist, recency bump, fan-out including the
// sender, then notifications for the other participants. Failures
// surface as a message_error event to the sender only.
func (s *Service) SendMessage(ctx context.Context, conn Conn, input SendMessageInput) {
	member, err := s.conversations.IsActiveParticipant(ctx, input.ConversationID, conn.UserID())
	if err != nil {
		s.logger.Error("membership check failed", zap.Int("conversation_id", input.ConversationID), zap.Error(err))
		s.sendError(conn, "failed to send message")
		return
	}
	if !member {
		s.sendError(conn, "not a participant of this conversation")
		return
	}

	msg, err := s.messages.CreateMessage(ctx, repositories.CreateMessageParams{
		ConversationID: input.ConversationID,
		SenderID:       conn.UserID(),
		Content:        input.Content,
		MessageType:    input.MessageType,
	})
	if err != nil {
		s.logger.Error("message persist failed",
			zap.Int("conversation_id", input.ConversationID),
			zap.Int("sender_id", conn.UserID()),
			zap.Error(err))
		s.auditPersistFailure(ctx, conn.UserID(), err)
		s.sendError(conn, "failed to send message")
		return
	}

	s.deliver(ctx, msg)
}

// AttachmentInput is the upload-then-create payload. The binary upload
// happened upstream; this carries the resulting descriptor.
type AttachmentInput struct {
	ConversationID int
	SenderID       int
	Content        string
	MessageType    string
	FileURL        string
	FileName       string
	FileSize       int64
	MimeType       string
}

// SendAttachment persists an attachment message produced by the
// upload-then-create path and broadcasts it identically to live
// messages.
func (s *Service) SendAttachment(ctx context.Context, input AttachmentInput) (models.Message, error) {
	member, err := s.conversations.IsActiveParticipant(ctx, input.ConversationID, input.SenderID)
	if err != nil {
		return models.Message{}, fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return models.Message{}, ErrNotParticipant
	}

	msg, err := s.messages.CreateMessage(ctx, repositories.CreateMessageParams{
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		Content:        input.Content,
		MessageType:    input.MessageType,
		FileURL:        sql.NullString{String: input.FileURL, Valid: input.FileURL != ""},
		FileName:       sql.NullString{String: input.FileName, Valid: input.FileName != ""},
		FileSize:       sql.NullInt64{Int64: input.FileSize, Valid: input.FileSize > 0},
		MimeType:       sql.NullString{String: input.MimeType, Valid: input.MimeType != ""},
	})
	if err != nil {
		s.auditPersistFailure(ctx, input.SenderID, err)
		return models.Message{}, fmt.Errorf("persist attachment message: %w", err)
	}

	s.deliver(ctx, msg)
	return msg, nil
}

// deliver bumps the recency marker, fans the hydrated message out to
// the conversation channel (sender included) and notifies the other
// active participants. The recency bump is deliberately not
// transactional with the insert; a crash in between leaves a stale
// updated_at that the next message repairs.
func (s *Service) deliver(ctx context.Context, msg models.Message) {
	if err := s.conversations.TouchConversation(ctx, msg.ConversationID); err != nil {
		s.logger.Warn("conversation recency bump failed",
			zap.Int("conversation_id", msg.ConversationID),
			zap.Error(err))
	}

	s.broadcaster.ToConversation(msg.ConversationID, models.EventNewMessage, msg)

	participantIDs, err := s.conversations.ActiveParticipantIDs(ctx, msg.ConversationID)
	if err != nil {
		s.logger.Error("participant lookup for notifications failed",
			zap.Int("conversation_id", msg.ConversationID),
			zap.Error(err))
		return
	}

	data, _ := json.Marshal(map[string]int{
		"conversationId": msg.ConversationID,
		"messageId":      msg.ID,
		"senderId":       msg.SenderID,
	})
	title := fmt.Sprintf("New message from %s", msg.SenderUsername)
	preview := truncateContent(msg.Content, notificationPreviewLimit)

	for _, participantID := range participantIDs {
		if participantID == msg.SenderID {
			continue
		}
		if _, err := s.notifier.Notify(ctx, participantID, notifications.Input{
			Type:    models.NotificationNewMessage,
			Title:   title,
			Content: preview,
			Data:    data,
		}); err != nil {
			s.logger.Error("notification dispatch failed",
				zap.Int("recipient_id", participantID),
				zap.Int("message_id", msg.ID),
				zap.Error(err))
		}
	}
}

// MarkMessagesRead records receipts idempotently, advances the
// caller's read watermark and notifies the channel minus the caller.
// Receipts are best-effort: a caller without an active participant row
// is a silent no-op.
func (s *Service) MarkMessagesRead(ctx context.Context, conn Conn, conversationID int, messageIDs []int) {
	member, err := s.conversations.IsActiveParticipant(ctx, conversationID, conn.UserID())
	if err != nil {
		s.logger.Warn("membership check failed during mark read", zap.Int("conversation_id", conversationID), zap.Error(err))
		return
	}
	if !member {
		return
	}

	if err := s.receipts.InsertReceipts(ctx, messageIDs, conn.UserID()); err != nil {
		s.logger.Error("receipt insert failed",
			zap.Int("conversation_id", conversationID),
			zap.Int("user_id", conn.UserID()),
			zap.Error(err))
		return
	}

	if err := s.conversations.UpdateLastRead(ctx, conversationID, conn.UserID()); err != nil {
		s.logger.Warn("last-read watermark update failed", zap.Int("conversation_id", conversationID), zap.Error(err))
	}

	s.broadcaster.ToConversationExcept(conversationID, conn.ID(), models.EventMessagesRead, models.MessagesReadEvent{
		UserID:         conn.UserID(),
		MessageIDs:     messageIDs,
		ConversationID: conversationID,
	})
}

// TypingStart relays a transient typing signal to the conversation
// channel, excluding the sender. No persistence, no membership
// re-validation; the channel subscription already gates it.
func (s *Service) TypingStart(conn Conn, conversationID int) {
	s.broadcaster.ToConversationExcept(conversationID, conn.ID(), models.EventUserTyping, models.TypingEvent{
		UserID:         conn.UserID(),
		Username:       conn.Username(),
		ConversationID: conversationID,
	})
}

// TypingStop relays the matching stop signal.
func (s *Service) TypingStop(conn Conn, conversationID int) {
	s.broadcaster.ToConversationExcept(conversationID, conn.ID(), models.EventUserStoppedTyping, models.TypingEvent{
		UserID:         conn.UserID(),
		Username:       conn.Username(),
		ConversationID: conversationID,
	})
}

func (s *Service) sendError(conn Conn, message string) {
	if err := conn.Send(models.EventMessageError, models.ErrorEvent{Error: message}); err != nil {
		s.logger.Warn("error event delivery failed", zap.String("conn_id", conn.ID()), zap.Error(err))
	}
}

func (s *Service) auditPersistFailure(ctx context.Context, userID int, cause error) {
	if s.audit == nil {
		return
	}
	id := fmt.Sprintf("%d", userID)
	s.audit.Emit(ctx, "ERROR", fmt.Sprintf("message persist failed: %v", cause), "", &id)
}

func truncateContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
