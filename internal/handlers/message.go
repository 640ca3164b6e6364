package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"factory-chat-service/internal/chat"
	"factory-chat-service/internal/models"
	"factory-chat-service/internal/repositories"
)

// ChatService is the slice of the chat core the REST layer needs.
type ChatService interface {
	SendAttachment(ctx context.Context, input chat.AttachmentInput) (models.Message, error)
}

// MessageHandler serves conversation history and the
// upload-then-create attachment path. The binary upload itself happens
// in the file service; this endpoint receives the resulting descriptor.
type MessageHandler struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	service          ChatService
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(conversationRepo repositories.ConversationRepository, messageRepo repositories.MessageRepository, service ChatService) *MessageHandler {
	return &MessageHandler{conversationRepo: conversationRepo, messageRepo: messageRepo, service: service}
}

// GetConversationMessages returns the conversation history plus the
// caller's unread count recomputed from receipts.
func (h *MessageHandler) GetConversationMessages(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.conversationRepo.IsActiveParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	msgs, err := h.messageRepo.ListConversationMessages(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	unread, err := h.messageRepo.UnreadCount(c.Request.Context(), conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs, "unread_count": unread})
}

// PostAttachmentMessage creates an attachment message from an already
// uploaded file descriptor and broadcasts it like any live message.
func (h *MessageHandler) PostAttachmentMessage(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req struct {
		Content     string `json:"content"`
		MessageType string `json:"message_type" binding:"required,oneof=IMAGE VIDEO FILE"`
		FileURL     string `json:"file_url" binding:"required"`
		FileName    string `json:"file_name"`
		FileSize    int64  `json:"file_size"`
		MimeType    string `json:"mime_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.service.SendAttachment(c.Request.Context(), chat.AttachmentInput{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
		MessageType:    req.MessageType,
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		FileSize:       req.FileSize,
		MimeType:       req.MimeType,
	})
	if err != nil {
		if errors.Is(err, chat.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}
