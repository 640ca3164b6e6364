package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"factory-chat-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation and participant persistence.
type ConversationRepository interface {
	GetConversation(ctx context.Context, conversationID int) (models.Conversation, error)
	IsActiveParticipant(ctx context.Context, conversationID int, userID int) (bool, error)
	ActiveParticipantIDs(ctx context.Context, conversationID int) ([]int, error)
	TouchConversation(ctx context.Context, conversationID int) error
	UpdateLastRead(ctx context.Context, conversationID int, userID int) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, name, is_group, created_by, created_at, updated_at FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// IsActiveParticipant checks whether the user holds an active participant row.
func (r *ConversationRepo) IsActiveParticipant(ctx context.Context, conversationID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversation_participants WHERE conversation_id=$1 AND user_id=$2 AND is_active)`, conversationID, userID)
	return exists, err
}

// ActiveParticipantIDs returns the user ids of all active participants.
func (r *ConversationRepo) ActiveParticipantIDs(ctx context.Context, conversationID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM conversation_participants WHERE conversation_id=$1 AND is_active ORDER BY user_id`, conversationID)
	return ids, err
}

// TouchConversation bumps the recency marker to now.
func (r *ConversationRepo) TouchConversation(ctx context.Context, conversationID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id=$1`, conversationID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// UpdateLastRead advances the participant's read watermark to now.
func (r *ConversationRepo) UpdateLastRead(ctx context.Context, conversationID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversation_participants SET last_read_at = NOW() WHERE conversation_id=$1 AND user_id=$2`, conversationID, userID)
	return err
}
