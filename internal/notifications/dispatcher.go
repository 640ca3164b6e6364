package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"factory-chat-service/internal/models"
	"factory-chat-service/internal/observability"
	"factory-chat-service/internal/repositories"
)

// DedupWindow is the trailing interval during which an identical
// (user, type, title, content) notification is suppressed. It guards
// against storms from rapid senders and from multiple code paths
// notifying the same logical event.
const DedupWindow = 5 * time.Minute

// Input is a notification request.
type Input struct {
	Type    string
	Title   string
	Content string
	Data    json.RawMessage
}

// Pusher delivers a notification to a user's personal channel.
type Pusher interface {
	ToUser(userID int, event string, data any)
}

// Dispatcher persists notifications with window-based deduplication
// and pushes them to online recipients. Offline recipients keep only
// the durable row, fetched on the next poll or login.
type Dispatcher struct {
	repo   repositories.NotificationRepository
	pusher Pusher
	window time.Duration
	logger *zap.Logger

	now func() time.Time
}

// NewDispatcher constructs a Dispatcher with the standard dedup window.
func NewDispatcher(repo repositories.NotificationRepository, pusher Pusher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		pusher: pusher,
		window: DedupWindow,
		logger: logger,
		now:    time.Now,
	}
}

// Notify creates (or deduplicates) a notification for the recipient
// and pushes it to their personal channel. A dedup hit returns the
// existing row with no new insert and no push.
func (d *Dispatcher) Notify(ctx context.Context, userID int, input Input) (models.Notification, error) {
	existing, err := d.repo.FindRecentDuplicate(ctx, userID, input.Type, input.Title, input.Content, d.now().Add(-d.window))
	if err != nil {
		return models.Notification{}, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		observability.IncNotification("deduplicated")
		return *existing, nil
	}

	notif, err := d.repo.Create(ctx, repositories.CreateNotificationParams{
		UserID:  userID,
		Type:    input.Type,
		Title:   input.Title,
		Content: input.Content,
		Data:    input.Data,
	})
	if err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	observability.IncNotification("created")

	d.pusher.ToUser(userID, models.EventNewNotification, notif)
	return notif, nil
}
