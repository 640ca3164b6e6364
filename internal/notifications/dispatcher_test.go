package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-chat-service/internal/mocks"
	"factory-chat-service/internal/models"
	"factory-chat-service/internal/repositories"
)

type pushCall struct {
	userID int
	event  string
	data   any
}

type fakePusher struct {
	calls []pushCall
}

func (p *fakePusher) ToUser(userID int, event string, data any) {
	p.calls = append(p.calls, pushCall{userID: userID, event: event, data: data})
}

func TestNotifyCreatesAndPushes(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	data := json.RawMessage(`{"conversationId":10}`)

	repo := new(mocks.NotificationRepositoryMock)
	repo.On("FindRecentDuplicate", mock.Anything, 8, models.NotificationNewMessage, "New message from alice", "hello", now.Add(-DedupWindow)).
		Return(nil, nil)
	created := models.Notification{ID: 5, UserID: 8, Type: models.NotificationNewMessage, Title: "New message from alice", Content: "hello"}
	repo.On("Create", mock.Anything, repositories.CreateNotificationParams{
		UserID:  8,
		Type:    models.NotificationNewMessage,
		Title:   "New message from alice",
		Content: "hello",
		Data:    data,
	}).Return(created, nil)

	pusher := &fakePusher{}
	d := NewDispatcher(repo, pusher, zap.NewNop())
	d.now = func() time.Time { return now }

	notif, err := d.Notify(context.Background(), 8, Input{
		Type:    models.NotificationNewMessage,
		Title:   "New message from alice",
		Content: "hello",
		Data:    data,
	})
	require.NoError(t, err)
	assert.Equal(t, created, notif)

	require.Len(t, pusher.calls, 1)
	assert.Equal(t, 8, pusher.calls[0].userID)
	assert.Equal(t, models.EventNewNotification, pusher.calls[0].event)
	assert.Equal(t, created, pusher.calls[0].data)
	repo.AssertExpectations(t)
}

func TestNotifyDeduplicatesWithinWindow(t *testing.T) {
	existing := &models.Notification{ID: 5, UserID: 8, Type: models.NotificationNewMessage}

	repo := new(mocks.NotificationRepositoryMock)
	repo.On("FindRecentDuplicate", mock.Anything, 8, models.NotificationNewMessage, "t", "c", mock.Anything).
		Return(existing, nil)

	pusher := &fakePusher{}
	d := NewDispatcher(repo, pusher, zap.NewNop())

	notif, err := d.Notify(context.Background(), 8, Input{Type: models.NotificationNewMessage, Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, *existing, notif, "a dedup hit returns the existing row")

	assert.Empty(t, pusher.calls, "no push on a dedup hit")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotifyCreatesFreshRowAfterWindowElapses(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := base.Add(DedupWindow + time.Minute)

	repo := new(mocks.NotificationRepositoryMock)
	repo.On("FindRecentDuplicate", mock.Anything, 8, models.NotificationNewMessage, "t", "c", base.Add(-DedupWindow)).
		Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).
		Return(models.Notification{ID: 1, UserID: 8}, nil).Once()
	repo.On("FindRecentDuplicate", mock.Anything, 8, models.NotificationNewMessage, "t", "c", later.Add(-DedupWindow)).
		Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).
		Return(models.Notification{ID: 2, UserID: 8}, nil).Once()

	pusher := &fakePusher{}
	d := NewDispatcher(repo, pusher, zap.NewNop())
	current := base
	d.now = func() time.Time { return current }

	input := Input{Type: models.NotificationNewMessage, Title: "t", Content: "c"}
	first, err := d.Notify(context.Background(), 8, input)
	require.NoError(t, err)

	current = later
	second, err := d.Notify(context.Background(), 8, input)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "an identical notification past the window is a new row")
	assert.Len(t, pusher.calls, 2)
	repo.AssertExpectations(t)
}

func TestNotifyPropagatesStorageErrors(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	repo.On("FindRecentDuplicate", mock.Anything, 8, "SYSTEM", "t", "c", mock.Anything).
		Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))

	pusher := &fakePusher{}
	d := NewDispatcher(repo, pusher, zap.NewNop())

	_, err := d.Notify(context.Background(), 8, Input{Type: "SYSTEM", Title: "t", Content: "c"})
	require.Error(t, err)
	assert.Empty(t, pusher.calls)
}
