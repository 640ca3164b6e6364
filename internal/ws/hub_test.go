package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubConn struct {
	id       string
	userID   int
	username string

	mu      sync.Mutex
	sendErr error
	closed  bool
	events  []string
}

func newStubConn(id string, userID int) *stubConn {
	return &stubConn{id: id, userID: userID, username: "user"}
}

func (c *stubConn) ID() string       { return c.id }
func (c *stubConn) UserID() int      { return c.userID }
func (c *stubConn) Username() string { return c.username }

func (c *stubConn) Send(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.events = append(c.events, event)
	return nil
}

func (c *stubConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *stubConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}

func TestHubToUserReachesAllUserConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())

	first := newStubConn("c1", 1)
	second := newStubConn("c2", 1)
	other := newStubConn("c3", 2)
	hub.Register(first)
	hub.Register(second)
	hub.Register(other)

	hub.ToUser(1, "new_notification", nil)

	assert.Equal(t, []string{"new_notification"}, first.received())
	assert.Equal(t, []string{"new_notification"}, second.received())
	assert.Empty(t, other.received())
}

func TestHubToConversationIncludesSenderAndSkipsOutsiders(t *testing.T) {
	hub := NewHub(zap.NewNop())

	sender := newStubConn("c1", 1)
	member := newStubConn("c2", 2)
	outsider := newStubConn("c3", 3)
	hub.Register(sender)
	hub.Register(member)
	hub.Register(outsider)

	hub.JoinConversation(10, sender)
	hub.JoinConversation(10, member)

	hub.ToConversation(10, "new_message", nil)

	assert.Equal(t, []string{"new_message"}, sender.received())
	assert.Equal(t, []string{"new_message"}, member.received())
	assert.Empty(t, outsider.received())
}

func TestHubToConversationExceptSkipsOriginator(t *testing.T) {
	hub := NewHub(zap.NewNop())

	originator := newStubConn("c1", 1)
	member := newStubConn("c2", 2)
	hub.Register(originator)
	hub.Register(member)
	hub.JoinConversation(10, originator)
	hub.JoinConversation(10, member)

	hub.ToConversationExcept(10, "c1", "user_typing", nil)

	assert.Empty(t, originator.received())
	assert.Equal(t, []string{"user_typing"}, member.received())
}

func TestHubUnregisterRemovesAllSubscriptions(t *testing.T) {
	hub := NewHub(zap.NewNop())

	conn := newStubConn("c1", 1)
	hub.Register(conn)
	hub.JoinConversation(10, conn)
	hub.JoinConversation(11, conn)

	hub.Unregister(conn)

	hub.ToUser(1, "new_notification", nil)
	hub.ToConversation(10, "new_message", nil)
	hub.ToConversation(11, "new_message", nil)
	assert.Empty(t, conn.received())

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Empty(t, hub.personal)
	assert.Empty(t, hub.conversations)
	assert.Empty(t, hub.joined)
}

func TestHubEvictsConnectionOnWriteFailure(t *testing.T) {
	hub := NewHub(zap.NewNop())

	broken := newStubConn("c1", 1)
	broken.sendErr = errors.New("write: broken pipe")
	healthy := newStubConn("c2", 2)
	hub.Register(broken)
	hub.Register(healthy)
	hub.JoinConversation(10, broken)
	hub.JoinConversation(10, healthy)

	hub.ToConversation(10, "new_message", nil)

	require.True(t, broken.closed)
	assert.Equal(t, []string{"new_message"}, healthy.received())

	// The broken connection must be gone from every channel.
	broken.sendErr = nil
	hub.ToConversation(10, "new_message", nil)
	assert.Empty(t, broken.received())
}
