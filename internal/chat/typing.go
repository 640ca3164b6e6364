package chat

import (
	"sync"
	"time"
)

// DefaultTypingExpiry is how long a typing indicator survives without
// a fresh start event. The server relays typing signals without any
// state; expiry is enforced on the receiving side by this tracker.
const DefaultTypingExpiry = 3 * time.Second

type typingKey struct {
	conversationID int
	userID         int
}

// TypingTracker is the client-observed typing state machine: idle to
// typing on a start event, back to idle on a stop event or after the
// expiry with no fresh start. A start event while already typing
// resets the timer.
type TypingTracker struct {
	mu     sync.Mutex
	expiry time.Duration
	timers map[typingKey]*time.Timer
}

// NewTypingTracker builds a tracker; a zero expiry means
// DefaultTypingExpiry.
func NewTypingTracker(expiry time.Duration) *TypingTracker {
	if expiry <= 0 {
		expiry = DefaultTypingExpiry
	}
	return &TypingTracker{
		expiry: expiry,
		timers: make(map[typingKey]*time.Timer),
	}
}

// Start marks the user as typing in the conversation and (re)arms the
// expiry timer.
func (t *TypingTracker) Start(conversationID, userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := typingKey{conversationID: conversationID, userID: userID}
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
	}
	t.timers[key] = time.AfterFunc(t.expiry, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.timers, key)
	})
}

// Stop transitions the user back to idle immediately, regardless of
// the timer.
func (t *TypingTracker) Stop(conversationID, userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := typingKey{conversationID: conversationID, userID: userID}
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
}

// IsTyping reports whether the user is currently typing in the
// conversation.
func (t *TypingTracker) IsTyping(conversationID, userID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[typingKey{conversationID: conversationID, userID: userID}]
	return ok
}

// TypingUsers returns the ids of users currently typing in the
// conversation.
func (t *TypingTracker) TypingUsers(conversationID int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var users []int
	for key := range t.timers {
		if key.conversationID == conversationID {
			users = append(users, key.userID)
		}
	}
	return users
}
