package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingTrackerExpiresWithoutFreshStart(t *testing.T) {
	tracker := NewTypingTracker(40 * time.Millisecond)

	tracker.Start(10, 7)
	assert.True(t, tracker.IsTyping(10, 7))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, tracker.IsTyping(10, 7), "indicator expires with no fresh start event")
}

func TestTypingTrackerStartResetsTimer(t *testing.T) {
	tracker := NewTypingTracker(80 * time.Millisecond)

	tracker.Start(10, 7)
	time.Sleep(50 * time.Millisecond)
	tracker.Start(10, 7)
	time.Sleep(50 * time.Millisecond)

	assert.True(t, tracker.IsTyping(10, 7), "a fresh start re-arms the expiry")
}

func TestTypingTrackerStopIsImmediate(t *testing.T) {
	tracker := NewTypingTracker(time.Minute)

	tracker.Start(10, 7)
	tracker.Stop(10, 7)
	assert.False(t, tracker.IsTyping(10, 7))

	// Stop for an idle user is a no-op.
	tracker.Stop(10, 8)
	assert.False(t, tracker.IsTyping(10, 8))
}

func TestTypingTrackerTypingUsersPerConversation(t *testing.T) {
	tracker := NewTypingTracker(time.Minute)

	tracker.Start(10, 7)
	tracker.Start(10, 8)
	tracker.Start(11, 9)

	assert.ElementsMatch(t, []int{7, 8}, tracker.TypingUsers(10))
	assert.ElementsMatch(t, []int{9}, tracker.TypingUsers(11))
}
