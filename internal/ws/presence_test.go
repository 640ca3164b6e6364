package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceOnlineWhileAnyConnectionRemains(t *testing.T) {
	p := NewPresence()

	assert.False(t, p.IsOnline(7))

	p.AddConnection(7, "conn-a")
	assert.True(t, p.IsOnline(7))

	p.AddConnection(7, "conn-b")
	p.RemoveConnection(7, "conn-a")
	assert.True(t, p.IsOnline(7), "user stays online while another connection remains")

	p.RemoveConnection(7, "conn-b")
	assert.False(t, p.IsOnline(7))
}

func TestPresenceRemoveUnknownConnectionIsNoop(t *testing.T) {
	p := NewPresence()

	p.RemoveConnection(7, "never-added")
	assert.False(t, p.IsOnline(7))

	p.AddConnection(7, "conn-a")
	p.RemoveConnection(7, "never-added")
	assert.True(t, p.IsOnline(7))
}

func TestPresenceOnlineUsers(t *testing.T) {
	p := NewPresence()
	p.AddConnection(1, "a")
	p.AddConnection(2, "b")
	p.AddConnection(2, "c")

	assert.ElementsMatch(t, []int{1, 2}, p.OnlineUsers())

	p.RemoveConnection(2, "b")
	p.RemoveConnection(2, "c")
	assert.ElementsMatch(t, []int{1}, p.OnlineUsers())
}
