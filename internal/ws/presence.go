package ws

import "sync"

// Presence tracks which users currently hold at least one live
// connection. Process-lifetime in-memory state, owned by the
// composition root and passed by reference to whoever needs it.
type Presence struct {
	mu          sync.RWMutex
	connections map[int]map[string]struct{}
}

// NewPresence creates an empty registry.
func NewPresence() *Presence {
	return &Presence{connections: make(map[int]map[string]struct{})}
}

// AddConnection records a live connection for the user.
func (p *Presence) AddConnection(userID int, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.connections[userID]; !ok {
		p.connections[userID] = make(map[string]struct{})
	}
	p.connections[userID][connID] = struct{}{}
}

// RemoveConnection drops a connection. Removing an id that was never
// added is a no-op (disconnect races). The user's entry is deleted
// entirely once its set is empty.
func (p *Presence) RemoveConnection(userID int, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conns, ok := p.connections[userID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(p.connections, userID)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (p *Presence) IsOnline(userID int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.connections[userID]) > 0
}

// OnlineUsers returns the ids of all currently-online users.
func (p *Presence) OnlineUsers() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	users := make([]int, 0, len(p.connections))
	for userID := range p.connections {
		users = append(users, userID)
	}
	return users
}
