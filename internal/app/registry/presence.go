package registry

import (
	"sync"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
)

// entry pairs the live client with the connection id that registered it, so
// a stale unregister can be recognized after a reconnect overwrote the slot.
type entry struct {
	connID string
	client contracts.Client
}

// Presence maps user id to the most recently registered live connection.
// All mutation goes through the connection lifecycle; nothing else touches
// the map.
type Presence struct {
	mu    sync.RWMutex
	users map[string]entry
}

func NewPresence() *Presence {
	return &Presence{
		users: make(map[string]entry),
	}
}

// Register inserts or overwrites the mapping for the client's user. A prior
// connection for the same user is silently superseded; it is not closed and
// not notified.
func (p *Presence) Register(userID string, c contracts.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = entry{connID: c.ID(), client: c}
}

func (p *Presence) Resolve(userID string) (contracts.Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.users[userID]
	if !ok {
		return nil, false
	}
	return e.client, true
}

// Unregister removes the user's entry, but only while it still belongs to
// connID. When a user reconnects before the old transport finishes closing,
// the old connection's deferred unregister must not evict the new one.
// No-op if no matching entry exists.
func (p *Presence) Unregister(userID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.users[userID]; ok && e.connID == connID {
		delete(p.users, userID)
	}
}
