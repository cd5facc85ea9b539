package registry

import (
	"context"
	"sync"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
)

// Rooms keys room membership by connection id, so two sessions of the same
// user can sit in a room independently. A room exists exactly as long as it
// has members; there is no explicit delete.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[string]contracts.Client
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms: make(map[string]map[string]contracts.Client),
	}
}

// Join is idempotent: re-joining an already joined room is a no-op.
func (r *Rooms) Join(roomID string, c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]contracts.Client)
	}
	r.rooms[roomID][c.ID()] = c
}

// Broadcast delivers data to every room member except excludeConnID. The
// member set is snapshotted under the read lock; the sends themselves happen
// outside it, so a slow client cannot block a concurrent join or leave.
// An empty or unknown room is a silent no-op.
func (r *Rooms) Broadcast(ctx context.Context, roomID, excludeConnID string, data []byte) {
	r.mu.RLock()
	members := make([]contracts.Client, 0, len(r.rooms[roomID]))
	for connID, c := range r.rooms[roomID] {
		if connID == excludeConnID {
			continue
		}
		members = append(members, c)
	}
	r.mu.RUnlock()

	for _, c := range members {
		_ = c.Send(ctx, data)
	}
}

// DropConnection removes the connection from every room it joined and
// deletes rooms that become empty. Called once when the transport closes;
// there is no client-visible leave event.
func (r *Rooms) DropConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, members := range r.rooms {
		if _, ok := members[connID]; !ok {
			continue
		}
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}
