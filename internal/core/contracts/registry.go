package contracts

import "context"

// Presence is the in-memory directory mapping a user id to its current live
// connection. At most one entry per user; registering overwrites any prior
// mapping (last writer wins, no notification to the superseded connection).
type Presence interface {
	Register(userID string, c Client)
	// Resolve returns the live connection for userID, or false if the user
	// has no registered connection (offline).
	Resolve(userID string) (Client, bool)
	// Unregister removes the entry for userID, but only if it still points
	// at connID. A stale connection closing after a reconnect must not evict
	// the newer registration. No-op when no matching entry exists.
	Unregister(userID, connID string)
}

// Rooms groups connections into pair rooms and broadcasts within them.
// Rooms come into existence on first join and vanish when empty.
type Rooms interface {
	// Join adds c to the room. Idempotent.
	Join(roomID string, c Client)
	// Broadcast delivers data to every member of the room except the
	// connection with excludeConnID. Silent no-op on an empty or unknown
	// room.
	Broadcast(ctx context.Context, roomID, excludeConnID string, data []byte)
	// DropConnection removes connID from every room it joined.
	DropConnection(connID string)
}

// Client is the minimal surface the registry needs to talk to one
// WebSocket connection.
type Client interface {
	ID() string
	UserID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
