package contracts

import (
	"context"
	"time"
)

// PresenceMirror tracks a TTL-based last-seen marker per user in Redis.
// The authoritative identity-to-connection map lives in process memory;
// the mirror only feeds the user directory's online flag.
type PresenceMirror interface {
	// Touch marks the user online for ttl from now.
	Touch(ctx context.Context, userID string, ttl time.Duration) error
	// Online reports whether the user's marker is still live.
	Online(ctx context.Context, userID string) (bool, error)
	// Clear removes the marker immediately.
	Clear(ctx context.Context, userID string) error
}
