package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository handles the persistent account identity.
type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// ListUsers returns every user except the one given (the caller).
	ListUsers(ctx context.Context, except uuid.UUID) ([]User, error)
}

// MessageRepository is the durable store boundary. Append must complete
// before the relay broadcasts anything.
type MessageRepository interface {
	Append(ctx context.Context, msg *Message) error
	// ListByRoom returns the room history ordered by creation time ascending.
	ListByRoom(ctx context.Context, roomID string) ([]Message, error)
}
