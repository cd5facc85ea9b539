package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the persistent account identity. User.ID (as a string) is the
// identity carried in tokens, presence entries and room ids.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the directory view of a user, safe to return to other
// authenticated users.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Online   bool   `json:"online"`
}

// Message is a persisted chat entry. The relay writes it exactly once per
// send attempt, before any broadcast.
type Message struct {
	ID        uuid.UUID
	RoomID    string
	Sender    string
	Receiver  string
	Content   string
	CreatedAt time.Time
}

func NewMessage(roomID, sender, receiver, content string) *Message {
	return &Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
