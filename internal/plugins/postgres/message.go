package postgres

import (
	"context"
	"database/sql"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
)

/*
	-- Messages
	CREATE TABLE messages (
		id          UUID PRIMARY KEY,
		room_id     TEXT NOT NULL,
		sender      TEXT NOT NULL,
		receiver    TEXT NOT NULL,
		content     TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX messages_room_created_idx ON messages (room_id, created_at);
*/

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	if msg.RoomID == "" {
		return domain.ErrInvalidRoomID
	}
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
        INSERT INTO messages (
            id, room_id, sender, receiver, content, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `,
		msg.ID,
		msg.RoomID,
		msg.Sender,
		msg.Receiver,
		msg.Content,
		msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	if roomID == "" {
		return nil, domain.ErrInvalidRoomID
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, room_id, sender, receiver, content, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.RoomID,
			&m.Sender,
			&m.Receiver,
			&m.Content,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
