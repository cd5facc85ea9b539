package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
)

var chatTracer = otel.Tracer("chat-service")

// ChatService handles send-message: persist first, broadcast only after the
// store accepted the write. On a failed write the sender alone receives an
// error event; other room members never learn a message was attempted.
type ChatService struct {
	repo     domain.MessageRepository
	rooms    contracts.Rooms
	txRunner contracts.TxRunner
	log      *slog.Logger
}

func NewChatService(
	log *slog.Logger,
	repo domain.MessageRepository,
	rooms contracts.Rooms,
	txRunner contracts.TxRunner,
) *ChatService {
	return &ChatService{
		log:      log,
		repo:     repo,
		rooms:    rooms,
		txRunner: txRunner,
	}
}

// Send persists the message and broadcasts it to the room minus the sender.
// The persist call is the only blocking I/O on this path and holds no lock
// on presence or room state while it runs.
func (s *ChatService) Send(ctx context.Context, sender contracts.Client, data domain.SendMessageData) error {
	ctx, span := chatTracer.Start(ctx, "ChatService.Send", trace.WithAttributes(
		attribute.String("chat.room_id", data.RoomID),
		attribute.String("chat.sender", sender.UserID()),
	))
	defer span.End()

	if data.RoomID == "" || data.Message == "" {
		span.SetStatus(codes.Error, "malformed send-message")
		return domain.ErrInvalidRoomID
	}

	msg := domain.NewMessage(data.RoomID, sender.UserID(), data.Receiver, data.Message)
	if err := s.txRunner.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Append(txCtx, msg)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.ErrorContext(ctx, "chat - send - persist failed", "room_id", data.RoomID, "sender", sender.UserID(), "err", err)
		s.notifyError(ctx, sender, "Failed to save message")
		return fmt.Errorf("%w: %v", domain.ErrMessageNotSaved, err)
	}

	out := domain.ReceiveMessageData{
		Message: data.Message,
		Sender:  sender.UserID(),
		RoomID:  data.RoomID,
	}
	frame, err := domain.NewEnvelope(domain.EventReceiveMessage, out)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.rooms.Broadcast(ctx, data.RoomID, sender.ID(), frame)
	s.log.InfoContext(ctx, "chat - send - persisted and broadcast", "room_id", data.RoomID, "sender", sender.UserID())
	return nil
}

// History returns the stored messages of a room, oldest first.
func (s *ChatService) History(ctx context.Context, roomID string) ([]domain.Message, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.History", trace.WithAttributes(
		attribute.String("chat.room_id", roomID),
	))
	defer span.End()
	if roomID == "" {
		return nil, domain.ErrInvalidRoomID
	}
	msgs, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "db read failed")
		s.log.ErrorContext(ctx, "chat - history - list failed", "room_id", roomID, "err", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("message_count", len(msgs)))
	return msgs, nil
}

func (s *ChatService) notifyError(ctx context.Context, c contracts.Client, msg string) {
	raw, _ := json.Marshal(domain.ErrorData{Message: msg})
	frame, _ := json.Marshal(domain.Envelope{Event: domain.EventError, Data: raw})
	_ = c.Send(ctx, frame)
}
