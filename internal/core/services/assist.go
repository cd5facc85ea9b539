package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
)

// AssistService fronts the AI boundary. Stateless: every call stands alone.
type AssistService struct {
	log    *slog.Logger
	assist contracts.Assist
}

func NewAssistService(log *slog.Logger, assist contracts.Assist) *AssistService {
	return &AssistService{
		log:    log,
		assist: assist,
	}
}

func (s *AssistService) SmartReply(ctx context.Context, lastMessage string) ([]string, error) {
	if lastMessage == "" {
		return nil, errors.New("last message is required")
	}
	replies, err := s.assist.SmartReply(ctx, lastMessage)
	if err != nil {
		s.log.ErrorContext(ctx, "assist - smart reply failed", "err", err)
		return nil, err
	}
	return replies, nil
}

func (s *AssistService) Summarize(ctx context.Context, messages []string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages are required")
	}
	summary, err := s.assist.Summarize(ctx, messages)
	if err != nil {
		s.log.ErrorContext(ctx, "assist - summary failed", "err", err)
		return "", err
	}
	return summary, nil
}
