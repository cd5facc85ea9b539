package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/logger"
)

type MessageHandler struct {
	chat *services.ChatService
}

func NewMessageHandler(chat *services.ChatService) *MessageHandler {
	return &MessageHandler{chat: chat}
}

type messageResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// History returns the stored messages of a room, oldest first.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	roomID := r.PathValue("roomId")
	msgs, err := h.chat.History(r.Context(), roomID)
	if err != nil {
		log.ErrorContext(r.Context(), "message handler - history failed", "room_id", roomID)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			ID:        m.ID.String(),
			RoomID:    m.RoomID,
			Sender:    m.Sender,
			Receiver:  m.Receiver,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
