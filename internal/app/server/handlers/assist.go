package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/logger"
)

type AssistHandler struct {
	assistSvc *services.AssistService
}

func NewAssistHandler(assistSvc *services.AssistService) *AssistHandler {
	return &AssistHandler{assistSvc: assistSvc}
}

// SmartReply proposes short replies to the last message of a chat.
func (h *AssistHandler) SmartReply(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req struct {
		LastMessage string `json:"lastMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	replies, err := h.assistSvc.SmartReply(r.Context(), req.LastMessage)
	if err != nil {
		log.ErrorContext(r.Context(), "assist handler - smart reply failed")
		http.Error(w, "AI failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"replies": replies})
}

// Summary condenses a chat transcript.
func (h *AssistHandler) Summary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req struct {
		Messages []string `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	summary, err := h.assistSvc.Summarize(r.Context(), req.Messages)
	if err != nil {
		log.ErrorContext(r.Context(), "assist handler - summary failed")
		http.Error(w, "Summary failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"summary": summary})
}
