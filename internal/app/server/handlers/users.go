package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/logger"
	"github.com/sidharthhcj/Real-time-chat-Call-application/pkg/middleware"
)

type UserHandler struct {
	userSvc *services.UserService
}

func NewUserHandler(userSvc *services.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List returns every user except the caller, with an online flag.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	users, err := h.userSvc.Directory(r.Context(), userID)
	if err != nil {
		log.ErrorContext(r.Context(), "user handler - directory failed", "user_id", userID)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// Me returns the profile of the authenticated caller.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	me, err := h.userSvc.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.ErrorContext(r.Context(), "user handler - profile failed", "user_id", userID)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(me)
}
