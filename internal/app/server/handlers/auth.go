package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/logger"
)

type AuthHandler struct {
	userSvc  *services.UserService
	tokenSvc *services.TokenService
}

func NewAuthHandler(u *services.UserService, t *services.TokenService) *AuthHandler {
	return &AuthHandler{userSvc: u, tokenSvc: t}
}

// Signup creates the account and returns a signed token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		log.ErrorContext(r.Context(), "auth handler - signup failed", "email", req.Email)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.respondWithToken(w, r, user)
	log.InfoContext(r.Context(), "auth handler - signup success", "user_id", user.ID.String())
}

// Login verifies the password and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		log.ErrorContext(r.Context(), "auth handler - login failed", "email", req.Email)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.respondWithToken(w, r, user)
	log.InfoContext(r.Context(), "auth handler - login success", "user_id", user.ID.String())
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *domain.User) {
	token, err := h.tokenSvc.GenerateToken(user.ID.String())
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"token":    token,
		"user_id":  user.ID.String(),
		"username": user.Username,
	})
}
