package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/server/handlers"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/pkg/middleware"
)

type Server struct {
	mux            *http.ServeMux
	log            *slog.Logger
	name           string
	addr           string
	authHandler    *handlers.AuthHandler
	messageHandler *handlers.MessageHandler
	userHandler    *handlers.UserHandler
	assistHandler  *handlers.AssistHandler
	wsHandler      *handlers.WSHandler
	tokenSvc       *services.TokenService
}

func NewServer(
	log *slog.Logger,
	name, addr string,
	authHandler *handlers.AuthHandler,
	messageHandler *handlers.MessageHandler,
	userHandler *handlers.UserHandler,
	assistHandler *handlers.AssistHandler,
	wsHandler *handlers.WSHandler,
	tokenSvc *services.TokenService,
) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		log:            log,
		name:           name,
		addr:           addr,
		authHandler:    authHandler,
		messageHandler: messageHandler,
		userHandler:    userHandler,
		assistHandler:  assistHandler,
		wsHandler:      wsHandler,
		tokenSvc:       tokenSvc,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	logging := middleware.RequestLogger(s.log)
	tracing := middleware.TracerMiddleware(s.name)
	auth := middleware.AuthMiddleware(s.tokenSvc)

	public := func(h http.HandlerFunc) http.Handler {
		return logging(tracing(h))
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return logging(tracing(auth(h)))
	}

	s.mux.Handle("POST /api/auth/signup", public(s.authHandler.Signup))
	s.mux.Handle("POST /api/auth/login", public(s.authHandler.Login))

	s.mux.Handle("GET /api/messages/{roomId}", protected(s.messageHandler.History))
	s.mux.Handle("GET /api/users", protected(s.userHandler.List))
	s.mux.Handle("GET /api/users/me", protected(s.userHandler.Me))
	s.mux.Handle("POST /api/ai/smart-reply", protected(s.assistHandler.SmartReply))
	s.mux.Handle("POST /api/ai/summary", protected(s.assistHandler.Summary))

	// The credential is checked before the upgrade; an invalid token closes
	// the attempt with 401 and no event dispatch ever starts.
	s.mux.Handle("/ws", protected(s.wsHandler.Handler))
}

func (s *Server) Start() error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
		// No global read/write timeouts: /ws connections are long-lived.
		ReadHeaderTimeout: 15 * time.Second,
	}

	s.log.Info("server starting", "addr", s.addr)
	return server.ListenAndServe()
}
