package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/registry"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/server"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/app/server/handlers"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/config"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/services"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/logger"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/platform/telemetry"
	openaiPlugin "github.com/sidharthhcj/Real-time-chat-Call-application/internal/plugins/openai"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/plugins/postgres"
	redisPlugin "github.com/sidharthhcj/Real-time-chat-Call-application/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN)
		return
	}
	log.Info("postgres connected")
	var rdb *redis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL)
		return
	}
	log.Info("redis connected")

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	txManager := postgres.NewTxManager(pdb)
	mirror := redisPlugin.NewRedisPresenceMirror(rdb)
	ai := openaiPlugin.NewOpenAIClient(*cfg.OpenAI)

	// Shared state
	presence := registry.NewPresence()
	rooms := registry.NewRooms()

	// Core Services
	tokenSvc := services.NewTokenService(cfg.SecretToken)
	userSvc := services.NewUserService(log, userRepo, mirror, txManager)
	chatSvc := services.NewChatService(log, msgRepo, rooms, txManager)
	signalingSvc := services.NewSignalingService(log, presence)
	assistSvc := services.NewAssistService(log, ai)

	// Handlers
	authHandler := handlers.NewAuthHandler(userSvc, tokenSvc)
	messageHandler := handlers.NewMessageHandler(chatSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	assistHandler := handlers.NewAssistHandler(assistSvc)
	wsHandler := handlers.NewWSHandler(presence, rooms, mirror, chatSvc, signalingSvc, *cfg.Presence)

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr,
		authHandler, messageHandler, userHandler, assistHandler, wsHandler, tokenSvc)
	if err := srv.Start(); err != nil {
		log.Error("server stopped", "err", err)
	}
}
