package main

import (
	"context"

	"dating-core/internal/controllers"
	"dating-core/internal/repositories"
	"dating-core/internal/routes"
	"dating-core/internal/services"
	"dating-core/pkg/config"
	"dating-core/pkg/customvalidator"
	"dating-core/pkg/database/postgresql"
	"dating-core/pkg/eventqueue"
	"dating-core/pkg/idempotency"
	applogger "dating-core/pkg/logger"
	"dating-core/pkg/middleware"
	"dating-core/pkg/service"
	wsock "dating-core/pkg/websocket"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	logger := applogger.New("chat")
	cfg := config.Load(":8084")

	pool, err := postgresql.Connect(context.Background(), cfg.Postgres)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	events, err := eventqueue.Connect(cfg.QueueURL)
	if err != nil {
		logger.Fatal("connect event queue", zap.Error(err))
	}

	conversations := repositories.NewConversationRepository(pool)
	messages := repositories.NewMessageRepository(pool)
	readCursors := repositories.NewReadCursorRepository(pool)
	users := repositories.NewUserRepository(pool)
	profiles := repositories.NewProfileRepository(pool)
	blocks := repositories.NewBlockRepository(pool)
	reports := repositories.NewReportRepository(pool)
	tx := repositories.NewTxManager(pool, logger)

	hub := wsock.NewHub(logger)
	go hub.Run()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password})
	idemCache := idempotency.New(redisClient)

	chatSvc := services.NewChatService(conversations, messages, readCursors, users, profiles, blocks, reports, tx, hub, events, idemCache, logger)

	jwtSvc := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	chatCtrl := controllers.NewChatController(chatSvc, hub, jwtSvc, logger)
	authMW := middleware.Auth(jwtSvc)

	e := echo.New()
	e.Validator = customvalidator.New()
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.PropagateRequestID())

	routes.RegisterChatRoutes(e, chatCtrl, authMW, idemCache)

	logger.Info("chat service listening", zap.String("addr", cfg.ServerAddr))
	if err := e.Start(cfg.ServerAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
