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

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	logger := applogger.New("discovery")
	cfg := config.Load(":8083")

	pool, err := postgresql.Connect(context.Background(), cfg.Postgres)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	events, err := eventqueue.Connect(cfg.QueueURL)
	if err != nil {
		logger.Fatal("connect event queue", zap.Error(err))
	}

	discoveryRepo := repositories.NewDiscoveryRepository(pool)
	profiles := repositories.NewProfileRepository(pool)
	users := repositories.NewUserRepository(pool)
	interactions := repositories.NewInteractionRepository(pool)
	matches := repositories.NewMatchRepository(pool)
	conversations := repositories.NewConversationRepository(pool)
	favorites := repositories.NewFavoriteRepository(pool)
	blocks := repositories.NewBlockRepository(pool)
	tx := repositories.NewTxManager(pool, logger)

	discoverySvc := services.NewDiscoveryService(discoveryRepo, profiles, users, interactions, matches, conversations, favorites, blocks, tx, events, logger)
	discoveryCtrl := controllers.NewDiscoveryController(discoverySvc, logger)

	jwtSvc := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMW := middleware.Auth(jwtSvc)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password})
	idemCache := idempotency.New(redisClient)

	e := echo.New()
	e.Validator = customvalidator.New()
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.PropagateRequestID())

	routes.RegisterDiscoveryRoutes(e, discoveryCtrl, authMW, idemCache)

	logger.Info("discovery service listening", zap.String("addr", cfg.ServerAddr))
	if err := e.Start(cfg.ServerAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
