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
	applogger "dating-core/pkg/logger"
	"dating-core/pkg/middleware"
	"dating-core/pkg/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	logger := applogger.New("auth")
	cfg := config.Load(":8081")

	pool, err := postgresql.Connect(context.Background(), cfg.Postgres)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	users := repositories.NewUserRepository(pool)
	jwtSvc := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := services.NewAuthService(users, jwtSvc, cfg.Auth.TelegramBotToken, cfg.Auth.InitDataMaxAge, logger)
	authCtrl := controllers.NewAuthController(authSvc, logger)

	e := echo.New()
	e.Validator = customvalidator.New()
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.PropagateRequestID())

	routes.RegisterAuthRoutes(e, authCtrl)

	logger.Info("auth service listening", zap.String("addr", cfg.ServerAddr))
	if err := e.Start(cfg.ServerAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
