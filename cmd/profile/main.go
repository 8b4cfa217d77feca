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
	logger := applogger.New("profile")
	cfg := config.Load(":8082")

	pool, err := postgresql.Connect(context.Background(), cfg.Postgres)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	profiles := repositories.NewProfileRepository(pool)
	photos := repositories.NewPhotoRepository(pool)
	profileSvc := services.NewProfileService(profiles, photos)
	profileCtrl := controllers.NewProfileController(profileSvc, logger)

	jwtSvc := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMW := middleware.Auth(jwtSvc)

	e := echo.New()
	e.Validator = customvalidator.New()
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.PropagateRequestID())

	routes.RegisterProfileRoutes(e, profileCtrl, authMW)

	logger.Info("profile service listening", zap.String("addr", cfg.ServerAddr))
	if err := e.Start(cfg.ServerAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
