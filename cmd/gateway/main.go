package main

import (
	"context"
	"net/url"
	"os/signal"
	"syscall"

	"dating-core/internal/gateway"
	"dating-core/pkg/config"
	applogger "dating-core/pkg/logger"
	"dating-core/pkg/middleware"
	"dating-core/pkg/ratelimit"
	"dating-core/pkg/service"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	logger := applogger.New("gateway")
	cfg := config.Load(":8080")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proxy, err := gateway.NewProxy(cfg.Gateway.Upstreams, logger)
	if err != nil {
		logger.Fatal("build proxy", zap.Error(err))
	}
	handler := gateway.NewHandler(proxy, logger)

	upstreamURLs := make(map[string]*url.URL, len(cfg.Gateway.Upstreams))
	for name, raw := range cfg.Gateway.Upstreams {
		u, err := url.Parse(raw)
		if err != nil {
			logger.Fatal("parse upstream url", zap.String("upstream", name), zap.Error(err))
		}
		upstreamURLs[name] = u
	}
	health := gateway.NewHealthAggregator(upstreamURLs, logger)
	go health.Run(ctx)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password})
	limiter := ratelimit.New(redisClient)
	jwtSvc := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	e := echo.New()
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.PropagateRequestID())
	e.Use(gateway.CORS(cfg.Gateway.WebAppDomain))
	e.Use(gateway.RateLimit(limiter, jwtSvc, cfg.Gateway.RateLimitAnon, cfg.Gateway.RateLimitAuth))

	e.GET("/health", health.Handler)
	e.GET("/metrics", func(c echo.Context) error { return c.NoContent(200) })
	for _, prefix := range []string{"/auth", "/api", "/v1"} {
		e.Any(prefix, handler.ServeHTTP)
		e.Any(prefix+"/*", handler.ServeHTTP)
	}

	logger.Info("gateway listening", zap.String("addr", cfg.ServerAddr))
	if err := e.Start(cfg.ServerAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
