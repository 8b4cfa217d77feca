package main

import (
	"context"
	"os/signal"
	"syscall"

	"dating-core/internal/services"
	"dating-core/pkg/config"
	"dating-core/pkg/eventqueue"
	applogger "dating-core/pkg/logger"
	"dating-core/pkg/telegram"

	"go.uber.org/zap"
)

// cmd/notifyrelay runs the Notification Relay as a standalone consumer
// process, no HTTP surface (spec.md §4.6).
func main() {
	logger := applogger.New("notifyrelay")
	cfg := config.Load("")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := eventqueue.Connect(cfg.QueueURL)
	if err != nil {
		logger.Fatal("connect event queue", zap.Error(err))
	}

	bot := telegram.NewService(cfg.Auth.TelegramBotToken)
	relay := services.NewNotificationRelayService(bot, events, logger)

	logger.Info("notification relay started")
	if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("relay stopped", zap.Error(err))
	}
	logger.Info("notification relay shut down")
}
