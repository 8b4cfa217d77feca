package services

import (
	"context"
	"encoding/json"
	"fmt"

	"dating-core/pkg/eventqueue"
	"dating-core/pkg/retry"
	"dating-core/pkg/telegram"

	"go.uber.org/zap"
)

// NotificationRelayService consumes chat.message.sent and
// discovery.match.created events and relays them to the Telegram Bot
// (spec.md §4.6). It is run as the single goroutine driving
// cmd/notifyrelay's main loop.
type NotificationRelayService struct {
	bot    telegram.ServiceInterface
	events *eventqueue.Queue
	logger *zap.Logger
}

func NewNotificationRelayService(bot telegram.ServiceInterface, events *eventqueue.Queue, logger *zap.Logger) *NotificationRelayService {
	return &NotificationRelayService{bot: bot, events: events, logger: logger}
}

// Run subscribes to both subjects and blocks until ctx is cancelled. Each
// event is acked only after delivery succeeds or is finally dropped
// (spec.md §4.6: "No event is acked until delivery succeeds or is finally
// dropped").
func (s *NotificationRelayService) Run(ctx context.Context) error {
	stream, err := s.events.Subscribe(ctx, "notification-relay",
		eventqueue.SubjectChatMessageSent, eventqueue.SubjectDiscoveryMatchCreated)
	if err != nil {
		return fmt.Errorf("subscribe notification events: %w", err)
	}

	for event := range stream {
		s.handle(ctx, event)
	}
	return ctx.Err()
}

func (s *NotificationRelayService) handle(ctx context.Context, event *eventqueue.Event) {
	var deliverErr error
	switch event.Subject {
	case eventqueue.SubjectChatMessageSent:
		deliverErr = s.deliverChatMessage(ctx, event.Data)
	case eventqueue.SubjectDiscoveryMatchCreated:
		deliverErr = s.deliverMatchCreated(ctx, event.Data)
	default:
		s.logger.Warn("notification relay: unknown subject", zap.String("subject", event.Subject))
		_ = event.Ack()
		return
	}

	if deliverErr != nil {
		s.logger.Error("notification relay: delivery dropped", zap.String("subject", event.Subject), zap.Error(deliverErr))
	}
	if err := event.Ack(); err != nil {
		s.logger.Error("notification relay: ack failed", zap.Error(err))
	}
}

func (s *NotificationRelayService) deliverChatMessage(ctx context.Context, data []byte) error {
	var payload eventqueue.ChatMessageSent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode chat.message.sent: %w", err)
	}

	text := fmt.Sprintf("%s: %s", payload.SenderDisplayName, payload.Preview)
	return s.sendWithRetry(ctx, payload.RecipientTelegramID, text)
}

func (s *NotificationRelayService) deliverMatchCreated(ctx context.Context, data []byte) error {
	var payload eventqueue.DiscoveryMatchCreated
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode discovery.match.created: %w", err)
	}

	text := "You have a new match!"
	return s.sendWithRetry(ctx, payload.RecipientTelegramID, text)
}

// sendWithRetry makes the first call and up to 5 retries after 1/2/4/8/16s
// (retry.MaxAttempts calls in all), over transient Bot API errors only; a final (4xx-shaped) error returns immediately and
// is logged as dropped by the caller.
func (s *NotificationRelayService) sendWithRetry(ctx context.Context, chatID int64, text string) error {
	return retry.Do(ctx, telegram.IsTransient, func() error {
		return s.bot.SendMessage(ctx, chatID, text)
	})
}
