// Package eventqueue is the durable event bus between the Chat/Discovery
// services and the Notification Relay (spec.md §4.6): "Consumes
// chat.message.sent and discovery.match.created events from a durable
// queue." JetStream gives the at-least-once delivery and replay the
// relay's retry/backoff loop depends on; acking only happens after a
// successful Bot call or a final drop.
package eventqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName holds every domain event the relay consumes.
	StreamName = "NOTIFICATIONS"

	// SubjectChatMessageSent is published by the Chat Service after a
	// message insert commits (spec.md §4.5).
	SubjectChatMessageSent = "chat.message.sent"

	// SubjectDiscoveryMatchCreated is published by the Discovery Service
	// when a like becomes mutual (spec.md §4.4).
	SubjectDiscoveryMatchCreated = "discovery.match.created"
)

// Queue wraps a JetStream context bound to the NOTIFICATIONS stream.
type Queue struct {
	js nats.JetStreamContext
}

// Connect dials url and ensures the stream exists; services call this once
// at startup and share the *Queue across requests.
func Connect(url string) (*Queue, error) {
	nc, err := nats.Connect(url, nats.MaxReconnects(-1), nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("eventqueue: connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("eventqueue: jetstream context: %w", err)
	}

	if _, err := js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"chat.>", "discovery.>"},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	}); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		return nil, fmt.Errorf("eventqueue: add stream: %w", err)
	}

	return &Queue{js: js}, nil
}

// ChatMessageSent is the payload published on SubjectChatMessageSent.
type ChatMessageSent struct {
	ConversationID      int64  `json:"conversation_id"`
	MessageID           int64  `json:"message_id"`
	RecipientUserID     int64  `json:"recipient_user_id"`
	RecipientTelegramID int64  `json:"recipient_telegram_id"`
	SenderDisplayName   string `json:"sender_display_name"`
	Preview             string `json:"preview"`
}

// DiscoveryMatchCreated is the payload published on
// SubjectDiscoveryMatchCreated.
type DiscoveryMatchCreated struct {
	MatchID               int64 `json:"match_id"`
	RecipientUserID       int64 `json:"recipient_user_id"`
	RecipientTelegramID   int64 `json:"recipient_telegram_id"`
	CounterpartUserID     int64 `json:"counterpart_user_id"`
	CounterpartTelegramID int64 `json:"counterpart_telegram_id"`
}

// Publish enqueues an event. Called after the originating transaction
// commits, never inside it (spec.md §4.5: "Fan-out to live sessions
// happens after commit").
func (q *Queue) Publish(ctx context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("eventqueue: marshal: %w", err)
	}
	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("eventqueue: publish %s: %w", subject, err)
	}
	return nil
}

// Event is one durable message handed to the relay; Ack or Nak must be
// called exactly once.
type Event struct {
	Subject string
	Data    []byte
	msg     *nats.Msg
}

func (e *Event) Ack() error { return e.msg.Ack() }
func (e *Event) Nak() error { return e.msg.Nak() }

// Subscribe creates (or reattaches to) a durable pull consumer named
// durableName and returns a channel of events. The caller ranges over it
// and Ack/Nak each one; an unacked event redelivers after the server's ack
// wait, which stands in for the relay's own backoff bookkeeping between
// process restarts.
func (q *Queue) Subscribe(ctx context.Context, durableName string, subjects ...string) (<-chan *Event, error) {
	sub, err := q.js.PullSubscribe("", durableName, nats.BindStream(StreamName),
		nats.ManualAck(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("eventqueue: pull subscribe: %w", err)
	}

	out := make(chan *Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msgs, err := sub.Fetch(16, nats.MaxWait(2*time.Second))
			if err != nil {
				if err == nats.ErrTimeout {
					continue
				}
				return
			}
			for _, m := range msgs {
				select {
				case out <- &Event{Subject: m.Subject, Data: m.Data, msg: m}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
