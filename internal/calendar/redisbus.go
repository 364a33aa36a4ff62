package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// redisChannel is the pub/sub channel completion messages travel on. With
// multiple API replicas the OAuth callback can land on any of them; Redis
// fan-out gets the message to whichever replica runs the auth flow.
const redisChannel = "lavenius:calendar:auth"

const (
	wireAuthSuccess = "calendar-auth-success"
	wireAuthError   = "calendar-auth-error"
)

type wireMessage struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// RedisBus is a Bus over Redis pub/sub.
type RedisBus struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisBus creates a Redis-backed bus.
func NewRedisBus(client *redis.Client, logger *logging.Logger) *RedisBus {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisBus{client: client, logger: logger}
}

// Publish sends msg to all subscribed replicas.
func (b *RedisBus) Publish(ctx context.Context, msg Message) error {
	wire := wireMessage{Error: msg.Error}
	switch msg.Type {
	case MessageAuthSuccess:
		wire.Type = wireAuthSuccess
	case MessageAuthError:
		wire.Type = wireAuthError
	default:
		return fmt.Errorf("calendar: refusing to publish unknown message type %d", msg.Type)
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("calendar: marshal message: %w", err)
	}
	if err := b.client.Publish(ctx, redisChannel, data).Err(); err != nil {
		return fmt.Errorf("calendar: publish message: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription. Messages of unrecognized shape or
// type are dropped; the auth flow only ever sees the two known kinds.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Message, func(), error) {
	pubsub := b.client.Subscribe(ctx, redisChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("calendar: subscribe: %w", err)
	}

	out := make(chan Message, 4)
	go func() {
		defer close(out)
		for raw := range pubsub.Channel() {
			var wire wireMessage
			if err := json.Unmarshal([]byte(raw.Payload), &wire); err != nil {
				b.logger.Debug("calendar: dropping malformed bus payload", "error", err)
				continue
			}
			msg := Message{Error: wire.Error}
			switch wire.Type {
			case wireAuthSuccess:
				msg.Type = MessageAuthSuccess
			case wireAuthError:
				msg.Type = MessageAuthError
			default:
				continue
			}
			out <- msg
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.logger.Debug("calendar: closing subscription", "error", err)
			}
		})
	}
	return out, unsubscribe, nil
}

var _ Bus = (*RedisBus)(nil)
