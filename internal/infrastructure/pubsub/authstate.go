// Package pubsub relays station events between processes that share a
// Redis identity cache.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/shared/goroutine"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

const DefaultAuthStateChannel = "storedesk:auth:state"

// AuthStateMessage is a login or logout seen by one station process.
type AuthStateMessage struct {
	IsLoggedIn bool               `json:"isLoggedIn"`
	Employee   *employee.Employee `json:"employee"`
	OccurredAt time.Time          `json:"occurred_at"`
	InstanceID string             `json:"instance_id,omitempty"`
}

// RedisAuthStateBus publishes auth state changes on a Redis channel.
// Messages published by this instance are not delivered back to it.
type RedisAuthStateBus struct {
	client     *redis.Client
	channel    string
	logger     logger.Interface
	instanceID string
}

func NewRedisAuthStateBus(client *redis.Client, channel string, log logger.Interface) *RedisAuthStateBus {
	if channel == "" {
		channel = DefaultAuthStateChannel
	}
	return &RedisAuthStateBus{
		client:     client,
		channel:    channel,
		logger:     log,
		instanceID: uuid.NewString(),
	}
}

func (b *RedisAuthStateBus) InstanceID() string {
	return b.instanceID
}

func (b *RedisAuthStateBus) Publish(ctx context.Context, msg AuthStateMessage) error {
	msg.InstanceID = b.instanceID
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal auth state message: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish auth state", "channel", b.channel, "error", err)
		return fmt.Errorf("failed to publish auth state: %w", err)
	}

	b.logger.Debugw("auth state published", "is_logged_in", msg.IsLoggedIn)
	return nil
}

// Subscribe blocks until ctx is done, reconnecting with exponential
// backoff when the subscription drops.
func (b *RedisAuthStateBus) Subscribe(ctx context.Context, handler func(AuthStateMessage)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		connected, err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = time.Second
		}

		b.logger.Warnw("auth state subscription disconnected, reconnecting",
			"channel", b.channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

// subscribe reports whether the subscription was established before it
// ended. Messages are handed to handler in arrival order.
func (b *RedisAuthStateBus) subscribe(ctx context.Context, handler func(AuthStateMessage)) (bool, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("failed to subscribe to channel %s: %w", b.channel, err)
	}
	b.logger.Infow("subscribed to auth state channel", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, nil
			}
			var state AuthStateMessage
			if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
				b.logger.Warnw("failed to unmarshal auth state message", "payload", msg.Payload, "error", err)
				continue
			}
			if state.InstanceID == b.instanceID {
				continue
			}
			goroutine.SafeCall(b.logger, "auth-state-handler", func() {
				handler(state)
			})
		}
	}
}
