package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"qanda-service/pkg/sl"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "qanda:events"

// RedisBroker fans events out across instances over one pub/sub channel. Every instance,
// the publisher included, delivers what it receives to its own Hub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *slog.Logger
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub, log *slog.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel, hub: hub, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, audience Audience, event string, payload any) error {
	const op = "notify.RedisBroker.Publish"

	if !audience.Valid() {
		return fmt.Errorf("%s: %w", op, ErrUnknownAudience)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg, err := json.Marshal(Envelope{Audience: audience, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Run subscribes and delivers envelopes until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	const op = "notify.RedisBroker.Run"

	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("%s: subscribe: %w", op, err)
	}

	b.log.Info("subscribed to event channel", slog.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBroker) handle(payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Warn("malformed event envelope", sl.Err(err))
		return
	}

	if _, err := b.hub.Deliver(env.Audience, env.Event, env.Data); err != nil {
		b.log.Warn("failed to deliver event", slog.String("event", env.Event), sl.Err(err))
	}
}
