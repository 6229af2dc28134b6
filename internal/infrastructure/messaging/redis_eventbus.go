package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// RedisClient is the slice of the Redis surface the bus needs. The cache
// client in infrastructure/persistence/redis satisfies it through a small
// adapter in cmd/api.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error)
	Close() error
}

// RedisMessage is one inbound pub/sub message.
type RedisMessage struct {
	Channel string
	Payload string
	Err     error
}

// eventEnvelope is the wire form of an event on the Redis channel. The
// instance ID lets subscribers drop echoes of their own publishes.
type eventEnvelope struct {
	InstanceID  string                 `json:"instance_id"`
	EventType   shared.EventType       `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

// remoteEvent reconstructs an event received from another instance. Handlers
// that need typed payload fields read them from Payload().
type remoteEvent struct {
	envelope eventEnvelope
}

func (e remoteEvent) EventType() shared.EventType     { return e.envelope.EventType }
func (e remoteEvent) AggregateID() string             { return e.envelope.AggregateID }
func (e remoteEvent) OccurredAt() time.Time           { return e.envelope.OccurredAt }
func (e remoteEvent) Payload() map[string]interface{} { return e.envelope.Payload }

// RedisEventBus bridges the in-process bus over Redis pub/sub. Every publish
// goes to the channel and to local subscribers; inbound messages from other
// instances are replayed into the local bus.
type RedisEventBus struct {
	client   RedisClient
	local    *InMemoryEventBus
	channel  string
	instance string
	logger   *slog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	listener  sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// RedisEventBusConfig configures the Redis-backed bus.
type RedisEventBusConfig struct {
	// Client is the pub/sub transport. Required.
	Client RedisClient

	// ChannelName is the Redis channel events travel on.
	ChannelName string

	// InstanceID identifies this process on the channel. Defaults to a
	// fresh UUID per process.
	InstanceID string

	// LocalBusConfig configures the in-process delivery bus.
	LocalBusConfig InMemoryEventBusConfig

	Logger *slog.Logger
}

// NewRedisEventBus connects the bus and starts listening on the channel.
func NewRedisEventBus(config RedisEventBusConfig) (*RedisEventBus, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.ChannelName == "" {
		config.ChannelName = "internhub:events"
	}
	if config.InstanceID == "" {
		config.InstanceID = uuid.NewString()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:   config.Client,
		local:    NewInMemoryEventBus(config.LocalBusConfig),
		channel:  config.ChannelName,
		instance: config.InstanceID,
		logger:   config.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	inbound, err := bus.client.Subscribe(ctx, bus.channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to %s: %w", bus.channel, err)
	}

	bus.listener.Add(1)
	go bus.listen(inbound)

	return bus, nil
}

// Subscribe registers a handler for one event type on the local bus.
func (b *RedisEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.local.Subscribe(eventType, handler)
}

// SubscribeAll registers a catch-all handler on the local bus.
func (b *RedisEventBus) SubscribeAll(handler shared.EventHandler) error {
	return b.local.SubscribeAll(handler)
}

// Publish writes the event to the Redis channel and delivers it locally. A
// Redis outage degrades to local-only delivery rather than failing the
// publish: the instance that performed the write still notifies its own
// users.
func (b *RedisEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if b.ctx.Err() != nil {
		return ErrEventBusClosed
	}

	data, err := json.Marshal(eventEnvelope{
		InstanceID:  b.instance,
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	if err := b.client.Publish(b.ctx, b.channel, string(data)); err != nil {
		b.logger.Error("redis publish failed, delivering locally only",
			"event_type", event.EventType(),
			"error", err,
		)
	}

	return b.local.Publish(event)
}

func (b *RedisEventBus) listen(inbound <-chan RedisMessage) {
	defer b.listener.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			if msg.Err != nil {
				b.logger.Error("redis subscription error", "error", msg.Err)
				continue
			}

			var envelope eventEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				b.logger.Error("dropping undecodable event", "error", err)
				continue
			}
			if envelope.InstanceID == b.instance {
				// Our own publish echoing back; it was already delivered.
				continue
			}

			if err := b.local.Publish(remoteEvent{envelope: envelope}); err != nil {
				b.logger.Error("failed to deliver remote event",
					"event_type", envelope.EventType,
					"error", err,
				)
			}
		}
	}
}

// Close stops the listener and shuts the local bus down.
func (b *RedisEventBus) Close() error {
	b.closeOnce.Do(func() {
		b.cancel()
		b.listener.Wait()
		b.closeErr = b.local.Close()
	})
	return b.closeErr
}

// Metrics exposes the local bus counters.
func (b *RedisEventBus) Metrics() *EventBusMetrics {
	return b.local.Metrics()
}
