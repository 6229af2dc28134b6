package messaging

import (
	"log/slog"
	"sync"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// BufferedEventBus absorbs publish bursts in front of another bus. Events
// accumulate in a bounded buffer and reach the inner bus when the buffer
// fills, on the flush tick, or at Close. Subscriptions pass straight through,
// so the dispatcher wires itself to the inner bus unchanged.
type BufferedEventBus struct {
	inner  shared.EventBus
	logger *slog.Logger

	mu      sync.Mutex
	pending []shared.Event
	limit   int
	closed  bool

	stop    chan struct{}
	stopped chan struct{}
}

// BufferedEventBusConfig configures the buffering layer.
type BufferedEventBusConfig struct {
	// Inner receives the flushed events. Required.
	Inner shared.EventBus

	// BufferSize triggers a flush when reached.
	BufferSize int

	// FlushInterval bounds how long an event can sit in the buffer.
	FlushInterval time.Duration

	Logger *slog.Logger
}

// NewBufferedEventBus wraps the inner bus and starts the flush ticker.
func NewBufferedEventBus(config BufferedEventBusConfig) *BufferedEventBus {
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	bus := &BufferedEventBus{
		inner:   config.Inner,
		logger:  config.Logger,
		pending: make([]shared.Event, 0, config.BufferSize),
		limit:   config.BufferSize,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go bus.tick(config.FlushInterval)
	return bus
}

func (b *BufferedEventBus) tick(interval time.Duration) {
	defer close(b.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.logger.Error("scheduled flush failed", "error", err)
			}
		}
	}
}

// Subscribe registers the handler on the inner bus.
func (b *BufferedEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.inner.Subscribe(eventType, handler)
}

// SubscribeAll registers the catch-all handler on the inner bus.
func (b *BufferedEventBus) SubscribeAll(handler shared.EventHandler) error {
	return b.inner.SubscribeAll(handler)
}

// Publish appends the event to the buffer, flushing when it is full.
func (b *BufferedEventBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.pending = append(b.pending, event)
	if len(b.pending) >= b.limit {
		return b.drain()
	}
	return nil
}

// Flush forces the buffered events onto the inner bus.
func (b *BufferedEventBus) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drain()
}

// drain publishes everything in the buffer. Caller holds the mutex. A failed
// event is logged and skipped; the rest of the batch still goes out.
func (b *BufferedEventBus) drain() error {
	if len(b.pending) == 0 {
		return nil
	}

	batch := b.pending
	b.pending = make([]shared.Event, 0, b.limit)

	var firstErr error
	for _, event := range batch {
		if err := b.inner.Publish(event); err != nil {
			b.logger.Error("failed to flush buffered event",
				"event_type", event.EventType(),
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close stops the ticker, flushes the remainder, and rejects further
// publishes. The inner bus stays open; its owner closes it.
func (b *BufferedEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	err := b.drain()
	b.mu.Unlock()

	close(b.stop)
	<-b.stopped
	return err
}
