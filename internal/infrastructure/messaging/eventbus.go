// Package messaging carries domain events from the write side to the
// notification handlers. Single-instance deployments use the in-memory bus;
// multi-instance deployments layer Redis pub/sub on top of it so every
// instance sees events published by its peers.
package messaging

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ErrEventBusClosed is returned for any operation on a closed bus.
var ErrEventBusClosed = errors.New("event bus is closed")

// EventBus routes published domain events to subscribed handlers.
type EventBus interface {
	shared.EventPublisher
	Subscribe(eventType shared.EventType, handler shared.EventHandler) error
	SubscribeAll(handler shared.EventHandler) error
	Close() error
}

// delivery pairs one event with one handler on the worker queue.
type delivery struct {
	event   shared.Event
	handler shared.EventHandler
}

// InMemoryEventBus delivers events to handlers inside this process. In async
// mode a fixed pool of workers drains a delivery queue, so a slow handler
// delays other deliveries but never the publisher. In sync mode handlers run
// inline on the publishing goroutine, which tests rely on.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[shared.EventType][]shared.EventHandler
	catchAll    []shared.EventHandler
	closed      bool

	async   bool
	queue   chan delivery
	workers sync.WaitGroup
	// pending counts deliveries that are queued or executing, so Close can
	// wait for them before tearing the queue down.
	pending sync.WaitGroup

	logger  *slog.Logger
	metrics *EventBusMetrics
}

// InMemoryEventBusConfig configures the in-memory bus.
type InMemoryEventBusConfig struct {
	// AsyncMode hands deliveries to the worker pool instead of running them
	// on the publishing goroutine.
	AsyncMode bool

	// WorkerPoolSize is the number of delivery workers in async mode.
	WorkerPoolSize int

	Logger *slog.Logger

	// EnableMetrics keeps publish and handler counters.
	EnableMetrics bool
}

// DefaultInMemoryEventBusConfig returns the production defaults.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		EnableMetrics:  true,
	}
}

// NewInMemoryEventBus creates the bus and, in async mode, starts its workers.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	bus := &InMemoryEventBus{
		subscribers: make(map[shared.EventType][]shared.EventHandler),
		async:       config.AsyncMode,
		logger:      config.Logger,
	}
	if config.EnableMetrics {
		bus.metrics = &EventBusMetrics{}
	}

	if bus.async {
		bus.queue = make(chan delivery, config.WorkerPoolSize*8)
		for i := 0; i < config.WorkerPoolSize; i++ {
			bus.workers.Add(1)
			go bus.work()
		}
	}

	return bus
}

func (b *InMemoryEventBus) work() {
	defer b.workers.Done()
	for d := range b.queue {
		b.run(d.event, d.handler)
		b.pending.Done()
	}
}

func (b *InMemoryEventBus) run(event shared.Event, handler shared.EventHandler) error {
	err := handler(event)
	if b.metrics != nil {
		b.metrics.recordExecution(err)
	}
	if err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
	return err
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler that receives every event.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.catchAll = append(b.catchAll, handler)
	return nil
}

// Publish fans the event out to type subscribers and catch-all subscribers.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	targets := make([]shared.EventHandler, 0, len(b.subscribers[event.EventType()])+len(b.catchAll))
	targets = append(targets, b.subscribers[event.EventType()]...)
	targets = append(targets, b.catchAll...)
	if b.async {
		// Register pending deliveries before releasing the lock: Close waits
		// on this counter, so the queue cannot be torn down under us.
		b.pending.Add(len(targets))
	}
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.recordPublish()
	}
	if len(targets) == 0 {
		b.logger.Debug("event has no subscribers", "event_type", event.EventType())
		return nil
	}

	if b.async {
		for _, handler := range targets {
			b.queue <- delivery{event: event, handler: handler}
		}
		return nil
	}

	for _, handler := range targets {
		b.run(event, handler)
	}
	return nil
}

// Close drains queued deliveries, stops the workers, and rejects everything
// afterwards. Closing twice is harmless.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.async {
		b.pending.Wait()
		close(b.queue)
		b.workers.Wait()
	}
	return nil
}

// Metrics returns the bus counters, or nil when metrics are disabled.
func (b *InMemoryEventBus) Metrics() *EventBusMetrics {
	return b.metrics
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// EventBusMetrics counts publishes and handler outcomes. All counters are
// atomics; the struct is safe to share across goroutines.
type EventBusMetrics struct {
	published  atomic.Int64
	executions atomic.Int64
	failures   atomic.Int64
}

func (m *EventBusMetrics) recordPublish() {
	m.published.Add(1)
}

func (m *EventBusMetrics) recordExecution(err error) {
	m.executions.Add(1)
	if err != nil {
		m.failures.Add(1)
	}
}

// EventBusMetricsSnapshot is a point-in-time view of the counters.
type EventBusMetricsSnapshot struct {
	TotalPublished     int64
	TotalHandlerExecs  int64
	TotalFailures      int64
	HandlerSuccessRate float64
}

// Snapshot reads the counters.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	execs := m.executions.Load()
	failures := m.failures.Load()

	rate := 1.0
	if execs > 0 {
		rate = float64(execs-failures) / float64(execs)
	}

	return EventBusMetricsSnapshot{
		TotalPublished:     m.published.Load(),
		TotalHandlerExecs:  execs,
		TotalFailures:      failures,
		HandlerSuccessRate: rate,
	}
}
