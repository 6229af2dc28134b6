package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// Dispatcher sits between the event bus and the notification handlers. Every
// handler runs wrapped in the registered middleware, failed executions are
// retried with exponential backoff, and events that exhaust their retries are
// parked in a dead letter queue for operator inspection. One failing handler
// never blocks delivery to the others.
type Dispatcher struct {
	bus      shared.EventBus
	registry map[shared.EventType][]HandlerRegistration
	chain    []Middleware
	retry    RetryConfig
	dlq      *DeadLetterQueue
	logger   *slog.Logger

	// slots bounds concurrent handler executions across all event types.
	slots  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// HandlerRegistration describes one handler attached to an event type.
type HandlerRegistration struct {
	Name       string
	Handler    shared.EventHandler
	Async      bool
	MaxRetries int
	Timeout    time.Duration
}

// RetryConfig shapes the backoff between handler attempts.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the production retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// DispatcherConfig configures the dispatcher.
type DispatcherConfig struct {
	// EventBus is the bus the dispatcher subscribes to on Start.
	EventBus shared.EventBus

	// WorkerPoolSize bounds concurrent handler executions.
	WorkerPoolSize int

	// RetryConfig is the default retry policy for registered handlers.
	RetryConfig RetryConfig

	// EnableDeadLetterQueue keeps events whose handlers exhausted retries.
	EnableDeadLetterQueue bool

	// DeadLetterQueueSize caps the queue; the oldest entry is evicted first.
	DeadLetterQueueSize int

	Logger *slog.Logger
}

// DefaultDispatcherConfig returns the production defaults for the given bus.
func DefaultDispatcherConfig(bus shared.EventBus) DispatcherConfig {
	return DispatcherConfig{
		EventBus:              bus,
		WorkerPoolSize:        10,
		RetryConfig:           DefaultRetryConfig(),
		EnableDeadLetterQueue: true,
		DeadLetterQueueSize:   1000,
	}
}

// NewDispatcher creates a dispatcher. Call Start to attach it to the bus.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		bus:      config.EventBus,
		registry: make(map[shared.EventType][]HandlerRegistration),
		retry:    config.RetryConfig,
		logger:   config.Logger,
		slots:    make(chan struct{}, config.WorkerPoolSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	if config.EnableDeadLetterQueue {
		d.dlq = NewDeadLetterQueue(config.DeadLetterQueueSize)
	}
	return d
}

// RegisterHandler attaches a handler with explicit settings. Zero values fall
// back to the dispatcher's retry policy and a 30s per-attempt timeout.
func (d *Dispatcher) RegisterHandler(eventType shared.EventType, reg HandlerRegistration) error {
	if reg.Handler == nil {
		return errors.New("handler cannot be nil")
	}
	if reg.Name == "" {
		reg.Name = string(eventType)
	}
	if reg.MaxRetries <= 0 {
		reg.MaxRetries = d.retry.MaxRetries
	}
	if reg.Timeout <= 0 {
		reg.Timeout = 30 * time.Second
	}

	d.mu.Lock()
	d.registry[eventType] = append(d.registry[eventType], reg)
	d.mu.Unlock()

	d.logger.Debug("handler registered",
		"event_type", eventType,
		"handler", reg.Name,
		"async", reg.Async,
	)
	return nil
}

// Register attaches an async handler with default settings.
func (d *Dispatcher) Register(eventType shared.EventType, name string, handler shared.EventHandler) error {
	return d.RegisterHandler(eventType, HandlerRegistration{Name: name, Handler: handler, Async: true})
}

// RegisterSync attaches a handler that runs on the dispatching goroutine and
// whose error propagates to the dispatch caller.
func (d *Dispatcher) RegisterSync(eventType shared.EventType, name string, handler shared.EventHandler) error {
	return d.RegisterHandler(eventType, HandlerRegistration{Name: name, Handler: handler})
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// Middleware wraps handler execution. Middleware added first runs outermost.
type Middleware func(shared.EventHandler) shared.EventHandler

// Use appends middleware to the chain applied to every handler.
func (d *Dispatcher) Use(middleware Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chain = append(d.chain, middleware)
}

// RecoveryMiddleware turns handler panics into errors so a single broken
// handler cannot take the dispatch loop down.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic recovered",
						"event_type", event.EventType(),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(event)
		}
	}
}

// LoggingMiddleware records every handler execution with its duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)

			if err != nil {
				logger.Error("handler failed",
					"event_type", event.EventType(),
					"aggregate_id", event.AggregateID(),
					"duration", time.Since(start),
					"error", err,
				)
			} else {
				logger.Debug("handler completed",
					"event_type", event.EventType(),
					"aggregate_id", event.AggregateID(),
					"duration", time.Since(start),
				)
			}
			return err
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCH
// ══════════════════════════════════════════════════════════════════════════════

// Start subscribes the dispatcher to every event on the bus.
func (d *Dispatcher) Start() error {
	return d.bus.SubscribeAll(d.Dispatch)
}

// Dispatch routes one event to its registered handlers. Async handlers run
// concurrently and report failures through the dead letter queue; sync
// handler errors are joined into the return value.
func (d *Dispatcher) Dispatch(event shared.Event) error {
	d.mu.RLock()
	regs := d.registry[event.EventType()]
	chain := d.chain
	d.mu.RUnlock()

	var wg sync.WaitGroup
	var syncErrs []error

	for _, reg := range regs {
		if !reg.Async {
			if err := d.deliver(event, reg, chain); err != nil {
				syncErrs = append(syncErrs, err)
			}
			continue
		}
		wg.Add(1)
		go func(r HandlerRegistration) {
			defer wg.Done()
			_ = d.deliver(event, r, chain)
		}(reg)
	}
	wg.Wait()

	return errors.Join(syncErrs...)
}

// deliver runs one handler through the middleware chain with retries. After
// the last failed attempt the event goes to the dead letter queue.
func (d *Dispatcher) deliver(event shared.Event, reg HandlerRegistration, chain []Middleware) error {
	select {
	case d.slots <- struct{}{}:
		defer func() { <-d.slots }()
	case <-d.ctx.Done():
		return d.ctx.Err()
	}

	handler := reg.Handler
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}

	attempts := reg.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-d.ctx.Done():
				return d.ctx.Err()
			case <-time.After(d.backoff(attempt - 1)):
			}
		}

		lastErr = d.attempt(handler, event, reg.Timeout)
		if lastErr == nil {
			return nil
		}
		d.logger.Warn("handler attempt failed",
			"handler", reg.Name,
			"attempt", attempt,
			"of", attempts,
			"error", lastErr,
		)
	}

	if d.dlq != nil {
		d.dlq.Add(DeadLetterEntry{
			Event:       event,
			HandlerName: reg.Name,
			Error:       lastErr,
			Attempts:    attempts,
			FailedAt:    time.Now(),
		})
	}
	return fmt.Errorf("handler %s gave up after %d attempts: %w", reg.Name, attempts, lastErr)
}

// attempt runs the handler once, bounded by its per-attempt timeout.
func (d *Dispatcher) attempt(handler shared.EventHandler, event shared.Event, timeout time.Duration) error {
	result := make(chan error, 1)
	go func() { result <- handler(event) }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-timer.C:
		return fmt.Errorf("handler timed out after %v", timeout)
	case <-d.ctx.Done():
		return d.ctx.Err()
	}
}

// backoff returns the wait before the given retry (1-based).
func (d *Dispatcher) backoff(retry int) time.Duration {
	wait := d.retry.InitialBackoff
	for i := 1; i < retry; i++ {
		wait = time.Duration(float64(wait) * d.retry.BackoffMultiplier)
		if wait >= d.retry.MaxBackoff {
			return d.retry.MaxBackoff
		}
	}
	if wait > d.retry.MaxBackoff {
		return d.retry.MaxBackoff
	}
	return wait
}

// Stop cancels in-flight retries and timeouts.
func (d *Dispatcher) Stop() error {
	d.cancel()
	d.logger.Info("dispatcher stopped")
	return nil
}

// DeadLetterQueue exposes the parked events, or nil when disabled.
func (d *Dispatcher) DeadLetterQueue() *DeadLetterQueue {
	return d.dlq
}

// ══════════════════════════════════════════════════════════════════════════════
// DEAD LETTER QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// DeadLetterEntry records one event a handler permanently failed on.
type DeadLetterEntry struct {
	Event       shared.Event
	HandlerName string
	Error       error
	Attempts    int
	FailedAt    time.Time
}

// DeadLetterQueue is a bounded FIFO of failed events. At capacity the oldest
// entry is evicted to make room.
type DeadLetterQueue struct {
	mu      sync.Mutex
	entries []DeadLetterEntry
	cap     int
}

// NewDeadLetterQueue creates a queue holding at most maxSize entries.
func NewDeadLetterQueue(maxSize int) *DeadLetterQueue {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &DeadLetterQueue{cap: maxSize}
}

// Add appends an entry, evicting the oldest when full.
func (q *DeadLetterQueue) Add(entry DeadLetterEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == q.cap {
		copy(q.entries, q.entries[1:])
		q.entries = q.entries[:q.cap-1]
	}
	q.entries = append(q.entries, entry)
}

// Pop removes and returns the oldest entry.
func (q *DeadLetterQueue) Pop() (DeadLetterEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return DeadLetterEntry{}, false
	}
	oldest := q.entries[0]
	q.entries = q.entries[1:]
	return oldest, true
}

// Entries returns a copy of the queue, oldest first.
func (q *DeadLetterQueue) Entries() []DeadLetterEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]DeadLetterEntry(nil), q.entries...)
}

// Size returns the number of parked events.
func (q *DeadLetterQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Clear drops every entry.
func (q *DeadLetterQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BUILDER
// ══════════════════════════════════════════════════════════════════════════════

// DispatcherBuilder assembles a dispatcher from the defaults.
type DispatcherBuilder struct {
	config DispatcherConfig
}

// NewDispatcherBuilder starts from DefaultDispatcherConfig.
func NewDispatcherBuilder(bus shared.EventBus) *DispatcherBuilder {
	return &DispatcherBuilder{config: DefaultDispatcherConfig(bus)}
}

// WithWorkerPoolSize sets the concurrency bound.
func (b *DispatcherBuilder) WithWorkerPoolSize(size int) *DispatcherBuilder {
	b.config.WorkerPoolSize = size
	return b
}

// WithLogger sets the logger.
func (b *DispatcherBuilder) WithLogger(logger *slog.Logger) *DispatcherBuilder {
	b.config.Logger = logger
	return b
}

// Build creates the dispatcher.
func (b *DispatcherBuilder) Build() *Dispatcher {
	return NewDispatcher(b.config)
}
