package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

const testAppID = "11111111-1111-1111-1111-111111111111"

func syncBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{AsyncMode: false}
}

func testEvent() shared.Event {
	return shared.NewApplicationCreatedEvent(
		testAppID,
		"22222222-2222-2222-2222-222222222222",
		"33333333-3333-3333-3333-333333333333",
	)
}

func TestInMemoryEventBus_PublishReachesSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventApplicationCreated, func(event shared.Event) error {
		received = append(received, event)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(testEvent()))
	require.Len(t, received, 1)
	assert.Equal(t, shared.EventApplicationCreated, received[0].EventType())
	assert.Equal(t, testAppID, received[0].AggregateID())
}

func TestInMemoryEventBus_RoutesByEventType(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	createdCount := 0
	withdrawnCount := 0
	require.NoError(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		createdCount++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventApplicationWithdrawn, func(shared.Event) error {
		withdrawnCount++
		return nil
	}))

	require.NoError(t, bus.Publish(testEvent()))

	assert.Equal(t, 1, createdCount)
	assert.Zero(t, withdrawnCount)
}

func TestInMemoryEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	count := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(testEvent()))
	require.NoError(t, bus.Publish(shared.NewApplicationWithdrawnEvent(testAppID, "", "", "")))

	assert.Equal(t, 2, count)
}

func TestInMemoryEventBus_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var mu sync.Mutex
	count := 0
	require.NoError(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(testEvent()))
	}

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count)
}

func TestInMemoryEventBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(testEvent()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error { return nil }), ErrEventBusClosed)

	// Closing twice is harmless.
	assert.NoError(t, bus.Close())
}

func TestInMemoryEventBus_NilHandlerAndEvent(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventApplicationCreated, nil))
	assert.Error(t, bus.Publish(nil))
}

func TestInMemoryEventBus_MetricsTrackHandlerOutcomes(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false, EnableMetrics: true})
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		return nil
	}))
	require.NoError(t, bus.Publish(testEvent()))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Equal(t, 1.0, snap.HandlerSuccessRate)
}

// ═══════════════════════════════════════════════════════════════════════════
// REDIS EVENT BUS
// ═══════════════════════════════════════════════════════════════════════════

// fakeRedisClient records published payloads and lets tests inject inbound
// messages as if they arrived from another instance.
type fakeRedisClient struct {
	mu        sync.Mutex
	published []string
	inbound   chan RedisMessage
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{inbound: make(chan RedisMessage, 16)}
}

func (c *fakeRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, message.(string))
	return nil
}

func (c *fakeRedisClient) Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error) {
	return c.inbound, nil
}

func (c *fakeRedisClient) Close() error { return nil }

func (c *fakeRedisClient) lastPublished() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.published) == 0 {
		return "", false
	}
	return c.published[len(c.published)-1], true
}

func TestRedisEventBus_PublishWritesEnvelopeAndDeliversLocally(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "instance-a",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer bus.Close()

	received := 0
	require.NoError(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		received++
		return nil
	}))

	require.NoError(t, bus.Publish(testEvent()))

	// Local delivery is synchronous with a sync local bus.
	assert.Equal(t, 1, received)

	payload, ok := client.lastPublished()
	require.True(t, ok)
	var envelope eventEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &envelope))
	assert.Equal(t, "instance-a", envelope.InstanceID)
	assert.Equal(t, shared.EventApplicationCreated, envelope.EventType)
	assert.Equal(t, testAppID, envelope.AggregateID)
}

func TestRedisEventBus_DeliversRemoteEvents(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "instance-a",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer bus.Close()

	var mu sync.Mutex
	received := 0
	require.NoError(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		mu.Lock()
		received++
		mu.Unlock()
		return nil
	}))

	remote, err := json.Marshal(eventEnvelope{
		InstanceID:  "instance-b",
		EventType:   shared.EventApplicationCreated,
		AggregateID: testAppID,
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	client.inbound <- RedisMessage{Channel: "internhub:events", Payload: string(remote)}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisEventBus_SkipsSelfPublishedEvents(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "instance-a",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer bus.Close()

	var mu sync.Mutex
	received := 0
	require.NoError(t, bus.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		mu.Lock()
		received++
		mu.Unlock()
		return nil
	}))

	// An echo of our own publish must not be processed twice.
	echo, err := json.Marshal(eventEnvelope{
		InstanceID:  "instance-a",
		EventType:   shared.EventApplicationCreated,
		AggregateID: testAppID,
	})
	require.NoError(t, err)
	client.inbound <- RedisMessage{Payload: string(echo)}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, received)
}

func TestRedisEventBus_RequiresClient(t *testing.T) {
	_, err := NewRedisEventBus(RedisEventBusConfig{})
	assert.Error(t, err)
}

// ═══════════════════════════════════════════════════════════════════════════
// BUFFERED EVENT BUS
// ═══════════════════════════════════════════════════════════════════════════

func TestBufferedEventBus_FlushesWhenFull(t *testing.T) {
	inner := NewInMemoryEventBus(syncBusConfig())
	defer inner.Close()

	count := 0
	require.NoError(t, inner.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		count++
		return nil
	}))

	buffered := NewBufferedEventBus(BufferedEventBusConfig{
		Inner:         inner,
		BufferSize:    2,
		FlushInterval: time.Hour, // only the size trigger in this test
	})
	defer buffered.Close()

	require.NoError(t, buffered.Publish(testEvent()))
	assert.Zero(t, count, "below the buffer threshold nothing is delivered")

	require.NoError(t, buffered.Publish(testEvent()))
	assert.Equal(t, 2, count)
}

func TestBufferedEventBus_CloseFlushesRemainder(t *testing.T) {
	inner := NewInMemoryEventBus(syncBusConfig())
	defer inner.Close()

	count := 0
	require.NoError(t, inner.Subscribe(shared.EventApplicationCreated, func(shared.Event) error {
		count++
		return nil
	}))

	buffered := NewBufferedEventBus(BufferedEventBusConfig{
		Inner:         inner,
		BufferSize:    100,
		FlushInterval: time.Hour,
	})

	require.NoError(t, buffered.Publish(testEvent()))
	require.NoError(t, buffered.Close())
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, buffered.Publish(testEvent()), ErrEventBusClosed)
}
