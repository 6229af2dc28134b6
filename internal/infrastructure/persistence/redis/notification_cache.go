package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION CACHE
// Decorates the notification repository with a cached unread counter. The
// counter is what clients poll for the inbox badge, so it is the one read
// worth keeping hot; listings go straight to storage.
// ══════════════════════════════════════════════════════════════════════════════

// counterStore is the slice of Cache the unread counter needs. Narrowed to
// an interface so the decorator can be tested without a live Redis.
type counterStore interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NotificationCache wraps a notification.Repository and caches unread counts.
// A circuit breaker around the Redis calls keeps a degraded cache from adding
// latency to every read: when the breaker is open the counter comes straight
// from storage.
type NotificationCache struct {
	inner   notification.Repository
	cache   counterStore
	breaker *circuitbreaker.CircuitBreaker
}

// NewNotificationCache creates a caching decorator around the repository.
func NewNotificationCache(inner notification.Repository, cache *Cache) *NotificationCache {
	return &NotificationCache{
		inner: inner,
		cache: cache,
		breaker: circuitbreaker.New("notification-cache",
			circuitbreaker.WithFailureThreshold(5),
			// A miss is a normal outcome, not a Redis failure.
			circuitbreaker.WithIsFailure(func(err error) bool {
				return err != nil && !errors.Is(err, ErrCacheMiss)
			}),
		),
	}
}

// Create inserts one notification and invalidates the recipient's counter.
func (c *NotificationCache) Create(ctx context.Context, n *notification.Notification) error {
	if err := c.inner.Create(ctx, n); err != nil {
		return err
	}
	c.invalidate(ctx, n.UserID)
	return nil
}

// CreateBatch inserts many notifications and invalidates every recipient's
// counter once.
func (c *NotificationCache) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	if err := c.inner.CreateBatch(ctx, ns); err != nil {
		return err
	}

	seen := make(map[shared.UserID]struct{}, len(ns))
	for _, n := range ns {
		if _, ok := seen[n.UserID]; ok {
			continue
		}
		seen[n.UserID] = struct{}{}
		c.invalidate(ctx, n.UserID)
	}
	return nil
}

// GetByID passes through to the repository.
func (c *NotificationCache) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	return c.inner.GetByID(ctx, id)
}

// ListByUser passes through to the repository.
func (c *NotificationCache) ListByUser(ctx context.Context, userID shared.UserID, p shared.Pagination) ([]*notification.Notification, int, error) {
	return c.inner.ListByUser(ctx, userID, p)
}

// MarkRead marks one notification as read and invalidates the counter.
func (c *NotificationCache) MarkRead(ctx context.Context, id notification.NotificationID, userID shared.UserID) error {
	if err := c.inner.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// MarkAllRead marks all notifications as read and invalidates the counter.
func (c *NotificationCache) MarkAllRead(ctx context.Context, userID shared.UserID) (int, error) {
	updated, err := c.inner.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, userID)
	return updated, nil
}

// UnreadCount returns the cached counter, falling back to storage on a miss.
// Cache failures degrade to a storage read, never to an error.
func (c *NotificationCache) UnreadCount(ctx context.Context, userID shared.UserID) (int, error) {
	key := UnreadCountKey(string(userID))

	var cached string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var getErr error
		cached, getErr = c.cache.GetString(ctx, key)
		return getErr
	})
	if err == nil {
		if count, convErr := strconv.Atoi(cached); convErr == nil {
			return count, nil
		}
	}

	count, err := c.inner.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.SetString(ctx, key, strconv.Itoa(count), TTLUnreadCount)
	})
	return count, nil
}

// invalidate drops the user's cached counter. Best effort.
func (c *NotificationCache) invalidate(ctx context.Context, userID shared.UserID) {
	_ = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Delete(ctx, UnreadCountKey(string(userID)))
	})
}
