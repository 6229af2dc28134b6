package notification

import (
	"context"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Repository is the persistence port for notifications.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create inserts one notification.
	Create(ctx context.Context, n *Notification) error

	// CreateBatch inserts many notifications in one round trip. Used by the
	// skill-match fan-out.
	CreateBatch(ctx context.Context, ns []*Notification) error

	// GetByID returns the notification or shared.ErrNotificationNotFound.
	GetByID(ctx context.Context, id NotificationID) (*Notification, error)

	// ListByUser returns the user's notifications, newest first. The second
	// result is the total row count before pagination.
	ListByUser(ctx context.Context, userID shared.UserID, p shared.Pagination) ([]*Notification, int, error)

	// MarkRead marks one notification as read. Returns
	// shared.ErrNotificationNotFound when the notification does not exist or
	// belongs to another user.
	MarkRead(ctx context.Context, id NotificationID, userID shared.UserID) error

	// MarkAllRead marks every unread notification of the user as read and
	// returns how many rows changed.
	MarkAllRead(ctx context.Context, userID shared.UserID) (int, error)

	// UnreadCount returns the number of unread notifications for the user.
	UnreadCount(ctx context.Context, userID shared.UserID) (int, error)
}
