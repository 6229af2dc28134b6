// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

const notificationColumns = `
	id, user_id, title, message, type, related_entity_type, related_entity_id,
	metadata, is_read, read_at, created_at
`

const insertNotificationSQL = `
	INSERT INTO notifications (
		id, user_id, title, message, type, related_entity_type, related_entity_id,
		metadata, is_read, read_at, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Create inserts one notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args, err := notificationArgs(n)
	if err != nil {
		return err
	}
	if _, err := r.conn.Exec(ctx, insertNotificationSQL, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateBatch inserts many notifications in one round trip. Used by the
// skill-match fan-out.
func (r *NotificationRepository) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range ns {
		args, err := notificationArgs(n)
		if err != nil {
			return err
		}
		batch.Queue(insertNotificationSQL, args...)
	}

	results := r.conn.Pool().SendBatch(ctx, batch)
	defer results.Close()

	for range ns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create notification batch: %w", err)
		}
	}
	return nil
}

// GetByID returns the notification or shared.ErrNotificationNotFound.
func (r *NotificationRepository) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM notifications WHERE id = $1"
	row := r.conn.QueryRow(ctx, query, string(id))
	return scanNotification(row)
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID shared.UserID, p shared.Pagination) ([]*notification.Notification, int, error) {
	var total int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1",
		string(userID),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := "SELECT " + notificationColumns + ` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.conn.Query(ctx, query, string(userID), p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var ns []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		ns = append(ns, n)
	}

	return ns, total, rows.Err()
}

// MarkRead marks one notification as read. Ownership is part of the WHERE
// clause, so a foreign notification reports not-found rather than forbidden.
func (r *NotificationRepository) MarkRead(ctx context.Context, id notification.NotificationID, userID shared.UserID) error {
	query := `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_read = FALSE
	`
	result, err := r.conn.Exec(ctx, query, string(id), string(userID))
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Distinguish "already read" (fine, idempotent) from "not yours/absent".
		var exists bool
		err := r.conn.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)",
			string(id), string(userID),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check notification existence: %w", err)
		}
		if !exists {
			return shared.ErrNotificationNotFound
		}
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID shared.UserID) (int, error) {
	query := `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`
	result, err := r.conn.Exec(ctx, query, string(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// DeleteReadBefore purges read notifications created before the cutoff.
// Used by the cleanup job; unread notifications are never purged.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// UnreadCount returns the number of unread notifications for the user.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID shared.UserID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE",
		string(userID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// notificationArgs builds the insert arguments for one notification.
func notificationArgs(n *notification.Notification) ([]interface{}, error) {
	var metadataJSON []byte
	if n.Metadata != nil {
		var err error
		metadataJSON, err = notification.EncodeMetadata(n.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode notification metadata: %w", err)
		}
	}

	return []interface{}{
		string(n.ID),
		string(n.UserID),
		n.Title,
		n.Message,
		string(n.Type),
		string(n.RelatedEntityType),
		n.RelatedEntityID,
		metadataJSON,
		n.IsRead,
		nullableTime(n.ReadAt),
		n.CreatedAt,
	}, nil
}

// scanNotification scans one notification row.
func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var id, userID, typ, related string
	var metadataJSON []byte
	var readAt *time.Time

	err := row.Scan(
		&id,
		&userID,
		&n.Title,
		&n.Message,
		&typ,
		&related,
		&n.RelatedEntityID,
		&metadataJSON,
		&n.IsRead,
		&readAt,
		&n.CreatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	n.ID = notification.NotificationID(id)
	n.UserID = shared.UserID(userID)
	n.Type = notification.Type(typ)
	n.RelatedEntityType = notification.RelatedEntityType(related)
	if readAt != nil {
		n.ReadAt = *readAt
	}
	if len(metadataJSON) > 0 {
		meta, err := notification.DecodeMetadata(n.Type, metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode notification metadata: %w", err)
		}
		n.Metadata = meta
	}

	return &n, nil
}
