package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK NOTIFICATION READ COMMANDS
// Inbox writes: mark one notification, or the whole inbox, as read. Reading
// someone else's notification reports not-found rather than forbidden, so
// the inbox does not leak which IDs exist.
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadCommand marks a single notification as read.
type MarkNotificationReadCommand struct {
	NotificationID notification.NotificationID
	UserID         shared.UserID
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if !c.NotificationID.IsValid() {
		return errors.New("mark_notification_read: notification_id is required")
	}
	if !c.UserID.IsValid() {
		return errors.New("mark_notification_read: user_id is required")
	}
	return nil
}

// MarkAllNotificationsReadCommand marks the whole inbox as read.
type MarkAllNotificationsReadCommand struct {
	UserID shared.UserID
}

// Validate validates the command.
func (c MarkAllNotificationsReadCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("mark_all_notifications_read: user_id is required")
	}
	return nil
}

// MarkAllNotificationsReadResult reports how many notifications changed.
type MarkAllNotificationsReadResult struct {
	Updated int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadHandler handles both inbox write commands.
type MarkNotificationReadHandler struct {
	notifications notification.Repository
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(notifications notification.Repository) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{notifications: notifications}
}

// Handle marks one notification as read.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("mark_notification_read: validation failed: %w", err)
	}
	return h.notifications.MarkRead(ctx, cmd.NotificationID, cmd.UserID)
}

// HandleAll marks every unread notification of the user as read.
func (h *MarkNotificationReadHandler) HandleAll(ctx context.Context, cmd MarkAllNotificationsReadCommand) (*MarkAllNotificationsReadResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("mark_all_notifications_read: validation failed: %w", err)
	}
	updated, err := h.notifications.MarkAllRead(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	return &MarkAllNotificationsReadResult{Updated: updated}, nil
}
