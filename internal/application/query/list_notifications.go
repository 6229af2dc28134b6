package query

import (
	"context"
	"errors"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST NOTIFICATIONS QUERY
// The inbox: a user's notifications newest first, plus the unread count.
// ══════════════════════════════════════════════════════════════════════════════

// ListNotificationsQuery contains the inbox parameters.
type ListNotificationsQuery struct {
	// UserID - the inbox owner.
	UserID shared.UserID

	// Page and PageSize control pagination (defaults applied when zero).
	Page     int
	PageSize int
}

// Validate checks the query parameters.
func (q *ListNotificationsQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// NotificationDTO is one inbox row.
type NotificationDTO struct {
	ID                string                `json:"id"`
	Title             string                `json:"title"`
	Message           string                `json:"message"`
	Type              string                `json:"type"`
	RelatedEntityType string                `json:"related_entity_type"`
	RelatedEntityID   string                `json:"related_entity_id,omitempty"`
	Metadata          notification.Metadata `json:"metadata,omitempty"`
	IsRead            bool                  `json:"is_read"`
	CreatedAt         time.Time             `json:"created_at"`
}

// ListNotificationsResult contains the inbox page.
type ListNotificationsResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int               `json:"total"`
	Page          int               `json:"page"`
	TotalPages    int               `json:"total_pages"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// ListNotificationsHandler handles the inbox queries.
type ListNotificationsHandler struct {
	notifications notification.Repository
}

// NewListNotificationsHandler creates a new handler.
func NewListNotificationsHandler(notifications notification.Repository) *ListNotificationsHandler {
	return &ListNotificationsHandler{notifications: notifications}
}

// Handle executes the inbox listing.
func (h *ListNotificationsHandler) Handle(ctx context.Context, query ListNotificationsQuery) (*ListNotificationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListNotifications", shared.ErrValidation, err.Error(), err)
	}

	p := shared.NewPagination(query.Page, query.PageSize)
	ns, total, err := h.notifications.ListByUser(ctx, query.UserID, p)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(ns))
	for i, n := range ns {
		dtos[i] = NotificationDTO{
			ID:                n.ID.String(),
			Title:             n.Title,
			Message:           n.Message,
			Type:              n.Type.String(),
			RelatedEntityType: string(n.RelatedEntityType),
			RelatedEntityID:   n.RelatedEntityID,
			Metadata:          n.Metadata,
			IsRead:            n.IsRead,
			CreatedAt:         n.CreatedAt,
		}
	}

	return &ListNotificationsResult{
		Notifications: dtos,
		Total:         total,
		Page:          p.Page,
		TotalPages:    p.TotalPages(total),
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (h *ListNotificationsHandler) UnreadCount(ctx context.Context, userID shared.UserID) (int, error) {
	if !userID.IsValid() {
		return 0, shared.NewDomainError("query", "UnreadCount", shared.ErrValidation, "user_id is required")
	}
	return h.notifications.UnreadCount(ctx, userID)
}
