package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

func inboxNotification(t *testing.T, id notification.NotificationID) *notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:      id,
		UserID:  shared.UserID(studentUserID),
		Type:    notification.TypeApplicationStatusUpdate,
		Title:   "Application Status Updated: Shortlisted",
		Message: "Congratulations! You have been shortlisted for Backend Intern.",

		RelatedEntityType: notification.RelatedApplication,
		RelatedEntityID:   appID,
	})
	require.NoError(t, err)
	return n
}

func TestListNotifications(t *testing.T) {
	repo := &stubNotificationRepo{
		notifications: []*notification.Notification{
			inboxNotification(t, "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa1"),
			inboxNotification(t, "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa2"),
		},
	}
	handler := NewListNotificationsHandler(repo)

	result, err := handler.Handle(context.Background(), ListNotificationsQuery{
		UserID: shared.UserID(studentUserID),
	})
	require.NoError(t, err)

	require.Len(t, result.Notifications, 2)
	row := result.Notifications[0]
	assert.Equal(t, "Application Status Updated: Shortlisted", row.Title)
	assert.Equal(t, "Application_Status_Update", row.Type)
	assert.Equal(t, "Application", row.RelatedEntityType)
	assert.Equal(t, appID, row.RelatedEntityID)
	assert.False(t, row.IsRead)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, shared.DefaultPageSize, repo.gotPagination.PageSize)
}

func TestListNotifications_Validation(t *testing.T) {
	handler := NewListNotificationsHandler(&stubNotificationRepo{})

	_, err := handler.Handle(context.Background(), ListNotificationsQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUnreadCount(t *testing.T) {
	handler := NewListNotificationsHandler(&stubNotificationRepo{unread: 3})

	count, err := handler.UnreadCount(context.Background(), shared.UserID(studentUserID))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUnreadCount_Validation(t *testing.T) {
	handler := NewListNotificationsHandler(&stubNotificationRepo{})

	_, err := handler.UnreadCount(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
