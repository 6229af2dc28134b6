package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON COMPANY VERIFIED HANDLER
// Tells the company account about the verification decision.
// ═══════════════════════════════════════════════════════════════════════════

// OnCompanyVerifiedHandler handles the company.verified event.
type OnCompanyVerifiedHandler struct {
	notifications notification.Repository

	logger *slog.Logger
}

// NewOnCompanyVerifiedHandler creates a new handler.
func NewOnCompanyVerifiedHandler(
	notifications notification.Repository,
	logger *slog.Logger,
) *OnCompanyVerifiedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnCompanyVerifiedHandler{
		notifications: notifications,
		logger:        logger.With("handler", "on_company_verified"),
	}
}

// Handle processes the company verified event.
func (h *OnCompanyVerifiedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	verified, ok := event.(shared.CompanyVerifiedEvent)
	if !ok {
		h.logger.Warn("received non-CompanyVerifiedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing company verified event",
		"company_id", verified.CompanyID,
		"verified", verified.Verified,
	)

	notif, err := notification.ForCompanyVerification(
		notification.NotificationID(uuid.NewString()),
		shared.UserID(verified.UserID),
		shared.CompanyID(verified.CompanyID),
		verified.Verified,
		verified.Reason,
	)
	if err != nil {
		h.logger.Error("failed to build notification",
			"company_id", verified.CompanyID,
			"error", err,
		)
		return fmt.Errorf("build notification: %w", err)
	}

	if err := h.notifications.Create(ctx, notif); err != nil {
		h.logger.Error("failed to create notification",
			"company_id", verified.CompanyID,
			"user_id", verified.UserID,
			"error", err,
		)
	}

	return nil
}

// EventType returns the event type this handler processes.
func (h *OnCompanyVerifiedHandler) EventType() shared.EventType {
	return shared.EventCompanyVerified
}
