package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STATUS CHANGED HANDLER
// Notifies the student whose application changed status. The message wording
// comes from the per-status table in the notification package.
// ═══════════════════════════════════════════════════════════════════════════

// OnStatusChangedHandler handles the application.status_changed event.
type OnStatusChangedHandler struct {
	internships   internship.Repository
	students      student.Directory
	notifications notification.Repository

	logger *slog.Logger
	config StatusChangedConfig
}

// StatusChangedConfig contains the handler configuration.
type StatusChangedConfig struct {
	// NotifySelfChanges controls whether the student is notified about
	// transitions they triggered themselves. Withdrawals are covered by the
	// dedicated withdrawn handler either way.
	NotifySelfChanges bool
}

// DefaultStatusChangedConfig returns the default configuration.
func DefaultStatusChangedConfig() StatusChangedConfig {
	return StatusChangedConfig{
		NotifySelfChanges: false,
	}
}

// NewOnStatusChangedHandler creates a new handler.
func NewOnStatusChangedHandler(
	internships internship.Repository,
	students student.Directory,
	notifications notification.Repository,
	logger *slog.Logger,
	config StatusChangedConfig,
) *OnStatusChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnStatusChangedHandler{
		internships:   internships,
		students:      students,
		notifications: notifications,
		logger:        logger.With("handler", "on_status_changed"),
		config:        config,
	}
}

// Handle processes the status changed event.
func (h *OnStatusChangedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	changed, ok := event.(shared.ApplicationStatusChangedEvent)
	if !ok {
		h.logger.Warn("received non-ApplicationStatusChangedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing status changed event",
		"application_id", changed.ApplicationID,
		"old_status", changed.OldStatus,
		"new_status", changed.NewStatus,
		"changed_by_type", changed.ChangedByType,
	)

	if !h.config.NotifySelfChanges && changed.ChangedByType == shared.ActorStudent.String() {
		h.logger.Debug("skipping notification for self-inflicted change",
			"application_id", changed.ApplicationID,
		)
		return nil
	}

	applicant, err := h.students.GetByID(ctx, shared.StudentID(changed.StudentID))
	if err != nil {
		h.logger.Error("failed to get student",
			"student_id", changed.StudentID,
			"error", err,
		)
		return fmt.Errorf("get student: %w", err)
	}

	// The internship title is decorative in this notification, so a lookup
	// failure degrades to an empty title instead of dropping the message.
	internshipTitle := ""
	if posting, err := h.internships.GetByID(ctx, shared.InternshipID(changed.InternshipID)); err == nil {
		internshipTitle = posting.Title
	} else {
		h.logger.Warn("failed to get internship for notification",
			"internship_id", changed.InternshipID,
			"error", err,
		)
	}

	notif, err := notification.ForStatusUpdate(
		notification.NotificationID(uuid.NewString()),
		applicant.UserID,
		shared.ApplicationID(changed.ApplicationID),
		internshipTitle,
		changed.OldStatus,
		changed.NewStatus,
		changed.Notes,
	)
	if err != nil {
		h.logger.Error("failed to build notification",
			"application_id", changed.ApplicationID,
			"error", err,
		)
		return fmt.Errorf("build notification: %w", err)
	}

	if err := h.notifications.Create(ctx, notif); err != nil {
		h.logger.Error("failed to create notification",
			"application_id", changed.ApplicationID,
			"user_id", applicant.UserID,
			"error", err,
		)
	}

	return nil
}

// EventType returns the event type this handler processes.
func (h *OnStatusChangedHandler) EventType() shared.EventType {
	return shared.EventApplicationStatusChanged
}

// ═══════════════════════════════════════════════════════════════════════════
// ON APPLICATION WITHDRAWN HANDLER
// Confirms the withdrawal to the student. Kept separate from the status
// changed handler because withdrawals carry a reason instead of notes and
// are always self-inflicted.
// ═══════════════════════════════════════════════════════════════════════════

// OnApplicationWithdrawnHandler handles the application.withdrawn event.
type OnApplicationWithdrawnHandler struct {
	internships   internship.Repository
	students      student.Directory
	notifications notification.Repository

	logger *slog.Logger
}

// NewOnApplicationWithdrawnHandler creates a new handler.
func NewOnApplicationWithdrawnHandler(
	internships internship.Repository,
	students student.Directory,
	notifications notification.Repository,
	logger *slog.Logger,
) *OnApplicationWithdrawnHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnApplicationWithdrawnHandler{
		internships:   internships,
		students:      students,
		notifications: notifications,
		logger:        logger.With("handler", "on_application_withdrawn"),
	}
}

// Handle processes the withdrawn event.
func (h *OnApplicationWithdrawnHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	withdrawn, ok := event.(shared.ApplicationWithdrawnEvent)
	if !ok {
		h.logger.Warn("received non-ApplicationWithdrawnEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing application withdrawn event",
		"application_id", withdrawn.ApplicationID,
		"student_id", withdrawn.StudentID,
	)

	applicant, err := h.students.GetByID(ctx, shared.StudentID(withdrawn.StudentID))
	if err != nil {
		h.logger.Error("failed to get student",
			"student_id", withdrawn.StudentID,
			"error", err,
		)
		return fmt.Errorf("get student: %w", err)
	}

	internshipTitle := ""
	if posting, err := h.internships.GetByID(ctx, shared.InternshipID(withdrawn.InternshipID)); err == nil {
		internshipTitle = posting.Title
	}

	notif, err := notification.ForStatusUpdate(
		notification.NotificationID(uuid.NewString()),
		applicant.UserID,
		shared.ApplicationID(withdrawn.ApplicationID),
		internshipTitle,
		"",
		application.StatusWithdrawn.String(),
		withdrawn.Reason,
	)
	if err != nil {
		h.logger.Error("failed to build notification",
			"application_id", withdrawn.ApplicationID,
			"error", err,
		)
		return fmt.Errorf("build notification: %w", err)
	}

	if err := h.notifications.Create(ctx, notif); err != nil {
		h.logger.Error("failed to create notification",
			"application_id", withdrawn.ApplicationID,
			"user_id", applicant.UserID,
			"error", err,
		)
	}

	return nil
}

// EventType returns the event type this handler processes.
func (h *OnApplicationWithdrawnHandler) EventType() shared.EventType {
	return shared.EventApplicationWithdrawn
}
