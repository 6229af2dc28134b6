// Package eventhandler contains the domain event handlers. They are the
// reactive part of the system: each one listens for a single event type and
// runs the side effects it implies, which here almost always means writing
// notifications into user inboxes.
//
// Handlers are best-effort by design. A failed notification write is logged
// and dropped rather than propagated, so the command that produced the event
// never fails because of its side effects.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON APPLICATION CREATED HANDLER
// Notifies the internship poster that a student has applied.
// ═══════════════════════════════════════════════════════════════════════════

// OnApplicationCreatedHandler handles the application.created event.
type OnApplicationCreatedHandler struct {
	internships   internship.Repository
	students      student.Directory
	notifications notification.Repository

	logger *slog.Logger
	config ApplicationCreatedConfig
}

// ApplicationCreatedConfig contains the handler configuration.
type ApplicationCreatedConfig struct {
	// RevealStudentName controls whether the poster sees the applicant's name
	// in the notification metadata. When false the applicant stays anonymous
	// until the company opens the application.
	RevealStudentName bool
}

// DefaultApplicationCreatedConfig returns the default configuration.
func DefaultApplicationCreatedConfig() ApplicationCreatedConfig {
	return ApplicationCreatedConfig{
		RevealStudentName: false,
	}
}

// NewOnApplicationCreatedHandler creates a new handler.
func NewOnApplicationCreatedHandler(
	internships internship.Repository,
	students student.Directory,
	notifications notification.Repository,
	logger *slog.Logger,
	config ApplicationCreatedConfig,
) *OnApplicationCreatedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnApplicationCreatedHandler{
		internships:   internships,
		students:      students,
		notifications: notifications,
		logger:        logger.With("handler", "on_application_created"),
		config:        config,
	}
}

// Handle processes the application created event.
// Implements the shared.EventHandler signature.
func (h *OnApplicationCreatedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	created, ok := event.(shared.ApplicationCreatedEvent)
	if !ok {
		h.logger.Warn("received non-ApplicationCreatedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing application created event",
		"application_id", created.ApplicationID,
		"internship_id", created.InternshipID,
		"student_id", created.StudentID,
	)

	posting, err := h.internships.GetByID(ctx, shared.InternshipID(created.InternshipID))
	if err != nil {
		h.logger.Error("failed to get internship",
			"internship_id", created.InternshipID,
			"error", err,
		)
		return fmt.Errorf("get internship: %w", err)
	}

	studentName := ""
	if h.config.RevealStudentName {
		applicant, err := h.students.GetByID(ctx, shared.StudentID(created.StudentID))
		if err != nil {
			// The anonymous fallback still produces a useful notification.
			h.logger.Warn("failed to get student, keeping applicant anonymous",
				"student_id", created.StudentID,
				"error", err,
			)
		} else {
			studentName = applicant.FullName()
		}
	}

	notif, err := notification.ForNewApplication(
		notification.NotificationID(uuid.NewString()),
		posting.CreatedBy,
		shared.ApplicationID(created.ApplicationID),
		posting.Title,
		studentName,
	)
	if err != nil {
		h.logger.Error("failed to build notification",
			"application_id", created.ApplicationID,
			"error", err,
		)
		return fmt.Errorf("build notification: %w", err)
	}

	if err := h.notifications.Create(ctx, notif); err != nil {
		h.logger.Error("failed to create notification",
			"application_id", created.ApplicationID,
			"user_id", posting.CreatedBy,
			"error", err,
		)
		// Not returned - the application itself already succeeded.
	}

	return nil
}

// EventType returns the event type this handler processes.
func (h *OnApplicationCreatedHandler) EventType() shared.EventType {
	return shared.EventApplicationCreated
}
