package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE APPLICATION STATUS COMMAND
// Moves an application through the lifecycle. The engine itself is
// actor-agnostic; this handler enforces who may move what.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateApplicationStatusCommand contains the data for a status transition.
type UpdateApplicationStatusCommand struct {
	// ApplicationID is the application to transition.
	ApplicationID shared.ApplicationID

	// NewStatus is the target status.
	NewStatus application.Status

	// Notes is the optional audit note. When empty a default note naming the
	// new status is recorded.
	Notes string

	// ActorUserID and ActorType identify who requests the transition.
	// Company actors must own the posting; admins may move anything.
	ActorUserID shared.UserID
	ActorType   shared.ActorType

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateApplicationStatusCommand) Validate() error {
	if !c.ApplicationID.IsValid() {
		return errors.New("update_application_status: application_id is required")
	}
	if !c.NewStatus.IsValid() {
		return fmt.Errorf("update_application_status: unknown status %q", c.NewStatus)
	}
	if !c.ActorType.IsValid() {
		return fmt.Errorf("update_application_status: unknown actor type %q", c.ActorType)
	}
	if c.ActorType == shared.ActorStudent {
		return errors.New("update_application_status: students must use the withdraw command")
	}
	if c.ActorType != shared.ActorSystem && !c.ActorUserID.IsValid() {
		return errors.New("update_application_status: actor_user_id is required")
	}
	return nil
}

// UpdateApplicationStatusResult contains the result of a transition.
type UpdateApplicationStatusResult struct {
	ApplicationID shared.ApplicationID
	OldStatus     application.Status
	NewStatus     application.Status
	HistoryLength int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateApplicationStatusHandler handles the UpdateApplicationStatusCommand.
type UpdateApplicationStatusHandler struct {
	applications application.Repository
	internships  internship.Repository
	companies    company.Directory
	publisher    shared.EventPublisher

	logger *slog.Logger
}

// NewUpdateApplicationStatusHandler creates a new UpdateApplicationStatusHandler.
func NewUpdateApplicationStatusHandler(
	applications application.Repository,
	internships internship.Repository,
	companies company.Directory,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *UpdateApplicationStatusHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &UpdateApplicationStatusHandler{
		applications: applications,
		internships:  internships,
		companies:    companies,
		publisher:    publisher,
		logger:       logger.With("command", "update_application_status"),
	}
}

// Handle executes the status transition.
func (h *UpdateApplicationStatusHandler) Handle(ctx context.Context, cmd UpdateApplicationStatusCommand) (*UpdateApplicationStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_application_status: validation failed: %w", err)
	}

	app, err := h.applications.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("update_application_status: failed to get application: %w", err)
	}

	if err := h.authorize(ctx, app, cmd); err != nil {
		return nil, err
	}

	oldStatus := app.Status
	actor := shared.Actor{UserID: cmd.ActorUserID, Type: cmd.ActorType}
	if err := app.TransitionTo(cmd.NewStatus, actor, cmd.Notes); err != nil {
		return nil, err
	}

	if err := h.applications.Update(ctx, app); err != nil {
		return nil, err
	}

	last := app.LastChange()
	event := shared.NewApplicationStatusChangedEvent(
		app.ID.String(), app.InternshipID.String(), app.StudentID.String(),
		oldStatus.String(), app.Status.String(), last.Notes,
		cmd.ActorUserID.String(), cmd.ActorType.String(),
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Error("failed to publish status changed event",
			"application_id", app.ID.String(),
			"new_status", app.Status.String(),
			"error", err,
		)
	}

	return &UpdateApplicationStatusResult{
		ApplicationID: app.ID,
		OldStatus:     oldStatus,
		NewStatus:     app.Status,
		HistoryLength: len(app.StatusHistory),
	}, nil
}

// authorize checks that company actors own the posting the application
// targets. Admin and system actors pass unconditionally.
func (h *UpdateApplicationStatusHandler) authorize(ctx context.Context, app *application.Application, cmd UpdateApplicationStatusCommand) error {
	if cmd.ActorType != shared.ActorCompany {
		return nil
	}

	actingCompany, err := h.companies.GetByUserID(ctx, cmd.ActorUserID)
	if err != nil {
		return fmt.Errorf("update_application_status: failed to resolve acting company: %w", err)
	}

	posting, err := h.internships.GetByID(ctx, app.InternshipID)
	if err != nil {
		return fmt.Errorf("update_application_status: failed to get internship: %w", err)
	}

	if !posting.OwnedBy(actingCompany.ID) {
		return shared.ErrNotInternshipOwner
	}
	return nil
}
