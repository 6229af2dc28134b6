package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// WITHDRAW APPLICATION COMMAND
// The student-only path into the Withdrawn terminal state. The row stays in
// storage; it is purged only if the student later re-applies.
// ══════════════════════════════════════════════════════════════════════════════

// WithdrawApplicationCommand contains the data to withdraw an application.
type WithdrawApplicationCommand struct {
	// ApplicationID is the application to withdraw.
	ApplicationID shared.ApplicationID

	// ActorUserID is the account of the withdrawing student.
	ActorUserID shared.UserID

	// Reason is the optional audit note.
	Reason string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c WithdrawApplicationCommand) Validate() error {
	if !c.ApplicationID.IsValid() {
		return errors.New("withdraw_application: application_id is required")
	}
	if !c.ActorUserID.IsValid() {
		return errors.New("withdraw_application: actor_user_id is required")
	}
	return nil
}

// WithdrawApplicationResult contains the result of a withdrawal.
type WithdrawApplicationResult struct {
	ApplicationID shared.ApplicationID
	OldStatus     application.Status
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// WithdrawApplicationHandler handles the WithdrawApplicationCommand.
type WithdrawApplicationHandler struct {
	applications application.Repository
	students     student.Directory
	publisher    shared.EventPublisher

	logger *slog.Logger
}

// NewWithdrawApplicationHandler creates a new WithdrawApplicationHandler.
func NewWithdrawApplicationHandler(
	applications application.Repository,
	students student.Directory,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *WithdrawApplicationHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &WithdrawApplicationHandler{
		applications: applications,
		students:     students,
		publisher:    publisher,
		logger:       logger.With("command", "withdraw_application"),
	}
}

// Handle executes the withdrawal.
func (h *WithdrawApplicationHandler) Handle(ctx context.Context, cmd WithdrawApplicationCommand) (*WithdrawApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("withdraw_application: validation failed: %w", err)
	}

	app, err := h.applications.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("withdraw_application: failed to get application: %w", err)
	}

	applicant, err := h.students.GetByUserID(ctx, cmd.ActorUserID)
	if err != nil {
		return nil, fmt.Errorf("withdraw_application: failed to resolve acting student: %w", err)
	}
	if !app.BelongsTo(applicant.ID) {
		return nil, shared.ErrNotApplicationOwner
	}

	oldStatus := app.Status
	actor := shared.Actor{UserID: cmd.ActorUserID, Type: shared.ActorStudent}
	if err := app.Withdraw(actor, cmd.Reason); err != nil {
		return nil, err
	}

	if err := h.applications.Update(ctx, app); err != nil {
		return nil, err
	}

	event := shared.NewApplicationWithdrawnEvent(
		app.ID.String(), app.InternshipID.String(), app.StudentID.String(), app.LastChange().Notes,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Error("failed to publish application withdrawn event",
			"application_id", app.ID.String(),
			"error", err,
		)
	}

	return &WithdrawApplicationResult{
		ApplicationID: app.ID,
		OldStatus:     oldStatus,
	}, nil
}
