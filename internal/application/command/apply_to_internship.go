// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLY TO INTERNSHIP COMMAND
// Submits a student's application: eligibility gate, duplicate check with
// withdrawn-application purge, aggregate creation, counter bump, event.
// ══════════════════════════════════════════════════════════════════════════════

// ApplyToInternshipCommand contains the data to submit an application.
type ApplyToInternshipCommand struct {
	// InternshipID is the posting being applied to.
	InternshipID shared.InternshipID

	// StudentID is the applying student's profile ID.
	StudentID shared.StudentID

	// ResumeURL points at the uploaded resume file.
	ResumeURL string

	// ResumeUploadedAt is when the resume was uploaded (defaults to now).
	ResumeUploadedAt time.Time

	// CoverLetter is optional free-form text.
	CoverLetter string

	// Answers are the responses to the posting's screening questions.
	Answers []application.Answer

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ApplyToInternshipCommand) Validate() error {
	if !c.InternshipID.IsValid() {
		return errors.New("apply_to_internship: internship_id is required")
	}
	if !c.StudentID.IsValid() {
		return errors.New("apply_to_internship: student_id is required")
	}
	if c.ResumeURL == "" {
		return errors.New("apply_to_internship: resume_url is required")
	}
	return nil
}

// ApplyToInternshipResult contains the result of submitting an application.
type ApplyToInternshipResult struct {
	// ApplicationID is the ID of the created application.
	ApplicationID shared.ApplicationID

	// Status is the initial status (always Applied).
	Status application.Status

	// AppliedAt is the submission time.
	AppliedAt time.Time

	// ReappliedAfterWithdrawal is true when a previous withdrawn application
	// was purged to make room for this one.
	ReappliedAfterWithdrawal bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ApplyToInternshipHandler handles the ApplyToInternshipCommand.
type ApplyToInternshipHandler struct {
	applications application.Repository
	internships  internship.Repository
	students     student.Directory
	publisher    shared.EventPublisher

	logger *slog.Logger
}

// NewApplyToInternshipHandler creates a new ApplyToInternshipHandler.
func NewApplyToInternshipHandler(
	applications application.Repository,
	internships internship.Repository,
	students student.Directory,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *ApplyToInternshipHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplyToInternshipHandler{
		applications: applications,
		internships:  internships,
		students:     students,
		publisher:    publisher,
		logger:       logger.With("command", "apply_to_internship"),
	}
}

// Handle executes the apply command.
func (h *ApplyToInternshipHandler) Handle(ctx context.Context, cmd ApplyToInternshipCommand) (*ApplyToInternshipResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("apply_to_internship: validation failed: %w", err)
	}

	posting, err := h.internships.GetByID(ctx, cmd.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("apply_to_internship: failed to get internship: %w", err)
	}

	applicant, err := h.students.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("apply_to_internship: failed to get student: %w", err)
	}

	if err := application.CheckEligibility(posting, cmd.Answers, time.Now().UTC()); err != nil {
		return nil, err
	}

	// A withdrawn application is purged so the student can start over with a
	// fresh audit trail. Any other existing application blocks re-applying.
	reapplied := false
	existing, err := h.applications.GetByInternshipAndStudent(ctx, cmd.InternshipID, cmd.StudentID)
	switch {
	case err == nil && existing.IsWithdrawn():
		if err := h.applications.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("apply_to_internship: failed to purge withdrawn application: %w", err)
		}
		reapplied = true
	case err == nil:
		return nil, shared.ErrAlreadyApplied
	case !shared.IsNotFound(err):
		return nil, fmt.Errorf("apply_to_internship: failed to check existing application: %w", err)
	}

	uploadedAt := cmd.ResumeUploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	app, err := application.NewApplication(application.NewApplicationParams{
		ID:           shared.ApplicationID(uuid.NewString()),
		InternshipID: cmd.InternshipID,
		StudentID:    cmd.StudentID,
		SubmittedBy:  applicant.UserID,
		Resume: application.Resume{
			FileURL:    cmd.ResumeURL,
			UploadDate: uploadedAt,
		},
		CoverLetter: cmd.CoverLetter,
		Answers:     cmd.Answers,
	})
	if err != nil {
		return nil, err
	}

	// The unique index on (internship_id, student_id) is the final authority
	// on duplicates: a concurrent submission loses here, not above.
	if err := h.applications.Create(ctx, app); err != nil {
		return nil, err
	}

	if err := h.internships.IncrementApplications(ctx, posting.ID); err != nil {
		return nil, fmt.Errorf("apply_to_internship: failed to update applications count: %w", err)
	}

	event := shared.NewApplicationCreatedEvent(app.ID.String(), app.InternshipID.String(), app.StudentID.String())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	// Notification delivery is best-effort: the submission succeeded even if
	// the bus is down, but the failure must leave a trace.
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Error("failed to publish application created event",
			"application_id", app.ID.String(),
			"internship_id", app.InternshipID.String(),
			"error", err,
		)
	}

	return &ApplyToInternshipResult{
		ApplicationID:            app.ID,
		Status:                   app.Status,
		AppliedAt:                app.AppliedAt,
		ReappliedAfterWithdrawal: reapplied,
	}, nil
}
