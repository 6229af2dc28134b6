package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW INTERNSHIP COMMAND
// Admin decision on a posting. An approval triggers the creator notification
// and the skill-match fan-out downstream, after the write commits.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewInternshipCommand contains the data for an admin review.
type ReviewInternshipCommand struct {
	// InternshipID is the posting under review.
	InternshipID shared.InternshipID

	// Approve is the decision.
	Approve bool

	// Reason is the optional reviewer note (rejection reason).
	Reason string

	// AdminUserID is the reviewing admin's account.
	AdminUserID shared.UserID

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ReviewInternshipCommand) Validate() error {
	if !c.InternshipID.IsValid() {
		return errors.New("review_internship: internship_id is required")
	}
	if !c.AdminUserID.IsValid() {
		return errors.New("review_internship: admin_user_id is required")
	}
	return nil
}

// ReviewInternshipResult contains the result of a review.
type ReviewInternshipResult struct {
	InternshipID   shared.InternshipID
	ApprovalStatus internship.ApprovalStatus
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ReviewInternshipHandler handles the ReviewInternshipCommand.
type ReviewInternshipHandler struct {
	internships internship.Repository
	publisher   shared.EventPublisher

	logger *slog.Logger
}

// NewReviewInternshipHandler creates a new ReviewInternshipHandler.
func NewReviewInternshipHandler(internships internship.Repository, publisher shared.EventPublisher, logger *slog.Logger) *ReviewInternshipHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewInternshipHandler{
		internships: internships,
		publisher:   publisher,
		logger:      logger.With("command", "review_internship"),
	}
}

// Handle executes the review.
func (h *ReviewInternshipHandler) Handle(ctx context.Context, cmd ReviewInternshipCommand) (*ReviewInternshipResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("review_internship: validation failed: %w", err)
	}

	posting, err := h.internships.GetByID(ctx, cmd.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("review_internship: failed to get internship: %w", err)
	}

	if err := posting.Review(cmd.Approve, cmd.AdminUserID, cmd.Reason); err != nil {
		return nil, err
	}

	if err := h.internships.UpdateReview(ctx, posting); err != nil {
		return nil, fmt.Errorf("review_internship: failed to persist review: %w", err)
	}

	// The event fires only after the review is durable, so handlers never
	// see a decision that later rolled back.
	event := shared.NewInternshipReviewedEvent(
		posting.ID.String(), posting.CompanyID.String(), posting.CreatedBy.String(),
		posting.Title, cmd.Approve, cmd.Reason, cmd.AdminUserID.String(),
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Error("failed to publish internship reviewed event",
			"internship_id", posting.ID.String(),
			"approved", cmd.Approve,
			"error", err,
		)
	}

	return &ReviewInternshipResult{
		InternshipID:   posting.ID,
		ApprovalStatus: posting.ApprovalStatus,
	}, nil
}
