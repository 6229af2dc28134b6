package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY COMPANY COMMAND
// Admin decision on a company profile.
// ══════════════════════════════════════════════════════════════════════════════

// VerifyCompanyCommand contains the data for an admin verification.
type VerifyCompanyCommand struct {
	// CompanyID is the profile under verification.
	CompanyID shared.CompanyID

	// Approve is the decision.
	Approve bool

	// Reason is the optional reviewer note (rejection reason).
	Reason string

	// AdminUserID is the verifying admin's account.
	AdminUserID shared.UserID

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c VerifyCompanyCommand) Validate() error {
	if !c.CompanyID.IsValid() {
		return errors.New("verify_company: company_id is required")
	}
	if !c.AdminUserID.IsValid() {
		return errors.New("verify_company: admin_user_id is required")
	}
	return nil
}

// VerifyCompanyResult contains the result of a verification.
type VerifyCompanyResult struct {
	CompanyID          shared.CompanyID
	VerificationStatus company.VerificationStatus
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// VerifyCompanyHandler handles the VerifyCompanyCommand.
type VerifyCompanyHandler struct {
	companies company.Directory
	publisher shared.EventPublisher

	logger *slog.Logger
}

// NewVerifyCompanyHandler creates a new VerifyCompanyHandler.
func NewVerifyCompanyHandler(companies company.Directory, publisher shared.EventPublisher, logger *slog.Logger) *VerifyCompanyHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &VerifyCompanyHandler{
		companies: companies,
		publisher: publisher,
		logger:    logger.With("command", "verify_company"),
	}
}

// Handle executes the verification.
func (h *VerifyCompanyHandler) Handle(ctx context.Context, cmd VerifyCompanyCommand) (*VerifyCompanyResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("verify_company: validation failed: %w", err)
	}

	c, err := h.companies.GetByID(ctx, cmd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("verify_company: failed to get company: %w", err)
	}

	if err := c.Verify(cmd.Approve, cmd.AdminUserID, cmd.Reason); err != nil {
		return nil, err
	}

	if err := h.companies.UpdateVerification(ctx, c); err != nil {
		return nil, fmt.Errorf("verify_company: failed to persist verification: %w", err)
	}

	event := shared.NewCompanyVerifiedEvent(
		c.ID.String(), c.UserID.String(), c.Name,
		cmd.Approve, cmd.Reason, cmd.AdminUserID.String(),
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Error("failed to publish company verified event",
			"company_id", c.ID.String(),
			"approved", cmd.Approve,
			"error", err,
		)
	}

	return &VerifyCompanyResult{
		CompanyID:          c.ID,
		VerificationStatus: c.VerificationStatus,
	}, nil
}
