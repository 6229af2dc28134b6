// Package company contains the company directory entry as seen by the
// application core: the name shown in listings and the admin verification
// state.
package company

import (
	"fmt"
	"strings"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// VerificationStatus is the admin verification state of a company profile.
type VerificationStatus string

const (
	// VerificationPending - profile awaits admin verification.
	VerificationPending VerificationStatus = "Pending"
	// VerificationVerified - profile passed verification.
	VerificationVerified VerificationStatus = "Verified"
	// VerificationRejected - profile failed verification.
	VerificationRejected VerificationStatus = "Rejected"
)

// IsValid checks that the verification status is a known value.
func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v VerificationStatus) String() string { return string(v) }

// Company is a directory entry for an employer. The UserID points at the
// account that receives notifications about the company's postings.
type Company struct {
	// ID - company profile identifier (UUID in string form).
	ID shared.CompanyID

	// UserID - account behind the profile.
	UserID shared.UserID

	// Name - company display name.
	Name string

	// VerificationStatus - admin verification state.
	VerificationStatus VerificationStatus

	// VerifiedBy - admin who performed the verification, empty while pending.
	VerifiedBy shared.UserID

	// VerifiedAt - when the verification happened.
	VerifiedAt time.Time

	// VerificationNotes - optional reviewer remarks (rejection reason).
	VerificationNotes string

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewCompanyParams holds the fields needed to register a directory entry.
type NewCompanyParams struct {
	ID     shared.CompanyID
	UserID shared.UserID
	Name   string
}

// NewCompany creates a directory entry in the pending verification state.
func NewCompany(params NewCompanyParams) (*Company, error) {
	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("company", "New", shared.ErrInvalidID, "invalid company ID")
	}
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("company", "New", shared.ErrInvalidID, "invalid user ID")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.NewDomainError("company", "New", shared.ErrEmptyValue, "company name is required")
	}

	now := time.Now().UTC()

	return &Company{
		ID:                 params.ID,
		UserID:             params.UserID,
		Name:               name,
		VerificationStatus: VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Verify records an admin decision on the profile. Re-verifying a decided
// profile is allowed; only the latest decision is kept.
func (c *Company) Verify(approve bool, verifier shared.UserID, notes string) error {
	if !verifier.IsValid() {
		return shared.NewDomainError("company", "Verify", shared.ErrInvalidID, "invalid verifier user ID")
	}

	if approve {
		c.VerificationStatus = VerificationVerified
	} else {
		c.VerificationStatus = VerificationRejected
	}
	c.VerifiedBy = verifier
	c.VerifiedAt = time.Now().UTC()
	c.VerificationNotes = strings.TrimSpace(notes)
	c.UpdatedAt = c.VerifiedAt
	return nil
}

// IsVerified reports whether the profile has passed verification.
func (c *Company) IsVerified() bool {
	return c.VerificationStatus == VerificationVerified
}

// String returns a compact representation for logging.
func (c *Company) String() string {
	return fmt.Sprintf("Company{ID: %s, Name: %q, Verification: %s}", c.ID, c.Name, c.VerificationStatus)
}
