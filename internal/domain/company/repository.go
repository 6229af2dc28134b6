package company

import (
	"context"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Directory is the persistence port for company directory entries.
type Directory interface {
	// GetByID returns the entry or shared.ErrCompanyNotFound.
	GetByID(ctx context.Context, id shared.CompanyID) (*Company, error)

	// GetByUserID returns the entry owned by the account, or
	// shared.ErrCompanyNotFound.
	GetByUserID(ctx context.Context, userID shared.UserID) (*Company, error)

	// Save inserts or fully replaces a directory entry.
	Save(ctx context.Context, c *Company) error

	// UpdateVerification persists the verification decision fields.
	UpdateVerification(ctx context.Context, c *Company) error
}
