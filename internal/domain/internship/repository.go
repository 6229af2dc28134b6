package internship

import (
	"context"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Repository is the persistence port for internship postings.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// GetByID returns the posting or shared.ErrInternshipNotFound.
	GetByID(ctx context.Context, id shared.InternshipID) (*Internship, error)

	// Save inserts or fully replaces a posting snapshot.
	Save(ctx context.Context, in *Internship) error

	// UpdateReview persists the review decision fields of the posting.
	UpdateReview(ctx context.Context, in *Internship) error

	// IncrementApplications bumps the received-applications counter by one.
	IncrementApplications(ctx context.Context, id shared.InternshipID) error

	// ListByCompany returns all postings owned by the company, newest first.
	ListByCompany(ctx context.Context, companyID shared.CompanyID) ([]*Internship, error)
}
