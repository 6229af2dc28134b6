package application

import (
	"context"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// READ MODELS
// ══════════════════════════════════════════════════════════════════════════════

// StudentView is a listing row for the student's "my applications" screen.
// Internship title and company name are denormalized into the row; the audit
// trail is never loaded for listings.
type StudentView struct {
	ApplicationID   shared.ApplicationID
	InternshipID    shared.InternshipID
	InternshipTitle string
	CompanyName     string
	Status          Status
	AppliedAt       time.Time
}

// CompanyView is a listing row for company-side screens.
type CompanyView struct {
	ApplicationID   shared.ApplicationID
	InternshipID    shared.InternshipID
	InternshipTitle string
	StudentID       shared.StudentID
	StudentName     string
	Status          Status
	AppliedAt       time.Time
}

// CompanyFilter narrows company-side listings.
type CompanyFilter struct {
	// Status keeps only applications in this state when set.
	Status *Status
	// InternshipID keeps only applications to this posting when set.
	InternshipID shared.InternshipID
}

// CompanyStats aggregates applications across all postings of one company.
type CompanyStats struct {
	Total    int
	ByStatus map[Status]int
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY PORT
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the persistence port for applications. Implementations must
// guarantee that:
//
//   - (internship_id, student_id) is unique storage-wide, enforced at insert
//     time even under concurrent submissions;
//   - the application row and its audit trail are written in one transaction;
//   - Update applies only when the stored version matches the aggregate's
//     version, and bumps it by one.
type Repository interface {
	// Create inserts a new application together with its first audit entry.
	// Returns shared.ErrAlreadyApplied when the student already has an
	// application for the posting.
	Create(ctx context.Context, app *Application) error

	// GetByID loads the application with its full audit trail, or
	// shared.ErrApplicationNotFound.
	GetByID(ctx context.Context, id shared.ApplicationID) (*Application, error)

	// GetByInternshipAndStudent loads the student's application to the
	// posting, if any, with its full audit trail.
	GetByInternshipAndStudent(ctx context.Context, internshipID shared.InternshipID, studentID shared.StudentID) (*Application, error)

	// Update persists the aggregate's current state and appends any new audit
	// entries, all in one transaction. Returns
	// shared.ErrConcurrentModification when the stored version differs from
	// the version the aggregate was loaded with.
	Update(ctx context.Context, app *Application) error

	// Delete removes the application and its audit trail. Used only to purge
	// a withdrawn application before the student re-applies.
	Delete(ctx context.Context, id shared.ApplicationID) error

	// ListByStudent returns the student's applications, newest first.
	// The second result is the total row count before pagination.
	ListByStudent(ctx context.Context, studentID shared.StudentID, p shared.Pagination) ([]StudentView, int, error)

	// ListByCompany returns applications to any posting owned by the company,
	// newest first. Ownership is resolved through the postings: there is no
	// company reference on the application itself.
	ListByCompany(ctx context.Context, companyID shared.CompanyID, filter CompanyFilter, p shared.Pagination) ([]CompanyView, int, error)

	// ListByInternship returns applications to one posting, newest first.
	// Callers must verify posting ownership before calling.
	ListByInternship(ctx context.Context, internshipID shared.InternshipID, p shared.Pagination) ([]CompanyView, int, error)

	// StatsByCompany aggregates application counts across the company's
	// postings, total and per status.
	StatsByCompany(ctx context.Context, companyID shared.CompanyID) (CompanyStats, error)
}
