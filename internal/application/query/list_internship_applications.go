package query

import (
	"context"
	"errors"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST INTERNSHIP APPLICATIONS QUERY
// Applications to one posting, restricted to the company that owns it. The
// ownership check runs before any application rows are touched.
// ══════════════════════════════════════════════════════════════════════════════

// ListInternshipApplicationsQuery contains the listing parameters.
type ListInternshipApplicationsQuery struct {
	// InternshipID - the posting whose applications to list.
	InternshipID shared.InternshipID

	// ActorUserID - the company account requesting the listing.
	ActorUserID shared.UserID

	// Page and PageSize control pagination (defaults applied when zero).
	Page     int
	PageSize int
}

// Validate checks the query parameters.
func (q *ListInternshipApplicationsQuery) Validate() error {
	if !q.InternshipID.IsValid() {
		return errors.New("internship_id is required")
	}
	if !q.ActorUserID.IsValid() {
		return errors.New("actor_user_id is required")
	}
	return nil
}

// ListInternshipApplicationsResult contains the listing.
type ListInternshipApplicationsResult struct {
	InternshipID string                  `json:"internship_id"`
	Applications []CompanyApplicationDTO `json:"applications"`
	Total        int                     `json:"total"`
	Page         int                     `json:"page"`
	TotalPages   int                     `json:"total_pages"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// ListInternshipApplicationsHandler handles the query.
type ListInternshipApplicationsHandler struct {
	applications application.Repository
	internships  internship.Repository
	companies    company.Directory
}

// NewListInternshipApplicationsHandler creates a new handler.
func NewListInternshipApplicationsHandler(
	applications application.Repository,
	internships internship.Repository,
	companies company.Directory,
) *ListInternshipApplicationsHandler {
	return &ListInternshipApplicationsHandler{
		applications: applications,
		internships:  internships,
		companies:    companies,
	}
}

// Handle executes the listing.
func (h *ListInternshipApplicationsHandler) Handle(ctx context.Context, query ListInternshipApplicationsQuery) (*ListInternshipApplicationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListInternshipApplications", shared.ErrValidation, err.Error(), err)
	}

	posting, err := h.internships.GetByID(ctx, query.InternshipID)
	if err != nil {
		return nil, err
	}

	actingCompany, err := h.companies.GetByUserID(ctx, query.ActorUserID)
	if err != nil {
		return nil, err
	}
	if !posting.OwnedBy(actingCompany.ID) {
		return nil, shared.ErrNotInternshipOwner
	}

	p := shared.NewPagination(query.Page, query.PageSize)
	views, total, err := h.applications.ListByInternship(ctx, query.InternshipID, p)
	if err != nil {
		return nil, err
	}

	return &ListInternshipApplicationsResult{
		InternshipID: query.InternshipID.String(),
		Applications: toCompanyApplicationDTOs(views),
		Total:        total,
		Page:         p.Page,
		TotalPages:   p.TotalPages(total),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
