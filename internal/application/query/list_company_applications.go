package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST COMPANY APPLICATIONS QUERY
// All applications to any posting of one company. Applications do not carry a
// company reference; ownership is resolved through the postings.
// ══════════════════════════════════════════════════════════════════════════════

// ListCompanyApplicationsQuery contains the listing parameters.
type ListCompanyApplicationsQuery struct {
	// CompanyID - the company whose incoming applications to list.
	CompanyID shared.CompanyID

	// Status keeps only applications in this state when non-empty.
	Status string

	// InternshipID keeps only applications to this posting when set.
	InternshipID shared.InternshipID

	// Page and PageSize control pagination (defaults applied when zero).
	Page     int
	PageSize int
}

// Validate checks the query parameters.
func (q *ListCompanyApplicationsQuery) Validate() error {
	if !q.CompanyID.IsValid() {
		return errors.New("company_id is required")
	}
	if q.Status != "" && !application.Status(q.Status).IsValid() {
		return fmt.Errorf("unknown status %q", q.Status)
	}
	return nil
}

// CompanyApplicationDTO is one listing row on the company side.
type CompanyApplicationDTO struct {
	ApplicationID   string    `json:"application_id"`
	InternshipID    string    `json:"internship_id"`
	InternshipTitle string    `json:"internship_title"`
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	Status          string    `json:"status"`
	AppliedAt       time.Time `json:"applied_at"`
}

// ListCompanyApplicationsResult contains the listing.
type ListCompanyApplicationsResult struct {
	Applications []CompanyApplicationDTO `json:"applications"`
	Total        int                     `json:"total"`
	Page         int                     `json:"page"`
	TotalPages   int                     `json:"total_pages"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// ListCompanyApplicationsHandler handles the query.
type ListCompanyApplicationsHandler struct {
	applications application.Repository
}

// NewListCompanyApplicationsHandler creates a new handler.
func NewListCompanyApplicationsHandler(applications application.Repository) *ListCompanyApplicationsHandler {
	return &ListCompanyApplicationsHandler{applications: applications}
}

// Handle executes the listing.
func (h *ListCompanyApplicationsHandler) Handle(ctx context.Context, query ListCompanyApplicationsQuery) (*ListCompanyApplicationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListCompanyApplications", shared.ErrValidation, err.Error(), err)
	}

	filter := application.CompanyFilter{InternshipID: query.InternshipID}
	if query.Status != "" {
		st := application.Status(query.Status)
		filter.Status = &st
	}

	p := shared.NewPagination(query.Page, query.PageSize)
	views, total, err := h.applications.ListByCompany(ctx, query.CompanyID, filter, p)
	if err != nil {
		return nil, err
	}

	return &ListCompanyApplicationsResult{
		Applications: toCompanyApplicationDTOs(views),
		Total:        total,
		Page:         p.Page,
		TotalPages:   p.TotalPages(total),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func toCompanyApplicationDTOs(views []application.CompanyView) []CompanyApplicationDTO {
	dtos := make([]CompanyApplicationDTO, len(views))
	for i, v := range views {
		dtos[i] = CompanyApplicationDTO{
			ApplicationID:   v.ApplicationID.String(),
			InternshipID:    v.InternshipID.String(),
			InternshipTitle: v.InternshipTitle,
			StudentID:       v.StudentID.String(),
			StudentName:     v.StudentName,
			Status:          v.Status.String(),
			AppliedAt:       v.AppliedAt,
		}
	}
	return dtos
}
