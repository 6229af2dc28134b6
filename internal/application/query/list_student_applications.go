// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENT APPLICATIONS QUERY
// The "my applications" screen: one row per application, newest first, with
// the internship title and company name denormalized in. Audit trails are
// never loaded for listings.
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentApplicationsQuery contains the listing parameters.
type ListStudentApplicationsQuery struct {
	// StudentID - the student whose applications to list.
	StudentID shared.StudentID

	// Page and PageSize control pagination (defaults applied when zero).
	Page     int
	PageSize int
}

// Validate checks the query parameters.
func (q *ListStudentApplicationsQuery) Validate() error {
	if !q.StudentID.IsValid() {
		return errors.New("student_id is required")
	}
	return nil
}

// StudentApplicationDTO is one listing row.
type StudentApplicationDTO struct {
	ApplicationID   string    `json:"application_id"`
	InternshipID    string    `json:"internship_id"`
	InternshipTitle string    `json:"internship_title"`
	CompanyName     string    `json:"company_name"`
	Status          string    `json:"status"`
	AppliedAt       time.Time `json:"applied_at"`
}

// ListStudentApplicationsResult contains the listing.
type ListStudentApplicationsResult struct {
	Applications []StudentApplicationDTO `json:"applications"`
	Total        int                     `json:"total"`
	Page         int                     `json:"page"`
	TotalPages   int                     `json:"total_pages"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// ListStudentApplicationsHandler handles the query.
type ListStudentApplicationsHandler struct {
	applications application.Repository
}

// NewListStudentApplicationsHandler creates a new handler.
func NewListStudentApplicationsHandler(applications application.Repository) *ListStudentApplicationsHandler {
	return &ListStudentApplicationsHandler{applications: applications}
}

// Handle executes the listing.
func (h *ListStudentApplicationsHandler) Handle(ctx context.Context, query ListStudentApplicationsQuery) (*ListStudentApplicationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListStudentApplications", shared.ErrValidation, err.Error(), err)
	}

	p := shared.NewPagination(query.Page, query.PageSize)
	views, total, err := h.applications.ListByStudent(ctx, query.StudentID, p)
	if err != nil {
		return nil, err
	}

	dtos := make([]StudentApplicationDTO, len(views))
	for i, v := range views {
		dtos[i] = StudentApplicationDTO{
			ApplicationID:   v.ApplicationID.String(),
			InternshipID:    v.InternshipID.String(),
			InternshipTitle: v.InternshipTitle,
			CompanyName:     v.CompanyName,
			Status:          v.Status.String(),
			AppliedAt:       v.AppliedAt,
		}
	}

	return &ListStudentApplicationsResult{
		Applications: dtos,
		Total:        total,
		Page:         p.Page,
		TotalPages:   p.TotalPages(total),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
