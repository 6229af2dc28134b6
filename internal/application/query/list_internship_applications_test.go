package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

func approvedPosting(t *testing.T) *internship.Internship {
	t.Helper()
	posting, err := internship.NewInternship(internship.NewInternshipParams{
		ID:                  shared.InternshipID(internshipID),
		CompanyID:           shared.CompanyID(companyID),
		CreatedBy:           shared.UserID(companyUserID),
		Title:               "Backend Intern",
		ApplicationDeadline: time.Now().UTC().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return posting
}

func owningCompany(t *testing.T) *company.Company {
	t.Helper()
	c, err := company.NewCompany(company.NewCompanyParams{
		ID:     shared.CompanyID(companyID),
		UserID: shared.UserID(companyUserID),
		Name:   "Acme",
	})
	require.NoError(t, err)
	return c
}

func TestListInternshipApplications(t *testing.T) {
	repo := &stubApplicationRepo{
		companyViews: []application.CompanyView{companyViewRow(1), companyViewRow(2)},
	}
	handler := NewListInternshipApplicationsHandler(
		repo,
		&stubInternshipRepo{posting: approvedPosting(t)},
		&stubCompanyDirectory{company: owningCompany(t)},
	)

	result, err := handler.Handle(context.Background(), ListInternshipApplicationsQuery{
		InternshipID: shared.InternshipID(internshipID),
		ActorUserID:  shared.UserID(companyUserID),
	})
	require.NoError(t, err)

	assert.Equal(t, internshipID, result.InternshipID)
	assert.Len(t, result.Applications, 2)
	assert.Equal(t, 2, result.Total)
}

func TestListInternshipApplications_NonOwnerIsRejected(t *testing.T) {
	other, err := company.NewCompany(company.NewCompanyParams{
		ID:     "99999999-9999-9999-9999-999999999999",
		UserID: "88888888-8888-8888-8888-888888888888",
		Name:   "Globex",
	})
	require.NoError(t, err)

	handler := NewListInternshipApplicationsHandler(
		&stubApplicationRepo{},
		&stubInternshipRepo{posting: approvedPosting(t)},
		&stubCompanyDirectory{company: other},
	)

	_, err = handler.Handle(context.Background(), ListInternshipApplicationsQuery{
		InternshipID: shared.InternshipID(internshipID),
		ActorUserID:  "88888888-8888-8888-8888-888888888888",
	})
	assert.ErrorIs(t, err, shared.ErrNotInternshipOwner)
}

func TestListInternshipApplications_UnknownPosting(t *testing.T) {
	handler := NewListInternshipApplicationsHandler(
		&stubApplicationRepo{},
		&stubInternshipRepo{},
		&stubCompanyDirectory{company: owningCompany(t)},
	)

	_, err := handler.Handle(context.Background(), ListInternshipApplicationsQuery{
		InternshipID: shared.InternshipID(internshipID),
		ActorUserID:  shared.UserID(companyUserID),
	})
	assert.ErrorIs(t, err, shared.ErrInternshipNotFound)
}

func TestListInternshipApplications_Validation(t *testing.T) {
	handler := NewListInternshipApplicationsHandler(
		&stubApplicationRepo{},
		&stubInternshipRepo{},
		&stubCompanyDirectory{},
	)

	_, err := handler.Handle(context.Background(), ListInternshipApplicationsQuery{
		InternshipID: shared.InternshipID(internshipID),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
