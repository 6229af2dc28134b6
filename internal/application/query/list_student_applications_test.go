package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

func TestListStudentApplications(t *testing.T) {
	repo := &stubApplicationRepo{
		studentViews: []application.StudentView{studentViewRow(1), studentViewRow(2)},
	}
	handler := NewListStudentApplicationsHandler(repo)

	result, err := handler.Handle(context.Background(), ListStudentApplicationsQuery{
		StudentID: shared.StudentID(studentID),
	})
	require.NoError(t, err)

	require.Len(t, result.Applications, 2)
	assert.Equal(t, "Backend Intern", result.Applications[0].InternshipTitle)
	assert.Equal(t, "Acme", result.Applications[0].CompanyName)
	assert.Equal(t, "Applied", result.Applications[0].Status)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 1, result.TotalPages)

	// Defaults were applied to the zero-valued pagination.
	assert.Equal(t, shared.DefaultPageSize, repo.gotPagination.PageSize)
}

func TestListStudentApplications_PaginationIsForwarded(t *testing.T) {
	repo := &stubApplicationRepo{}
	handler := NewListStudentApplicationsHandler(repo)

	result, err := handler.Handle(context.Background(), ListStudentApplicationsQuery{
		StudentID: shared.StudentID(studentID),
		Page:      3,
		PageSize:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, repo.gotPagination.Page)
	assert.Equal(t, 10, repo.gotPagination.PageSize)
	assert.Equal(t, 3, result.Page)
	assert.Empty(t, result.Applications)
}

func TestListStudentApplications_Validation(t *testing.T) {
	handler := NewListStudentApplicationsHandler(&stubApplicationRepo{})

	_, err := handler.Handle(context.Background(), ListStudentApplicationsQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
