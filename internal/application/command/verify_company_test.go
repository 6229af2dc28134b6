package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

func newPendingCompany(t *testing.T) *company.Company {
	t.Helper()
	c, err := company.NewCompany(company.NewCompanyParams{
		ID:     shared.CompanyID(companyID),
		UserID: shared.UserID(companyUserID),
		Name:   "Acme",
	})
	require.NoError(t, err)
	return c
}

func TestVerifyCompany_Approve(t *testing.T) {
	companies := newFakeCompanyDirectory(newPendingCompany(t))
	publisher := &capturePublisher{}
	handler := NewVerifyCompanyHandler(companies, publisher, nil)

	result, err := handler.Handle(context.Background(), VerifyCompanyCommand{
		CompanyID:   shared.CompanyID(companyID),
		Approve:     true,
		AdminUserID: shared.UserID(adminUserID),
	})
	require.NoError(t, err)
	assert.Equal(t, company.VerificationVerified, result.VerificationStatus)

	stored, err := companies.GetByID(context.Background(), shared.CompanyID(companyID))
	require.NoError(t, err)
	assert.True(t, stored.IsVerified())

	events := publisher.published()
	require.Len(t, events, 1)
	verified, ok := events[0].(shared.CompanyVerifiedEvent)
	require.True(t, ok)
	assert.True(t, verified.Verified)
	assert.Equal(t, companyUserID, verified.UserID)
}

func TestVerifyCompany_Reject(t *testing.T) {
	companies := newFakeCompanyDirectory(newPendingCompany(t))
	publisher := &capturePublisher{}
	handler := NewVerifyCompanyHandler(companies, publisher, nil)

	result, err := handler.Handle(context.Background(), VerifyCompanyCommand{
		CompanyID:   shared.CompanyID(companyID),
		Approve:     false,
		Reason:      "missing registration documents",
		AdminUserID: shared.UserID(adminUserID),
	})
	require.NoError(t, err)
	assert.Equal(t, company.VerificationRejected, result.VerificationStatus)

	events := publisher.published()
	require.Len(t, events, 1)
	verified := events[0].(shared.CompanyVerifiedEvent)
	assert.False(t, verified.Verified)
	assert.Equal(t, "missing registration documents", verified.Reason)
}

func TestVerifyCompany_UnknownCompany(t *testing.T) {
	handler := NewVerifyCompanyHandler(newFakeCompanyDirectory(), &capturePublisher{}, nil)

	_, err := handler.Handle(context.Background(), VerifyCompanyCommand{
		CompanyID:   shared.CompanyID(companyID),
		Approve:     true,
		AdminUserID: shared.UserID(adminUserID),
	})
	assert.ErrorIs(t, err, shared.ErrCompanyNotFound)
}
