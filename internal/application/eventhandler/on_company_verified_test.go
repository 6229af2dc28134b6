package eventhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

func TestOnCompanyVerified_Approved(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnCompanyVerifiedHandler(inbox, nil)

	err := handler.Handle(shared.NewCompanyVerifiedEvent(companyID, companyUserID, "Acme", true, "", adminUserID))
	require.NoError(t, err)

	notifs := inbox.all()
	require.Len(t, notifs, 1)
	n := notifs[0]
	assert.Equal(t, shared.UserID(companyUserID), n.UserID)
	assert.Equal(t, notification.TypeCompanyVerification, n.Type)
	assert.Equal(t, "Company Verified Successfully", n.Title)
	assert.Equal(t, companyID, n.RelatedEntityID)

	meta, ok := n.Metadata.(notification.CompanyVerificationMetadata)
	require.True(t, ok)
	assert.True(t, meta.IsVerified)
}

func TestOnCompanyVerified_Rejected(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnCompanyVerifiedHandler(inbox, nil)

	err := handler.Handle(shared.NewCompanyVerifiedEvent(companyID, companyUserID, "Acme", false, "missing registration documents", adminUserID))
	require.NoError(t, err)

	notifs := inbox.all()
	require.Len(t, notifs, 1)
	assert.Equal(t, "Company Verification Rejected", notifs[0].Title)
	assert.Contains(t, notifs[0].Message, "missing registration documents")
}

func TestOnCompanyVerified_IgnoresForeignEvents(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnCompanyVerifiedHandler(inbox, nil)

	err := handler.Handle(shared.NewApplicationCreatedEvent(appID, internshipID, studentID))
	assert.NoError(t, err)
	assert.Zero(t, inbox.size())
}
