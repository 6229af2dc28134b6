package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

const (
	testNotifID     = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	testRecipientID = "44444444-4444-4444-4444-444444444444"
	testAppID       = "11111111-1111-1111-1111-111111111111"
	testPostingID   = "22222222-2222-2222-2222-222222222222"
	testCompanyID   = "66666666-6666-6666-6666-666666666666"
)

func TestNewNotification(t *testing.T) {
	n, err := NewNotification(NewNotificationParams{
		ID:      NotificationID(testNotifID),
		UserID:  shared.UserID(testRecipientID),
		Title:   "  New Application Received  ",
		Message: "A student has applied.",
		Type:    TypeNewApplication,
	})
	require.NoError(t, err)

	assert.Equal(t, "New Application Received", n.Title)
	assert.Equal(t, RelatedNone, n.RelatedEntityType, "empty related type defaults to None")
	assert.False(t, n.IsRead)
	assert.True(t, n.ReadAt.IsZero())
	assert.False(t, n.CreatedAt.IsZero())
}

func TestNewNotification_Validation(t *testing.T) {
	base := NewNotificationParams{
		ID:      NotificationID(testNotifID),
		UserID:  shared.UserID(testRecipientID),
		Title:   "Title",
		Message: "Message",
		Type:    TypeSystem,
	}

	missingTitle := base
	missingTitle.Title = "   "
	_, err := NewNotification(missingTitle)
	assert.Error(t, err)

	badType := base
	badType.Type = "Telegram"
	_, err = NewNotification(badType)
	assert.Error(t, err)

	badRecipient := base
	badRecipient.UserID = "nope"
	_, err = NewNotification(badRecipient)
	assert.Error(t, err)
}

func TestNewNotification_RejectsMismatchedMetadata(t *testing.T) {
	_, err := NewNotification(NewNotificationParams{
		ID:       NotificationID(testNotifID),
		UserID:   shared.UserID(testRecipientID),
		Title:    "Title",
		Message:  "Message",
		Type:     TypeNewApplication,
		Metadata: SkillMatchMetadata{Company: "Acme"},
	})
	assert.Error(t, err)
}

func TestMarkRead_Idempotent(t *testing.T) {
	n, err := NewNotification(NewNotificationParams{
		ID:      NotificationID(testNotifID),
		UserID:  shared.UserID(testRecipientID),
		Title:   "Title",
		Message: "Message",
		Type:    TypeSystem,
	})
	require.NoError(t, err)

	n.MarkRead()
	require.True(t, n.IsRead)
	firstReadAt := n.ReadAt

	n.MarkRead()
	assert.Equal(t, firstReadAt, n.ReadAt)
}

func TestForStatusUpdate(t *testing.T) {
	n, err := ForStatusUpdate(
		NotificationID(testNotifID),
		shared.UserID(testRecipientID),
		shared.ApplicationID(testAppID),
		"Backend Intern",
		"Applied", "Shortlisted",
		"great profile",
	)
	require.NoError(t, err)

	assert.Equal(t, TypeApplicationStatusUpdate, n.Type)
	assert.Equal(t, "Application Status Updated: Shortlisted", n.Title)
	assert.Equal(t, "Congratulations! Your application has been shortlisted", n.Message)
	assert.Equal(t, RelatedApplication, n.RelatedEntityType)
	assert.Equal(t, testAppID, n.RelatedEntityID)

	meta, ok := n.Metadata.(StatusUpdateMetadata)
	require.True(t, ok)
	assert.Equal(t, "Applied", meta.OldStatus)
	assert.Equal(t, "Shortlisted", meta.NewStatus)
	assert.Equal(t, "Backend Intern", meta.InternshipTitle)
}

func TestStatusMessage_FallsBackForUnknownStatus(t *testing.T) {
	assert.Equal(t, "Your application is under review", StatusMessage("Under Review"))
	assert.Contains(t, StatusMessage("Archived"), "Archived")
}

func TestForNewApplication_AnonymousStudent(t *testing.T) {
	n, err := ForNewApplication(
		NotificationID(testNotifID),
		shared.UserID(testRecipientID),
		shared.ApplicationID(testAppID),
		"Backend Intern",
		"",
	)
	require.NoError(t, err)

	meta, ok := n.Metadata.(NewApplicationMetadata)
	require.True(t, ok)
	assert.Equal(t, "A student", meta.StudentName)
}

func TestForInternshipApproval(t *testing.T) {
	approved, err := ForInternshipApproval(
		NotificationID(testNotifID),
		shared.UserID(testRecipientID),
		shared.InternshipID(testPostingID),
		"Backend Intern",
		true, "",
	)
	require.NoError(t, err)
	assert.Equal(t, "Internship Approved", approved.Title)
	assert.Equal(t, RelatedInternship, approved.RelatedEntityType)

	rejected, err := ForInternshipApproval(
		NotificationID(testNotifID),
		shared.UserID(testRecipientID),
		shared.InternshipID(testPostingID),
		"Backend Intern",
		false, "duplicate posting",
	)
	require.NoError(t, err)
	assert.Equal(t, "Internship Rejected", rejected.Title)
	assert.Contains(t, rejected.Message, "duplicate posting")
}

func TestForSkillMatch(t *testing.T) {
	n, err := ForSkillMatch(
		NotificationID(testNotifID),
		shared.UserID(testRecipientID),
		shared.InternshipID(testPostingID),
		"Backend Intern",
		"Acme",
		shared.SkillSet{"Go", "PostgreSQL"},
	)
	require.NoError(t, err)

	assert.Equal(t, TypeSkillMatch, n.Type)
	meta, ok := n.Metadata.(SkillMatchMetadata)
	require.True(t, ok)
	assert.Equal(t, shared.SkillSet{"Go", "PostgreSQL"}, meta.Skills)
	assert.Equal(t, "Acme", meta.Company)
}

func TestMetadataRoundTrip(t *testing.T) {
	original := StatusUpdateMetadata{
		OldStatus:       "Applied",
		NewStatus:       "Under Review",
		InternshipTitle: "Backend Intern",
	}

	data, err := EncodeMetadata(original)
	require.NoError(t, err)

	decoded, err := DecodeMetadata(TypeApplicationStatusUpdate, data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeMetadata_EdgeCases(t *testing.T) {
	decoded, err := DecodeMetadata(TypeSystem, nil)
	assert.NoError(t, err)
	assert.Nil(t, decoded)

	_, err = DecodeMetadata("Telegram", []byte(`{}`))
	assert.Error(t, err)

	data, err := EncodeMetadata(nil)
	assert.NoError(t, err)
	assert.Nil(t, data)
}
