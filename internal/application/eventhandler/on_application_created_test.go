package eventhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

func TestOnApplicationCreated_NotifiesPoster(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnApplicationCreatedHandler(
		newPostingStore(testPosting(t)),
		&studentStore{students: []*student.Student{testStudent(t, studentID, studentUserID, "Go")}},
		inbox,
		nil,
		DefaultApplicationCreatedConfig(),
	)

	err := handler.Handle(shared.NewApplicationCreatedEvent(appID, internshipID, studentID))
	require.NoError(t, err)

	notifs := inbox.all()
	require.Len(t, notifs, 1)
	n := notifs[0]
	assert.Equal(t, shared.UserID(companyUserID), n.UserID)
	assert.Equal(t, notification.TypeNewApplication, n.Type)
	assert.Equal(t, "New Application Received", n.Title)
	assert.Equal(t, appID, n.RelatedEntityID)

	// The default config keeps the applicant anonymous.
	meta, ok := n.Metadata.(notification.NewApplicationMetadata)
	require.True(t, ok)
	assert.Equal(t, "A student", meta.StudentName)
	assert.Equal(t, "Backend Intern", meta.InternshipTitle)
}

func TestOnApplicationCreated_RevealsStudentNameWhenConfigured(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnApplicationCreatedHandler(
		newPostingStore(testPosting(t)),
		&studentStore{students: []*student.Student{testStudent(t, studentID, studentUserID, "Go")}},
		inbox,
		nil,
		ApplicationCreatedConfig{RevealStudentName: true},
	)

	err := handler.Handle(shared.NewApplicationCreatedEvent(appID, internshipID, studentID))
	require.NoError(t, err)

	notifs := inbox.all()
	require.Len(t, notifs, 1)
	meta := notifs[0].Metadata.(notification.NewApplicationMetadata)
	assert.Equal(t, "Aliya Nur", meta.StudentName)
}

func TestOnApplicationCreated_UnknownPostingFails(t *testing.T) {
	handler := NewOnApplicationCreatedHandler(
		newPostingStore(),
		&studentStore{},
		&inboxRecorder{},
		nil,
		DefaultApplicationCreatedConfig(),
	)

	err := handler.Handle(shared.NewApplicationCreatedEvent(appID, internshipID, studentID))
	assert.ErrorIs(t, err, shared.ErrInternshipNotFound)
}

func TestOnApplicationCreated_IgnoresForeignEvents(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnApplicationCreatedHandler(
		newPostingStore(testPosting(t)),
		&studentStore{},
		inbox,
		nil,
		DefaultApplicationCreatedConfig(),
	)

	err := handler.Handle(shared.NewCompanyVerifiedEvent(companyID, companyUserID, "Acme", true, "", adminUserID))
	assert.NoError(t, err)
	assert.Zero(t, inbox.size())
}

func TestOnApplicationCreated_EventType(t *testing.T) {
	handler := NewOnApplicationCreatedHandler(newPostingStore(), &studentStore{}, &inboxRecorder{}, nil, DefaultApplicationCreatedConfig())
	assert.Equal(t, shared.EventApplicationCreated, handler.EventType())
}
