package eventhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

func reviewedEvent(approved bool) shared.InternshipReviewedEvent {
	return shared.NewInternshipReviewedEvent(
		internshipID, companyID, companyUserID,
		"Backend Intern", approved, "", adminUserID,
	)
}

func TestOnInternshipReviewed_ApprovalNotifiesPoster(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnInternshipReviewedHandler(
		newPostingStore(testPosting(t)),
		&studentStore{},
		&companyStore{companies: []*company.Company{testCompany(t)}},
		inbox,
		nil,
		InternshipReviewedConfig{SkillMatchEnabled: false},
	)

	err := handler.Handle(reviewedEvent(true))
	require.NoError(t, err)

	notifs := inbox.all()
	require.Len(t, notifs, 1)
	n := notifs[0]
	assert.Equal(t, shared.UserID(companyUserID), n.UserID)
	assert.Equal(t, notification.TypeInternshipApproval, n.Type)
	assert.Equal(t, "Internship Approved", n.Title)
}

func TestOnInternshipReviewed_RejectionNotifiesPoster(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnInternshipReviewedHandler(
		newPostingStore(testPosting(t)),
		&studentStore{},
		&companyStore{},
		inbox,
		nil,
		InternshipReviewedConfig{SkillMatchEnabled: false},
	)

	event := shared.NewInternshipReviewedEvent(
		internshipID, companyID, companyUserID,
		"Backend Intern", false, "duplicate posting", adminUserID,
	)
	err := handler.Handle(event)
	require.NoError(t, err)

	notifs := inbox.all()
	require.Len(t, notifs, 1)
	assert.Equal(t, "Internship Rejected", notifs[0].Title)

	meta := notifs[0].Metadata.(notification.InternshipApprovalMetadata)
	assert.False(t, meta.IsApproved)
	assert.Equal(t, "duplicate posting", meta.Reason)
}

func TestOnInternshipReviewed_FansOutToMatchingStudents(t *testing.T) {
	inbox := &inboxRecorder{}
	matching := testStudent(t, studentID, studentUserID, "Go", "SQL")
	nonMatching := testStudent(t,
		"99999999-9999-9999-9999-999999999999",
		"88888888-8888-8888-8888-888888888888",
		"Photoshop",
	)

	handler := NewOnInternshipReviewedHandler(
		newPostingStore(testPosting(t, "Go")),
		&studentStore{students: []*student.Student{matching, nonMatching}},
		&companyStore{companies: []*company.Company{testCompany(t)}},
		inbox,
		nil,
		InternshipReviewedConfig{SkillMatchEnabled: true, FanOutTimeout: 5 * time.Second},
	)

	err := handler.Handle(reviewedEvent(true))
	require.NoError(t, err)

	// The poster notification is synchronous, the fan-out is not.
	require.Eventually(t, func() bool { return inbox.size() == 2 }, 2*time.Second, 10*time.Millisecond)

	var match *notification.Notification
	for _, n := range inbox.all() {
		if n.Type == notification.TypeSkillMatch {
			match = n
		}
	}
	require.NotNil(t, match)
	assert.Equal(t, shared.UserID(studentUserID), match.UserID)
	assert.Equal(t, "New Internship Matching Your Skills", match.Title)

	meta := match.Metadata.(notification.SkillMatchMetadata)
	assert.Equal(t, "Acme", meta.Company)
	assert.Equal(t, shared.SkillSet{"Go"}, meta.Skills)
}

func TestOnInternshipReviewed_FanOutCapsRecipients(t *testing.T) {
	inbox := &inboxRecorder{}
	students := []*student.Student{
		testStudent(t, "99999999-9999-9999-9999-999999999991", "99999999-9999-9999-9999-999999999901", "Go"),
		testStudent(t, "99999999-9999-9999-9999-999999999992", "99999999-9999-9999-9999-999999999902", "Go"),
		testStudent(t, "99999999-9999-9999-9999-999999999993", "99999999-9999-9999-9999-999999999903", "Go"),
	}

	handler := NewOnInternshipReviewedHandler(
		newPostingStore(testPosting(t, "Go")),
		&studentStore{students: students},
		&companyStore{companies: []*company.Company{testCompany(t)}},
		inbox,
		nil,
		InternshipReviewedConfig{SkillMatchEnabled: true, FanOutTimeout: 5 * time.Second, MaxRecipients: 2},
	)

	err := handler.Handle(reviewedEvent(true))
	require.NoError(t, err)

	// Poster notification plus two capped skill matches.
	require.Eventually(t, func() bool { return inbox.size() == 3 }, 2*time.Second, 10*time.Millisecond)

	skillMatches := 0
	for _, n := range inbox.all() {
		if n.Type == notification.TypeSkillMatch {
			skillMatches++
		}
	}
	assert.Equal(t, 2, skillMatches)
}

func TestOnInternshipReviewed_NoFanOutOnRejection(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnInternshipReviewedHandler(
		newPostingStore(testPosting(t, "Go")),
		&studentStore{students: []*student.Student{testStudent(t, studentID, studentUserID, "Go")}},
		&companyStore{},
		inbox,
		nil,
		DefaultInternshipReviewedConfig(),
	)

	err := handler.Handle(reviewedEvent(false))
	require.NoError(t, err)

	// Only the poster notification, ever.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, inbox.size())
}

func TestOnInternshipReviewed_NoFanOutWithoutRequiredSkills(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnInternshipReviewedHandler(
		newPostingStore(testPosting(t)),
		&studentStore{students: []*student.Student{testStudent(t, studentID, studentUserID, "Go")}},
		&companyStore{},
		inbox,
		nil,
		DefaultInternshipReviewedConfig(),
	)

	err := handler.Handle(reviewedEvent(true))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, inbox.size())
}

func TestOnInternshipReviewed_IgnoresForeignEvents(t *testing.T) {
	inbox := &inboxRecorder{}
	handler := NewOnInternshipReviewedHandler(newPostingStore(), &studentStore{}, &companyStore{}, inbox, nil, DefaultInternshipReviewedConfig())

	err := handler.Handle(shared.NewApplicationCreatedEvent(appID, internshipID, studentID))
	assert.NoError(t, err)
	assert.Zero(t, inbox.size())
}
