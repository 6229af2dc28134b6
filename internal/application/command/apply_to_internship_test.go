package command

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

const (
	internshipID  = "22222222-2222-2222-2222-222222222222"
	studentID     = "33333333-3333-3333-3333-333333333333"
	studentUserID = "44444444-4444-4444-4444-444444444444"
	companyID     = "66666666-6666-6666-6666-666666666666"
	companyUserID = "55555555-5555-5555-5555-555555555555"
	adminUserID   = "77777777-7777-7777-7777-777777777777"
)

type applyFixture struct {
	handler      *ApplyToInternshipHandler
	applications *fakeApplicationRepo
	internships  *fakeInternshipRepo
	students     *fakeStudentDirectory
	publisher    *capturePublisher
	posting      *internship.Internship
}

func newApplyFixture(t *testing.T, questions ...internship.Question) *applyFixture {
	t.Helper()

	posting, err := internship.NewInternship(internship.NewInternshipParams{
		ID:                  shared.InternshipID(internshipID),
		CompanyID:           shared.CompanyID(companyID),
		CreatedBy:           shared.UserID(companyUserID),
		Title:               "Backend Intern",
		ApplicationDeadline: time.Now().UTC().Add(7 * 24 * time.Hour),
		Questions:           questions,
	})
	require.NoError(t, err)
	require.NoError(t, posting.Review(true, shared.UserID(adminUserID), ""))

	applicant, err := student.NewStudent(student.NewStudentParams{
		ID:        shared.StudentID(studentID),
		UserID:    shared.UserID(studentUserID),
		FirstName: "Aliya",
		LastName:  "Nur",
		Skills:    shared.SkillSet{"Go"},
	})
	require.NoError(t, err)

	applications := newFakeApplicationRepo()
	internships := newFakeInternshipRepo()
	internships.add(posting)
	students := newFakeStudentDirectory(applicant)
	publisher := &capturePublisher{}

	return &applyFixture{
		handler:      NewApplyToInternshipHandler(applications, internships, students, publisher, nil),
		applications: applications,
		internships:  internships,
		students:     students,
		publisher:    publisher,
		posting:      posting,
	}
}

func applyCommand() ApplyToInternshipCommand {
	return ApplyToInternshipCommand{
		InternshipID: shared.InternshipID(internshipID),
		StudentID:    shared.StudentID(studentID),
		ResumeURL:    "https://files.example.com/resume.pdf",
	}
}

func TestApply_Succeeds(t *testing.T) {
	f := newApplyFixture(t)

	result, err := f.handler.Handle(context.Background(), applyCommand())
	require.NoError(t, err)

	assert.Equal(t, application.StatusApplied, result.Status)
	assert.False(t, result.ReappliedAfterWithdrawal)
	assert.True(t, result.ApplicationID.IsValid())

	stored, err := f.applications.GetByID(context.Background(), result.ApplicationID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 1)

	// The posting's counter was bumped.
	posting, err := f.internships.GetByID(context.Background(), shared.InternshipID(internshipID))
	require.NoError(t, err)
	assert.Equal(t, 1, posting.ApplicationsCount)

	// One creation event was published.
	events := f.publisher.published()
	require.Len(t, events, 1)
	created, ok := events[0].(shared.ApplicationCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, result.ApplicationID.String(), created.ApplicationID)
	assert.Equal(t, shared.EventApplicationCreated, created.EventType())
}

func TestApply_DuplicateIsRejected(t *testing.T) {
	f := newApplyFixture(t)

	_, err := f.handler.Handle(context.Background(), applyCommand())
	require.NoError(t, err)

	_, err = f.handler.Handle(context.Background(), applyCommand())
	assert.ErrorIs(t, err, shared.ErrAlreadyApplied)
	assert.Equal(t, 1, f.applications.count())
}

func TestApply_WithdrawnApplicationIsPurgedOnReapply(t *testing.T) {
	f := newApplyFixture(t)
	ctx := context.Background()

	first, err := f.handler.Handle(ctx, applyCommand())
	require.NoError(t, err)

	// Withdraw the first application.
	app, err := f.applications.GetByID(ctx, first.ApplicationID)
	require.NoError(t, err)
	actor := shared.Actor{UserID: shared.UserID(studentUserID), Type: shared.ActorStudent}
	require.NoError(t, app.Withdraw(actor, ""))
	require.NoError(t, f.applications.Update(ctx, app))

	second, err := f.handler.Handle(ctx, applyCommand())
	require.NoError(t, err)

	assert.True(t, second.ReappliedAfterWithdrawal)
	assert.NotEqual(t, first.ApplicationID, second.ApplicationID)
	assert.Equal(t, 1, f.applications.count(), "the withdrawn application was purged")

	// The fresh application starts with a clean audit trail.
	fresh, err := f.applications.GetByID(ctx, second.ApplicationID)
	require.NoError(t, err)
	assert.Len(t, fresh.StatusHistory, 1)
	assert.Equal(t, application.StatusApplied, fresh.Status)
}

func TestApply_NonWithdrawnApplicationBlocksReapply(t *testing.T) {
	f := newApplyFixture(t)
	ctx := context.Background()

	first, err := f.handler.Handle(ctx, applyCommand())
	require.NoError(t, err)

	// Reject the application; rejection is terminal but does not allow re-applying.
	app, err := f.applications.GetByID(ctx, first.ApplicationID)
	require.NoError(t, err)
	actor := shared.Actor{UserID: shared.UserID(companyUserID), Type: shared.ActorCompany}
	require.NoError(t, app.TransitionTo(application.StatusRejected, actor, ""))
	require.NoError(t, f.applications.Update(ctx, app))

	_, err = f.handler.Handle(ctx, applyCommand())
	assert.ErrorIs(t, err, shared.ErrAlreadyApplied)
}

func TestApply_IneligiblePosting(t *testing.T) {
	f := newApplyFixture(t)
	f.posting.IsActive = false
	f.internships.add(f.posting)

	_, err := f.handler.Handle(context.Background(), applyCommand())
	assert.ErrorIs(t, err, shared.ErrInternshipUnavailable)
	assert.Equal(t, 0, f.applications.count())
	assert.Empty(t, f.publisher.published())
}

func TestApply_PastDeadline(t *testing.T) {
	f := newApplyFixture(t)
	f.posting.ApplicationDeadline = time.Now().UTC().Add(-time.Minute)
	f.internships.add(f.posting)

	_, err := f.handler.Handle(context.Background(), applyCommand())
	assert.ErrorIs(t, err, shared.ErrDeadlinePassed)
}

func TestApply_MissingRequiredAnswer(t *testing.T) {
	f := newApplyFixture(t, internship.Question{
		QuestionID:   "q1",
		QuestionType: internship.QuestionText,
		IsRequired:   true,
	})

	_, err := f.handler.Handle(context.Background(), applyCommand())
	assert.ErrorIs(t, err, shared.ErrMissingRequiredAnswer)

	cmd := applyCommand()
	cmd.Answers = []application.Answer{{
		QuestionID:   "q1",
		QuestionType: internship.QuestionText,
		AnswerText:   "Because Go.",
	}}
	_, err = f.handler.Handle(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestApply_PublishFailureIsLoggedNotFatal(t *testing.T) {
	f := newApplyFixture(t)
	f.publisher.fail = errors.New("bus unavailable")

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := NewApplyToInternshipHandler(f.applications, f.internships, f.students, f.publisher, logger)

	result, err := handler.Handle(context.Background(), applyCommand())
	require.NoError(t, err, "a dead bus must not fail the submission")
	assert.True(t, result.ApplicationID.IsValid())
	assert.Equal(t, 1, f.applications.count())

	assert.Contains(t, logs.String(), "failed to publish application created event")
	assert.Contains(t, logs.String(), "bus unavailable")
}

func TestApply_UnknownInternship(t *testing.T) {
	f := newApplyFixture(t)

	cmd := applyCommand()
	cmd.InternshipID = "99999999-9999-9999-9999-999999999999"
	_, err := f.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInternshipNotFound)
}

func TestApply_Validation(t *testing.T) {
	f := newApplyFixture(t)

	cmd := applyCommand()
	cmd.ResumeURL = ""
	_, err := f.handler.Handle(context.Background(), cmd)
	assert.Error(t, err)

	cmd = applyCommand()
	cmd.StudentID = ""
	_, err = f.handler.Handle(context.Background(), cmd)
	assert.Error(t, err)
}
