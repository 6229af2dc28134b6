package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

const (
	testAppID        = "11111111-1111-1111-1111-111111111111"
	testInternshipID = "22222222-2222-2222-2222-222222222222"
	testStudentID    = "33333333-3333-3333-3333-333333333333"
	testUserID       = "44444444-4444-4444-4444-444444444444"
	testCompanyUser  = "55555555-5555-5555-5555-555555555555"
)

func validParams() NewApplicationParams {
	return NewApplicationParams{
		ID:           shared.ApplicationID(testAppID),
		InternshipID: shared.InternshipID(testInternshipID),
		StudentID:    shared.StudentID(testStudentID),
		SubmittedBy:  shared.UserID(testUserID),
		Resume:       Resume{FileURL: "https://files.example.com/resume.pdf"},
	}
}

func studentActor() shared.Actor {
	return shared.Actor{UserID: shared.UserID(testUserID), Type: shared.ActorStudent}
}

func companyActor() shared.Actor {
	return shared.Actor{UserID: shared.UserID(testCompanyUser), Type: shared.ActorCompany}
}

func TestNewApplication_InitialState(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	assert.Equal(t, StatusApplied, app.Status)
	assert.Equal(t, 1, app.Version)
	assert.False(t, app.AppliedAt.IsZero())

	require.Len(t, app.StatusHistory, 1)
	first := app.StatusHistory[0]
	assert.Equal(t, StatusApplied, first.Status)
	assert.Equal(t, shared.UserID(testUserID), first.ChangedBy)
	assert.Equal(t, shared.ActorStudent, first.ChangedByType)
	assert.NotEmpty(t, first.Notes)
}

func TestNewApplication_RequiresResume(t *testing.T) {
	params := validParams()
	params.Resume = Resume{FileURL: "   "}

	_, err := NewApplication(params)
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestNewApplication_RejectsMalformedIDs(t *testing.T) {
	params := validParams()
	params.InternshipID = "not-a-uuid"

	_, err := NewApplication(params)
	assert.Error(t, err)
}

func TestTransitionTo_AppendsHistory(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	err = app.TransitionTo(StatusUnderReview, companyActor(), "")
	require.NoError(t, err)

	assert.Equal(t, StatusUnderReview, app.Status)
	require.Len(t, app.StatusHistory, 2)

	last := app.LastChange()
	assert.Equal(t, StatusUnderReview, last.Status)
	assert.Equal(t, shared.ActorCompany, last.ChangedByType)
	assert.Equal(t, "Status changed to Under Review", last.Notes)

	// First entry is untouched
	assert.Equal(t, StatusApplied, app.StatusHistory[0].Status)
}

func TestTransitionTo_KeepsCustomNotes(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	err = app.TransitionTo(StatusShortlisted, companyActor(), "Strong portfolio")
	require.NoError(t, err)

	assert.Equal(t, "Strong portfolio", app.LastChange().Notes)
}

func TestTransitionTo_FreeOrderingAmongNonTerminal(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	// Forward then backward: the engine does not restrict ordering while
	// the application is in flight.
	require.NoError(t, app.TransitionTo(StatusInterviewScheduled, companyActor(), ""))
	require.NoError(t, app.TransitionTo(StatusUnderReview, companyActor(), ""))
	require.NoError(t, app.TransitionTo(StatusOfferExtended, companyActor(), ""))

	assert.Equal(t, StatusOfferExtended, app.Status)
	assert.Len(t, app.StatusHistory, 4)
}

func TestLifecycle_HiringWalkToAccepted(t *testing.T) {
	// Full hiring pipeline: each step appends one entry, and Accepted locks
	// the application against any further change.
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	steps := []Status{StatusShortlisted, StatusInterviewScheduled, StatusOfferExtended}
	for _, step := range steps {
		require.NoError(t, app.TransitionTo(step, companyActor(), ""))
	}
	require.NoError(t, app.TransitionTo(StatusAccepted, studentActor(), "Offer accepted"))

	assert.Equal(t, StatusAccepted, app.Status)
	require.Len(t, app.StatusHistory, 5)

	walked := make([]Status, 0, len(app.StatusHistory))
	for _, change := range app.StatusHistory {
		walked = append(walked, change.Status)
	}
	assert.Equal(t, []Status{
		StatusApplied, StatusShortlisted, StatusInterviewScheduled,
		StatusOfferExtended, StatusAccepted,
	}, walked)

	err = app.TransitionTo(StatusRejected, companyActor(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Equal(t, StatusAccepted, app.Status)
	assert.Len(t, app.StatusHistory, 5)
}

func TestTransitionTo_TerminalStatusesAreLocked(t *testing.T) {
	terminal := []Status{StatusRejected, StatusAccepted, StatusWithdrawn}

	for _, status := range terminal {
		t.Run(status.String(), func(t *testing.T) {
			app, err := NewApplication(validParams())
			require.NoError(t, err)
			require.NoError(t, app.TransitionTo(status, companyActor(), ""))

			historyLen := len(app.StatusHistory)

			err = app.TransitionTo(StatusUnderReview, companyActor(), "")
			assert.ErrorIs(t, err, shared.ErrInvalidTransition)
			assert.Equal(t, status, app.Status)
			assert.Len(t, app.StatusHistory, historyLen)
		})
	}
}

func TestTransitionTo_RejectsUnknownStatus(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	err = app.TransitionTo(Status("Pending"), companyActor(), "")
	assert.Error(t, err)
	assert.Equal(t, StatusApplied, app.Status)
}

func TestCanTransitionTo(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	assert.True(t, app.CanTransitionTo(StatusRejected))
	assert.False(t, app.CanTransitionTo(Status("bogus")))

	require.NoError(t, app.TransitionTo(StatusAccepted, companyActor(), ""))
	assert.False(t, app.CanTransitionTo(StatusUnderReview))
}

func TestWithdraw(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	err = app.Withdraw(studentActor(), "")
	require.NoError(t, err)

	assert.Equal(t, StatusWithdrawn, app.Status)
	assert.True(t, app.IsWithdrawn())
	assert.True(t, app.IsTerminal())
	assert.Equal(t, "Application withdrawn by student", app.LastChange().Notes)
}

func TestWithdraw_CompanyCannotWithdraw(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	err = app.Withdraw(companyActor(), "changed our mind")
	assert.Error(t, err)
	assert.Equal(t, StatusApplied, app.Status)
}

func TestBelongsTo(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	assert.True(t, app.BelongsTo(shared.StudentID(testStudentID)))
	assert.False(t, app.BelongsTo(shared.StudentID(testUserID)))
}

func TestClone_IsDeep(t *testing.T) {
	app, err := NewApplication(validParams())
	require.NoError(t, err)

	clone := app.Clone()
	require.NoError(t, clone.TransitionTo(StatusUnderReview, companyActor(), ""))

	assert.Equal(t, StatusApplied, app.Status)
	assert.Len(t, app.StatusHistory, 1)
	assert.Len(t, clone.StatusHistory, 2)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusWithdrawn.IsTerminal())

	assert.False(t, StatusApplied.IsTerminal())
	assert.False(t, StatusUnderReview.IsTerminal())
	assert.False(t, StatusShortlisted.IsTerminal())
	assert.False(t, StatusInterviewScheduled.IsTerminal())
	assert.False(t, StatusOfferExtended.IsTerminal())
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Status("applied").IsValid(), "status values are case-sensitive")
	assert.False(t, Status("").IsValid())
}
