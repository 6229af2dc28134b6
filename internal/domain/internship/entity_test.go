package internship

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

const (
	testID        = "22222222-2222-2222-2222-222222222222"
	testCompanyID = "66666666-6666-6666-6666-666666666666"
	testCreatorID = "55555555-5555-5555-5555-555555555555"
	testAdminID   = "44444444-4444-4444-4444-444444444444"
)

func newPosting(t *testing.T) *Internship {
	t.Helper()
	posting, err := NewInternship(NewInternshipParams{
		ID:                  shared.InternshipID(testID),
		CompanyID:           shared.CompanyID(testCompanyID),
		CreatedBy:           shared.UserID(testCreatorID),
		Title:               "Backend Intern",
		ApplicationDeadline: time.Now().UTC().Add(14 * 24 * time.Hour),
		SkillsRequired:      shared.SkillSet{"Go", "PostgreSQL"},
	})
	require.NoError(t, err)
	return posting
}

func TestNewInternship_InitialState(t *testing.T) {
	posting := newPosting(t)

	assert.True(t, posting.IsActive)
	assert.Equal(t, ApprovalPending, posting.ApprovalStatus)
	assert.Equal(t, 0, posting.ApplicationsCount)
	assert.False(t, posting.IsAvailable(), "pending postings are not available")
}

func TestNewInternship_Validation(t *testing.T) {
	params := NewInternshipParams{
		ID:                  shared.InternshipID(testID),
		CompanyID:           shared.CompanyID(testCompanyID),
		CreatedBy:           shared.UserID(testCreatorID),
		Title:               "",
		ApplicationDeadline: time.Now().Add(time.Hour),
	}
	_, err := NewInternship(params)
	assert.ErrorIs(t, err, ErrInvalidTitle)

	params.Title = "Backend Intern"
	params.ApplicationDeadline = time.Time{}
	_, err = NewInternship(params)
	assert.ErrorIs(t, err, ErrNoDeadline)

	params.ApplicationDeadline = time.Now().Add(time.Hour)
	params.Questions = []Question{{QuestionID: "q1", QuestionType: "essay"}}
	_, err = NewInternship(params)
	assert.ErrorIs(t, err, ErrInvalidQuestionType)
}

func TestQuestionTypeIsValid(t *testing.T) {
	for _, qt := range []QuestionType{QuestionText, QuestionTextarea, QuestionMultipleChoice, QuestionFile} {
		assert.True(t, qt.IsValid(), qt.String())
	}
	assert.False(t, QuestionType("essay").IsValid())
}

func TestNewInternship_AcceptsTextareaQuestions(t *testing.T) {
	params := NewInternshipParams{
		ID:                  shared.InternshipID(testID),
		CompanyID:           shared.CompanyID(testCompanyID),
		CreatedBy:           shared.UserID(testCreatorID),
		Title:               "Backend Intern",
		ApplicationDeadline: time.Now().Add(time.Hour),
		Questions:           []Question{{QuestionID: "q1", QuestionType: QuestionTextarea, IsRequired: true}},
	}
	posting, err := NewInternship(params)
	require.NoError(t, err)
	require.Len(t, posting.Questions, 1)
	assert.Equal(t, QuestionTextarea, posting.Questions[0].QuestionType)
}

func TestReview(t *testing.T) {
	posting := newPosting(t)

	err := posting.Review(true, shared.UserID(testAdminID), "looks good")
	require.NoError(t, err)

	assert.Equal(t, ApprovalApproved, posting.ApprovalStatus)
	assert.Equal(t, shared.UserID(testAdminID), posting.ReviewedBy)
	assert.False(t, posting.ReviewedAt.IsZero())
	assert.True(t, posting.IsAvailable())

	// Re-review overwrites the previous decision.
	err = posting.Review(false, shared.UserID(testAdminID), "spam")
	require.NoError(t, err)
	assert.Equal(t, ApprovalRejected, posting.ApprovalStatus)
	assert.Equal(t, "spam", posting.ReviewNotes)
	assert.False(t, posting.IsAvailable())
}

func TestDeadlinePassed(t *testing.T) {
	posting := newPosting(t)
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posting.ApplicationDeadline = deadline

	assert.False(t, posting.DeadlinePassed(deadline.Add(-time.Second)))
	assert.True(t, posting.DeadlinePassed(deadline), "the deadline instant counts as passed")
	assert.True(t, posting.DeadlinePassed(deadline.Add(time.Second)))
}

func TestRequiredQuestions(t *testing.T) {
	posting := newPosting(t)
	posting.Questions = []Question{
		{QuestionID: "q1", QuestionType: QuestionText, IsRequired: true},
		{QuestionID: "q2", QuestionType: QuestionText, IsRequired: false},
		{QuestionID: "q3", QuestionType: QuestionFile, IsRequired: true},
	}

	required := posting.RequiredQuestions()
	require.Len(t, required, 2)
	assert.Equal(t, "q1", required[0].QuestionID)
	assert.Equal(t, "q3", required[1].QuestionID)
}

func TestRecordApplication(t *testing.T) {
	posting := newPosting(t)
	posting.RecordApplication()
	posting.RecordApplication()
	assert.Equal(t, 2, posting.ApplicationsCount)
}

func TestOwnedBy(t *testing.T) {
	posting := newPosting(t)
	assert.True(t, posting.OwnedBy(shared.CompanyID(testCompanyID)))
	assert.False(t, posting.OwnedBy(shared.CompanyID(testAdminID)))
}
