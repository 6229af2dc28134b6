// Package internship contains the internship posting model as seen by the
// application core. Postings are authored elsewhere; this service reads them
// for eligibility checks, updates their application counters, and moves them
// through admin review.
package internship

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// ApprovalStatus is the admin review state of a posting.
type ApprovalStatus string

const (
	// ApprovalPending - posting awaits admin review.
	ApprovalPending ApprovalStatus = "Pending"
	// ApprovalApproved - posting passed review and is publicly visible.
	ApprovalApproved ApprovalStatus = "Approved"
	// ApprovalRejected - posting failed review.
	ApprovalRejected ApprovalStatus = "Rejected"
)

// IsValid checks that the approval status is a known value.
func (a ApprovalStatus) IsValid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a ApprovalStatus) String() string { return string(a) }

// QuestionType classifies an application question.
type QuestionType string

const (
	// QuestionText - short free-form text answer.
	QuestionText QuestionType = "text"
	// QuestionTextarea - long free-form text answer.
	QuestionTextarea QuestionType = "textarea"
	// QuestionMultipleChoice - one or more options selected from a fixed list.
	QuestionMultipleChoice QuestionType = "multiple_choice"
	// QuestionFile - answer is an uploaded file, collected by the upload
	// service outside this core.
	QuestionFile QuestionType = "file"
)

// IsValid checks that the question type is a known value.
func (q QuestionType) IsValid() bool {
	switch q {
	case QuestionText, QuestionTextarea, QuestionMultipleChoice, QuestionFile:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (q QuestionType) String() string { return string(q) }

// ══════════════════════════════════════════════════════════════════════════════
// QUESTION
// ══════════════════════════════════════════════════════════════════════════════

// Question is a screening question attached to a posting.
type Question struct {
	QuestionID   string
	QuestionText string
	QuestionType QuestionType
	IsRequired   bool
	// Options holds the selectable values for multiple_choice questions.
	Options []string
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: INTERNSHIP
// ══════════════════════════════════════════════════════════════════════════════

// Internship is a posting a student can apply to.
type Internship struct {
	// ID - unique posting identifier (UUID in string form).
	ID shared.InternshipID

	// CompanyID - company profile that owns the posting.
	CompanyID shared.CompanyID

	// CreatedBy - user account that authored the posting. Notifications about
	// the posting go to this account.
	CreatedBy shared.UserID

	// Title - human-readable posting title.
	Title string

	// IsActive - whether the company keeps the posting open.
	IsActive bool

	// ApprovalStatus - admin review state.
	ApprovalStatus ApprovalStatus

	// ApplicationDeadline - last instant at which applying is allowed.
	// Applying at exactly the deadline is rejected.
	ApplicationDeadline time.Time

	// Questions - screening questions applicants must answer.
	Questions []Question

	// SkillsRequired - skill names used for match notifications.
	SkillsRequired shared.SkillSet

	// ApplicationsCount - number of applications received so far.
	ApplicationsCount int

	// ReviewedBy - admin who performed the review, empty while pending.
	ReviewedBy shared.UserID

	// ReviewedAt - when the review happened.
	ReviewedAt time.Time

	// ReviewNotes - optional reviewer remarks (rejection reason).
	ReviewNotes string

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTitle - posting title is empty or too long.
	ErrInvalidTitle = errors.New("invalid internship title: must be 1-200 chars")

	// ErrInvalidApprovalStatus - unknown approval status value.
	ErrInvalidApprovalStatus = errors.New("invalid approval status")

	// ErrInvalidQuestionType - unknown question type value.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrNoDeadline - posting has no application deadline set.
	ErrNoDeadline = errors.New("internship has no application deadline")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewInternshipParams holds the fields needed to register a posting snapshot.
type NewInternshipParams struct {
	ID                  shared.InternshipID
	CompanyID           shared.CompanyID
	CreatedBy           shared.UserID
	Title               string
	ApplicationDeadline time.Time
	Questions           []Question
	SkillsRequired      shared.SkillSet
}

// NewInternship creates a posting in its initial state: active, pending review.
func NewInternship(params NewInternshipParams) (*Internship, error) {
	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("internship", "New", shared.ErrInvalidID, "invalid internship ID")
	}
	if !params.CompanyID.IsValid() {
		return nil, shared.NewDomainError("internship", "New", shared.ErrInvalidID, "invalid company ID")
	}
	if !params.CreatedBy.IsValid() {
		return nil, shared.NewDomainError("internship", "New", shared.ErrInvalidID, "invalid creator user ID")
	}

	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}

	if params.ApplicationDeadline.IsZero() {
		return nil, ErrNoDeadline
	}

	for _, q := range params.Questions {
		if !q.QuestionType.IsValid() {
			return nil, fmt.Errorf("question %q: %w", q.QuestionID, ErrInvalidQuestionType)
		}
	}

	now := time.Now().UTC()

	return &Internship{
		ID:                  params.ID,
		CompanyID:           params.CompanyID,
		CreatedBy:           params.CreatedBy,
		Title:               title,
		IsActive:            true,
		ApprovalStatus:      ApprovalPending,
		ApplicationDeadline: params.ApplicationDeadline,
		Questions:           params.Questions,
		SkillsRequired:      params.SkillsRequired,
		ApplicationsCount:   0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// IsAvailable reports whether the posting currently accepts applications,
// ignoring the deadline. Deadline handling belongs to the eligibility check
// because it depends on the clock.
func (i *Internship) IsAvailable() bool {
	return i.IsActive && i.ApprovalStatus == ApprovalApproved
}

// DeadlinePassed reports whether the deadline has passed at the given time.
// The deadline instant itself counts as passed.
func (i *Internship) DeadlinePassed(now time.Time) bool {
	return !now.Before(i.ApplicationDeadline)
}

// RequiredQuestions returns the questions an applicant must answer.
func (i *Internship) RequiredQuestions() []Question {
	var out []Question
	for _, q := range i.Questions {
		if q.IsRequired {
			out = append(out, q)
		}
	}
	return out
}

// FindQuestion returns the question with the given ID, if present.
func (i *Internship) FindQuestion(questionID string) (Question, bool) {
	for _, q := range i.Questions {
		if q.QuestionID == questionID {
			return q, true
		}
	}
	return Question{}, false
}

// Review records an admin decision on the posting. Re-reviewing a decided
// posting is allowed so admins can correct mistakes; only the latest decision
// is kept.
func (i *Internship) Review(approve bool, reviewer shared.UserID, notes string) error {
	if !reviewer.IsValid() {
		return shared.NewDomainError("internship", "Review", shared.ErrInvalidID, "invalid reviewer user ID")
	}

	if approve {
		i.ApprovalStatus = ApprovalApproved
	} else {
		i.ApprovalStatus = ApprovalRejected
	}
	i.ReviewedBy = reviewer
	i.ReviewedAt = time.Now().UTC()
	i.ReviewNotes = strings.TrimSpace(notes)
	i.UpdatedAt = i.ReviewedAt
	return nil
}

// RecordApplication increments the received-applications counter.
func (i *Internship) RecordApplication() {
	i.ApplicationsCount++
	i.UpdatedAt = time.Now().UTC()
}

// OwnedBy reports whether the posting belongs to the given company.
func (i *Internship) OwnedBy(companyID shared.CompanyID) bool {
	return i.CompanyID == companyID
}

// String returns a compact representation for logging.
func (i *Internship) String() string {
	return fmt.Sprintf(
		"Internship{ID: %s, Title: %q, Active: %t, Approval: %s, Applications: %d}",
		i.ID, i.Title, i.IsActive, i.ApprovalStatus, i.ApplicationsCount,
	)
}

// Clone creates a deep copy of the posting.
func (i *Internship) Clone() *Internship {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Questions = append([]Question(nil), i.Questions...)
	clone.SkillsRequired = append(shared.SkillSet(nil), i.SkillsRequired...)
	return &clone
}
