package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Resume points at the uploaded resume file. Uploading itself is handled by
// the file service; the core only stores the reference.
type Resume struct {
	FileURL    string
	UploadDate time.Time
}

// IsValid checks that the resume reference is present.
func (r Resume) IsValid() bool {
	return strings.TrimSpace(r.FileURL) != ""
}

// Answer is a response to one screening question.
type Answer struct {
	QuestionID      string
	QuestionType    internship.QuestionType
	AnswerText      string
	SelectedOptions []string
	FileURL         string
	FileName        string
}

// IsEmpty reports whether the answer carries no content. Any text or any
// selected option counts as content regardless of the question type. File
// answers are never empty here: the upload service populates them after
// submission, so the core does not inspect them.
func (a Answer) IsEmpty() bool {
	if a.QuestionType == internship.QuestionFile {
		return false
	}
	return strings.TrimSpace(a.AnswerText) == "" && len(a.SelectedOptions) == 0
}

// StatusChange is a single immutable entry of the audit trail.
type StatusChange struct {
	Status        Status
	ChangedBy     shared.UserID
	ChangedByType shared.ActorType
	ChangedAt     time.Time
	Notes         string
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// Application is a student's application to one internship. The pair
// (InternshipID, StudentID) is unique storage-wide; both are immutable after
// creation.
type Application struct {
	// ID - unique application identifier (UUID in string form).
	ID shared.ApplicationID

	// InternshipID - the posting applied to. Immutable.
	InternshipID shared.InternshipID

	// StudentID - the applying student profile. Immutable.
	StudentID shared.StudentID

	// Resume - reference to the uploaded resume.
	Resume Resume

	// CoverLetter - optional free-form text.
	CoverLetter string

	// Answers - responses to the posting's screening questions.
	Answers []Answer

	// Status - current lifecycle state.
	Status Status

	// StatusHistory - append-only audit trail, oldest first. The first entry
	// always records StatusApplied.
	StatusHistory []StatusChange

	// Notes - free-form notes attached by the company.
	Notes string

	// AppliedAt - submission time.
	AppliedAt time.Time

	// Version - optimistic concurrency counter, incremented on every update.
	Version int

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// NewApplicationParams holds the fields needed to submit an application.
type NewApplicationParams struct {
	ID           shared.ApplicationID
	InternshipID shared.InternshipID
	StudentID    shared.StudentID
	SubmittedBy  shared.UserID // student's user account, recorded in the audit trail
	Resume       Resume
	CoverLetter  string
	Answers      []Answer
}

// NewApplication creates an application in its initial state. The status is
// Applied and the audit trail starts with exactly one entry recording the
// submission.
func NewApplication(params NewApplicationParams) (*Application, error) {
	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid application ID")
	}
	if !params.InternshipID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid internship ID")
	}
	if !params.StudentID.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid student ID")
	}
	if !params.SubmittedBy.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidID, "invalid submitter user ID")
	}
	if !params.Resume.IsValid() {
		return nil, shared.NewDomainError("application", "New", shared.ErrValidation, "resume is required")
	}

	now := time.Now().UTC()

	return &Application{
		ID:           params.ID,
		InternshipID: params.InternshipID,
		StudentID:    params.StudentID,
		Resume:       params.Resume,
		CoverLetter:  strings.TrimSpace(params.CoverLetter),
		Answers:      params.Answers,
		Status:       StatusApplied,
		StatusHistory: []StatusChange{{
			Status:        StatusApplied,
			ChangedBy:     params.SubmittedBy,
			ChangedByType: shared.ActorStudent,
			ChangedAt:     now,
			Notes:         "Application submitted",
		}},
		AppliedAt: now,
		Version:   1,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// CanTransitionTo reports whether a transition to the target status is
// permitted from the current one. Terminal statuses permit nothing; among
// non-terminal statuses the ordering is deliberately unrestricted, so a
// company may move an application back and forth while it is in flight.
func (a *Application) CanTransitionTo(target Status) bool {
	if !target.IsValid() {
		return false
	}
	return !a.Status.IsTerminal()
}

// TransitionTo moves the application to the target status and appends exactly
// one audit entry. When notes is empty a default note naming the new status
// is synthesized. The engine does not care who the actor is; ownership and
// role checks happen in the command layer.
func (a *Application) TransitionTo(target Status, actor shared.Actor, notes string) error {
	if !target.IsValid() {
		return shared.NewDomainError("application", "Transition", shared.ErrInvalidInput,
			fmt.Sprintf("unknown status %q", target))
	}
	if !actor.IsValid() {
		return shared.NewDomainError("application", "Transition", shared.ErrInvalidInput, "invalid actor")
	}
	if a.Status.IsTerminal() {
		return shared.WrapError("application", "Transition", shared.ErrStateTransition,
			fmt.Sprintf("cannot change status of a %s application", a.Status), shared.ErrInvalidTransition)
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = "Status changed to " + target.String()
	}

	now := time.Now().UTC()
	a.Status = target
	a.StatusHistory = append(a.StatusHistory, StatusChange{
		Status:        target,
		ChangedBy:     actor.UserID,
		ChangedByType: actor.Type,
		ChangedAt:     now,
		Notes:         notes,
	})
	a.UpdatedAt = now
	return nil
}

// Withdraw is the student-only path into the Withdrawn terminal state.
func (a *Application) Withdraw(actor shared.Actor, reason string) error {
	if actor.Type != shared.ActorStudent {
		return shared.NewDomainError("application", "Withdraw", shared.ErrForbidden,
			"only the applying student can withdraw")
	}
	if strings.TrimSpace(reason) == "" {
		reason = "Application withdrawn by student"
	}
	return a.TransitionTo(StatusWithdrawn, actor, reason)
}

// IsTerminal reports whether the application has reached a terminal state.
func (a *Application) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// IsWithdrawn reports whether the application was withdrawn. Withdrawn
// applications are purged before the student re-applies.
func (a *Application) IsWithdrawn() bool {
	return a.Status == StatusWithdrawn
}

// LastChange returns the most recent audit entry.
func (a *Application) LastChange() StatusChange {
	return a.StatusHistory[len(a.StatusHistory)-1]
}

// BelongsTo reports whether the application was submitted by the given
// student profile.
func (a *Application) BelongsTo(studentID shared.StudentID) bool {
	return a.StudentID == studentID
}

// String returns a compact representation for logging.
func (a *Application) String() string {
	return fmt.Sprintf(
		"Application{ID: %s, Internship: %s, Student: %s, Status: %s, Version: %d}",
		a.ID, a.InternshipID, a.StudentID, a.Status, a.Version,
	)
}

// Clone creates a deep copy of the application.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Answers = append([]Answer(nil), a.Answers...)
	clone.StatusHistory = append([]StatusChange(nil), a.StatusHistory...)
	return &clone
}
