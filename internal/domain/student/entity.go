// Package student contains the student directory entry as seen by the
// application core. Profile management lives in another service; the core
// reads names for listings and skills for match notifications.
package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Student is a directory entry for an applicant. The UserID points at the
// account that receives notifications about this student's applications.
type Student struct {
	// ID - student profile identifier (UUID in string form).
	ID shared.StudentID

	// UserID - account behind the profile.
	UserID shared.UserID

	// FirstName, LastName - display name parts.
	FirstName string
	LastName  string

	// Skills - skill names declared on the profile. Matching against
	// postings is exact and case-sensitive.
	Skills shared.SkillSet

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewStudentParams holds the fields needed to register a directory entry.
type NewStudentParams struct {
	ID        shared.StudentID
	UserID    shared.UserID
	FirstName string
	LastName  string
	Skills    shared.SkillSet
}

// NewStudent creates a directory entry with validation.
func NewStudent(params NewStudentParams) (*Student, error) {
	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("student", "New", shared.ErrInvalidID, "invalid student ID")
	}
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("student", "New", shared.ErrInvalidID, "invalid user ID")
	}

	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	if first == "" {
		return nil, shared.NewDomainError("student", "New", shared.ErrEmptyValue, "first name is required")
	}

	now := time.Now().UTC()

	return &Student{
		ID:        params.ID,
		UserID:    params.UserID,
		FirstName: first,
		LastName:  last,
		Skills:    params.Skills,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullName returns the display name used in company-side listings.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// HasAnySkill reports whether the student shares at least one skill with the
// given set.
func (s *Student) HasAnySkill(skills shared.SkillSet) bool {
	return s.Skills.Intersects(skills)
}

// String returns a compact representation for logging.
func (s *Student) String() string {
	return fmt.Sprintf("Student{ID: %s, Name: %s, Skills: %d}", s.ID, s.FullName(), len(s.Skills))
}
