package student

import (
	"context"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Directory is the read port for student directory entries.
// Implementations live in infrastructure/persistence.
type Directory interface {
	// GetByID returns the entry or shared.ErrStudentNotFound.
	GetByID(ctx context.Context, id shared.StudentID) (*Student, error)

	// GetByUserID returns the entry owned by the account, or
	// shared.ErrStudentNotFound.
	GetByUserID(ctx context.Context, userID shared.UserID) (*Student, error)

	// Save inserts or fully replaces a directory entry.
	Save(ctx context.Context, s *Student) error

	// ListWithAnySkill returns every student whose skill set shares at least
	// one exact name with the given set. Used by the skill-match fan-out.
	ListWithAnySkill(ctx context.Context, skills shared.SkillSet) ([]*Student, error)
}
