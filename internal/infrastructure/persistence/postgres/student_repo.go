// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT DIRECTORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentDirectory implements student.Directory for PostgreSQL.
type StudentDirectory struct {
	conn *Connection
}

// NewStudentDirectory creates a new StudentDirectory.
func NewStudentDirectory(conn *Connection) *StudentDirectory {
	return &StudentDirectory{conn: conn}
}

const studentColumns = `
	id, user_id, first_name, last_name, skills, created_at, updated_at
`

// GetByID returns the entry or shared.ErrStudentNotFound.
func (r *StudentDirectory) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	row := r.conn.QueryRow(ctx, query, string(id))
	return scanStudent(row)
}

// GetByUserID returns the entry owned by the account.
func (r *StudentDirectory) GetByUserID(ctx context.Context, userID shared.UserID) (*student.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE user_id = $1"
	row := r.conn.QueryRow(ctx, query, string(userID))
	return scanStudent(row)
}

// Save inserts or fully replaces a directory entry.
func (r *StudentDirectory) Save(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (id, user_id, first_name, last_name, skills, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			skills = EXCLUDED.skills,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.conn.Exec(ctx, query,
		string(s.ID),
		string(s.UserID),
		s.FirstName,
		s.LastName,
		[]string(s.Skills),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save student: %w", err)
	}
	return nil
}

// ListWithAnySkill returns every student whose skill set shares at least one
// entry with the given set. Matching is exact and case-sensitive, which the
// array overlap operator gives for free.
func (r *StudentDirectory) ListWithAnySkill(ctx context.Context, skills shared.SkillSet) ([]*student.Student, error) {
	if len(skills) == 0 {
		return nil, nil
	}

	query := "SELECT " + studentColumns + " FROM students WHERE skills && $1"
	rows, err := r.conn.Query(ctx, query, []string(skills))
	if err != nil {
		return nil, fmt.Errorf("failed to list students by skill: %w", err)
	}
	defer rows.Close()

	var students []*student.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// scanStudent scans one directory row.
func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var id, userID string
	var skills []string

	err := row.Scan(&id, &userID, &s.FirstName, &s.LastName, &skills, &s.CreatedAt, &s.UpdatedAt)
	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.ID = shared.StudentID(id)
	s.UserID = shared.UserID(userID)
	s.Skills = shared.SkillSet(skills)
	return &s, nil
}
