// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERNSHIP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// InternshipRepository implements internship.Repository for PostgreSQL.
type InternshipRepository struct {
	conn *Connection
}

// NewInternshipRepository creates a new InternshipRepository.
func NewInternshipRepository(conn *Connection) *InternshipRepository {
	return &InternshipRepository{conn: conn}
}

// questionRecord is the JSONB shape of one screening question.
type questionRecord struct {
	QuestionID   string   `json:"question_id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	IsRequired   bool     `json:"is_required"`
	Options      []string `json:"options,omitempty"`
}

const internshipColumns = `
	id, company_id, created_by, title, is_active, approval_status,
	application_deadline, questions, skills_required, applications_count,
	reviewed_by, reviewed_at, review_notes, created_at, updated_at
`

// GetByID returns the posting or shared.ErrInternshipNotFound.
func (r *InternshipRepository) GetByID(ctx context.Context, id shared.InternshipID) (*internship.Internship, error) {
	query := "SELECT " + internshipColumns + " FROM internships WHERE id = $1"
	row := r.conn.QueryRow(ctx, query, string(id))
	return scanInternship(row)
}

// Save inserts or fully replaces a posting snapshot.
func (r *InternshipRepository) Save(ctx context.Context, in *internship.Internship) error {
	questionsJSON, err := marshalQuestions(in.Questions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO internships (
			id, company_id, created_by, title, is_active, approval_status,
			application_deadline, questions, skills_required, applications_count,
			reviewed_by, reviewed_at, review_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			created_by = EXCLUDED.created_by,
			title = EXCLUDED.title,
			is_active = EXCLUDED.is_active,
			approval_status = EXCLUDED.approval_status,
			application_deadline = EXCLUDED.application_deadline,
			questions = EXCLUDED.questions,
			skills_required = EXCLUDED.skills_required,
			applications_count = EXCLUDED.applications_count,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_at = EXCLUDED.reviewed_at,
			review_notes = EXCLUDED.review_notes,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.conn.Exec(ctx, query,
		string(in.ID),
		string(in.CompanyID),
		string(in.CreatedBy),
		in.Title,
		in.IsActive,
		string(in.ApprovalStatus),
		in.ApplicationDeadline,
		questionsJSON,
		[]string(in.SkillsRequired),
		in.ApplicationsCount,
		nullableID(in.ReviewedBy),
		nullableTime(in.ReviewedAt),
		in.ReviewNotes,
		in.CreatedAt,
		in.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save internship: %w", err)
	}
	return nil
}

// UpdateReview persists the review decision fields of the posting.
func (r *InternshipRepository) UpdateReview(ctx context.Context, in *internship.Internship) error {
	query := `
		UPDATE internships SET
			approval_status = $1,
			reviewed_by = $2,
			reviewed_at = $3,
			review_notes = $4,
			updated_at = $5
		WHERE id = $6
	`
	result, err := r.conn.Exec(ctx, query,
		string(in.ApprovalStatus),
		nullableID(in.ReviewedBy),
		nullableTime(in.ReviewedAt),
		in.ReviewNotes,
		in.UpdatedAt,
		string(in.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update internship review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrInternshipNotFound
	}
	return nil
}

// DeactivateExpired closes every active posting whose deadline has passed.
// Used by the deadline sweep job. Eligibility checks reject on the deadline
// either way; the sweep keeps listings honest.
func (r *InternshipRepository) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE internships SET
			is_active = FALSE,
			updated_at = NOW()
		WHERE is_active = TRUE AND application_deadline <= $1
	`
	result, err := r.conn.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired internships: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// IncrementApplications bumps the received-applications counter by one.
func (r *InternshipRepository) IncrementApplications(ctx context.Context, id shared.InternshipID) error {
	query := `
		UPDATE internships SET
			applications_count = applications_count + 1,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.conn.Exec(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to increment applications count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrInternshipNotFound
	}
	return nil
}

// ListByCompany returns all postings owned by the company, newest first.
func (r *InternshipRepository) ListByCompany(ctx context.Context, companyID shared.CompanyID) ([]*internship.Internship, error) {
	query := "SELECT " + internshipColumns + " FROM internships WHERE company_id = $1 ORDER BY created_at DESC"
	rows, err := r.conn.Query(ctx, query, string(companyID))
	if err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	defer rows.Close()

	var postings []*internship.Internship
	for rows.Next() {
		posting, err := scanInternship(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}

	return postings, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanInternship scans one posting row.
func scanInternship(row pgx.Row) (*internship.Internship, error) {
	var in internship.Internship
	var id, companyID, createdBy, approvalStatus string
	var reviewedBy *string
	var reviewedAt *time.Time
	var questionsJSON []byte
	var skills []string

	err := row.Scan(
		&id,
		&companyID,
		&createdBy,
		&in.Title,
		&in.IsActive,
		&approvalStatus,
		&in.ApplicationDeadline,
		&questionsJSON,
		&skills,
		&in.ApplicationsCount,
		&reviewedBy,
		&reviewedAt,
		&in.ReviewNotes,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrInternshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan internship: %w", err)
	}

	in.ID = shared.InternshipID(id)
	in.CompanyID = shared.CompanyID(companyID)
	in.CreatedBy = shared.UserID(createdBy)
	in.ApprovalStatus = internship.ApprovalStatus(approvalStatus)
	in.SkillsRequired = shared.SkillSet(skills)
	if reviewedBy != nil {
		in.ReviewedBy = shared.UserID(*reviewedBy)
	}
	if reviewedAt != nil {
		in.ReviewedAt = *reviewedAt
	}

	in.Questions, err = unmarshalQuestions(questionsJSON)
	if err != nil {
		return nil, err
	}

	return &in, nil
}

// marshalQuestions converts questions to their JSONB representation.
func marshalQuestions(questions []internship.Question) ([]byte, error) {
	records := make([]questionRecord, len(questions))
	for i, q := range questions {
		records[i] = questionRecord{
			QuestionID:   q.QuestionID,
			QuestionText: q.QuestionText,
			QuestionType: string(q.QuestionType),
			IsRequired:   q.IsRequired,
			Options:      q.Options,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	return data, nil
}

// unmarshalQuestions converts the JSONB representation back to questions.
func unmarshalQuestions(data []byte) ([]internship.Question, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []questionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	questions := make([]internship.Question, len(records))
	for i, rec := range records {
		questions[i] = internship.Question{
			QuestionID:   rec.QuestionID,
			QuestionText: rec.QuestionText,
			QuestionType: internship.QuestionType(rec.QuestionType),
			IsRequired:   rec.IsRequired,
			Options:      rec.Options,
		}
	}
	return questions, nil
}

// nullableID maps an empty user ID to SQL NULL.
func nullableID(id shared.UserID) *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
