// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION REPOSITORY IMPLEMENTATION
// The application row and its audit trail live in two tables; every write
// touches both inside one transaction.
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationRepository implements application.Repository for PostgreSQL.
type ApplicationRepository struct {
	conn *Connection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{conn: conn}
}

// answerRecord is the JSONB shape of one screening answer.
type answerRecord struct {
	QuestionID      string   `json:"question_id"`
	QuestionType    string   `json:"question_type"`
	AnswerText      string   `json:"answer_text,omitempty"`
	SelectedOptions []string `json:"selected_options,omitempty"`
	FileURL         string   `json:"file_url,omitempty"`
	FileName        string   `json:"file_name,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts the application together with its first audit entries.
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	answersJSON, err := marshalAnswers(app.Answers)
	if err != nil {
		return err
	}

	err = r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		query := `
			INSERT INTO applications (
				id, internship_id, student_id, resume_url, resume_uploaded_at,
				cover_letter, answers, status, notes, applied_at, version, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.Exec(ctx, query,
			string(app.ID),
			string(app.InternshipID),
			string(app.StudentID),
			app.Resume.FileURL,
			app.Resume.UploadDate,
			app.CoverLetter,
			answersJSON,
			string(app.Status),
			app.Notes,
			app.AppliedAt,
			app.Version,
			app.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertHistoryEntries(ctx, tx, app.ID, 0, app.StatusHistory)
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyApplied
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// Update persists the aggregate state with an optimistic version check and
// appends the audit entries recorded since the aggregate was loaded.
func (r *ApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		query := `
			UPDATE applications SET
				status = $1,
				notes = $2,
				version = version + 1,
				updated_at = $3
			WHERE id = $4 AND version = $5
		`
		result, err := tx.Exec(ctx, query,
			string(app.Status),
			app.Notes,
			time.Now().UTC(),
			string(app.ID),
			app.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if result.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)",
				string(app.ID),
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check application existence: %w", err)
			}
			if exists {
				return shared.ErrConcurrentModification
			}
			return shared.ErrApplicationNotFound
		}

		var stored int
		if err := tx.QueryRow(ctx,
			"SELECT COALESCE(MAX(position), 0) FROM application_status_history WHERE application_id = $1",
			string(app.ID),
		).Scan(&stored); err != nil {
			return fmt.Errorf("failed to count audit entries: %w", err)
		}

		return insertHistoryEntries(ctx, tx, app.ID, stored, app.StatusHistory[stored:])
	})
	if err != nil {
		return err
	}

	app.Version++
	return nil
}

// Delete removes the application; the audit trail cascades.
func (r *ApplicationRepository) Delete(ctx context.Context, id shared.ApplicationID) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM applications WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}
	return nil
}

// insertHistoryEntries appends audit entries starting at position offset+1.
func insertHistoryEntries(ctx context.Context, tx pgx.Tx, id shared.ApplicationID, offset int, entries []application.StatusChange) error {
	query := `
		INSERT INTO application_status_history (
			application_id, position, status, changed_by, changed_by_type, changed_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, entry := range entries {
		_, err := tx.Exec(ctx, query,
			string(id),
			offset+i+1,
			string(entry.Status),
			string(entry.ChangedBy),
			string(entry.ChangedByType),
			entry.ChangedAt,
			entry.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit entry: %w", err)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Loads
// ─────────────────────────────────────────────────────────────────────────────

const applicationColumns = `
	id, internship_id, student_id, resume_url, resume_uploaded_at,
	cover_letter, answers, status, notes, applied_at, version, updated_at
`

// GetByID loads one application with its full audit trail.
func (r *ApplicationRepository) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	query := "SELECT " + applicationColumns + " FROM applications WHERE id = $1"
	row := r.conn.QueryRow(ctx, query, string(id))
	return r.scanApplication(ctx, row)
}

// GetByInternshipAndStudent loads the student's application to the posting.
func (r *ApplicationRepository) GetByInternshipAndStudent(ctx context.Context, internshipID shared.InternshipID, studentID shared.StudentID) (*application.Application, error) {
	query := "SELECT " + applicationColumns + " FROM applications WHERE internship_id = $1 AND student_id = $2"
	row := r.conn.QueryRow(ctx, query, string(internshipID), string(studentID))
	return r.scanApplication(ctx, row)
}

// scanApplication scans the application row and attaches its audit trail.
func (r *ApplicationRepository) scanApplication(ctx context.Context, row pgx.Row) (*application.Application, error) {
	var app application.Application
	var id, internshipID, studentID, status string
	var answersJSON []byte

	err := row.Scan(
		&id,
		&internshipID,
		&studentID,
		&app.Resume.FileURL,
		&app.Resume.UploadDate,
		&app.CoverLetter,
		&answersJSON,
		&status,
		&app.Notes,
		&app.AppliedAt,
		&app.Version,
		&app.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app.ID = shared.ApplicationID(id)
	app.InternshipID = shared.InternshipID(internshipID)
	app.StudentID = shared.StudentID(studentID)
	app.Status = application.Status(status)
	app.Answers, err = unmarshalAnswers(answersJSON)
	if err != nil {
		return nil, err
	}

	app.StatusHistory, err = r.loadHistory(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// loadHistory returns the audit trail of one application, oldest first.
func (r *ApplicationRepository) loadHistory(ctx context.Context, id shared.ApplicationID) ([]application.StatusChange, error) {
	query := `
		SELECT status, changed_by, changed_by_type, changed_at, notes
		FROM application_status_history
		WHERE application_id = $1
		ORDER BY position ASC
	`
	rows, err := r.conn.Query(ctx, query, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	defer rows.Close()

	var history []application.StatusChange
	for rows.Next() {
		var entry application.StatusChange
		var status, changedBy, changedByType string

		if err := rows.Scan(&status, &changedBy, &changedByType, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Status = application.Status(status)
		entry.ChangedBy = shared.UserID(changedBy)
		entry.ChangedByType = shared.ActorType(changedByType)
		history = append(history, entry)
	}

	return history, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Listings
// ─────────────────────────────────────────────────────────────────────────────

// ListByStudent returns the student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID shared.StudentID, p shared.Pagination) ([]application.StudentView, int, error) {
	var total int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM applications WHERE student_id = $1",
		string(studentID),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `
		SELECT a.id, a.internship_id, i.title, c.name, a.status, a.applied_at
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		JOIN companies c ON c.id = i.company_id
		WHERE a.student_id = $1
		ORDER BY a.applied_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.conn.Query(ctx, query, string(studentID), p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications by student: %w", err)
	}
	defer rows.Close()

	var views []application.StudentView
	for rows.Next() {
		var v application.StudentView
		var id, internshipID, status string

		if err := rows.Scan(&id, &internshipID, &v.InternshipTitle, &v.CompanyName, &status, &v.AppliedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan student view: %w", err)
		}

		v.ApplicationID = shared.ApplicationID(id)
		v.InternshipID = shared.InternshipID(internshipID)
		v.Status = application.Status(status)
		views = append(views, v)
	}

	return views, total, rows.Err()
}

// ListByCompany returns applications to any posting of the company. Ownership
// is resolved through the internships table; applications carry no company
// reference themselves.
func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID shared.CompanyID, filter application.CompanyFilter, p shared.Pagination) ([]application.CompanyView, int, error) {
	where := "i.company_id = $1"
	args := []interface{}{string(companyID)}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if filter.InternshipID != "" {
		args = append(args, string(filter.InternshipID))
		where += fmt.Sprintf(" AND a.internship_id = $%d", len(args))
	}

	countQuery := `
		SELECT COUNT(*)
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		WHERE ` + where
	var total int
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	listArgs := append(args, p.Limit(), p.Offset())
	listQuery := fmt.Sprintf(`
		SELECT a.id, a.internship_id, i.title,
			   a.student_id, TRIM(s.first_name || ' ' || s.last_name),
			   a.status, a.applied_at
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		JOIN students s ON s.id = a.student_id
		WHERE %s
		ORDER BY a.applied_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := r.conn.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications by company: %w", err)
	}
	defer rows.Close()

	views, err := scanCompanyViews(rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListByInternship returns applications to one posting, newest first.
func (r *ApplicationRepository) ListByInternship(ctx context.Context, internshipID shared.InternshipID, p shared.Pagination) ([]application.CompanyView, int, error) {
	var total int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM applications WHERE internship_id = $1",
		string(internshipID),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `
		SELECT a.id, a.internship_id, i.title,
			   a.student_id, TRIM(s.first_name || ' ' || s.last_name),
			   a.status, a.applied_at
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		JOIN students s ON s.id = a.student_id
		WHERE a.internship_id = $1
		ORDER BY a.applied_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.conn.Query(ctx, query, string(internshipID), p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications by internship: %w", err)
	}
	defer rows.Close()

	views, err := scanCompanyViews(rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// StatsByCompany aggregates application counts across the company's postings.
func (r *ApplicationRepository) StatsByCompany(ctx context.Context, companyID shared.CompanyID) (application.CompanyStats, error) {
	stats := application.CompanyStats{ByStatus: make(map[application.Status]int)}

	query := `
		SELECT a.status, COUNT(*)
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		WHERE i.company_id = $1
		GROUP BY a.status
	`
	rows, err := r.conn.Query(ctx, query, string(companyID))
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ByStatus[application.Status(status)] = count
		stats.Total += count
	}

	return stats, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanCompanyViews scans company-side listing rows.
func scanCompanyViews(rows pgx.Rows) ([]application.CompanyView, error) {
	var views []application.CompanyView
	for rows.Next() {
		var v application.CompanyView
		var id, internshipID, studentID, status string

		err := rows.Scan(&id, &internshipID, &v.InternshipTitle, &studentID, &v.StudentName, &status, &v.AppliedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company view: %w", err)
		}

		v.ApplicationID = shared.ApplicationID(id)
		v.InternshipID = shared.InternshipID(internshipID)
		v.StudentID = shared.StudentID(studentID)
		v.Status = application.Status(status)
		views = append(views, v)
	}
	return views, rows.Err()
}

// marshalAnswers converts answers to their JSONB representation.
func marshalAnswers(answers []application.Answer) ([]byte, error) {
	records := make([]answerRecord, len(answers))
	for i, a := range answers {
		records[i] = answerRecord{
			QuestionID:      a.QuestionID,
			QuestionType:    string(a.QuestionType),
			AnswerText:      a.AnswerText,
			SelectedOptions: a.SelectedOptions,
			FileURL:         a.FileURL,
			FileName:        a.FileName,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	return data, nil
}

// unmarshalAnswers converts the JSONB representation back to answers.
func unmarshalAnswers(data []byte) ([]application.Answer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []answerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	answers := make([]application.Answer, len(records))
	for i, rec := range records {
		answers[i] = application.Answer{
			QuestionID:      rec.QuestionID,
			QuestionType:    internship.QuestionType(rec.QuestionType),
			AnswerText:      rec.AnswerText,
			SelectedOptions: rec.SelectedOptions,
			FileURL:         rec.FileURL,
			FileName:        rec.FileName,
		}
	}
	return answers, nil
}
