// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPANY DIRECTORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CompanyDirectory implements company.Directory for PostgreSQL.
type CompanyDirectory struct {
	conn *Connection
}

// NewCompanyDirectory creates a new CompanyDirectory.
func NewCompanyDirectory(conn *Connection) *CompanyDirectory {
	return &CompanyDirectory{conn: conn}
}

const companyColumns = `
	id, user_id, name, verification_status, verified_by, verified_at,
	verification_notes, created_at, updated_at
`

// GetByID returns the entry or shared.ErrCompanyNotFound.
func (r *CompanyDirectory) GetByID(ctx context.Context, id shared.CompanyID) (*company.Company, error) {
	query := "SELECT " + companyColumns + " FROM companies WHERE id = $1"
	row := r.conn.QueryRow(ctx, query, string(id))
	return scanCompany(row)
}

// GetByUserID returns the entry owned by the account.
func (r *CompanyDirectory) GetByUserID(ctx context.Context, userID shared.UserID) (*company.Company, error) {
	query := "SELECT " + companyColumns + " FROM companies WHERE user_id = $1"
	row := r.conn.QueryRow(ctx, query, string(userID))
	return scanCompany(row)
}

// Save inserts or fully replaces a directory entry.
func (r *CompanyDirectory) Save(ctx context.Context, c *company.Company) error {
	query := `
		INSERT INTO companies (
			id, user_id, name, verification_status, verified_by, verified_at,
			verification_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			name = EXCLUDED.name,
			verification_status = EXCLUDED.verification_status,
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at,
			verification_notes = EXCLUDED.verification_notes,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.conn.Exec(ctx, query,
		string(c.ID),
		string(c.UserID),
		c.Name,
		string(c.VerificationStatus),
		nullableID(c.VerifiedBy),
		nullableTime(c.VerifiedAt),
		c.VerificationNotes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

// UpdateVerification persists the verification decision fields.
func (r *CompanyDirectory) UpdateVerification(ctx context.Context, c *company.Company) error {
	query := `
		UPDATE companies SET
			verification_status = $1,
			verified_by = $2,
			verified_at = $3,
			verification_notes = $4,
			updated_at = $5
		WHERE id = $6
	`
	result, err := r.conn.Exec(ctx, query,
		string(c.VerificationStatus),
		nullableID(c.VerifiedBy),
		nullableTime(c.VerifiedAt),
		c.VerificationNotes,
		c.UpdatedAt,
		string(c.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update company verification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCompanyNotFound
	}
	return nil
}

// scanCompany scans one directory row.
func scanCompany(row pgx.Row) (*company.Company, error) {
	var c company.Company
	var id, userID, status string
	var verifiedBy *string
	var verifiedAt *time.Time

	err := row.Scan(
		&id,
		&userID,
		&c.Name,
		&status,
		&verifiedBy,
		&verifiedAt,
		&c.VerificationNotes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}

	c.ID = shared.CompanyID(id)
	c.UserID = shared.UserID(userID)
	c.VerificationStatus = company.VerificationStatus(status)
	if verifiedBy != nil {
		c.VerifiedBy = shared.UserID(*verifiedBy)
	}
	if verifiedAt != nil {
		c.VerifiedAt = *verifiedAt
	}

	return &c, nil
}
