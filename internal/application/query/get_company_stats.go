package query

import (
	"context"
	"errors"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COMPANY STATS QUERY
// Aggregated application counts across all postings of one company: the total
// and a per-status breakdown for the company dashboard.
// ══════════════════════════════════════════════════════════════════════════════

// GetCompanyStatsQuery contains the stats parameters.
type GetCompanyStatsQuery struct {
	// CompanyID - the company to aggregate for.
	CompanyID shared.CompanyID
}

// Validate checks the query parameters.
func (q *GetCompanyStatsQuery) Validate() error {
	if !q.CompanyID.IsValid() {
		return errors.New("company_id is required")
	}
	return nil
}

// GetCompanyStatsResult contains the aggregation. ByStatus has an entry for
// every known status, zero when no application is in that state, so
// dashboards render a stable set of buckets.
type GetCompanyStatsResult struct {
	CompanyID   string         `json:"company_id"`
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// GetCompanyStatsHandler handles the query.
type GetCompanyStatsHandler struct {
	applications application.Repository
}

// NewGetCompanyStatsHandler creates a new handler.
func NewGetCompanyStatsHandler(applications application.Repository) *GetCompanyStatsHandler {
	return &GetCompanyStatsHandler{applications: applications}
}

// Handle executes the aggregation.
func (h *GetCompanyStatsHandler) Handle(ctx context.Context, query GetCompanyStatsQuery) (*GetCompanyStatsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetCompanyStats", shared.ErrValidation, err.Error(), err)
	}

	stats, err := h.applications.StatsByCompany(ctx, query.CompanyID)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int, len(application.AllStatuses))
	for _, s := range application.AllStatuses {
		byStatus[s.String()] = stats.ByStatus[s]
	}

	return &GetCompanyStatsResult{
		CompanyID:   query.CompanyID.String(),
		Total:       stats.Total,
		ByStatus:    byStatus,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
