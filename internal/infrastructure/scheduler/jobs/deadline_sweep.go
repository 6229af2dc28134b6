// Package jobs contains implementations of scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEADLINE SWEEP JOB
// ══════════════════════════════════════════════════════════════════════════════

// DeadlineSweeper closes active postings whose application deadline has
// passed. Implemented by the PostgreSQL internship repository.
type DeadlineSweeper interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

// DeadlineSweepJob deactivates postings past their application deadline.
// Eligibility checks reject late applications regardless; the sweep keeps
// listings from advertising postings nobody can apply to.
type DeadlineSweepJob struct {
	internships DeadlineSweeper
	logger      *slog.Logger

	config DeadlineSweepConfig

	// State
	lastSweepStats atomic.Value // *SweepStats
}

// DeadlineSweepConfig contains configuration for the sweep job.
type DeadlineSweepConfig struct {
	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration
}

// DefaultDeadlineSweepConfig returns sensible defaults.
func DefaultDeadlineSweepConfig() DeadlineSweepConfig {
	return DeadlineSweepConfig{
		Timeout: 1 * time.Minute,
	}
}

// SweepStats contains statistics from one sweep run.
type SweepStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Deactivated int
}

// NewDeadlineSweepJob creates a new deadline sweep job.
func NewDeadlineSweepJob(internships DeadlineSweeper, logger *slog.Logger, config DeadlineSweepConfig) *DeadlineSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultDeadlineSweepConfig().Timeout
	}

	return &DeadlineSweepJob{
		internships: internships,
		logger:      logger.With("job", "deadline_sweep"),
		config:      config,
	}
}

// Name returns the unique name of the job.
func (j *DeadlineSweepJob) Name() string {
	return "deadline_sweep"
}

// Description returns a human-readable description of the job.
func (j *DeadlineSweepJob) Description() string {
	return "Deactivates internship postings past their application deadline"
}

// Run executes one sweep.
func (j *DeadlineSweepJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	startedAt := time.Now()

	deactivated, err := j.internships.DeactivateExpired(ctx, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("deadline_sweep: %w", err)
	}

	stats := &SweepStats{
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Deactivated: deactivated,
	}
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastSweepStats.Store(stats)

	if deactivated > 0 {
		j.logger.Info("deactivated expired postings", "count", deactivated)
	}

	return nil
}

// LastStats returns statistics from the most recent sweep, or nil.
func (j *DeadlineSweepJob) LastStats() *SweepStats {
	if stats, ok := j.lastSweepStats.Load().(*SweepStats); ok {
		return stats
	}
	return nil
}
