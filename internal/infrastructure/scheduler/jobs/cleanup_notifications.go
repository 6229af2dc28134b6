package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLEANUP NOTIFICATIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// NotificationPurger deletes old read notifications. Implemented by the
// PostgreSQL notification repository.
type NotificationPurger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// CleanupNotificationsJob purges read notifications older than the retention
// window. Unread notifications are kept regardless of age.
type CleanupNotificationsJob struct {
	notifications NotificationPurger
	logger        *slog.Logger

	config CleanupNotificationsConfig
}

// CleanupNotificationsConfig contains configuration for the cleanup job.
type CleanupNotificationsConfig struct {
	// Retention is how long read notifications are kept.
	Retention time.Duration

	// Timeout is the maximum duration for one cleanup run.
	Timeout time.Duration
}

// DefaultCleanupNotificationsConfig returns sensible defaults.
func DefaultCleanupNotificationsConfig() CleanupNotificationsConfig {
	return CleanupNotificationsConfig{
		Retention: 30 * 24 * time.Hour,
		Timeout:   2 * time.Minute,
	}
}

// NewCleanupNotificationsJob creates a new cleanup job.
func NewCleanupNotificationsJob(notifications NotificationPurger, logger *slog.Logger, config CleanupNotificationsConfig) *CleanupNotificationsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Retention <= 0 {
		config.Retention = DefaultCleanupNotificationsConfig().Retention
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultCleanupNotificationsConfig().Timeout
	}

	return &CleanupNotificationsJob{
		notifications: notifications,
		logger:        logger.With("job", "cleanup_notifications"),
		config:        config,
	}
}

// Name returns the unique name of the job.
func (j *CleanupNotificationsJob) Name() string {
	return "cleanup_notifications"
}

// Description returns a human-readable description of the job.
func (j *CleanupNotificationsJob) Description() string {
	return "Purges read notifications older than the retention window"
}

// Run executes one cleanup pass.
func (j *CleanupNotificationsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.config.Retention)

	purged, err := j.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup_notifications: %w", err)
	}

	if purged > 0 {
		j.logger.Info("purged read notifications", "count", purged, "cutoff", cutoff.Format(time.RFC3339))
	}

	return nil
}
