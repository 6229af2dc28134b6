package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	deactivated int
	fail        error
	gotNow      time.Time
}

func (s *fakeSweeper) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	s.gotNow = now
	return s.deactivated, s.fail
}

func TestDeadlineSweepJob_Run(t *testing.T) {
	sweeper := &fakeSweeper{deactivated: 3}
	job := NewDeadlineSweepJob(sweeper, nil, DefaultDeadlineSweepConfig())

	require.NoError(t, job.Run(context.Background()))
	assert.False(t, sweeper.gotNow.IsZero())

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Deactivated)
}

func TestDeadlineSweepJob_Failure(t *testing.T) {
	boom := errors.New("db down")
	job := NewDeadlineSweepJob(&fakeSweeper{fail: boom}, nil, DefaultDeadlineSweepConfig())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, job.LastStats())
}

func TestDeadlineSweepJob_Identity(t *testing.T) {
	job := NewDeadlineSweepJob(&fakeSweeper{}, nil, DeadlineSweepConfig{})
	assert.Equal(t, "deadline_sweep", job.Name())
	assert.NotEmpty(t, job.Description())
}

type fakePurger struct {
	purged    int
	fail      error
	gotCutoff time.Time
}

func (p *fakePurger) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	p.gotCutoff = cutoff
	return p.purged, p.fail
}

func TestCleanupNotificationsJob_Run(t *testing.T) {
	purger := &fakePurger{purged: 12}
	job := NewCleanupNotificationsJob(purger, nil, CleanupNotificationsConfig{
		Retention: 7 * 24 * time.Hour,
	})

	require.NoError(t, job.Run(context.Background()))

	// The cutoff sits one retention window in the past.
	expected := time.Now().UTC().Add(-7 * 24 * time.Hour)
	assert.WithinDuration(t, expected, purger.gotCutoff, time.Minute)
}

func TestCleanupNotificationsJob_Failure(t *testing.T) {
	boom := errors.New("db down")
	job := NewCleanupNotificationsJob(&fakePurger{fail: boom}, nil, DefaultCleanupNotificationsConfig())

	assert.ErrorIs(t, job.Run(context.Background()), boom)
}

func TestCleanupNotificationsJob_Identity(t *testing.T) {
	job := NewCleanupNotificationsJob(&fakePurger{}, nil, CleanupNotificationsConfig{})
	assert.Equal(t, "cleanup_notifications", job.Name())
	assert.NotEmpty(t, job.Description())
}
