// Package scheduler runs the marketplace's periodic maintenance work: the
// deadline sweep that closes postings past their application deadline and the
// nightly purge of stale notifications. Jobs are registered with a Schedule
// (fixed interval or cron expression) and executed by a polling loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNilJob                  = errors.New("job cannot be nil")
	ErrNilSchedule             = errors.New("schedule cannot be nil")
	ErrJobAlreadyExists        = errors.New("job already exists")
	ErrJobNotFound             = errors.New("job not found")
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")
	ErrSchedulerNotRunning     = errors.New("scheduler is not running")
)

// Job is a unit of background work. Run receives a context that is cancelled
// when the scheduler shuts down; long jobs should honour it.
type Job interface {
	Name() string
	Description() string
	Run(ctx context.Context) error
}

// Schedule decides when a job fires next.
type Schedule interface {
	// Next returns the first firing time strictly after t.
	Next(t time.Time) time.Time

	String() string
}

// JobResult records one finished execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// entry is a registered job together with its schedule and run state.
type entry struct {
	job      Job
	schedule Schedule
	enabled  bool
	lastRun  time.Time
	nextRun  time.Time
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Logger *slog.Logger

	// Timezone anchors schedule calculations. Defaults to UTC.
	Timezone *time.Location

	// MaxHistorySize caps the retained execution history.
	MaxHistorySize int

	EnableMetrics bool
}

// DefaultSchedulerConfig returns the production defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Logger:         slog.Default(),
		Timezone:       time.UTC,
		MaxHistorySize: 1000,
		EnableMetrics:  true,
	}
}

// Scheduler polls registered jobs once a second and runs the due ones in
// their own goroutines. Stop waits for in-flight jobs before returning.
type Scheduler struct {
	logger *slog.Logger
	tz     *time.Location

	mu         sync.RWMutex
	jobs       map[string]*entry
	lastRuns   map[string]*JobResult
	history    []JobResult
	historyCap int
	running    bool

	metrics *SchedulerMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler builds a stopped scheduler; call Start to begin polling.
func NewScheduler(config SchedulerConfig) *Scheduler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}
	if config.MaxHistorySize <= 0 {
		config.MaxHistorySize = 1000
	}

	s := &Scheduler{
		logger:     config.Logger,
		tz:         config.Timezone,
		jobs:       make(map[string]*entry),
		lastRuns:   make(map[string]*JobResult),
		history:    make([]JobResult, 0, config.MaxHistorySize),
		historyCap: config.MaxHistorySize,
	}
	if config.EnableMetrics {
		s.metrics = NewSchedulerMetrics()
	}
	return s
}

// Register adds a job under its Name. Registering the same name twice fails.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}

	e := &entry{
		job:      job,
		schedule: schedule,
		enabled:  true,
		nextRun:  schedule.Next(time.Now().In(s.tz)),
	}
	s.jobs[name] = e

	s.logger.Info("job registered",
		"job", name,
		"description", job.Description(),
		"next_run", e.nextRun.Format(time.RFC3339),
	)
	return nil
}

// EnableJob resumes a disabled job and recomputes its next firing time.
func (s *Scheduler) EnableJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	e.enabled = true
	e.nextRun = e.schedule.Next(time.Now().In(s.tz))
	s.logger.Info("job enabled", "job", name, "next_run", e.nextRun)
	return nil
}

// DisableJob keeps the job registered but skips it during polling.
func (s *Scheduler) DisableJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	e.enabled = false
	s.logger.Info("job disabled", "job", name)
	return nil
}

// Start launches the polling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	jobCount := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("scheduler started", "jobs_count", jobCount)

	s.wg.Add(1)
	go s.poll()
	return nil
}

// Stop cancels the job context and blocks until running jobs return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

// IsRunning reports whether the polling loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) poll() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.fireDue(now.In(s.tz))
		}
	}
}

// fireDue launches every enabled job whose nextRun has passed. The next
// firing time is advanced before the job runs, so a slow job cannot pile up
// overlapping executions of itself from the same deadline.
func (s *Scheduler) fireDue(now time.Time) {
	s.mu.Lock()
	var due []*entry
	for _, e := range s.jobs {
		if e.enabled && !e.nextRun.IsZero() && now.After(e.nextRun) {
			e.lastRun = now
			e.nextRun = e.schedule.Next(now)
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		e := e
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.execute(s.ctx, e.job)
		}()
	}
}

// RunNow executes a registered job immediately, outside its schedule. The
// result is recorded the same way scheduled runs are.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*JobResult, error) {
	s.mu.RLock()
	e, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	result := s.execute(ctx, e.job)
	return &result, result.Error
}

// execute runs the job, records the result in metrics and history, and logs
// the outcome. Both the polling loop and RunNow go through here.
func (s *Scheduler) execute(ctx context.Context, job Job) JobResult {
	name := job.Name()
	startedAt := time.Now()
	s.logger.Info("job started", "job", name)

	err := job.Run(ctx)
	completedAt := time.Now()

	result := JobResult{
		JobName:     name,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Success:     err == nil,
		Error:       err,
	}

	if s.metrics != nil {
		s.metrics.record(name, result.Duration, err == nil)
	}

	s.mu.Lock()
	s.lastRuns[name] = &result
	s.history = append(s.history, result)
	if len(s.history) > s.historyCap {
		s.history = s.history[len(s.history)-s.historyCap:]
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			"job", name,
			"duration", result.Duration.String(),
			"error", err,
		)
	} else {
		s.logger.Info("job completed",
			"job", name,
			"duration", result.Duration.String(),
		)
	}
	return result
}

// JobInfo is a read-only view of a registered job.
type JobInfo struct {
	Name        string
	Description string
	Enabled     bool
	Schedule    string
	LastRun     time.Time
	NextRun     time.Time
	LastResult  *JobResult
}

// ListJobs returns a snapshot of every registered job.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		infos = append(infos, s.infoLocked(name, e))
	}
	return infos
}

// GetJobInfo returns the view of a single job.
func (s *Scheduler) GetJobInfo(name string) (*JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	info := s.infoLocked(name, e)
	return &info, nil
}

func (s *Scheduler) infoLocked(name string, e *entry) JobInfo {
	return JobInfo{
		Name:        name,
		Description: e.job.Description(),
		Enabled:     e.enabled,
		Schedule:    e.schedule.String(),
		LastRun:     e.lastRun,
		NextRun:     e.nextRun,
		LastResult:  s.lastRuns[name],
	}
}

// GetHistory returns the most recent results, newest last. A non-positive
// limit returns everything retained.
func (s *Scheduler) GetHistory(limit int) []JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]JobResult, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}

// GetMetrics returns the metrics tracker, or nil when metrics are disabled.
func (s *Scheduler) GetMetrics() *SchedulerMetrics {
	return s.metrics
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// jobStats accumulates per-job execution counters.
type jobStats struct {
	executions int64
	failures   int64
	duration   time.Duration
}

// SchedulerMetrics tracks execution counts per job and aggregates them on
// demand.
type SchedulerMetrics struct {
	mu    sync.RWMutex
	byJob map[string]*jobStats
}

// NewSchedulerMetrics creates an empty tracker.
func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{byJob: make(map[string]*jobStats)}
}

func (m *SchedulerMetrics) record(jobName string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.byJob[jobName]
	if stats == nil {
		stats = &jobStats{}
		m.byJob[jobName] = stats
	}
	stats.executions++
	stats.duration += duration
	if !success {
		stats.failures++
	}
}

// MetricsSnapshot aggregates all jobs at a point in time.
type MetricsSnapshot struct {
	TotalExecutions int64
	TotalSuccesses  int64
	TotalFailures   int64
	SuccessRate     float64
	AverageDuration time.Duration
}

// Snapshot rolls the per-job counters up into totals.
func (m *SchedulerMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snap MetricsSnapshot
	var total time.Duration
	for _, stats := range m.byJob {
		snap.TotalExecutions += stats.executions
		snap.TotalFailures += stats.failures
		total += stats.duration
	}
	snap.TotalSuccesses = snap.TotalExecutions - snap.TotalFailures
	if snap.TotalExecutions > 0 {
		snap.SuccessRate = float64(snap.TotalSuccesses) / float64(snap.TotalExecutions)
		snap.AverageDuration = total / time.Duration(snap.TotalExecutions)
	}
	return snap
}
