// Package main is the entry point for the internship marketplace API server.
//
// Wiring order: config, logger, PostgreSQL, Redis (optional), event bus,
// repositories, command/query handlers, notification event handlers,
// background scheduler, HTTP server. Shutdown runs in reverse on SIGINT,
// SIGTERM or SIGHUP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/internhub/internhub-backend/config"
	"github.com/internhub/internhub-backend/internal/application/command"
	"github.com/internhub/internhub-backend/internal/application/eventhandler"
	"github.com/internhub/internhub-backend/internal/application/query"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/infrastructure/messaging"
	"github.com/internhub/internhub-backend/internal/infrastructure/persistence/postgres"
	"github.com/internhub/internhub-backend/internal/infrastructure/persistence/redis"
	"github.com/internhub/internhub-backend/internal/infrastructure/scheduler"
	"github.com/internhub/internhub-backend/internal/infrastructure/scheduler/jobs"
	httpapi "github.com/internhub/internhub-backend/internal/interface/http"
	"github.com/internhub/internhub-backend/internal/interface/http/handlers"
	"github.com/internhub/internhub-backend/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	// .env is a local development convenience; deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logger
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.Setup(logger.Options{
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
		Format: logger.ParseFormat(cfg.Observability.LogFormat),
	})

	log.Info("starting api server",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	dbCtx, dbCancel := context.WithTimeout(ctx, 30*time.Second)
	conn, err := postgres.NewConnectionFromURL(dbCtx, cfg.Database.URL)
	dbCancel()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info("database connected")

	if cfg.Database.AutoMigrate {
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Redis (optional, degrades to uncached reads)
	// ─────────────────────────────────────────────────────────────────────────
	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}
		if cfg.Redis.DialTimeout > 0 {
			redisCfg.DialTimeout = cfg.Redis.DialTimeout
		}
		if cfg.Redis.ReadTimeout > 0 {
			redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		}
		if cfg.Redis.WriteTimeout > 0 {
			redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
		}

		cache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			log.Info("redis connected", "addr", redisCfg.Addr())
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.AsyncMode = cfg.EventBus.AsyncMode
	busCfg.WorkerPoolSize = cfg.EventBus.WorkerPoolSize
	busCfg.Logger = log

	var bus messaging.EventBus
	if cfg.EventBus.RedisEnabled && cache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         &redisBusClient{cache: cache},
			ChannelName:    cfg.EventBus.ChannelName,
			LocalBusConfig: busCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("create redis event bus: %w", err)
		}
		bus = redisBus
		log.Info("event bus ready", "mode", "redis", "channel", cfg.EventBus.ChannelName)
	} else {
		bus = messaging.NewInMemoryEventBus(busCfg)
		log.Info("event bus ready", "mode", "in-memory", "workers", busCfg.WorkerPoolSize)
	}
	defer bus.Close()

	// An optional buffering layer batches publish bursts. The deferred closes
	// run in reverse order, so the buffer flushes before the bus shuts down.
	if cfg.EventBus.BufferSize > 0 {
		buffered := messaging.NewBufferedEventBus(messaging.BufferedEventBusConfig{
			Inner:         bus,
			BufferSize:    cfg.EventBus.BufferSize,
			FlushInterval: cfg.EventBus.FlushInterval,
			Logger:        log,
		})
		defer buffered.Close()
		bus = buffered
		log.Info("event bus buffering enabled",
			"buffer_size", cfg.EventBus.BufferSize,
			"flush_interval", cfg.EventBus.FlushInterval.String(),
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Repositories
	// ─────────────────────────────────────────────────────────────────────────
	applicationRepo := postgres.NewApplicationRepository(conn)
	internshipRepo := postgres.NewInternshipRepository(conn)
	studentDir := postgres.NewStudentDirectory(conn)
	companyDir := postgres.NewCompanyDirectory(conn)
	notificationRepo := postgres.NewNotificationRepository(conn)

	var notifications notification.Repository = notificationRepo
	if cache != nil {
		notifications = redis.NewNotificationCache(notificationRepo, cache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Command and query handlers
	// ─────────────────────────────────────────────────────────────────────────
	applyHandler := command.NewApplyToInternshipHandler(applicationRepo, internshipRepo, studentDir, bus, log)
	updateStatusHandler := command.NewUpdateApplicationStatusHandler(applicationRepo, internshipRepo, companyDir, bus, log)
	withdrawHandler := command.NewWithdrawApplicationHandler(applicationRepo, studentDir, bus, log)
	reviewHandler := command.NewReviewInternshipHandler(internshipRepo, bus, log)
	verifyHandler := command.NewVerifyCompanyHandler(companyDir, bus, log)
	markReadHandler := command.NewMarkNotificationReadHandler(notifications)

	studentAppsHandler := query.NewListStudentApplicationsHandler(applicationRepo)
	companyAppsHandler := query.NewListCompanyApplicationsHandler(applicationRepo)
	internshipAppsHandler := query.NewListInternshipApplicationsHandler(applicationRepo, internshipRepo, companyDir)
	getApplicationHandler := query.NewGetApplicationHandler(applicationRepo, internshipRepo, studentDir, companyDir)
	companyStatsHandler := query.NewGetCompanyStatsHandler(applicationRepo)
	notificationsHandler := query.NewListNotificationsHandler(notifications)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. Notification event handlers
	// ─────────────────────────────────────────────────────────────────────────
	flags := cfg.Features

	onCreated := eventhandler.NewOnApplicationCreatedHandler(
		internshipRepo, studentDir, notifications, log,
		eventhandler.DefaultApplicationCreatedConfig(),
	)
	onStatusChanged := eventhandler.NewOnStatusChangedHandler(
		internshipRepo, studentDir, notifications, log,
		eventhandler.StatusChangedConfig{
			NotifySelfChanges: cfg.Notifications.NotifySelfChanges,
		},
	)
	onWithdrawn := eventhandler.NewOnApplicationWithdrawnHandler(
		internshipRepo, studentDir, notifications, log,
	)
	onReviewed := eventhandler.NewOnInternshipReviewedHandler(
		internshipRepo, studentDir, companyDir, notifications, log,
		eventhandler.InternshipReviewedConfig{
			SkillMatchEnabled: cfg.Notifications.SkillMatchEnabled &&
				flags.IsEnabled(config.FeatureNotifySkillMatch, nil),
			FanOutTimeout: cfg.Notifications.FanOutTimeout,
			MaxRecipients: cfg.Notifications.MaxSkillMatchRecipients,
		},
	)
	onVerified := eventhandler.NewOnCompanyVerifiedHandler(notifications, log)

	// Handlers run behind the dispatcher for panic recovery, retries with
	// backoff, and a dead letter queue for events that keep failing.
	dispatcher := messaging.NewDispatcherBuilder(bus).
		WithWorkerPoolSize(cfg.EventBus.WorkerPoolSize).
		WithLogger(log).
		Build()
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	type eventSubscription struct {
		handler interface {
			EventType() shared.EventType
			Handle(event shared.Event) error
		}
		flag string
	}
	all := []eventSubscription{
		{onCreated, config.FeatureNotifyNewApplication},
		{onStatusChanged, config.FeatureNotifyStatusUpdate},
		{onWithdrawn, config.FeatureNotifyStatusUpdate},
		{onReviewed, config.FeatureNotifyInternshipApproval},
		{onVerified, config.FeatureNotifyCompanyVerification},
	}
	subscriptions := make([]interface {
		EventType() shared.EventType
		Handle(event shared.Event) error
	}, 0, len(all))
	for _, sub := range all {
		if !flags.IsEnabled(sub.flag, nil) {
			log.Info("notification handler disabled by feature flag",
				"event", string(sub.handler.EventType()), "flag", sub.flag)
			continue
		}
		subscriptions = append(subscriptions, sub.handler)
	}
	for _, h := range subscriptions {
		if err := dispatcher.Register(h.EventType(), string(h.EventType()), h.Handle); err != nil {
			return fmt.Errorf("register %s: %w", h.EventType(), err)
		}
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}
	defer dispatcher.Stop()
	log.Info("event handlers registered", "count", len(subscriptions))

	// ─────────────────────────────────────────────────────────────────────────
	// 9. Background scheduler
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:        log,
			Timezone:      cfg.App.Location,
			EnableMetrics: cfg.Observability.MetricsEnabled,
		})

		sweepJob := jobs.NewDeadlineSweepJob(internshipRepo, log, jobs.DeadlineSweepConfig{
			Timeout: cfg.Scheduler.JobTimeout,
		})
		if err := sched.Register(sweepJob, scheduler.NewIntervalSchedule(cfg.Scheduler.DeadlineSweepInterval)); err != nil {
			return fmt.Errorf("register deadline sweep: %w", err)
		}

		cleanupSchedule, err := scheduler.ParseCronExpression(cfg.Scheduler.CleanupSchedule)
		if err != nil {
			return fmt.Errorf("parse cleanup schedule: %w", err)
		}
		cleanupJob := jobs.NewCleanupNotificationsJob(notificationRepo, log, jobs.CleanupNotificationsConfig{
			Retention: cfg.Scheduler.NotificationRetention,
			Timeout:   cfg.Scheduler.JobTimeout,
		})
		if err := sched.Register(cleanupJob, cleanupSchedule); err != nil {
			return fmt.Errorf("register notification cleanup: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
		log.Info("scheduler started",
			"deadline_sweep_interval", cfg.Scheduler.DeadlineSweepInterval.String(),
			"cleanup_schedule", cfg.Scheduler.CleanupSchedule,
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("database", handlers.NewDatabaseCheck(conn))
	if cache != nil {
		health.AddCheck("cache", handlers.NewCacheCheck(cache))
	}

	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableMetrics = cfg.Observability.MetricsEnabled

	server := httpapi.NewServer(serverCfg, httpapi.Dependencies{
		ApplyHandler:        applyHandler,
		UpdateStatusHandler: updateStatusHandler,
		WithdrawHandler:     withdrawHandler,
		ReviewHandler:       reviewHandler,
		VerifyHandler:       verifyHandler,
		MarkReadHandler:     markReadHandler,

		StudentApplicationsHandler:    studentAppsHandler,
		CompanyApplicationsHandler:    companyAppsHandler,
		InternshipApplicationsHandler: internshipAppsHandler,
		GetApplicationHandler:         getApplicationHandler,
		CompanyStatsHandler:           companyStatsHandler,
		NotificationsHandler:          notificationsHandler,

		Logger:        log,
		HealthChecker: health,
	})

	errCh := server.StartAsync()
	log.Info("http server listening", "addr", serverCfg.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 11. Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}

// redisBusClient adapts the cache client to the event bus transport interface.
// Close is a no-op: the cache owns the underlying connection.
type redisBusClient struct {
	cache *redis.Cache
}

func (c *redisBusClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.cache.Publish(ctx, channel, message)
}

func (c *redisBusClient) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	pubsub := c.cache.Subscribe(ctx, channels...)

	out := make(chan messaging.RedisMessage)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			}
		}
	}()

	return out, nil
}

func (c *redisBusClient) Close() error {
	return nil
}
