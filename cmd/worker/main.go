// cmd/worker/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/ils-tools/internal/adapters/db"
	"github.com/ammerola/ils-tools/internal/adapters/okapi"
	redis_a "github.com/ammerola/ils-tools/internal/adapters/redis_adapter"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/internal/pkg/config"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
	"github.com/ammerola/ils-tools/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr),
		slog.String("store_backend", cfg.Store.Backend))

	ctx := context.Background()

	var m *metrics.Metrics
	if cfg.Server.EnableMetrics {
		m = metrics.New()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slogger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	// Station collections: the worker writes the discard list and purges stale rows
	var (
		store ports.ScanStore
		sqlDB *sql.DB
	)
	if cfg.UsesPostgresStore() {
		database, err := initDatabase(ctx, cfg, slogger)
		if err != nil {
			slogger.Error("failed to initialize database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()
		sqlDB = database.SQL()
		store = db.NewScanStore(sqlDB, slogger)
	} else {
		store = redis_a.NewScanStore(redisClient, slogger)
	}

	registry := okapi.NewClient(&okapi.Config{
		URL:               cfg.Okapi.URL,
		Tenant:            cfg.Okapi.Tenant,
		Token:             cfg.Okapi.Token,
		Timeout:           cfg.Okapi.Timeout,
		RequestsPerSecond: cfg.Okapi.RequestsPerSecond,
		Burst:             cfg.Okapi.Burst,
		QueryLimit:        cfg.Okapi.QueryLimit,
	}, m, slogger)

	lookup := services.NewCatalogLookup(registry, cache, cfg.Okapi.Tenant,
		cfg.Okapi.LocationsTTL, cfg.Bulk.Concurrency, slogger)
	editor := services.NewBulkEditor(registry, lookup, services.BulkSettings{
		Concurrency: cfg.Bulk.Concurrency,
		MaxRecords:  cfg.Bulk.MaxRecords,
	}, m, slogger)
	discard := services.NewDiscardLog(store, m, cfg.Scan.Highlight, slogger)
	jobs := services.NewJobTracker(cache, cfg.Bulk.ResultTTL, slogger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()

	bulkProcessor := workers.NewBulkProcessor(editor, jobs, m, slogger)
	mux.HandleFunc(workers.TypeBulkUpdate, bulkProcessor.ProcessBulkUpdate)

	importProcessor := workers.NewImportProcessor(discard, jobs, cfg.Import.TempDir, m, slogger)
	mux.Handle(workers.TypeDiscardImport, withTimeout(cfg.Import.ProcessingTimeout, importProcessor.ProcessDiscardImport))

	purges := redis_a.NewPurgeEvents(redisClient, slogger)
	cleanupProcessor := workers.NewCleanupProcessor(sqlDB, purges, cfg.Import.TempDir,
		cfg.Import.CleanupAge, cfg.Store.Retention, slogger)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanupProcessor.CleanupTempFiles)
	mux.HandleFunc(workers.TypeCleanupStore, cleanupProcessor.CleanupStore)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(slogger),
	})
	if err := registerPeriodicTasks(scheduler, cfg); err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	var metricsServer *http.Server
	if m != nil {
		metricsServer = &http.Server{
			Addr:              cfg.Asynq.MetricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slogger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("cleanup_cron", cfg.Asynq.CleanupCron))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		cancel()
	}
	slogger.Info("worker shutdown complete")
}

func registerPeriodicTasks(scheduler *asynq.Scheduler, cfg *config.Config) error {
	if cfg.Asynq.CleanupCron == "" {
		return nil
	}

	if _, err := scheduler.Register(cfg.Asynq.CleanupCron,
		asynq.NewTask(workers.TypeCleanupTempFiles, nil), asynq.Queue("low")); err != nil {
		return fmt.Errorf("failed to schedule temp file cleanup: %w", err)
	}

	if cfg.UsesPostgresStore() && cfg.Store.Retention > 0 {
		if _, err := scheduler.Register(cfg.Asynq.CleanupCron,
			asynq.NewTask(workers.TypeCleanupStore, nil), asynq.Queue("low")); err != nil {
			return fmt.Errorf("failed to schedule store cleanup: %w", err)
		}
	}
	return nil
}

// withTimeout bounds a task handler
func withTimeout(d time.Duration, fn asynq.HandlerFunc) asynq.Handler {
	if d <= 0 {
		return fn
	}
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fn(ctx, t)
	})
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     4, // Fewer connections for worker
		MinConnections:     1,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	// payloads carry working sets and upload paths, not secrets
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.Int("payload_bytes", len(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
