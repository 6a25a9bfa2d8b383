// cmd/api/main.go
package main

import (
	"context"
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
	"github.com/ammerola/ils-tools/internal/adapters/storage"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/internal/handlers"
	"github.com/ammerola/ils-tools/internal/handlers/middleware"
	"github.com/ammerola/ils-tools/internal/pkg/config"
	"github.com/ammerola/ils-tools/internal/pkg/debounce"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting ils staff tools api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.String("store_backend", cfg.Store.Backend),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	metrics        *metrics.Metrics
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	debouncer      *debounce.Debouncer
	stopPurges     context.CancelFunc

	routes handlers.Routes
}

func (d *dependencies) cleanup() {
	if d.stopPurges != nil {
		d.stopPurges()
	}
	// pending debounced lookups are dropped, scans already recorded are persisted
	if d.debouncer != nil {
		d.debouncer.Stop()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	if cfg.Server.EnableMetrics {
		deps.metrics = metrics.New()
	}

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)
	redisClient := newRedisClient(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	store, database, err := openStore(ctx, cfg, redisClient, logger)
	if err != nil {
		return nil, err
	}
	deps.database = database

	checkOkapiToken(cfg, logger)
	registry := okapi.NewClient(&okapi.Config{
		URL:               cfg.Okapi.URL,
		Tenant:            cfg.Okapi.Tenant,
		Token:             cfg.Okapi.Token,
		Timeout:           cfg.Okapi.Timeout,
		RequestsPerSecond: cfg.Okapi.RequestsPerSecond,
		Burst:             cfg.Okapi.Burst,
		QueryLimit:        cfg.Okapi.QueryLimit,
	}, deps.metrics, logger)

	logger.Info("initializing Asynq client")
	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	archive, err := openArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Services
	lookup := services.NewCatalogLookup(registry, cache, cfg.Okapi.Tenant,
		cfg.Okapi.LocationsTTL, cfg.Bulk.Concurrency, logger)
	aggregator := services.NewScanAggregator(registry, store, deps.metrics, services.ScanSettings{
		Highlight:         cfg.Scan.Highlight,
		DiscardLocationID: cfg.Scan.DiscardLocationID,
		StoreLocationID:   cfg.Scan.StoreLocationID,
	}, logger)
	discard := services.NewDiscardLog(store, deps.metrics, cfg.Scan.Highlight, logger)
	editor := services.NewBulkEditor(registry, lookup, services.BulkSettings{
		Concurrency: cfg.Bulk.Concurrency,
		MaxRecords:  cfg.Bulk.MaxRecords,
	}, deps.metrics, logger)
	notes := services.NewNotesEditor(registry, store, cfg.Bulk.Concurrency, deps.metrics, logger)
	jobs := services.NewJobTracker(cache, cfg.Bulk.ResultTTL, logger)

	// the worker purges idle stations from postgres; cached copies must go too
	if cfg.UsesPostgresStore() && cfg.Store.Retention > 0 {
		listenCtx, cancel := context.WithCancel(context.Background())
		purges := redis_a.NewPurgeEvents(redisClient, logger)
		if err := purges.Listen(listenCtx, aggregator, discard, notes); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to listen for store purges: %w", err)
		}
		deps.stopPurges = cancel
	}

	// Handlers
	deps.debouncer = debounce.New(cfg.Scan.Debounce)
	deps.routes.Inventory = handlers.NewInventoryHandler(aggregator, deps.debouncer, cfg.Scan.LookupTimeout, logger)
	deps.routes.Discard = handlers.NewDiscardHandler(discard, deps.debouncer, cfg.Scan.LookupTimeout, logger)
	deps.routes.Export = handlers.NewExportHandler(aggregator, discard, archive, cfg.AWS.PresignTTL, logger)
	deps.routes.Notes = handlers.NewNotesHandler(notes, logger)
	deps.routes.Catalog = handlers.NewCatalogHandler(lookup, logger)
	deps.routes.Bulk = handlers.NewBulkHandler(editor, jobs, deps.asynqClient, logger)

	maxFileSize := int64(cfg.Import.MaxSizeMB) * 1024 * 1024
	deps.routes.Import = handlers.NewImportHandler(jobs, deps.asynqClient, maxFileSize, cfg.Import.TempDir, logger)

	var healthDB ports.Database
	if database != nil {
		healthDB = database
	}
	deps.routes.Health = handlers.NewHealthHandler(store, healthDB, redisClient, deps.asynqInspector,
		registry, cfg, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
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
}

// openStore selects the backend holding station collections. The database
// is returned only for the postgres backend.
func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (ports.ScanStore, *db.Database, error) {
	if !cfg.UsesPostgresStore() {
		return redis_a.NewScanStore(redisClient, logger), nil, nil
	}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)
	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := runMigrations(ctx, cfg, logger); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db.NewScanStore(database.SQL(), logger), database, nil
}

// openArchive returns nil when exports are not archived
func openArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ExportArchive, error) {
	if !cfg.AWS.ExportArchiveEnabled {
		return nil, nil
	}
	if cfg.AWS.ExportArchiveDir != "" {
		logger.Info("archiving exports locally", slog.String("dir", cfg.AWS.ExportArchiveDir))
		return storage.NewLocalStorage(cfg.AWS.ExportArchiveDir, logger), nil
	}

	archive, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize export archive: %w", err)
	}
	return archive, nil
}

// checkOkapiToken warns early about a token that the gateway will reject
func checkOkapiToken(cfg *config.Config, logger *slog.Logger) {
	if cfg.Okapi.Token == "" {
		logger.Warn("no okapi token configured")
		return
	}

	info, err := okapi.CheckToken(cfg.Okapi.Token, cfg.Okapi.Tenant, time.Now())
	if err != nil {
		logger.Warn("okapi token check failed", slog.String("error", err.Error()))
		return
	}

	attrs := []any{slog.String("subject", info.Subject), slog.String("tenant", cfg.Okapi.Tenant)}
	if info.ExpiresAt != nil {
		attrs = append(attrs, slog.Time("expires_at", *info.ExpiresAt))
	}
	logger.Info("okapi token accepted", attrs...)
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	if cfg.Server.EnableMetrics {
		deps.routes.Metrics = deps.metrics.Handler()
	}
	deps.routes.Register(mux)

	// Metrics wraps the mux directly so r.Pattern is populated
	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	}
	if cfg.Security.RateLimitRequests > 0 {
		mws = append(mws, middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration))
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}
	handler := middleware.Chain(middleware.Metrics(deps.metrics)(mux), mws...)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, cfg.Database.MigrationRetries)
}
