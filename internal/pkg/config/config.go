// internal/pkg/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig is returned when a required setting is absent
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Store backends
const (
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Okapi    OkapiConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Asynq    AsynqConfig
	AWS      AWSConfig
	Scan     ScanConfig
	Bulk     BulkConfig
	Import   ImportConfig
	Security SecurityConfig
	Server   ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// OkapiConfig describes the catalog backend connection
type OkapiConfig struct {
	URL               string `required:"true"`
	Tenant            string `required:"true"`
	Token             string
	TokenSecretName   string // Secrets Manager secret holding the token
	TokenSecretKey    string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	QueryLimit        int
	LocationsTTL      time.Duration
}

// StoreConfig selects where station collections are persisted
type StoreConfig struct {
	Backend   string
	Retention time.Duration // postgres only, zero keeps collections forever
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	EnableQueryLogging bool
	MigrationRetries   int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	TTL          time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	Concurrency         int
	Queues              map[string]int // queue name -> priority
	StrictPriority      bool
	RetryMax            int
	ShutdownTimeout     time.Duration
	HealthCheckInterval time.Duration
	CleanupCron         string
	MetricsAddr         string // worker /metrics listener
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	S3Bucket             string
	S3Endpoint           string // For MinIO in development
	UsePathStyle         bool
	ExportArchiveEnabled bool
	ExportArchiveDir     string // archive to this directory instead of S3
	PresignTTL           time.Duration
}

// ScanConfig holds the scan screen settings
type ScanConfig struct {
	Debounce          time.Duration
	Highlight         time.Duration
	LookupTimeout     time.Duration
	DiscardLocationID string
	StoreLocationID   string
}

// BulkConfig holds bulk update settings
type BulkConfig struct {
	Concurrency int
	MaxRecords  int
	ResultTTL   time.Duration
}

// ImportConfig holds discard list import settings
type ImportConfig struct {
	MaxSizeMB         int
	TempDir           string
	ProcessingTimeout time.Duration
	CleanupAge        time.Duration
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	SecureHeaders     bool
	RequestIDHeader   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
	EnableMetrics   bool
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults()

	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ils-tools"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Okapi: OkapiConfig{
			URL:               strings.TrimRight(getEnv("OKAPI_URL", ""), "/"),
			Tenant:            getEnv("OKAPI_TENANT", ""),
			Token:             getEnv("OKAPI_TOKEN", ""),
			TokenSecretName:   getEnv("OKAPI_TOKEN_SECRET", ""),
			TokenSecretKey:    getEnv("OKAPI_TOKEN_SECRET_KEY", "OKAPI_TOKEN"),
			Timeout:           getDurationEnv("OKAPI_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getFloatEnv("OKAPI_RATE", 20),
			Burst:             getIntEnv("OKAPI_BURST", 10),
			QueryLimit:        getIntEnv("OKAPI_QUERY_LIMIT", 1000),
			LocationsTTL:      getDurationEnv("OKAPI_LOCATIONS_TTL", 15*time.Minute),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(getEnv("STORE_BACKEND", StoreBackendRedis)),
			Retention: getDurationEnv("STORE_RETENTION", 0),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", "ils"),
			Password:           getEnv("DB_PASSWORD", "ils_dev"),
			Name:               getEnv("DB_NAME", "ils_tools"),
			SSLMode:            getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:     int32(getIntEnv("DB_MAX_CONNECTIONS", 10)),
			MinConnections:     int32(getIntEnv("DB_MIN_CONNECTIONS", 2)),
			MaxConnLifetime:    getDurationEnv("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:    getDurationEnv("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod:  getDurationEnv("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
			EnableQueryLogging: getBoolEnv("DB_QUERY_LOGGING", false),
			MigrationRetries:   getIntEnv("DB_MIGRATION_RETRIES", 5),
		},
		Redis: RedisConfig{
			Host:         redisHost,
			Port:         redisPort,
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			TTL:          getDurationEnv("REDIS_TTL", time.Hour),
		},
		Asynq: AsynqConfig{
			RedisAddr:           fmt.Sprintf("%s:%s", redisHost, redisPort),
			RedisPassword:       getEnv("REDIS_PASSWORD", ""),
			RedisDB:             getIntEnv("ASYNQ_REDIS_DB", 1),
			Concurrency:         getIntEnv("ASYNQ_CONCURRENCY", 5),
			Queues:              parseQueues(getEnv("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
			StrictPriority:      getBoolEnv("ASYNQ_STRICT_PRIORITY", false),
			RetryMax:            getIntEnv("ASYNQ_RETRY_MAX", 3),
			ShutdownTimeout:     getDurationEnv("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthCheckInterval: getDurationEnv("ASYNQ_HEALTH_CHECK_INTERVAL", 30*time.Second),
			CleanupCron:         getEnv("ASYNQ_CLEANUP_CRON", "@every 1h"),
			MetricsAddr:         getEnv("WORKER_METRICS_ADDR", ":9091"),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:             getEnv("AWS_S3_BUCKET", "ils-exports"),
			S3Endpoint:           getEnv("AWS_S3_ENDPOINT", ""),
			UsePathStyle:         getBoolEnv("AWS_S3_PATH_STYLE", env == "development"),
			ExportArchiveEnabled: getBoolEnv("EXPORT_ARCHIVE_ENABLED", false),
			ExportArchiveDir:     getEnv("EXPORT_ARCHIVE_DIR", ""),
			PresignTTL:           getDurationEnv("EXPORT_PRESIGN_TTL", 15*time.Minute),
		},
		Scan: ScanConfig{
			Debounce:          getDurationEnv("SCAN_DEBOUNCE", 300*time.Millisecond),
			Highlight:         getDurationEnv("SCAN_HIGHLIGHT", 3*time.Second),
			LookupTimeout:     getDurationEnv("SCAN_LOOKUP_TIMEOUT", 30*time.Second),
			DiscardLocationID: getEnv("DISCARD_LOCATION_ID", "f9f650d1-3fb9-4d15-9fd3-327893d11056"),
			StoreLocationID:   getEnv("STORE_LOCATION_ID", "4536fdc7-b00a-4cd4-a375-a14f2702fea0"),
		},
		Bulk: BulkConfig{
			Concurrency: getIntEnv("BULK_CONCURRENCY", 8),
			MaxRecords:  getIntEnv("BULK_MAX_RECORDS", 2000),
			ResultTTL:   getDurationEnv("BULK_RESULT_TTL", 24*time.Hour),
		},
		Import: ImportConfig{
			MaxSizeMB:         getIntEnv("IMPORT_MAX_SIZE_MB", 20),
			TempDir:           getEnv("TEMP_DIR", os.TempDir()),
			ProcessingTimeout: getDurationEnv("PROCESSING_TIMEOUT", 5*time.Minute),
			CleanupAge:        getDurationEnv("IMPORT_CLEANUP_AGE", 24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 600),
			RateLimitDuration: getDurationEnv("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    getSliceEnv("ALLOWED_ORIGINS", []string{"*"}),
			SecureHeaders:     getBoolEnv("SECURE_HEADERS", env == "production"),
			RequestIDHeader:   getEnv("REQUEST_ID_HEADER", "X-Request-ID"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:  getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20),
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
			EnableMetrics:   getBoolEnv("ENABLE_METRICS", true),
		},
	}

	if cfg.Okapi.Token == "" && cfg.Okapi.TokenSecretName != "" {
		sm, err := NewAWSSecretsManager(cfg.AWS.Region, cfg.Okapi.TokenSecretName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager: %w", err)
		}
		if err := ResolveOkapiToken(context.Background(), cfg, sm); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ResolveOkapiToken fills Okapi.Token from a secrets manager
func ResolveOkapiToken(ctx context.Context, cfg *Config, sm SecretsManager) error {
	token, err := sm.GetSecret(ctx, cfg.Okapi.TokenSecretKey)
	if err != nil {
		return fmt.Errorf("failed to resolve okapi token: %w", err)
	}
	cfg.Okapi.Token = token
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validators := []Validator{&BasicValidator{}}
	if c.IsProduction() {
		validators = append(validators, &ProductionValidator{})
	}
	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddress returns host:port of the Redis server
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// UsesPostgresStore reports whether station collections live in Postgres
func (c *Config) UsesPostgresStore() bool {
	return c.Store.Backend == StoreBackendPostgres
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "ils-tools")
	viper.SetDefault("STORE_BACKEND", StoreBackendRedis)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
}

func getEnv(key, defaultValue string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := getEnv(key, ""); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	for _, pair := range strings.Split(queuesStr, ",") {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if priority, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && name != "" {
			queues[name] = priority
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
