// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/ils-tools/internal/adapters/db"
	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_ils",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_ils",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	err = db.RunMigrationsWithRetry(context.Background(), &db.MigrationConfig{
		DatabaseURL: dbConfig.URL(),
	}, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates an in-memory Redis instance for testing
func SetupTestRedis(t testing.TB) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return mock, sqlDB
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "ils-tools-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Okapi: config.OkapiConfig{
			URL:          "http://okapi.test",
			Tenant:       "diku",
			Token:        "test-token",
			Timeout:      5 * time.Second,
			QueryLimit:   1000,
			LocationsTTL: time.Minute,
		},
		Store: config.StoreConfig{
			Backend: config.StoreBackendRedis,
		},
		Database: config.DatabaseConfig{
			Host:             "localhost",
			Port:             "5432",
			User:             "test",
			Password:         "test",
			Name:             "test_ils",
			SSLMode:          "disable",
			MaxConnections:   5,
			MinConnections:   1,
			MigrationRetries: 1,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Scan: config.ScanConfig{
			Debounce:          20 * time.Millisecond,
			Highlight:         50 * time.Millisecond,
			LookupTimeout:     5 * time.Second,
			DiscardLocationID: "loc-discard",
			StoreLocationID:   "loc-store",
		},
		Bulk: config.BulkConfig{
			Concurrency: 4,
			MaxRecords:  500,
			ResultTTL:   time.Hour,
		},
		Import: config.ImportConfig{
			MaxSizeMB:         5,
			TempDir:           os.TempDir(),
			ProcessingTimeout: time.Minute,
			CleanupAge:        time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 1000,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
			RequestIDHeader:   "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// ItemRecord builds an inventory item record as the backend returns it
func ItemRecord(id, barcode, holdingID, locationID string, overrides ...func(domain.Record)) domain.Record {
	rec := domain.Record{
		"id":               id,
		"hrid":             "it" + id,
		"barcode":          barcode,
		"holdingsRecordId": holdingID,
		"title":            "Title of " + barcode,
		"contributorNames": []any{map[string]any{"name": "Author " + barcode}},
		"status":           map[string]any{"name": "Available"},
		"permanentLocation": map[string]any{
			"id":   locationID,
			"name": "Location " + locationID,
		},
	}
	for _, o := range overrides {
		o(rec)
	}
	return rec
}

// HoldingRecord builds a holdings record
func HoldingRecord(id, instanceID, locationID string) domain.Record {
	return domain.Record{
		"id":                  id,
		"hrid":                "ho" + id,
		"instanceId":          instanceID,
		"permanentLocationId": locationID,
		"callNumber":          "QA76 " + id,
	}
}

// InstanceRecord builds an instance record carrying one identifier
func InstanceRecord(id, hrid, identifier string) domain.Record {
	return domain.Record{
		"id":    id,
		"hrid":  hrid,
		"title": "Instance " + hrid,
		"identifiers": []any{
			map[string]any{"value": identifier, "identifierTypeId": "isbn"},
		},
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t testing.TB, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}
