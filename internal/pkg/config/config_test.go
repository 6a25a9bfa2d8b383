package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/ils-tools/internal/pkg/logger"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("OKAPI_URL", "https://okapi.example.org/")
	t.Setenv("OKAPI_TENANT", "diku")
	t.Setenv("OKAPI_TOKEN", "token-value")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(logger.NewLogger(nil))
	require.NoError(t, err)

	assert.Equal(t, "https://okapi.example.org", cfg.Okapi.URL)
	assert.Equal(t, "diku", cfg.Okapi.Tenant)
	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.Equal(t, 300*time.Millisecond, cfg.Scan.Debounce)
	assert.Equal(t, 3*time.Second, cfg.Scan.Highlight)
	assert.Equal(t, "f9f650d1-3fb9-4d15-9fd3-327893d11056", cfg.Scan.DiscardLocationID)
	assert.Equal(t, 8, cfg.Bulk.Concurrency)
	assert.False(t, cfg.UsesPostgresStore())
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("SCAN_DEBOUNCE", "150ms")
	t.Setenv("BULK_CONCURRENCY", "3")
	t.Setenv("ASYNQ_QUEUES", "critical:4, low:1")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(logger.NewLogger(nil))
	require.NoError(t, err)

	assert.True(t, cfg.UsesPostgresStore())
	assert.Equal(t, 150*time.Millisecond, cfg.Scan.Debounce)
	assert.Equal(t, 3, cfg.Bulk.Concurrency)
	assert.Equal(t, map[string]int{"critical": 4, "low": 1}, cfg.Asynq.Queues)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing_tenant",
			env:     map[string]string{"OKAPI_TENANT": ""},
			wantErr: "Okapi.Tenant",
		},
		{
			name:    "relative_url",
			env:     map[string]string{"OKAPI_URL": "okapi"},
			wantErr: "not an absolute URL",
		},
		{
			name:    "unknown_backend",
			env:     map[string]string{"STORE_BACKEND": "sqlite"},
			wantErr: "unknown store backend",
		},
		{
			name:    "production_wildcard_origin",
			env:     map[string]string{"APP_ENV": "production", "SECURE_HEADERS": "true"},
			wantErr: "wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(logger.NewLogger(nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type fakeSecretClient struct {
	calls  int
	secret string
}

func (f *fakeSecretClient) GetSecretValue(_ context.Context, _ *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.secret)}, nil
}

func TestResolveOkapiToken(t *testing.T) {
	t.Run("from_secrets_manager_with_cache", func(t *testing.T) {
		client := &fakeSecretClient{secret: `{"OKAPI_TOKEN":"from-aws"}`}
		sm := NewAWSSecretsManagerWithClient(client, "ils/okapi", logger.NewLogger(nil))
		cfg := &Config{Okapi: OkapiConfig{TokenSecretKey: "OKAPI_TOKEN"}}

		require.NoError(t, ResolveOkapiToken(context.Background(), cfg, sm))
		require.NoError(t, ResolveOkapiToken(context.Background(), cfg, sm))

		assert.Equal(t, "from-aws", cfg.Okapi.Token)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("missing_key", func(t *testing.T) {
		client := &fakeSecretClient{secret: `{"OTHER":"x"}`}
		sm := NewAWSSecretsManagerWithClient(client, "ils/okapi", logger.NewLogger(nil))
		cfg := &Config{Okapi: OkapiConfig{TokenSecretKey: "OKAPI_TOKEN"}}

		err := ResolveOkapiToken(context.Background(), cfg, sm)
		assert.True(t, errors.Is(err, ErrMissingRequiredConfig))
	})

	t.Run("from_environment", func(t *testing.T) {
		t.Setenv("ILS_TEST_TOKEN", "env-token")
		cfg := &Config{Okapi: OkapiConfig{TokenSecretKey: "ILS_TEST_TOKEN"}}

		require.NoError(t, ResolveOkapiToken(context.Background(), cfg, NewEnvSecretsManager()))
		assert.Equal(t, "env-token", cfg.Okapi.Token)
	})
}
