// internal/adapters/redis_adapter/scan_store.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/ils-tools/internal/core/ports"
)

// ScanStore keeps station collections as JSON strings without expiry
type ScanStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ports.ScanStore = (*ScanStore)(nil)

// NewScanStore creates a redis backed scan store
func NewScanStore(client *redis.Client, logger *slog.Logger) *ScanStore {
	return &ScanStore{
		client: client,
		logger: logger.With(slog.String("component", "scan_store")),
	}
}

// Load decodes the value of key into dest. A missing key or unreadable
// value reports false; connection failures are returned.
func (s *ScanStore) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load collection %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable collection",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

// Save writes the whole collection under key
func (s *ScanStore) Save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save collection %s: %w", key, err)
	}
	return nil
}

// Clear removes keys
func (s *ScanStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}
	return nil
}

// Ping checks if Redis is accessible
func (s *ScanStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
