// internal/adapters/db/scan_store.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/ammerola/ils-tools/internal/core/ports"
)

const scanStoreTable = "scan_store"

// scanStore persists station collections as JSONB rows keyed by store key
type scanStore struct {
	db     *sql.DB
	psql   squirrel.StatementBuilderType
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.ScanStore = (*scanStore)(nil)

// NewScanStore creates a postgres backed scan store
func NewScanStore(db *sql.DB, logger *slog.Logger) ports.ScanStore {
	return &scanStore{
		db:     db,
		psql:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:    time.Now,
		logger: logger.With(slog.String("repository", "scan_store")),
	}
}

// Load decodes the stored payload of key into dest
func (s *scanStore) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	query, args, err := s.psql.Select("payload").
		From(scanStoreTable).
		Where(squirrel.Eq{"store_key": key}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build load query: %w", err)
	}

	var payload []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load collection %s: %w", key, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable collection",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

// Save upserts the whole collection under key
func (s *scanStore) Save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", key, err)
	}

	query, args, err := s.psql.Insert(scanStoreTable).
		Columns("store_key", "payload", "updated_at").
		Values(key, payload, s.now().UTC()).
		Suffix("ON CONFLICT (store_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save collection %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "collection saved",
		slog.String("key", key),
		slog.Int("bytes", len(payload)))
	return nil
}

// Clear deletes the rows of keys
func (s *scanStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := s.psql.Delete(scanStoreTable).
		Where(squirrel.Eq{"store_key": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}
	return nil
}

// Ping checks the connection
func (s *scanStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const (
	stationPart    = "split_part(store_key, ':', 2)"
	collectionPart = "split_part(store_key, ':', 3)"
)

// PurgeStale removes every collection of the stations whose newest write is
// older than cutoff and returns those stations. Keys outside the station
// namespace, such as the shared discard list, are never touched.
func PurgeStale(ctx context.Context, db *sql.DB, cutoff time.Time) ([]string, error) {
	stationKeys := squirrel.And{
		squirrel.Like{"store_key": "ils:%"},
		squirrel.Eq{collectionPart: ports.StationCollections},
	}
	stale := squirrel.Select(stationPart).
		From(scanStoreTable).
		Where(stationKeys).
		GroupBy(stationPart).
		Having("MAX(updated_at) < ?", cutoff.UTC())

	query, args, err := squirrel.Delete(scanStoreTable).
		Where(stationKeys).
		Where(squirrel.Expr(stationPart+" IN (?)", stale)).
		Suffix("RETURNING " + stationPart).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build purge query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to purge stale collections: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var stations []string
	for rows.Next() {
		var station string
		if err := rows.Scan(&station); err != nil {
			return nil, fmt.Errorf("failed to scan purged station: %w", err)
		}
		if !seen[station] {
			seen[station] = true
			stations = append(stations, station)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read purged stations: %w", err)
	}
	return stations, nil
}
