// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/ils-tools/internal/adapters/db"
	"github.com/ammerola/ils-tools/internal/core/ports"
)

// CleanupProcessor handles periodic cleanup tasks
type CleanupProcessor struct {
	store     *sql.DB // nil unless collections live in postgres
	notifier  ports.PurgeNotifier
	tempDir   string
	maxAge    time.Duration
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor. A zero retention
// keeps station collections forever. notifier may be nil.
func NewCleanupProcessor(store *sql.DB, notifier ports.PurgeNotifier, tempDir string, maxAge, retention time.Duration,
	logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		store:     store,
		notifier:  notifier,
		tempDir:   tempDir,
		maxAge:    maxAge,
		retention: retention,
		now:       time.Now,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupTempFiles removes abandoned discard list uploads
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files", slog.String("dir", p.tempDir))

	cutoff := p.now().Add(-p.maxAge)
	var deletedCount int
	err := filepath.WalkDir(p.tempDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == p.tempDir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !isUpload(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up", slog.Int("files_deleted", deletedCount))
	return nil
}

// CleanupStore drops the collections of stations nobody wrote to within the
// retention and tells the API to forget its cached copies
func (p *CleanupProcessor) CleanupStore(ctx context.Context, t *asynq.Task) error {
	if p.store == nil || p.retention <= 0 {
		return nil
	}

	stations, err := db.PurgeStale(ctx, p.store, p.now().Add(-p.retention))
	if err != nil {
		return fmt.Errorf("failed to cleanup store: %w", err)
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyPurged(ctx, stations); err != nil {
			p.logger.WarnContext(ctx, "failed to announce purged stations",
				slog.Any("stations", stations),
				slog.String("error", err.Error()))
		}
	}

	p.logger.InfoContext(ctx, "stale stations purged",
		slog.Int("stations", len(stations)),
		slog.Any("station_ids", stations))
	return nil
}

// isUpload matches files named by the import handler
func isUpload(name string) bool {
	_, ok := FormatFromFilename(name)
	return ok && strings.HasPrefix(name, uploadPrefix)
}
