// internal/workers/import_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

// Discard list upload formats
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// FormatFromFilename maps an upload's extension to an import format
func FormatFromFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".xlsx":
		return FormatXLSX, true
	case ".pdf":
		return FormatPDF, true
	}
	return "", false
}

// ImportProcessor loads uploaded discard lists into the store
type ImportProcessor struct {
	discard ports.DiscardLog
	jobs    ports.JobTracker
	tempDir string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewImportProcessor creates a new discard list import processor
func NewImportProcessor(discard ports.DiscardLog, jobs ports.JobTracker, tempDir string,
	m *metrics.Metrics, logger *slog.Logger) *ImportProcessor {
	return &ImportProcessor{
		discard: discard,
		jobs:    jobs,
		tempDir: tempDir,
		metrics: m,
		logger:  logger.With(slog.String("processor", "import")),
	}
}

// ProcessDiscardImport parses an uploaded file and replaces the discard list
func (p *ImportProcessor) ProcessDiscardImport(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(TypeDiscardImport, err) }()
	start := time.Now()

	var payload DiscardImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	ctx = logger.WithJobID(ctx, payload.JobID)

	p.logger.InfoContext(ctx, "processing discard list import",
		slog.String("format", payload.Format),
		slog.String("file_path", payload.FilePath))

	_ = p.jobs.Update(ctx, payload.JobID, domain.JobProcessing, nil, nil)

	entries, warnings, err := ParseDiscardFile(ctx, payload.Format, payload.FilePath, p.logger)
	if err != nil {
		_ = p.jobs.Update(ctx, payload.JobID, domain.JobFailed, nil, err)
		p.removeUpload(ctx, payload.FilePath)
		return fmt.Errorf("failed to parse discard list: %v: %w", err, asynq.SkipRetry)
	}

	stored, err := p.discard.ReplaceList(ctx, entries)
	if err != nil {
		_ = p.jobs.Update(ctx, payload.JobID, domain.JobFailed, nil, err)
		if errors.Is(err, domain.ErrInvalidInput) {
			p.removeUpload(ctx, payload.FilePath)
			return fmt.Errorf("discard list rejected: %v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	result := DiscardImportResult{
		Format:         payload.Format,
		EntriesRead:    len(entries),
		EntriesStored:  stored,
		Warnings:       warnings,
		ProcessingTime: time.Since(start).String(),
	}
	state := domain.JobCompleted
	if len(warnings) > 0 {
		state = domain.JobCompletedWithErrors
	}
	_ = p.jobs.Update(ctx, payload.JobID, state, result, nil)

	p.removeUpload(ctx, payload.FilePath)

	p.logger.InfoContext(ctx, "discard list import completed",
		slog.Int("entries_read", result.EntriesRead),
		slog.Int("entries_stored", result.EntriesStored),
		slog.Int("warnings", len(warnings)))

	return nil
}

// ParseDiscardFile reads a discard list in the given upload format.
// Warnings describe rows that were skipped.
func ParseDiscardFile(ctx context.Context, format, path string, logger *slog.Logger) ([]domain.DiscardEntry, []string, error) {
	switch format {
	case FormatJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		entries, err := ParseDiscardJSON(f)
		return entries, nil, err
	case FormatXLSX:
		return ParseDiscardXLSX(path)
	case FormatPDF:
		return ParseDiscardPDF(ctx, path, logger)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidInput, format)
	}
}

// removeUpload deletes files the API saved into the upload directory
func (p *ImportProcessor) removeUpload(ctx context.Context, path string) {
	if p.tempDir == "" || !strings.HasPrefix(filepath.Clean(path), filepath.Clean(p.tempDir)) {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.WarnContext(ctx, "failed to remove upload",
			slog.String("file_path", path),
			slog.String("error", err.Error()))
	}
}

// ParseDiscardJSON reads the {"BusesItems": [...]} layout or a bare array
func ParseDiscardJSON(r io.Reader) ([]domain.DiscardEntry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read discard list: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var entries []domain.DiscardEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: invalid discard list: %v", domain.ErrInvalidInput, err)
		}
		return entries, nil
	}

	var list domain.DiscardList
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("%w: invalid discard list: %v", domain.ErrInvalidInput, err)
	}
	return list.Items, nil
}
