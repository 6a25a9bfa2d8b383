// internal/workers/bulk_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

// BulkProcessor runs bulk updates queued with ?async=true
type BulkProcessor struct {
	editor  ports.BulkEditor
	jobs    ports.JobTracker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewBulkProcessor creates a new bulk update processor
func NewBulkProcessor(editor ports.BulkEditor, jobs ports.JobTracker, m *metrics.Metrics, logger *slog.Logger) *BulkProcessor {
	return &BulkProcessor{
		editor:  editor,
		jobs:    jobs,
		metrics: m,
		logger:  logger.With(slog.String("processor", "bulk")),
	}
}

// ProcessBulkUpdate applies one queued bulk update and records its outcome
func (p *BulkProcessor) ProcessBulkUpdate(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(TypeBulkUpdate, err) }()
	start := time.Now()

	var payload BulkUpdatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	ctx = logger.WithJobID(ctx, payload.JobID)

	p.logger.InfoContext(ctx, "processing bulk update",
		slog.Int("holdings", len(payload.Request.WorkingSet.Holdings)),
		slog.Int("items", len(payload.Request.WorkingSet.Items)))

	_ = p.jobs.Update(ctx, payload.JobID, domain.JobProcessing, nil, nil)

	result, err := p.editor.ApplyBulkUpdate(ctx, payload.Request)
	if err != nil {
		_ = p.jobs.Update(ctx, payload.JobID, domain.JobFailed, nil, err)
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrValidationGap) {
			return fmt.Errorf("bulk update rejected: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("bulk update failed: %w", err)
	}

	state := domain.JobCompleted
	if partial := result.Err(); partial != nil {
		state = domain.JobCompletedWithErrors
		_ = p.jobs.Update(ctx, payload.JobID, state, result, partial)
	} else {
		_ = p.jobs.Update(ctx, payload.JobID, state, result, nil)
	}

	p.logger.InfoContext(ctx, "bulk update completed",
		slog.String("status", string(state)),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", time.Since(start)))

	return nil
}
