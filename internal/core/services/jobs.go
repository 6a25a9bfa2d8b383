// internal/core/services/jobs.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
)

// JobTracker keeps background job status in the cache so the API and the
// worker see the same record.
type JobTracker struct {
	cache  ports.CacheRepository
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.JobTracker = (*JobTracker)(nil)

// NewJobTracker creates a new job tracker
func NewJobTracker(cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *JobTracker {
	return &JobTracker{
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With(slog.String("service", "job_tracker")),
	}
}

func jobKey(jobID string) string {
	return ports.BuildKey(ports.PrefixJob, jobID)
}

// Create stores a queued job
func (j *JobTracker) Create(ctx context.Context, jobID, kind string) (*domain.JobStatus, error) {
	now := j.now().UTC()
	status := &domain.JobStatus{
		JobID:     jobID,
		Kind:      kind,
		State:     domain.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := j.cache.SetWithTTL(ctx, jobKey(jobID), status, j.ttl); err != nil {
		return nil, fmt.Errorf("failed to store job status: %w", err)
	}
	return status, nil
}

// Update moves a job to state. A job the tracker has never seen is created.
func (j *JobTracker) Update(ctx context.Context, jobID string, state domain.JobState, result any, jobErr error) error {
	status, err := j.Get(ctx, jobID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		j.logger.WarnContext(ctx, "updating unknown job", slog.String("job_id", jobID))
		status = &domain.JobStatus{JobID: jobID, CreatedAt: j.now().UTC()}
	}

	status.State = state
	status.UpdatedAt = j.now().UTC()
	if result != nil {
		status.Result = result
	}
	if jobErr != nil {
		status.Error = jobErr.Error()
	}

	if err := j.cache.SetWithTTL(ctx, jobKey(jobID), status, j.ttl); err != nil {
		return fmt.Errorf("failed to store job status: %w", err)
	}
	return nil
}

// Get returns the status of a job
func (j *JobTracker) Get(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	var status domain.JobStatus
	if err := j.cache.Get(ctx, jobKey(jobID), &status); err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("job %s not found", jobID)}
		}
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}
	return &status, nil
}
