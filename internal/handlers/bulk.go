// internal/handlers/bulk.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
	"github.com/ammerola/ils-tools/internal/workers"
)

// BulkUpdateResponse is returned by a synchronous bulk update
type BulkUpdateResponse struct {
	*domain.BulkResult
	FailedIDs []string `json:"failedIds,omitempty"`
}

// JobAcceptedResponse is returned when work was queued
type JobAcceptedResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BulkHandler applies bulk field edits
type BulkHandler struct {
	editor ports.BulkEditor
	jobs   ports.JobTracker
	queue  ports.TaskEnqueuer
	logger *slog.Logger
}

// NewBulkHandler creates a new bulk update handler
func NewBulkHandler(editor ports.BulkEditor, jobs ports.JobTracker, queue ports.TaskEnqueuer, logger *slog.Logger) *BulkHandler {
	return &BulkHandler{
		editor: editor,
		jobs:   jobs,
		queue:  queue,
		logger: logger.With(slog.String("handler", "bulk")),
	}
}

// ApplyBulkUpdate handles POST /api/v1/bulk-updates[?async=true]
func (h *BulkHandler) ApplyBulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.BulkEditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.WorkingSet.Size() == 0 {
		respondError(w, http.StatusBadRequest, "Working set is empty")
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		h.enqueue(w, r, req)
		return
	}

	result, err := h.editor.ApplyBulkUpdate(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "bulk update rejected", slog.String("error", err.Error()))
		respondDomainError(w, err, "Failed to apply bulk update")
		return
	}

	status := http.StatusOK
	var partial *domain.PartialBulkFailure
	if errors.As(result.Err(), &partial) {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, BulkUpdateResponse{BulkResult: result, FailedIDs: result.FailedIDs()})
}

func (h *BulkHandler) enqueue(w http.ResponseWriter, r *http.Request, req domain.BulkEditRequest) {
	jobID := uuid.New().String()
	ctx := logger.WithJobID(r.Context(), jobID)

	if _, err := h.jobs.Create(ctx, jobID, workers.JobKindBulkUpdate); err != nil {
		h.logger.ErrorContext(ctx, "failed to create job record", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to create bulk update job")
		return
	}

	task, err := workers.NewBulkUpdateTask(workers.BulkUpdatePayload{JobID: jobID, Request: req})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create task", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue bulk update")
		return
	}

	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		_ = h.jobs.Update(ctx, jobID, domain.JobFailed, nil, err)
		h.logger.ErrorContext(ctx, "failed to enqueue task", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue bulk update")
		return
	}

	h.logger.InfoContext(ctx, "bulk update queued",
		slog.String("task_id", info.ID),
		slog.Int("records", req.WorkingSet.Size()))

	respondJSON(w, http.StatusAccepted, JobAcceptedResponse{
		JobID:   jobID,
		Status:  string(domain.JobQueued),
		Message: "Bulk update has been queued for processing",
	})
}

// GetJob handles GET /api/v1/bulk-updates/{jobId}
func (h *BulkHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	respondJob(w, r, h.jobs, h.logger)
}

// respondJob writes the tracked status of the {jobId} path value
func respondJob(w http.ResponseWriter, r *http.Request, jobs ports.JobTracker, log *slog.Logger) {
	jobID := r.PathValue("jobId")
	if _, err := uuid.Parse(jobID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	status, err := jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Job not found")
			return
		}
		log.ErrorContext(r.Context(), "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}
