// internal/handlers/import.go
package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
	"github.com/ammerola/ils-tools/internal/workers"
)

// ImportHandler accepts discard list uploads
type ImportHandler struct {
	jobs        ports.JobTracker
	queue       ports.TaskEnqueuer
	maxFileSize int64
	uploadDir   string
	logger      *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(jobs ports.JobTracker, queue ports.TaskEnqueuer, maxFileSize int64, uploadDir string, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		jobs:        jobs,
		queue:       queue,
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
		logger:      logger.With(slog.String("handler", "import")),
	}
}

// ImportDiscardList handles POST /api/v1/import/discard-list
func (h *ImportHandler) ImportDiscardList(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	format, ok := workers.FormatFromFilename(header.Filename)
	if !ok {
		respondError(w, http.StatusBadRequest, "Only JSON, XLSX or PDF files are allowed")
		return
	}

	jobID := uuid.New().String()
	ctx := logger.WithJobID(r.Context(), jobID)

	tempFile, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save upload", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	if _, err := h.jobs.Create(ctx, jobID, workers.JobKindDiscardImport); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to create job record", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to create import job")
		return
	}

	task, err := workers.NewDiscardImportTask(workers.DiscardImportPayload{
		JobID:    jobID,
		FilePath: tempFile,
		Format:   format,
	})
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to create task", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		os.Remove(tempFile)
		_ = h.jobs.Update(ctx, jobID, domain.JobFailed, nil, err)
		h.logger.ErrorContext(ctx, "failed to enqueue task", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "discard list import queued",
		slog.String("task_id", info.ID),
		slog.String("format", format),
		slog.String("filename", header.Filename))

	respondJSON(w, http.StatusAccepted, JobAcceptedResponse{
		JobID:   jobID,
		Status:  string(domain.JobQueued),
		Message: "Discard list import has been queued for processing",
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	respondJob(w, r, h.jobs, h.logger)
}

func (h *ImportHandler) saveUpload(src io.Reader, original string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(h.uploadDir, workers.UploadFileName(original))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, nil
}
