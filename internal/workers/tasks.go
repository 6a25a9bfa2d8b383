// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

const (
	TypeBulkUpdate       = "bulk:update"
	TypeDiscardImport    = "discard:import"
	TypeCleanupTempFiles = "cleanup:temp_files"
	TypeCleanupStore     = "cleanup:store"
)

// Job kinds reported through the job tracker
const (
	JobKindBulkUpdate    = "bulk_update"
	JobKindDiscardImport = "discard_import"
)

const uploadPrefix = "discard_"

// UploadFileName names a saved discard list upload, keeping its extension
func UploadFileName(original string) string {
	return uploadPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(original))
}

// BulkUpdatePayload is the payload of an async bulk update
type BulkUpdatePayload struct {
	JobID   string                 `json:"job_id"`
	Request domain.BulkEditRequest `json:"request"`
}

// DiscardImportPayload is the payload of a discard list import
type DiscardImportPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
}

// DiscardImportResult is stored as the job result of an import
type DiscardImportResult struct {
	Format         string   `json:"format"`
	EntriesRead    int      `json:"entries_read"`
	EntriesStored  int      `json:"entries_stored"`
	Warnings       []string `json:"warnings,omitempty"`
	ProcessingTime string   `json:"processing_time"`
}

// NewBulkUpdateTask builds the task for an async bulk update
func NewBulkUpdateTask(payload BulkUpdatePayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bulk update payload: %w", err)
	}
	return asynq.NewTask(TypeBulkUpdate, b,
		asynq.Queue("critical"),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour)), nil
}

// NewDiscardImportTask builds the task for a discard list import
func NewDiscardImportTask(payload DiscardImportPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal discard import payload: %w", err)
	}
	return asynq.NewTask(TypeDiscardImport, b,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour)), nil
}
