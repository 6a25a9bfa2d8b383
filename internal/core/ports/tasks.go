// internal/core/ports/tasks.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the subset of *asynq.Client the API uses
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportArchive stores generated spreadsheets
type ExportArchive interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}
