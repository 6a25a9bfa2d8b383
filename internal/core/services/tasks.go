// internal/core/services/tasks.go
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

// Task is one record write of a fan-out
type Task struct {
	RecordID string
	Kind     domain.RecordKind
	Run      func(ctx context.Context) error
}

// RunTasks starts every task with at most limit in flight and waits for all
// of them. A failing task never cancels its siblings; each task gets its own
// outcome in input order.
func RunTasks(ctx context.Context, limit int, tasks []Task) []domain.RecordOutcome {
	outcomes := make([]domain.RecordOutcome, len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			outcome := domain.RecordOutcome{RecordID: task.RecordID, Kind: task.Kind, Success: true}
			if err := runTask(ctx, task); err != nil {
				outcome.Success = false
				outcome.Error = err.Error()
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Run(ctx)
}
