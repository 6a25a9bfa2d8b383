// internal/core/services/tasks_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/services"
)

func TestRunTasks(t *testing.T) {
	tests := []struct {
		name          string
		run           func(i int) error
		expectFailed  []string
		expectSuccess int
	}{
		{
			name:          "all_succeed",
			run:           func(i int) error { return nil },
			expectSuccess: 5,
		},
		{
			name: "failure_is_isolated",
			run: func(i int) error {
				if i == 2 {
					return errors.New("write rejected")
				}
				return nil
			},
			expectFailed:  []string{"r2"},
			expectSuccess: 4,
		},
		{
			name: "panic_becomes_failure",
			run: func(i int) error {
				if i == 0 {
					panic("boom")
				}
				return nil
			},
			expectFailed:  []string{"r0"},
			expectSuccess: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := make([]services.Task, 5)
			for i := range tasks {
				tasks[i] = services.Task{
					RecordID: fmt.Sprintf("r%d", i),
					Kind:     domain.KindItem,
					Run:      func(ctx context.Context) error { return tt.run(i) },
				}
			}

			outcomes := services.RunTasks(context.Background(), 2, tasks)
			require.Len(t, outcomes, len(tasks))

			result := domain.NewBulkResult(outcomes)
			assert.Equal(t, tt.expectSuccess, result.Succeeded)
			assert.Equal(t, tt.expectFailed, result.FailedIDs())
			for i, o := range outcomes {
				assert.Equal(t, fmt.Sprintf("r%d", i), o.RecordID)
			}
		})
	}
}

func TestRunTasks_RespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	tasks := make([]services.Task, 20)
	for i := range tasks {
		tasks[i] = services.Task{
			RecordID: fmt.Sprintf("r%d", i),
			Run: func(ctx context.Context) error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			},
		}
	}

	services.RunTasks(context.Background(), 3, tasks)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestRunTasks_Empty(t *testing.T) {
	assert.Empty(t, services.RunTasks(context.Background(), 4, nil))
}
