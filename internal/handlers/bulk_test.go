// internal/handlers/bulk_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/handlers"
	"github.com/ammerola/ils-tools/internal/workers"
	"github.com/ammerola/ils-tools/test/helpers"
	"github.com/ammerola/ils-tools/test/mocks"
)

const bulkBody = `{"workingSet":{"holdings":["h1"],"items":["i1","i2"]},"fieldValues":{"callNumber":"QA76 .G6"}}`

type bulkMocks struct {
	editor *mocks.MockBulkEditor
	jobs   *mocks.MockJobTracker
	queue  *mocks.MockTaskEnqueuer
}

func TestBulkHandler_ApplyBulkUpdate(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		body           string
		setupMocks     func(bulkMocks)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "all_records_written",
			body: bulkBody,
			setupMocks: func(m bulkMocks) {
				m.editor.EXPECT().ApplyBulkUpdate(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, req domain.BulkEditRequest) (*domain.BulkResult, error) {
						assert.Equal(t, 3, req.WorkingSet.Size())
						assert.Equal(t, "QA76 .G6", req.Values.CallNumber)
						return domain.NewBulkResult([]domain.RecordOutcome{
							{RecordID: "h1", Kind: domain.KindHolding, Success: true},
							{RecordID: "i1", Kind: domain.KindItem, Success: true},
							{RecordID: "i2", Kind: domain.KindItem, Success: true},
						}), nil
					})
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var resp handlers.BulkUpdateResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				require.NotNil(t, resp.BulkResult)
				assert.Equal(t, 3, resp.Succeeded)
				assert.Empty(t, resp.FailedIDs)
			},
		},
		{
			name: "partial_failure",
			body: bulkBody,
			setupMocks: func(m bulkMocks) {
				m.editor.EXPECT().ApplyBulkUpdate(gomock.Any(), gomock.Any()).Return(domain.NewBulkResult([]domain.RecordOutcome{
					{RecordID: "h1", Kind: domain.KindHolding, Success: true},
					{RecordID: "i1", Kind: domain.KindItem, Success: false, Error: "409 conflict"},
					{RecordID: "i2", Kind: domain.KindItem, Success: true},
				}), nil)
			},
			expectedStatus: http.StatusMultiStatus,
			validateBody: func(t *testing.T, body []byte) {
				var resp handlers.BulkUpdateResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, []string{"i1"}, resp.FailedIDs)
				assert.Equal(t, 1, resp.Failed)
			},
		},
		{
			name: "unresolved_location",
			body: bulkBody,
			setupMocks: func(m bulkMocks) {
				m.editor.EXPECT().ApplyBulkUpdate(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("location %q: %w", "Annex", domain.ErrValidationGap))
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "backend_failure",
			body: bulkBody,
			setupMocks: func(m bulkMocks) {
				m.editor.EXPECT().ApplyBulkUpdate(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				assert.Equal(t, "Failed to apply bulk update", errorMessage(t, body))
			},
		},
		{
			name:           "empty_working_set",
			body:           `{"workingSet":{},"fieldValues":{"callNumber":"X"}}`,
			setupMocks:     func(m bulkMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "queued_when_async",
			query: "?async=true",
			body:  bulkBody,
			setupMocks: func(m bulkMocks) {
				m.jobs.EXPECT().Create(gomock.Any(), gomock.Any(), workers.JobKindBulkUpdate).
					Return(&domain.JobStatus{State: domain.JobQueued}, nil)
				m.queue.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
						assert.Equal(t, workers.TypeBulkUpdate, task.Type())
						var p workers.BulkUpdatePayload
						require.NoError(t, json.Unmarshal(task.Payload(), &p))
						assert.Len(t, p.Request.WorkingSet.Items, 2)
						return &asynq.TaskInfo{ID: "task-1"}, nil
					})
			},
			expectedStatus: http.StatusAccepted,
			validateBody: func(t *testing.T, body []byte) {
				var resp handlers.JobAcceptedResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				_, err := uuid.Parse(resp.JobID)
				assert.NoError(t, err)
				assert.Equal(t, string(domain.JobQueued), resp.Status)
			},
		},
		{
			name:  "enqueue_failure_marks_job_failed",
			query: "?async=true",
			body:  bulkBody,
			setupMocks: func(m bulkMocks) {
				m.jobs.EXPECT().Create(gomock.Any(), gomock.Any(), workers.JobKindBulkUpdate).
					Return(&domain.JobStatus{State: domain.JobQueued}, nil)
				m.queue.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("redis unavailable"))
				m.jobs.EXPECT().Update(gomock.Any(), gomock.Any(), domain.JobFailed, nil, gomock.Any()).
					Return(nil)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := bulkMocks{
				editor: mocks.NewMockBulkEditor(ctrl),
				jobs:   mocks.NewMockJobTracker(ctrl),
				queue:  mocks.NewMockTaskEnqueuer(ctrl),
			}
			tt.setupMocks(m)
			handler := handlers.NewBulkHandler(m.editor, m.jobs, m.queue, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk-updates"+tt.query, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ApplyBulkUpdate(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestBulkHandler_GetJob(t *testing.T) {
	jobID := uuid.New().String()

	tests := []struct {
		name           string
		jobID          string
		setupMocks     func(*mocks.MockJobTracker)
		expectedStatus int
	}{
		{
			name:  "returns_status",
			jobID: jobID,
			setupMocks: func(m *mocks.MockJobTracker) {
				m.EXPECT().Get(gomock.Any(), jobID).Return(&domain.JobStatus{
					JobID:     jobID,
					Kind:      workers.JobKindBulkUpdate,
					State:     domain.JobCompleted,
					CreatedAt: time.Now(),
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_job_id",
			jobID:          "not-a-uuid",
			setupMocks:     func(m *mocks.MockJobTracker) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "unknown_job",
			jobID: jobID,
			setupMocks: func(m *mocks.MockJobTracker) {
				m.EXPECT().Get(gomock.Any(), jobID).Return(nil, domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:  "tracker_failure",
			jobID: jobID,
			setupMocks: func(m *mocks.MockJobTracker) {
				m.EXPECT().Get(gomock.Any(), jobID).Return(nil, errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jobs := mocks.NewMockJobTracker(ctrl)
			tt.setupMocks(jobs)
			handler := handlers.NewBulkHandler(mocks.NewMockBulkEditor(ctrl), jobs, mocks.NewMockTaskEnqueuer(ctrl), helpers.TestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/bulk-updates/"+tt.jobID, nil)
			req.SetPathValue("jobId", tt.jobID)
			w := httptest.NewRecorder()

			handler.GetJob(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
