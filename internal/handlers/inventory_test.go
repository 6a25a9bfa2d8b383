// internal/handlers/inventory_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/handlers"
	"github.com/ammerola/ils-tools/internal/pkg/debounce"
	"github.com/ammerola/ils-tools/test/helpers"
	"github.com/ammerola/ils-tools/test/mocks"
)

func newInventoryHandler(t *testing.T, window time.Duration) (*handlers.InventoryHandler, *mocks.MockScanAggregator) {
	ctrl := gomock.NewController(t)
	agg := mocks.NewMockScanAggregator(ctrl)
	d := debounce.New(window)
	t.Cleanup(d.Stop)
	return handlers.NewInventoryHandler(agg, d, time.Second, helpers.TestLogger()), agg
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var response map[string]string
	require.NoError(t, json.Unmarshal(body, &response))
	return response["error"]
}

func TestInventoryHandler_GetSnapshot(t *testing.T) {
	tests := []struct {
		name           string
		station        string
		setupMocks     func(*mocks.MockScanAggregator)
		expectedStatus int
	}{
		{
			name:    "returns_snapshot",
			station: "desk-1",
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().Snapshot(gomock.Any(), "desk-1").Return(&domain.InventorySnapshot{
					Station: "desk-1",
					Items:   []domain.ScannedItem{{ScanEvent: domain.ScanEvent{Barcode: "39001"}}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejects_station_with_separator",
			station:        "desk:1",
			setupMocks:     func(m *mocks.MockScanAggregator) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "store_failure",
			station: "desk-1",
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().Snapshot(gomock.Any(), "desk-1").Return(nil, errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, agg := newInventoryHandler(t, time.Hour)
			tt.setupMocks(agg)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/"+tt.station+"/inventory", nil)
			req.SetPathValue("station", tt.station)
			w := httptest.NewRecorder()

			handler.GetSnapshot(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var snap domain.InventorySnapshot
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
				assert.Equal(t, "desk-1", snap.Station)
				assert.False(t, snap.Loading)
				require.Len(t, snap.Items, 1)
			}
		})
	}
}

func TestInventoryHandler_RecordScan(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockScanAggregator)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "new_scan",
			body: `{"barcode":"39001"}`,
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().RecordScan(gomock.Any(), "desk-1", "39001").
					Return(&domain.ScanResult{Barcode: "39001", ParentKey: "h1"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "already_scanned",
			body: `{"barcode":"39001"}`,
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().RecordScan(gomock.Any(), "desk-1", "39001").
					Return(&domain.ScanResult{Barcode: "39001", AlreadyKnown: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown_barcode",
			body: `{"barcode":"00000"}`,
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().RecordScan(gomock.Any(), "desk-1", "00000").
					Return(nil, &domain.NotFoundError{Message: "No item found with barcode 00000"})
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "No item found with barcode 00000",
		},
		{
			name: "ambiguous_barcode",
			body: `{"barcode":"39001"}`,
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().RecordScan(gomock.Any(), "desk-1", "39001").
					Return(nil, &domain.AmbiguousBarcodeError{Barcode: "39001", ItemIDs: []string{"i1", "i2"}})
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "backend_unreachable",
			body: `{"barcode":"39001"}`,
			setupMocks: func(m *mocks.MockScanAggregator) {
				m.EXPECT().RecordScan(gomock.Any(), "desk-1", "39001").
					Return(nil, &domain.RegistryError{Op: "items_by_barcode", Err: errors.New("connection refused")})
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "empty_body",
			body:           "",
			setupMocks:     func(m *mocks.MockScanAggregator) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "request body is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, agg := newInventoryHandler(t, time.Hour)
			tt.setupMocks(agg)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/desk-1/inventory/scans", strings.NewReader(tt.body))
			req.SetPathValue("station", "desk-1")
			w := httptest.NewRecorder()

			handler.RecordScan(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, w.Body.Bytes()))
			}
		})
	}
}

func TestInventoryHandler_SubmitInput(t *testing.T) {
	handler, agg := newInventoryHandler(t, 20*time.Millisecond)

	var calls atomic.Int32
	agg.EXPECT().RecordScan(gomock.Any(), "desk-1", "39003").
		DoAndReturn(func(ctx context.Context, station, barcode string) (*domain.ScanResult, error) {
			calls.Add(1)
			return &domain.ScanResult{Barcode: barcode}, nil
		})

	for _, value := range []string{"3", "390", "39003"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/desk-1/inventory/input",
			strings.NewReader(`{"value":"`+value+`"}`))
		req.SetPathValue("station", "desk-1")
		w := httptest.NewRecorder()

		handler.SubmitInput(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)
		var resp handlers.InputResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Pending)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInventoryHandler_SubmitInput_EmptyCancels(t *testing.T) {
	handler, _ := newInventoryHandler(t, 30*time.Millisecond)

	submit := func(value string) handlers.InputResponse {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/desk-1/inventory/input",
			strings.NewReader(`{"value":"`+value+`"}`))
		req.SetPathValue("station", "desk-1")
		w := httptest.NewRecorder()
		handler.SubmitInput(w, req)
		require.Equal(t, http.StatusAccepted, w.Code)
		var resp handlers.InputResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	assert.True(t, submit("39003").Pending)
	assert.False(t, submit("  ").Pending)

	// the mock has no RecordScan expectation, a late lookup would fail the test
	time.Sleep(80 * time.Millisecond)
}

func TestInventoryHandler_Clear(t *testing.T) {
	handler, agg := newInventoryHandler(t, time.Hour)
	agg.EXPECT().Clear(gomock.Any(), "desk-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/stations/desk-1/inventory", nil)
	req.SetPathValue("station", "desk-1")
	w := httptest.NewRecorder()

	handler.Clear(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInventoryHandler_ToggleCleared(t *testing.T) {
	handler, agg := newInventoryHandler(t, time.Hour)
	agg.EXPECT().ToggleCleared(gomock.Any(), "desk-1", "h1").
		Return(&domain.ParentSummary{ParentKey: "h1", Cleared: true, Status: domain.StatusCleared}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/desk-1/inventory/holdings/h1/cleared", nil)
	req.SetPathValue("station", "desk-1")
	req.SetPathValue("holdingId", "h1")
	w := httptest.NewRecorder()

	handler.ToggleCleared(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var summary domain.ParentSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.True(t, summary.Cleared)
	assert.Equal(t, domain.StatusCleared, summary.Status)
}

func TestInventoryHandler_RemoveScan_NotFound(t *testing.T) {
	handler, agg := newInventoryHandler(t, time.Hour)
	agg.EXPECT().RemoveScan(gomock.Any(), "desk-1", "39001").
		Return(&domain.NotFoundError{Message: "barcode 39001 is not in the scan log"})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/stations/desk-1/inventory/scans/39001", nil)
	req.SetPathValue("station", "desk-1")
	req.SetPathValue("barcode", "39001")
	w := httptest.NewRecorder()

	handler.RemoveScan(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
