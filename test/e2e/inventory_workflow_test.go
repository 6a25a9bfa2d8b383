//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/ils-tools/internal/adapters/okapi"
	redis_a "github.com/ammerola/ils-tools/internal/adapters/redis_adapter"
	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/internal/handlers"
	"github.com/ammerola/ils-tools/internal/handlers/middleware"
	"github.com/ammerola/ils-tools/internal/pkg/debounce"
	"github.com/ammerola/ils-tools/internal/workers"
	"github.com/ammerola/ils-tools/test/helpers"
)

// inlineQueue runs tasks through the worker mux as soon as they are enqueued
type inlineQueue struct {
	mux    *asynq.ServeMux
	logger *slog.Logger
}

func (q *inlineQueue) EnqueueContext(ctx context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	// failures are recorded on the job, same as a real worker
	if err := q.mux.ProcessTask(context.WithoutCancel(ctx), task); err != nil {
		q.logger.Warn("inline task failed", slog.String("type", task.Type()), slog.String("error", err.Error()))
	}
	return &asynq.TaskInfo{ID: uuid.NewString(), Type: task.Type(), State: asynq.TaskStateCompleted}, nil
}

type InventoryE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	okapi     *helpers.FakeOkapi
	testRedis *helpers.TestRedis
	debouncer *debounce.Debouncer
}

func (s *InventoryE2ESuite) SetupSuite() {
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.okapi = helpers.NewFakeOkapi(s.T())
	s.seedCatalog()

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *InventoryE2ESuite) TearDownSuite() {
	s.server.Close()
	s.debouncer.Stop()
}

func (s *InventoryE2ESuite) SetupTest() {
	s.testRedis.Server.FlushAll()
}

func (s *InventoryE2ESuite) TestInventoryScanWorkflow() {
	station := "/stations/desk-e2e"

	// 1. First item of a two-item holding
	resp := s.makeRequest("POST", station+"/inventory/scans", map[string]string{"barcode": "39001"})
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var snap domain.InventorySnapshot
	resp = s.makeRequest("GET", station+"/inventory", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &snap)
	s.Require().Len(snap.Items, 1)
	s.Equal(domain.LocationCorrect, snap.Items[0].LocationClass)
	s.Require().Len(snap.Summaries, 1)
	s.Equal(2, snap.Summaries[0].ExpectedCount)
	s.Equal(1, snap.Summaries[0].ScannedCount)
	s.Equal(domain.StatusNotCleared, snap.Summaries[0].Status)

	// 2. Second item completes the count
	resp = s.makeRequest("POST", station+"/inventory/scans", map[string]string{"barcode": "39002"})
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// 3. Rescanning a known barcode does not add a row
	resp = s.makeRequest("POST", station+"/inventory/scans", map[string]string{"barcode": "39001"})
	s.Equal(http.StatusOK, resp.StatusCode)
	var result domain.ScanResult
	s.decodeResponse(resp, &result)
	s.True(result.AlreadyKnown)

	resp = s.makeRequest("GET", station+"/inventory", nil)
	s.decodeResponse(resp, &snap)
	s.Len(snap.Items, 2)
	s.Equal(domain.StatusAllDiscarded, snap.Summaries[0].Status)

	// 4. Manual clear overrides the derived status
	resp = s.makeRequest("POST", station+"/inventory/holdings/h1/cleared", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var summary domain.ParentSummary
	s.decodeResponse(resp, &summary)
	s.Equal(domain.StatusCleared, summary.Status)

	// 5. Export the item sheet
	resp = s.makeRequest("GET", station+"/inventory/export/items", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	resp.Body.Close()

	// 6. Clearing the station empties both collections
	resp = s.makeRequest("DELETE", station+"/inventory", nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", station+"/inventory", nil)
	s.decodeResponse(resp, &snap)
	s.Empty(snap.Items)
	s.Empty(snap.Summaries)
}

func (s *InventoryE2ESuite) TestUnknownBarcode() {
	resp := s.makeRequest("POST", "/stations/desk-e2e/inventory/scans", map[string]string{"barcode": "00000"})
	s.Equal(http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	s.decodeResponse(resp, &body)
	s.Equal("No item found for the given barcode.", body["error"])
}

func (s *InventoryE2ESuite) TestDebouncedInput() {
	station := "/stations/desk-debounce"

	for _, partial := range []string{"3", "390", "39003"} {
		resp := s.makeRequest("POST", station+"/inventory/input", map[string]string{"value": partial})
		s.Equal(http.StatusAccepted, resp.StatusCode)
		resp.Body.Close()
	}

	s.Eventually(func() bool {
		var snap domain.InventorySnapshot
		resp := s.makeRequest("GET", station+"/inventory", nil)
		s.decodeResponse(resp, &snap)
		return len(snap.Items) == 1 && snap.Items[0].Barcode == "39003"
	}, 2*time.Second, 20*time.Millisecond)
}

func (s *InventoryE2ESuite) TestDiscardImportWorkflow() {
	station := "/stations/desk-discard"

	list := `{"BusesItems":[
		{"Barcode":"39001","Title":"Go in Practice","Contributors":"Butcher"},
		{"Barcode":"39005","Title":"Old Atlas","Contributors":"Unknown"}
	]}`

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "Bus_Discarding.json")
	s.Require().NoError(err)
	_, err = io.WriteString(part, list)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req, err := http.NewRequest("POST", s.baseURL+"/import/discard-list", body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	s.Equal(http.StatusAccepted, resp.StatusCode)

	var accepted handlers.JobAcceptedResponse
	s.decodeResponse(resp, &accepted)
	s.NotEmpty(accepted.JobID)

	resp = s.makeRequest("GET", "/import/status/"+accepted.JobID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var status domain.JobStatus
	s.decodeResponse(resp, &status)
	s.Equal(domain.JobCompleted, status.State)

	// Listed barcode is recorded with its list data
	resp = s.makeRequest("POST", station+"/discard/scans", map[string]string{"barcode": "39005"})
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Barcodes outside the list are rejected
	resp = s.makeRequest("POST", station+"/discard/scans", map[string]string{"barcode": "39999"})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	var snap domain.DiscardSnapshot
	resp = s.makeRequest("GET", station+"/discard", nil)
	s.decodeResponse(resp, &snap)
	s.Equal(2, snap.ListSize)
	s.Require().Len(snap.Items, 1)
	s.Equal("Old Atlas", snap.Items[0].Title)

	resp = s.makeRequest("GET", station+"/discard/export", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Disposition"), "bus_discarding_")
	resp.Body.Close()
}

func (s *InventoryE2ESuite) TestBulkUpdateWorkflow() {
	// 1. Resolve the working set from an ISBN
	resp := s.makeRequest("GET", "/catalog/working-set?identifier=978-0134190440", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var view domain.WorkingSetView
	s.decodeResponse(resp, &view)
	s.Len(view.Holdings, 1)
	s.Len(view.Items, 2)

	// 2. Apply a call number and a location
	update := domain.BulkEditRequest{
		WorkingSet: view.WorkingSet(),
		Values:     domain.FieldValues{CallNumber: "QA76.73 .G6", PermanentLocation: "Annex"},
	}
	resp = s.makeRequest("POST", "/bulk-updates", update)
	s.Equal(http.StatusOK, resp.StatusCode)

	var result handlers.BulkUpdateResponse
	s.decodeResponse(resp, &result)
	s.Equal(3, result.Succeeded)
	s.Empty(result.FailedIDs)

	holding := s.okapi.Holding("h1")
	s.Equal("QA76.73 .G6", holding.String("callNumber"))
	s.Equal("loc-annex", holding.String("permanentLocationId"))
	s.Equal("QA76.73 .G6", s.okapi.Item("i1").String("itemLevelCallNumber"))

	// 3. The same update queued as a job
	update.Values = domain.FieldValues{CallNumberSuffix: "c.2"}
	resp = s.makeRequest("POST", "/bulk-updates?async=true", update)
	s.Equal(http.StatusAccepted, resp.StatusCode)
	var accepted handlers.JobAcceptedResponse
	s.decodeResponse(resp, &accepted)

	resp = s.makeRequest("GET", "/bulk-updates/"+accepted.JobID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var job domain.JobStatus
	s.decodeResponse(resp, &job)
	s.Equal(domain.JobCompleted, job.State)
	s.Equal("c.2", s.okapi.Holding("h1").String("callNumberSuffix"))
}

func (s *InventoryE2ESuite) TestConcurrentScans() {
	station := "/stations/desk-concurrent"
	barcodes := []string{"39001", "39002", "39003"}

	var wg sync.WaitGroup
	for _, bc := range barcodes {
		wg.Add(1)
		go func(barcode string) {
			defer wg.Done()
			resp := s.makeRequest("POST", station+"/inventory/scans", map[string]string{"barcode": barcode})
			resp.Body.Close()
		}(bc)
	}
	wg.Wait()

	var snap domain.InventorySnapshot
	resp := s.makeRequest("GET", station+"/inventory", nil)
	s.decodeResponse(resp, &snap)
	s.Len(snap.Items, len(barcodes))

	for _, sum := range snap.Summaries {
		s.Equal(domain.CountScanned(scanEvents(snap), sum.ParentKey), sum.ScannedCount, sum.ParentKey)
	}
}

func (s *InventoryE2ESuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var health handlers.HealthStatus
	s.decodeResponse(resp, &health)
	s.Equal("healthy", health.Status)
	s.Contains(health.Services, "store")
	s.Contains(health.Services, "registry")
	s.Contains(health.Services, "redis")
}

// Helper methods

func (s *InventoryE2ESuite) seedCatalog() {
	s.okapi.SetLocations(
		domain.Location{ID: "loc-store", Name: "Main Stacks", Code: "MAIN"},
		domain.Location{ID: "loc-annex", Name: "Annex", Code: "ANX"},
		domain.Location{ID: "loc-discard", Name: "Discard", Code: "DIS"},
	)
	s.okapi.AddInstance(helpers.InstanceRecord("in1", "in00001", "978-0134190440"))
	s.okapi.AddHolding(helpers.HoldingRecord("h1", "in1", "loc-store"))
	s.okapi.AddHolding(helpers.HoldingRecord("h2", "in1", "loc-annex"))
	s.okapi.AddItem(helpers.ItemRecord("i1", "39001", "h1", "loc-store"))
	s.okapi.AddItem(helpers.ItemRecord("i2", "39002", "h1", "loc-store"))
	s.okapi.AddItem(helpers.ItemRecord("i3", "39003", "h2", "loc-annex"))
}

func (s *InventoryE2ESuite) startTestServer() *httptest.Server {
	cfg := helpers.LoadTestConfig()
	cfg.Okapi.URL = s.okapi.URL()
	cfg.Okapi.Token = ""
	cfg.Import.TempDir = s.T().TempDir()

	logger := helpers.TestLogger()
	cache := redis_a.NewCache(s.testRedis.Client, cfg.Redis.TTL, logger)
	store := redis_a.NewScanStore(s.testRedis.Client, logger)
	registry := okapi.NewClient(&okapi.Config{
		URL:    cfg.Okapi.URL,
		Tenant: s.okapi.Tenant,
		Token:  "e2e",
	}, nil, logger)

	lookup := services.NewCatalogLookup(registry, cache, s.okapi.Tenant, cfg.Okapi.LocationsTTL, cfg.Bulk.Concurrency, logger)
	aggregator := services.NewScanAggregator(registry, store, nil, services.ScanSettings{
		Highlight:         cfg.Scan.Highlight,
		DiscardLocationID: cfg.Scan.DiscardLocationID,
		StoreLocationID:   cfg.Scan.StoreLocationID,
	}, logger)
	discard := services.NewDiscardLog(store, nil, cfg.Scan.Highlight, logger)
	editor := services.NewBulkEditor(registry, lookup, services.BulkSettings{
		Concurrency: cfg.Bulk.Concurrency,
		MaxRecords:  cfg.Bulk.MaxRecords,
	}, nil, logger)
	notes := services.NewNotesEditor(registry, store, cfg.Bulk.Concurrency, nil, logger)
	jobs := services.NewJobTracker(cache, cfg.Bulk.ResultTTL, logger)

	taskMux := asynq.NewServeMux()
	taskMux.HandleFunc(workers.TypeBulkUpdate, workers.NewBulkProcessor(editor, jobs, nil, logger).ProcessBulkUpdate)
	taskMux.HandleFunc(workers.TypeDiscardImport,
		workers.NewImportProcessor(discard, jobs, cfg.Import.TempDir, nil, logger).ProcessDiscardImport)
	queue := &inlineQueue{mux: taskMux, logger: logger}

	s.debouncer = debounce.New(cfg.Scan.Debounce)

	routes := handlers.Routes{
		Inventory: handlers.NewInventoryHandler(aggregator, s.debouncer, cfg.Scan.LookupTimeout, logger),
		Discard:   handlers.NewDiscardHandler(discard, s.debouncer, cfg.Scan.LookupTimeout, logger),
		Export:    handlers.NewExportHandler(aggregator, discard, nil, time.Minute, logger),
		Notes:     handlers.NewNotesHandler(notes, logger),
		Catalog:   handlers.NewCatalogHandler(lookup, logger),
		Bulk:      handlers.NewBulkHandler(editor, jobs, queue, logger),
		Import:    handlers.NewImportHandler(jobs, queue, int64(cfg.Import.MaxSizeMB)<<20, cfg.Import.TempDir, logger),
		Health:    handlers.NewHealthHandler(store, nil, s.testRedis.Client, nil, registry, cfg, logger),
	}

	mux := http.NewServeMux()
	routes.Register(mux)

	handler := middleware.Chain(middleware.Metrics(nil)(mux),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)
	return httptest.NewServer(handler)
}

func (s *InventoryE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err, fmt.Sprintf("%s %s", method, path))

	return resp
}

func (s *InventoryE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func scanEvents(snap domain.InventorySnapshot) []domain.ScanEvent {
	events := make([]domain.ScanEvent, len(snap.Items))
	for i, item := range snap.Items {
		events[i] = item.ScanEvent
	}
	return events
}

func TestInventoryE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(InventoryE2ESuite))
}
