// internal/core/services/aggregator_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/ils-tools/internal/adapters/redis_adapter"
	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/test/helpers"
	"github.com/ammerola/ils-tools/test/mocks"
)

const station = "st1"

var testScanSettings = services.ScanSettings{
	Highlight:         50 * time.Millisecond,
	DiscardLocationID: "loc-discard",
	StoreLocationID:   "loc-store",
}

type aggregatorFixture struct {
	registry *mocks.MockCatalogRegistry
	redis    *helpers.TestRedis
	store    *redis_a.ScanStore
	agg      *services.ScanAggregator
}

func newAggregatorFixture(t *testing.T) *aggregatorFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	tr := helpers.SetupTestRedis(t)
	f := &aggregatorFixture{
		registry: mocks.NewMockCatalogRegistry(ctrl),
		redis:    tr,
		store:    redis_a.NewScanStore(tr.Client, helpers.TestLogger()),
	}
	f.agg = services.NewScanAggregator(f.registry, f.store, nil, testScanSettings, helpers.TestLogger())
	return f
}

// expectItem wires a barcode lookup for one item of holdingID
func (f *aggregatorFixture) expectItem(barcode, holdingID string) {
	f.registry.EXPECT().
		ItemsByBarcode(gomock.Any(), barcode).
		Return([]domain.Record{helpers.ItemRecord("id-"+barcode, barcode, holdingID, "loc-store")}, nil)
}

// expectHolding answers every summary fetch of holdingID with expected items
func (f *aggregatorFixture) expectHolding(holdingID string, expected int) {
	f.registry.EXPECT().
		ItemsByHolding(gomock.Any(), holdingID).
		Return([]domain.Record{helpers.ItemRecord("first-"+holdingID, "first", holdingID, "loc-store")}, expected, nil).
		AnyTimes()
}

func summaryOf(t *testing.T, snap *domain.InventorySnapshot, parentKey string) domain.ParentSummary {
	t.Helper()
	idx := domain.FindSummary(snap.Summaries, parentKey)
	require.GreaterOrEqual(t, idx, 0, "summary %s not found", parentKey)
	return snap.Summaries[idx]
}

func TestScanAggregator_RecordScan(t *testing.T) {
	tests := []struct {
		name          string
		barcode       string
		setupMocks    func(f *aggregatorFixture)
		expectedError error
		visibleError  string
		expectParent  string
	}{
		{
			name:    "records_known_barcode",
			barcode: "b1",
			setupMocks: func(f *aggregatorFixture) {
				f.expectItem("b1", "h1")
				f.expectHolding("h1", 3)
			},
			expectParent: "h1",
		},
		{
			name:    "trims_whitespace",
			barcode: "  b1 \n",
			setupMocks: func(f *aggregatorFixture) {
				f.expectItem("b1", "h1")
				f.expectHolding("h1", 3)
			},
			expectParent: "h1",
		},
		{
			name:          "empty_barcode",
			barcode:       "   ",
			setupMocks:    func(f *aggregatorFixture) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:    "unknown_barcode",
			barcode: "nope",
			setupMocks: func(f *aggregatorFixture) {
				f.registry.EXPECT().
					ItemsByBarcode(gomock.Any(), "nope").
					Return(nil, &domain.NotFoundError{Message: "No item found for the given barcode."})
			},
			expectedError: domain.ErrNotFound,
			visibleError:  "No item found for the given barcode.",
		},
		{
			name:    "backend_unreachable",
			barcode: "b1",
			setupMocks: func(f *aggregatorFixture) {
				f.registry.EXPECT().
					ItemsByBarcode(gomock.Any(), "b1").
					Return(nil, &domain.RegistryError{Op: "items_by_barcode", StatusCode: 502, Body: "bad gateway"})
			},
			expectedError: domain.ErrNetwork,
			visibleError:  "Error fetching items. Please try again.",
		},
		{
			name:    "ambiguous_barcode",
			barcode: "dup",
			setupMocks: func(f *aggregatorFixture) {
				f.registry.EXPECT().
					ItemsByBarcode(gomock.Any(), "dup").
					Return([]domain.Record{
						helpers.ItemRecord("i1", "dup", "h1", "loc-store"),
						helpers.ItemRecord("i2", "dup", "h2", "loc-store"),
					}, nil)
			},
			expectedError: domain.ErrAmbiguousBarcode,
			visibleError:  `barcode "dup" matches 2 items`,
		},
		{
			name:    "item_without_holding",
			barcode: "orphan",
			setupMocks: func(f *aggregatorFixture) {
				f.registry.EXPECT().
					ItemsByBarcode(gomock.Any(), "orphan").
					Return([]domain.Record{helpers.ItemRecord("i1", "orphan", "", "loc-store")}, nil)
			},
			expectedError: domain.ErrValidationGap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newAggregatorFixture(t)
			tt.setupMocks(f)

			res, err := f.agg.RecordScan(ctx, station, tt.barcode)

			snap, snapErr := f.agg.Snapshot(ctx, station)
			require.NoError(t, snapErr)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
				assert.Empty(t, snap.Items)
				if tt.visibleError != "" {
					assert.Equal(t, []string{tt.visibleError}, snap.Errors)
				}
				return
			}

			require.NoError(t, err)
			assert.False(t, res.AlreadyKnown)
			assert.Equal(t, tt.expectParent, res.ParentKey)
			require.Len(t, snap.Items, 1)
			assert.Equal(t, "b1", snap.Items[0].Barcode)
			assert.True(t, snap.Items[0].Verified)
			assert.Equal(t, domain.LocationCorrect, snap.Items[0].LocationClass)
			assert.Empty(t, snap.Errors)

			s := summaryOf(t, snap, tt.expectParent)
			assert.Equal(t, 3, s.ExpectedCount)
			assert.Equal(t, 1, s.ScannedCount)
			assert.Equal(t, domain.StatusNotCleared, s.Status)
			assert.Equal(t, "Title of first", s.Title)
			assert.Equal(t, "Author first", s.Author)
		})
	}
}

func TestScanAggregator_DuplicateScanIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.expectHolding("h1", 2)

	_, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)

	// the second scan never reaches the registry
	res, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyKnown)
	assert.Equal(t, "h1", res.ParentKey)

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 1, summaryOf(t, snap, "h1").ScannedCount)
	assert.Equal(t, "b1", snap.Highlighted)

	assert.Eventually(t, func() bool {
		snap, err := f.agg.Snapshot(ctx, station)
		return err == nil && snap.Highlighted == ""
	}, time.Second, 10*time.Millisecond)
}

func TestScanAggregator_SuccessfulScanClearsErrors(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.registry.EXPECT().
		ItemsByBarcode(gomock.Any(), "nope").
		Return(nil, &domain.NotFoundError{Message: "No item found for the given barcode."})
	f.expectItem("b1", "h1")
	f.expectHolding("h1", 1)

	_, err := f.agg.RecordScan(ctx, station, "nope")
	require.Error(t, err)
	_, err = f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Empty(t, snap.Errors)
}

func TestScanAggregator_StatusLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectHolding("H1", 3)
	for _, b := range []string{"b1", "b2", "b3"} {
		f.expectItem(b, "H1")
		_, err := f.agg.RecordScan(ctx, station, b)
		require.NoError(t, err)
	}

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	s := summaryOf(t, snap, "H1")
	assert.Equal(t, 3, s.ScannedCount)
	assert.Equal(t, domain.StatusAllDiscarded, s.Status)

	toggled, err := f.agg.ToggleCleared(ctx, station, "H1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCleared, toggled.Status)

	require.NoError(t, f.agg.RemoveScan(ctx, station, "b2"))

	snap, err = f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	s = summaryOf(t, snap, "H1")
	assert.Equal(t, 2, s.ScannedCount)
	assert.Equal(t, domain.StatusCleared, s.Status)

	toggled, err = f.agg.ToggleCleared(ctx, station, "H1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotCleared, toggled.Status)
}

func TestScanAggregator_RemoveScan(t *testing.T) {
	tests := []struct {
		name          string
		remove        []string
		expectSummary bool
		expectScanned int
	}{
		{
			name:          "non_last_scan_decrements",
			remove:        []string{"b1"},
			expectSummary: true,
			expectScanned: 1,
		},
		{
			name:          "last_scan_prunes_summary",
			remove:        []string{"b1", "b2"},
			expectSummary: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newAggregatorFixture(t)
			f.expectHolding("h1", 5)
			for _, b := range []string{"b1", "b2"} {
				f.expectItem(b, "h1")
				_, err := f.agg.RecordScan(ctx, station, b)
				require.NoError(t, err)
			}

			for _, b := range tt.remove {
				require.NoError(t, f.agg.RemoveScan(ctx, station, b))
			}

			snap, err := f.agg.Snapshot(ctx, station)
			require.NoError(t, err)
			idx := domain.FindSummary(snap.Summaries, "h1")
			if !tt.expectSummary {
				assert.Equal(t, -1, idx)
				return
			}
			require.GreaterOrEqual(t, idx, 0)
			assert.Equal(t, tt.expectScanned, snap.Summaries[idx].ScannedCount)
		})
	}
}

func TestScanAggregator_RemoveUnknownScan(t *testing.T) {
	f := newAggregatorFixture(t)
	err := f.agg.RemoveScan(context.Background(), station, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestScanAggregator_RecomputeKeepsToggleMadeDuringFetch(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.registry.EXPECT().
		ItemsByHolding(gomock.Any(), "h1").
		Return([]domain.Record{helpers.ItemRecord("i1", "b1", "h1", "loc-store")}, 4, nil)

	_, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)

	f.registry.EXPECT().
		ItemsByHolding(gomock.Any(), "h1").
		DoAndReturn(func(ctx context.Context, holdingID string) ([]domain.Record, int, error) {
			_, err := f.agg.ToggleCleared(ctx, station, holdingID)
			require.NoError(t, err)
			return []domain.Record{helpers.ItemRecord("i1", "b1", "h1", "loc-store")}, 1, nil
		})

	summary, err := f.agg.RecomputeSummary(ctx, station, "h1")
	require.NoError(t, err)
	assert.True(t, summary.Cleared)
	assert.Equal(t, domain.StatusCleared, summary.Status)
	assert.Equal(t, 1, summary.ExpectedCount)
}

func TestScanAggregator_RecomputeFailureIsVisible(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.registry.EXPECT().
		ItemsByHolding(gomock.Any(), "h1").
		Return(nil, 0, &domain.RegistryError{Op: "items_by_holding", Err: errors.New("connection refused")})

	// the scan itself is kept
	_, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Empty(t, snap.Summaries)
	assert.Equal(t, []string{"Error fetching holding details."}, snap.Errors)
}

func TestScanAggregator_ScannedCountIsOrderIndependent(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectHolding("h1", 10)

	barcodes := make([]string, 8)
	for i := range barcodes {
		barcodes[i] = fmt.Sprintf("b%d", i)
		f.expectItem(barcodes[i], "h1")
	}

	var wg sync.WaitGroup
	for _, b := range barcodes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.agg.RecordScan(ctx, station, b)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	summary, err := f.agg.RecomputeSummary(ctx, station, "h1")
	require.NoError(t, err)
	assert.Equal(t, len(barcodes), summary.ScannedCount)

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Len(t, snap.Items, len(barcodes))
	assert.Len(t, snap.Summaries, 1)
}

func TestScanAggregator_WriteThrough(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.expectHolding("h1", 2)

	_, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)
	_, err = f.agg.ToggleVerified(ctx, station, "b1")
	require.NoError(t, err)

	// a fresh aggregator over the same store sees the same state
	reloaded := services.NewScanAggregator(f.registry, f.store, nil, testScanSettings, helpers.TestLogger())
	snap, err := reloaded.Snapshot(ctx, station)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.False(t, snap.Items[0].Verified)
	assert.Equal(t, 1, summaryOf(t, snap, "h1").ScannedCount)
}

func TestScanAggregator_Clear(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.expectHolding("h1", 2)

	_, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)
	require.True(t, f.redis.Server.Exists(ports.StoreKey(station, ports.KeyInventoryItems)))

	require.NoError(t, f.agg.Clear(ctx, station))

	assert.False(t, f.redis.Server.Exists(ports.StoreKey(station, ports.KeyInventoryItems)))
	assert.False(t, f.redis.Server.Exists(ports.StoreKey(station, ports.KeyHoldingSummary)))

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Summaries)
}

func TestScanAggregator_StationsAreIsolated(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.expectHolding("h1", 2)

	_, err := f.agg.RecordScan(ctx, "desk-a", "b1")
	require.NoError(t, err)

	snap, err := f.agg.Snapshot(ctx, "desk-b")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestScanAggregator_LoadingWhileLookupInFlight(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)

	release := make(chan struct{})
	started := make(chan struct{})
	f.registry.EXPECT().
		ItemsByBarcode(gomock.Any(), "slow").
		DoAndReturn(func(ctx context.Context, barcode string) ([]domain.Record, error) {
			close(started)
			<-release
			return nil, &domain.NotFoundError{Message: "No item found for the given barcode."}
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.agg.RecordScan(ctx, station, "slow")
	}()

	<-started
	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.True(t, snap.Loading)

	close(release)
	<-done

	snap, err = f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.False(t, snap.Loading)
}

func TestScanAggregator_SaveFailureKeepsMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockCatalogRegistry(ctrl)
	store := mocks.NewMockScanStore(ctrl)

	store.EXPECT().Load(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
	store.EXPECT().
		Save(gomock.Any(), ports.StoreKey(station, ports.KeyInventoryItems), gomock.Any()).
		Return(errors.New("store unavailable"))
	registry.EXPECT().
		ItemsByBarcode(gomock.Any(), "b1").
		Return([]domain.Record{helpers.ItemRecord("i1", "b1", "h1", "loc-store")}, nil)

	agg := services.NewScanAggregator(registry, store, nil, testScanSettings, helpers.TestLogger())
	_, err := agg.RecordScan(ctx, station, "b1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist scan log")

	snap, err := agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Len(t, snap.Errors, 1)
}

func TestScanAggregator_LocationClasses(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectHolding("h1", 3)
	for barcode, loc := range map[string]string{"b1": "loc-store", "b2": "loc-discard", "b3": "loc-other"} {
		f.registry.EXPECT().
			ItemsByBarcode(gomock.Any(), barcode).
			Return([]domain.Record{helpers.ItemRecord("id-"+barcode, barcode, "h1", loc)}, nil)
		_, err := f.agg.RecordScan(ctx, station, barcode)
		require.NoError(t, err)
	}

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	classes := make(map[string]domain.LocationClass)
	for _, it := range snap.Items {
		classes[it.Barcode] = it.LocationClass
	}
	assert.Equal(t, domain.LocationCorrect, classes["b1"])
	assert.Equal(t, domain.LocationDiscard, classes["b2"])
	assert.Equal(t, domain.LocationForeign, classes["b3"])
}

func TestScanAggregator_StoreReadFailureKeepsStoredLog(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	key := ports.StoreKey(station, ports.KeyInventoryItems)
	require.NoError(t, f.store.Save(ctx, key, []domain.ScanEvent{
		{Barcode: "old1", ParentKey: "h9"},
		{Barcode: "old2", ParentKey: "h9"},
	}))

	f.redis.Server.SetError("ERR store unavailable")

	_, err := f.agg.Snapshot(ctx, station)
	require.Error(t, err)
	_, err = f.agg.RecordScan(ctx, station, "b1")
	require.Error(t, err)

	f.redis.Server.SetError("")

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
	assert.Contains(t, snap.Errors, "Saved scans could not be loaded. Please try again.")

	f.expectItem("b1", "h1")
	f.expectHolding("h1", 3)
	_, err = f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)

	var stored []domain.ScanEvent
	ok, err := f.store.Load(ctx, key, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored, 3)
	assert.Equal(t, "b1", stored[0].Barcode)
	assert.Equal(t, "old2", stored[2].Barcode)
}

func TestScanAggregator_DuplicateUsesRegistryBarcode(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectHolding("h1", 3)
	f.registry.EXPECT().
		ItemsByBarcode(gomock.Any(), gomock.Any()).
		Return([]domain.Record{helpers.ItemRecord("i1", "ABC123", "h1", "loc-store")}, nil).
		Times(2)

	first, err := f.agg.RecordScan(ctx, station, "ABC123")
	require.NoError(t, err)
	assert.False(t, first.AlreadyKnown)

	second, err := f.agg.RecordScan(ctx, station, "abc123")
	require.NoError(t, err)
	assert.True(t, second.AlreadyKnown)
	assert.Equal(t, "ABC123", second.Barcode)

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 1, summaryOf(t, snap, "h1").ScannedCount)
}

func TestScanAggregator_InvalidateRereadsStore(t *testing.T) {
	ctx := context.Background()
	f := newAggregatorFixture(t)
	f.expectItem("b1", "h1")
	f.expectHolding("h1", 3)

	_, err := f.agg.RecordScan(ctx, station, "b1")
	require.NoError(t, err)

	require.NoError(t, f.store.Clear(ctx,
		ports.StoreKey(station, ports.KeyInventoryItems),
		ports.StoreKey(station, ports.KeyHoldingSummary)))
	f.agg.Invalidate(station)

	snap, err := f.agg.Snapshot(ctx, station)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Summaries)
}
