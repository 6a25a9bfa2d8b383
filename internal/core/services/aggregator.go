// internal/core/services/aggregator.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

const screenInventory = "inventory"

// ScanSettings configures the scan screens
type ScanSettings struct {
	Highlight         time.Duration
	DiscardLocationID string
	StoreLocationID   string
}

type inventoryState struct {
	screenState
	events    []domain.ScanEvent
	summaries []domain.ParentSummary
}

// ScanAggregator keeps the inventory scan log of every station and the
// holding summaries derived from it. The store is written before the
// in-memory copy changes.
type ScanAggregator struct {
	registry ports.CatalogRegistry
	store    ports.ScanStore
	metrics  *metrics.Metrics
	settings ScanSettings
	now      func() time.Time
	stations *stations[inventoryState]
	logger   *slog.Logger
}

// Statically assert that *ScanAggregator implements the ScanAggregator interface.
var _ ports.ScanAggregator = (*ScanAggregator)(nil)

// NewScanAggregator creates a new scan aggregator
func NewScanAggregator(registry ports.CatalogRegistry, store ports.ScanStore, m *metrics.Metrics,
	settings ScanSettings, logger *slog.Logger) *ScanAggregator {
	return &ScanAggregator{
		registry: registry,
		store:    store,
		metrics:  m,
		settings: settings,
		now:      time.Now,
		stations: newStations[inventoryState](),
		logger:   logger.With(slog.String("service", "scan_aggregator")),
	}
}

// lock returns the station state with its mutex held, loading it from the
// store on first use. On a store read error the mutex is released.
func (a *ScanAggregator) lock(ctx context.Context, station string) (*inventoryState, error) {
	st := a.stations.get(station)
	st.mu.Lock()
	if st.loaded {
		return st, nil
	}

	var events []domain.ScanEvent
	ok, err := a.store.Load(ctx, ports.StoreKey(station, ports.KeyInventoryItems), &events)
	if err != nil {
		return nil, st.loadFailed(station, err)
	}
	if !ok || events == nil {
		events = []domain.ScanEvent{}
	}

	var summaries []domain.ParentSummary
	ok, err = a.store.Load(ctx, ports.StoreKey(station, ports.KeyHoldingSummary), &summaries)
	if err != nil {
		return nil, st.loadFailed(station, err)
	}
	if !ok || summaries == nil {
		summaries = []domain.ParentSummary{}
	}

	st.events = events
	st.summaries = summaries
	st.loaded = true
	return st, nil
}

// Invalidate drops the cached collections of station
func (a *ScanAggregator) Invalidate(station string) {
	a.stations.get(station).invalidate()
}

func (a *ScanAggregator) saveEvents(ctx context.Context, station string, st *inventoryState, events []domain.ScanEvent) error {
	if err := a.store.Save(ctx, ports.StoreKey(station, ports.KeyInventoryItems), events); err != nil {
		return fmt.Errorf("failed to persist scan log: %w", err)
	}
	st.events = events
	return nil
}

func (a *ScanAggregator) saveSummaries(ctx context.Context, station string, st *inventoryState, summaries []domain.ParentSummary) error {
	if err := a.store.Save(ctx, ports.StoreKey(station, ports.KeyHoldingSummary), summaries); err != nil {
		return fmt.Errorf("failed to persist holding summaries: %w", err)
	}
	st.summaries = summaries
	return nil
}

func (a *ScanAggregator) startLoading(ctx context.Context, station string) func() {
	st, err := a.lock(ctx, station)
	if err != nil {
		return func() {}
	}
	st.loading++
	st.mu.Unlock()
	return func() {
		st.mu.Lock()
		st.loading--
		st.mu.Unlock()
	}
}

func (a *ScanAggregator) reportError(ctx context.Context, station string, err error, fallback string) {
	st, lockErr := a.lock(ctx, station)
	if lockErr != nil {
		return
	}
	st.addError(visibleMessage(err, fallback))
	st.mu.Unlock()
}

// RecordScan looks barcode up and appends it to the station's scan log
func (a *ScanAggregator) RecordScan(ctx context.Context, station, barcode string) (*domain.ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", domain.ErrInvalidInput)
	}

	res, err := a.duplicate(ctx, station, barcode)
	if err != nil {
		a.metrics.IncScan(screenInventory, metrics.ScanFailed)
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	done := a.startLoading(ctx, station)
	items, err := a.registry.ItemsByBarcode(ctx, barcode)
	done()
	if err == nil && len(items) > 1 {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID())
		}
		err = &domain.AmbiguousBarcodeError{Barcode: barcode, ItemIDs: ids}
	}
	if err != nil {
		a.failScan(ctx, station, barcode, err)
		return nil, err
	}

	event := domain.ScanEventFromItem(items[0], a.now().UTC())
	if event.Barcode == "" {
		event.Barcode = barcode
	}
	if event.ParentKey == "" {
		err := fmt.Errorf("%w: item %s has no holdings record", domain.ErrValidationGap, event.ItemID)
		a.failScan(ctx, station, barcode, err)
		return nil, err
	}

	st, err := a.lock(ctx, station)
	if err != nil {
		a.metrics.IncScan(screenInventory, metrics.ScanFailed)
		return nil, err
	}
	// the registry's barcode is canonical; it also catches a scan recorded
	// while the lookup ran
	if idx := domain.FindScan(st.events, event.Barcode); idx >= 0 {
		st.highlight(event.Barcode, a.settings.Highlight)
		st.errors = nil
		parent := st.events[idx].ParentKey
		st.mu.Unlock()
		a.metrics.IncScan(screenInventory, metrics.ScanDuplicate)
		return &domain.ScanResult{Barcode: event.Barcode, ParentKey: parent, AlreadyKnown: true}, nil
	}

	events := make([]domain.ScanEvent, 0, len(st.events)+1)
	events = append(events, event)
	events = append(events, st.events...)
	if err := a.saveEvents(ctx, station, st, events); err != nil {
		st.addError(err.Error())
		st.mu.Unlock()
		a.metrics.IncScan(screenInventory, metrics.ScanFailed)
		return nil, err
	}
	st.errors = nil
	st.mu.Unlock()

	a.metrics.IncScan(screenInventory, metrics.ScanRecorded)
	a.logger.InfoContext(ctx, "scan recorded",
		slog.String("station", station),
		slog.String("barcode", event.Barcode),
		slog.String("holding_id", event.ParentKey))

	if _, err := a.RecomputeSummary(ctx, station, event.ParentKey); err != nil {
		a.logger.WarnContext(ctx, "summary refresh failed after scan",
			slog.String("station", station),
			slog.String("holding_id", event.ParentKey),
			slog.String("error", err.Error()))
	}

	return &domain.ScanResult{Barcode: event.Barcode, ParentKey: event.ParentKey}, nil
}

// duplicate returns the result of a barcode already in the scan log, or nil
func (a *ScanAggregator) duplicate(ctx context.Context, station, barcode string) (*domain.ScanResult, error) {
	st, err := a.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	idx := domain.FindScan(st.events, barcode)
	if idx < 0 {
		return nil, nil
	}
	st.highlight(barcode, a.settings.Highlight)
	st.errors = nil
	a.metrics.IncScan(screenInventory, metrics.ScanDuplicate)
	return &domain.ScanResult{Barcode: barcode, ParentKey: st.events[idx].ParentKey, AlreadyKnown: true}, nil
}

func (a *ScanAggregator) failScan(ctx context.Context, station, barcode string, err error) {
	result := metrics.ScanFailed
	if isNotFound(err) {
		result = metrics.ScanNotFound
	}
	a.metrics.IncScan(screenInventory, result)
	a.reportError(ctx, station, err, msgFetchItemsFailed)
	a.logger.WarnContext(ctx, "scan rejected",
		slog.String("station", station),
		slog.String("barcode", barcode),
		slog.String("error", err.Error()))
}

// RecomputeSummary refreshes the summary of parentKey from the registry and
// the current scan log. The manual flag is read after the fetch so a toggle
// made meanwhile is kept.
func (a *ScanAggregator) RecomputeSummary(ctx context.Context, station, parentKey string) (*domain.ParentSummary, error) {
	parentKey = strings.TrimSpace(parentKey)
	if parentKey == "" {
		return nil, fmt.Errorf("%w: holding id is required", domain.ErrInvalidInput)
	}

	done := a.startLoading(ctx, station)
	items, total, err := a.registry.ItemsByHolding(ctx, parentKey)
	done()
	if err != nil {
		a.reportError(ctx, station, err, msgFetchHoldingFailed)
		return nil, fmt.Errorf("failed to fetch holding %s: %w", parentKey, err)
	}

	var title, author string
	if len(items) > 0 {
		title = items[0].String("title")
		author = items[0].FirstContributor()
	}

	st, err := a.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	cleared := false
	if idx := domain.FindSummary(st.summaries, parentKey); idx >= 0 {
		cleared = st.summaries[idx].Cleared
	}
	summary := domain.Summarize(parentKey, title, author, total, st.events, cleared)

	if err := a.saveSummaries(ctx, station, st, a.place(st.summaries, summary)); err != nil {
		st.addError(err.Error())
		return nil, err
	}
	return &summary, nil
}

// place upserts s, or prunes it when no scans of its holding remain
func (a *ScanAggregator) place(summaries []domain.ParentSummary, s domain.ParentSummary) []domain.ParentSummary {
	if s.ScannedCount == 0 {
		return domain.RemoveSummary(summaries, s.ParentKey)
	}
	return domain.UpsertSummary(summaries, s)
}

// ToggleCleared flips the manual cleared flag of parentKey
func (a *ScanAggregator) ToggleCleared(ctx context.Context, station, parentKey string) (*domain.ParentSummary, error) {
	st, err := a.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	idx := domain.FindSummary(st.summaries, parentKey)
	if idx < 0 {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("No summary for holding %s.", parentKey)}
	}
	cur := st.summaries[idx]
	summary := domain.Summarize(cur.ParentKey, cur.Title, cur.Author, cur.ExpectedCount, st.events, !cur.Cleared)

	if err := a.saveSummaries(ctx, station, st, a.place(st.summaries, summary)); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "holding cleared flag toggled",
		slog.String("station", station),
		slog.String("holding_id", parentKey),
		slog.Bool("cleared", summary.Cleared))
	return &summary, nil
}

// RemoveScan deletes barcode from the scan log and updates its holding summary
func (a *ScanAggregator) RemoveScan(ctx context.Context, station, barcode string) error {
	st, err := a.lock(ctx, station)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	idx := domain.FindScan(st.events, barcode)
	if idx < 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("Barcode %q is not in the scan list.", barcode)}
	}
	parentKey := st.events[idx].ParentKey

	events := make([]domain.ScanEvent, 0, len(st.events)-1)
	events = append(events, st.events[:idx]...)
	events = append(events, st.events[idx+1:]...)
	if err := a.saveEvents(ctx, station, st, events); err != nil {
		return err
	}

	if sIdx := domain.FindSummary(st.summaries, parentKey); sIdx >= 0 {
		cur := st.summaries[sIdx]
		summary := domain.Summarize(cur.ParentKey, cur.Title, cur.Author, cur.ExpectedCount, st.events, cur.Cleared)
		if err := a.saveSummaries(ctx, station, st, a.place(st.summaries, summary)); err != nil {
			return err
		}
	}

	a.logger.InfoContext(ctx, "scan removed",
		slog.String("station", station),
		slog.String("barcode", barcode))
	return nil
}

// ToggleVerified flips the verified flag of one scan
func (a *ScanAggregator) ToggleVerified(ctx context.Context, station, barcode string) (*domain.ScanEvent, error) {
	st, err := a.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	idx := domain.FindScan(st.events, barcode)
	if idx < 0 {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("Barcode %q is not in the scan list.", barcode)}
	}

	events := append([]domain.ScanEvent{}, st.events...)
	events[idx].Verified = !events[idx].Verified
	if err := a.saveEvents(ctx, station, st, events); err != nil {
		return nil, err
	}

	event := events[idx]
	return &event, nil
}

// Clear removes the scan log and summaries of a station
func (a *ScanAggregator) Clear(ctx context.Context, station string) error {
	st, err := a.lock(ctx, station)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	err = a.store.Clear(ctx,
		ports.StoreKey(station, ports.KeyInventoryItems),
		ports.StoreKey(station, ports.KeyHoldingSummary))
	if err != nil {
		return fmt.Errorf("failed to clear station %s: %w", station, err)
	}

	st.events = []domain.ScanEvent{}
	st.summaries = []domain.ParentSummary{}
	st.errors = nil
	st.highlight("", 0)

	a.logger.InfoContext(ctx, "inventory table cleared", slog.String("station", station))
	return nil
}

// Snapshot returns the current read model of a station
func (a *ScanAggregator) Snapshot(ctx context.Context, station string) (*domain.InventorySnapshot, error) {
	st, err := a.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	items := make([]domain.ScannedItem, 0, len(st.events))
	for _, ev := range st.events {
		items = append(items, domain.ScannedItem{
			ScanEvent: ev,
			LocationClass: domain.ClassifyLocation(ev.PermanentLocationID,
				a.settings.DiscardLocationID, a.settings.StoreLocationID),
		})
	}

	return &domain.InventorySnapshot{
		Station:     station,
		Items:       items,
		Summaries:   append([]domain.ParentSummary{}, st.summaries...),
		Errors:      st.visibleErrors(),
		Highlighted: st.highlighted,
		Loading:     st.loading > 0,
	}, nil
}
