// internal/core/services/discard.go
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

const screenDiscard = "discard"

type discardState struct {
	screenState
	scans []domain.DiscardScan
}

// DiscardLog records scans checked against the imported discard list. The
// list is shared by all stations and read from the store on every lookup,
// so an import by the worker is seen immediately.
type DiscardLog struct {
	store     ports.ScanStore
	metrics   *metrics.Metrics
	highlight time.Duration
	now       func() time.Time
	stations  *stations[discardState]
	logger    *slog.Logger
}

var _ ports.DiscardLog = (*DiscardLog)(nil)

// NewDiscardLog creates a new discard log
func NewDiscardLog(store ports.ScanStore, m *metrics.Metrics, highlight time.Duration, logger *slog.Logger) *DiscardLog {
	return &DiscardLog{
		store:     store,
		metrics:   m,
		highlight: highlight,
		now:       time.Now,
		stations:  newStations[discardState](),
		logger:    logger.With(slog.String("service", "discard_log")),
	}
}

// lock returns the station state with its mutex held. On a store read
// error the mutex is released.
func (d *DiscardLog) lock(ctx context.Context, station string) (*discardState, error) {
	st := d.stations.get(station)
	st.mu.Lock()
	if st.loaded {
		return st, nil
	}

	var scans []domain.DiscardScan
	ok, err := d.store.Load(ctx, ports.StoreKey(station, ports.KeyBusTableData), &scans)
	if err != nil {
		return nil, st.loadFailed(station, err)
	}
	if !ok || scans == nil {
		scans = []domain.DiscardScan{}
	}
	st.scans = scans
	st.loaded = true
	return st, nil
}

// Invalidate drops the cached discard table of station
func (d *DiscardLog) Invalidate(station string) {
	d.stations.get(station).invalidate()
}

func (d *DiscardLog) list(ctx context.Context) ([]domain.DiscardEntry, error) {
	var entries []domain.DiscardEntry
	if _, err := d.store.Load(ctx, ports.DiscardListKey, &entries); err != nil {
		return nil, fmt.Errorf("failed to read discard list: %w", err)
	}
	return entries, nil
}

func findDiscardScan(scans []domain.DiscardScan, barcode string) int {
	for i := range scans {
		if scans[i].Barcode == barcode {
			return i
		}
	}
	return -1
}

// RecordScan appends barcode to the station table when it is on the list
func (d *DiscardLog) RecordScan(ctx context.Context, station, barcode string) (*domain.ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", domain.ErrInvalidInput)
	}

	entries, err := d.list(ctx)
	if err != nil {
		d.metrics.IncScan(screenDiscard, metrics.ScanFailed)
		return nil, err
	}

	var entry *domain.DiscardEntry
	for _, e := range entries {
		if e.Barcode == barcode {
			e := e
			entry = &e
			break
		}
	}

	st, err := d.lock(ctx, station)
	if err != nil {
		d.metrics.IncScan(screenDiscard, metrics.ScanFailed)
		return nil, err
	}
	defer st.mu.Unlock()

	if entry == nil {
		err := &domain.NotFoundError{Message: fmt.Sprintf("Barcode %q does not exist in discard list", barcode)}
		st.addError(err.Message)
		d.metrics.IncScan(screenDiscard, metrics.ScanNotFound)
		return nil, err
	}

	if findDiscardScan(st.scans, barcode) >= 0 {
		st.highlight(barcode, d.highlight)
		st.errors = nil
		d.metrics.IncScan(screenDiscard, metrics.ScanDuplicate)
		return &domain.ScanResult{Barcode: barcode, AlreadyKnown: true}, nil
	}

	scans := make([]domain.DiscardScan, 0, len(st.scans)+1)
	scans = append(scans, domain.NewDiscardScan(*entry, d.now().UTC()))
	scans = append(scans, st.scans...)
	if err := d.save(ctx, station, st, scans); err != nil {
		st.addError(err.Error())
		d.metrics.IncScan(screenDiscard, metrics.ScanFailed)
		return nil, err
	}
	st.errors = nil
	d.metrics.IncScan(screenDiscard, metrics.ScanRecorded)

	d.logger.InfoContext(ctx, "discard scan recorded",
		slog.String("station", station),
		slog.String("barcode", barcode))

	return &domain.ScanResult{Barcode: barcode}, nil
}

func (d *DiscardLog) save(ctx context.Context, station string, st *discardState, scans []domain.DiscardScan) error {
	if err := d.store.Save(ctx, ports.StoreKey(station, ports.KeyBusTableData), scans); err != nil {
		return fmt.Errorf("failed to persist discard table: %w", err)
	}
	st.scans = scans
	return nil
}

// ToggleVerified flips the verified flag of one discard scan
func (d *DiscardLog) ToggleVerified(ctx context.Context, station, barcode string) (*domain.DiscardScan, error) {
	st, err := d.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	idx := findDiscardScan(st.scans, barcode)
	if idx < 0 {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("Barcode %q is not in the scan list.", barcode)}
	}

	scans := append([]domain.DiscardScan{}, st.scans...)
	scans[idx].Verified = !scans[idx].Verified
	if err := d.save(ctx, station, st, scans); err != nil {
		return nil, err
	}

	scan := scans[idx]
	return &scan, nil
}

// Clear removes the station's discard table
func (d *DiscardLog) Clear(ctx context.Context, station string) error {
	st, err := d.lock(ctx, station)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	if err := d.store.Clear(ctx, ports.StoreKey(station, ports.KeyBusTableData)); err != nil {
		return fmt.Errorf("failed to clear discard table of %s: %w", station, err)
	}
	st.scans = []domain.DiscardScan{}
	st.errors = nil
	st.highlight("", 0)

	d.logger.InfoContext(ctx, "discard table cleared", slog.String("station", station))
	return nil
}

// Snapshot returns the current read model of a station's discard screen
func (d *DiscardLog) Snapshot(ctx context.Context, station string) (*domain.DiscardSnapshot, error) {
	entries, err := d.list(ctx)
	if err != nil {
		return nil, err
	}

	st, err := d.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	return &domain.DiscardSnapshot{
		Station:     station,
		Items:       append([]domain.DiscardScan{}, st.scans...),
		ListSize:    len(entries),
		Errors:      st.visibleErrors(),
		Highlighted: st.highlighted,
		Loading:     st.loading > 0,
	}, nil
}

// ReplaceList stores a new discard list and returns how many entries it kept
func (d *DiscardLog) ReplaceList(ctx context.Context, entries []domain.DiscardEntry) (int, error) {
	normalized := domain.DiscardList{Items: entries}.Normalize()
	if len(normalized) == 0 {
		return 0, fmt.Errorf("%w: discard list has no entries with a barcode", domain.ErrInvalidInput)
	}

	if err := d.store.Save(ctx, ports.DiscardListKey, normalized); err != nil {
		return 0, fmt.Errorf("failed to store discard list: %w", err)
	}

	d.logger.InfoContext(ctx, "discard list replaced", slog.Int("entries", len(normalized)))
	return len(normalized), nil
}
