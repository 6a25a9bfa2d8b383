// internal/core/services/bulk_editor.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

// LocationSource lists the locations a location edit may refer to
type LocationSource interface {
	Locations(ctx context.Context) ([]domain.Location, error)
}

// BulkSettings bounds a bulk update
type BulkSettings struct {
	Concurrency int
	MaxRecords  int
}

// BulkEditor writes edited call number and location fields across a working
// set of holdings and items.
type BulkEditor struct {
	registry  ports.CatalogRegistry
	locations LocationSource
	settings  BulkSettings
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

var _ ports.BulkEditor = (*BulkEditor)(nil)

// NewBulkEditor creates a new bulk editor
func NewBulkEditor(registry ports.CatalogRegistry, locations LocationSource, settings BulkSettings,
	m *metrics.Metrics, logger *slog.Logger) *BulkEditor {
	return &BulkEditor{
		registry:  registry,
		locations: locations,
		settings:  settings,
		metrics:   m,
		logger:    logger.With(slog.String("service", "bulk_editor")),
	}
}

// ApplyBulkUpdate re-fetches every record, applies the changed fields and
// writes it back. All holdings are attempted, then all items, whatever the
// individual outcomes. Failed records are reported in the result, not as
// the returned error.
func (e *BulkEditor) ApplyBulkUpdate(ctx context.Context, req domain.BulkEditRequest) (*domain.BulkResult, error) {
	holdings := uniqueIDs(req.WorkingSet.Holdings)
	items := uniqueIDs(req.WorkingSet.Items)

	total := len(holdings) + len(items)
	if total == 0 {
		return nil, fmt.Errorf("%w: working set is empty", domain.ErrInvalidInput)
	}
	if e.settings.MaxRecords > 0 && total > e.settings.MaxRecords {
		return nil, fmt.Errorf("%w: working set has %d records, the limit is %d",
			domain.ErrInvalidInput, total, e.settings.MaxRecords)
	}

	changed := req.Values.Changed()
	if len(changed) == 0 {
		e.logger.InfoContext(ctx, "bulk update has no changed fields")
		return domain.NewBulkResult(), nil
	}

	var location *domain.Location
	if req.Values.LocationChanged() {
		loc, err := e.resolveLocation(ctx, req.Values.PermanentLocation)
		if err != nil {
			return nil, err
		}
		location = &loc
	}

	holdingTasks := make([]Task, 0, len(holdings))
	for _, id := range holdings {
		holdingTasks = append(holdingTasks, Task{
			RecordID: id,
			Kind:     domain.KindHolding,
			Run: func(ctx context.Context) error {
				return e.updateHolding(ctx, id, req.Values, location)
			},
		})
	}

	inSet := make(map[string]struct{}, len(holdings))
	for _, id := range holdings {
		inSet[id] = struct{}{}
	}
	itemTasks := make([]Task, 0, len(items))
	for _, id := range items {
		itemTasks = append(itemTasks, Task{
			RecordID: id,
			Kind:     domain.KindItem,
			Run: func(ctx context.Context) error {
				return e.updateItem(ctx, id, req.Values, location, inSet)
			},
		})
	}

	holdingOutcomes := RunTasks(ctx, e.settings.Concurrency, holdingTasks)
	itemOutcomes := RunTasks(ctx, e.settings.Concurrency, itemTasks)

	result := domain.NewBulkResult(holdingOutcomes, itemOutcomes)
	e.recordMetrics(holdingOutcomes, itemOutcomes)

	attrs := []any{
		slog.Int("holdings", len(holdings)),
		slog.Int("items", len(items)),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
	}
	if result.Failed > 0 {
		e.logger.WarnContext(ctx, "bulk update finished with failures",
			append(attrs, slog.String("failed_ids", strings.Join(result.FailedIDs(), ",")))...)
	} else {
		e.logger.InfoContext(ctx, "bulk update finished", attrs...)
	}

	return result, nil
}

func (e *BulkEditor) resolveLocation(ctx context.Context, ref string) (domain.Location, error) {
	locs, err := e.locations.Locations(ctx)
	if err != nil {
		return domain.Location{}, fmt.Errorf("failed to list locations: %w", err)
	}
	loc, ok := domain.ResolveLocation(locs, ref)
	if !ok {
		return domain.Location{}, fmt.Errorf("%w: location %q does not match any location", domain.ErrValidationGap, ref)
	}
	return loc, nil
}

func (e *BulkEditor) updateHolding(ctx context.Context, id string, values domain.FieldValues, location *domain.Location) error {
	rec, err := e.registry.GetHolding(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch holding: %w", err)
	}

	values.ApplyCallNumbers(rec, domain.KindHolding)
	if location != nil {
		rec["permanentLocationId"] = location.ID
	}

	if err := e.registry.PutHolding(ctx, rec); err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return nil
}

func (e *BulkEditor) updateItem(ctx context.Context, id string, values domain.FieldValues,
	location *domain.Location, holdings map[string]struct{}) error {
	rec, err := e.registry.GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch item: %w", err)
	}

	// an item's location follows its holding; a holding outside the set
	// keeps its location, so the item has nothing to inherit
	if location != nil {
		parent := rec.String("holdingsRecordId")
		if _, ok := holdings[parent]; !ok {
			return fmt.Errorf("%w: holding %q of item %s is not in the working set, its location cannot change",
				domain.ErrValidationGap, parent, id)
		}
		rec["permanentLocationId"] = location.ID
		rec["effectiveLocationId"] = location.ID
	}
	values.ApplyCallNumbers(rec, domain.KindItem)

	if err := e.registry.PutItem(ctx, rec); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (e *BulkEditor) recordMetrics(holdings, items []domain.RecordOutcome) {
	for kind, outcomes := range map[domain.RecordKind][]domain.RecordOutcome{
		domain.KindHolding: holdings,
		domain.KindItem:    items,
	} {
		r := domain.NewBulkResult(outcomes)
		e.metrics.AddBulkRecords(string(kind), r.Succeeded, r.Failed)
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
