// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

// ScanAggregator maintains the inventory scan log and holding summaries of a station
type ScanAggregator interface {
	RecordScan(ctx context.Context, station, barcode string) (*domain.ScanResult, error)
	RecomputeSummary(ctx context.Context, station, parentKey string) (*domain.ParentSummary, error)
	ToggleCleared(ctx context.Context, station, parentKey string) (*domain.ParentSummary, error)
	RemoveScan(ctx context.Context, station, barcode string) error
	ToggleVerified(ctx context.Context, station, barcode string) (*domain.ScanEvent, error)
	Clear(ctx context.Context, station string) error
	Snapshot(ctx context.Context, station string) (*domain.InventorySnapshot, error)
}

// DiscardLog maintains the discard list scan table of a station
type DiscardLog interface {
	RecordScan(ctx context.Context, station, barcode string) (*domain.ScanResult, error)
	ToggleVerified(ctx context.Context, station, barcode string) (*domain.DiscardScan, error)
	Clear(ctx context.Context, station string) error
	Snapshot(ctx context.Context, station string) (*domain.DiscardSnapshot, error)
	ReplaceList(ctx context.Context, entries []domain.DiscardEntry) (int, error)
}

// BulkEditor applies edited fields across a working set
type BulkEditor interface {
	ApplyBulkUpdate(ctx context.Context, req domain.BulkEditRequest) (*domain.BulkResult, error)
}

// NotesEditor accumulates note overrides and writes them in one fan-out
type NotesEditor interface {
	SetOverride(ctx context.Context, station string, o domain.FieldOverride) error
	Overrides(ctx context.Context, station string) ([]domain.FieldOverride, error)
	Flush(ctx context.Context, station string) (*domain.BulkResult, error)
}

// CatalogLookup resolves identifiers into editable working sets
type CatalogLookup interface {
	WorkingSet(ctx context.Context, identifier string) (*domain.WorkingSetView, error)
	Locations(ctx context.Context) ([]domain.Location, error)
	InvalidateLocations(ctx context.Context) error
}

// JobTracker records the status of background jobs
type JobTracker interface {
	Create(ctx context.Context, jobID, kind string) (*domain.JobStatus, error)
	Update(ctx context.Context, jobID string, state domain.JobState, result any, jobErr error) error
	Get(ctx context.Context, jobID string) (*domain.JobStatus, error)
}
