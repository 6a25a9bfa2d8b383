// internal/core/ports/scan_store.go
package ports

import (
	"context"
	"strings"
)

// Names of the collections kept per station
const (
	KeyInventoryItems = "inventoryItems"
	KeyHoldingSummary = "holdingSummary"
	KeyBusTableData   = "busTableData"
	KeyNoteOverrides  = "noteOverrides"
)

// StationCollections lists every collection name kept under a station
var StationCollections = []string{KeyInventoryItems, KeyHoldingSummary, KeyBusTableData, KeyNoteOverrides}

// DiscardListKey holds the imported discard list shared by all stations
const DiscardListKey = "ils:discard:list"

// StoreKey builds the namespaced key of a station collection
func StoreKey(station, name string) string {
	return strings.Join([]string{"ils", station, name}, ":")
}

// ScanStore is the persistence port for station collections. Values are
// stored whole; callers read, modify and save the full collection.
type ScanStore interface {
	// Load decodes the value of key into dest. It reports false with a nil
	// error, leaving dest untouched, when the key is absent or the value
	// cannot be decoded. A non-nil error means the store could not be read.
	Load(ctx context.Context, key string, dest interface{}) (bool, error)
	Save(ctx context.Context, key string, value interface{}) error
	// Clear removes the keys entirely
	Clear(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// StationInvalidator drops cached station state so the next access re-reads
// the store
type StationInvalidator interface {
	Invalidate(station string)
}

// PurgeNotifier announces stations whose collections were purged
type PurgeNotifier interface {
	NotifyPurged(ctx context.Context, stations []string) error
}
