// internal/core/domain/scan.go
package domain

import (
	"time"
)

// SummaryStatus is the derived status of a holding in the inventory count
type SummaryStatus string

// Status labels as shown to staff
const (
	StatusNotCleared   SummaryStatus = "Not Cleared"
	StatusAllDiscarded SummaryStatus = "All Discarded"
	StatusCleared      SummaryStatus = "Cleared"
)

// LocationClass tells the UI how a scanned row should be rendered
type LocationClass string

const (
	LocationCorrect LocationClass = "correct"
	LocationDiscard LocationClass = "discard"
	LocationForeign LocationClass = "foreign"
)

// ScanEvent is one scanned physical unit in the inventory log
type ScanEvent struct {
	Barcode             string    `json:"barcode"`
	ItemID              string    `json:"itemId,omitempty"`
	HRID                string    `json:"hrid"`
	Title               string    `json:"title"`
	Author              string    `json:"author"`
	Status              string    `json:"status"`
	ParentKey           string    `json:"holdingsRecordId"`
	PermanentLocationID string    `json:"permanentLocationId"`
	Verified            bool      `json:"correct"`
	RecordedAt          time.Time `json:"addedDateTime"`
}

// ParentSummary aggregates the scans recorded for one holding
type ParentSummary struct {
	ParentKey     string        `json:"hid"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	ExpectedCount int           `json:"totalItems"`
	ScannedCount  int           `json:"scannedItems"`
	Cleared       bool          `json:"cleared"`
	Status        SummaryStatus `json:"status"`
}

// DeriveStatus applies the status rule: the manual flag dominates, then a
// complete count, otherwise the holding is still open.
func DeriveStatus(cleared bool, scanned, expected int) SummaryStatus {
	if cleared {
		return StatusCleared
	}
	if scanned == expected {
		return StatusAllDiscarded
	}
	return StatusNotCleared
}

// CountScanned returns how many events in the log belong to parentKey
func CountScanned(events []ScanEvent, parentKey string) int {
	n := 0
	for i := range events {
		if events[i].ParentKey == parentKey {
			n++
		}
	}
	return n
}

// Summarize builds the summary of parentKey from the authoritative scan log.
// It is the only place a ParentSummary is produced.
func Summarize(parentKey, title, author string, expected int, events []ScanEvent, cleared bool) ParentSummary {
	scanned := CountScanned(events, parentKey)
	return ParentSummary{
		ParentKey:     parentKey,
		Title:         title,
		Author:        author,
		ExpectedCount: expected,
		ScannedCount:  scanned,
		Cleared:       cleared,
		Status:        DeriveStatus(cleared, scanned, expected),
	}
}

// FindScan returns the index of barcode in events, or -1
func FindScan(events []ScanEvent, barcode string) int {
	for i := range events {
		if events[i].Barcode == barcode {
			return i
		}
	}
	return -1
}

// FindSummary returns the index of parentKey in summaries, or -1
func FindSummary(summaries []ParentSummary, parentKey string) int {
	for i := range summaries {
		if summaries[i].ParentKey == parentKey {
			return i
		}
	}
	return -1
}

// UpsertSummary replaces the summary with the same key in place, or
// prepends it when the key is new. The input slice is not modified.
func UpsertSummary(summaries []ParentSummary, s ParentSummary) []ParentSummary {
	out := make([]ParentSummary, 0, len(summaries)+1)
	if idx := FindSummary(summaries, s.ParentKey); idx >= 0 {
		out = append(out, summaries...)
		out[idx] = s
		return out
	}
	out = append(out, s)
	return append(out, summaries...)
}

// RemoveSummary drops the summary for parentKey. The input slice is not modified.
func RemoveSummary(summaries []ParentSummary, parentKey string) []ParentSummary {
	out := make([]ParentSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.ParentKey != parentKey {
			out = append(out, s)
		}
	}
	return out
}

// ClassifyLocation maps an item's permanent location onto a row class.
// An empty storeLocationID disables the foreign check.
func ClassifyLocation(locationID, discardLocationID, storeLocationID string) LocationClass {
	switch {
	case discardLocationID != "" && locationID == discardLocationID:
		return LocationDiscard
	case storeLocationID != "" && locationID != storeLocationID:
		return LocationForeign
	default:
		return LocationCorrect
	}
}

// ScanEventFromItem converts an inventory item record into a scan event
func ScanEventFromItem(item Record, recordedAt time.Time) ScanEvent {
	return ScanEvent{
		Barcode:             item.String("barcode"),
		ItemID:              item.ID(),
		HRID:                item.String("hrid"),
		Title:               item.String("title"),
		Author:              item.FirstContributor(),
		Status:              item.String("status", "name"),
		ParentKey:           item.String("holdingsRecordId"),
		PermanentLocationID: item.String("permanentLocation", "id"),
		Verified:            true,
		RecordedAt:          recordedAt,
	}
}

// ScanResult is returned by a successful scan registration
type ScanResult struct {
	Barcode      string `json:"barcode"`
	ParentKey    string `json:"parentKey,omitempty"`
	AlreadyKnown bool   `json:"alreadyKnown"`
}

// ScannedItem is a scan event as rendered, with its location class
type ScannedItem struct {
	ScanEvent
	LocationClass LocationClass `json:"locationClass"`
}

// InventorySnapshot is the complete read model of one station's inventory screen
type InventorySnapshot struct {
	Station     string          `json:"station"`
	Items       []ScannedItem   `json:"items"`
	Summaries   []ParentSummary `json:"summaries"`
	Errors      []string        `json:"errors"`
	Highlighted string          `json:"highlighted,omitempty"`
	Loading     bool            `json:"loading"`
}
