// internal/core/domain/discard.go
package domain

import (
	"strings"
	"time"
)

// DefaultContributors is shown when a discard list entry has no contributors
const DefaultContributors = "N/A"

// DiscardEntry is one line of the discard list the buses screen checks against
type DiscardEntry struct {
	Barcode      string `json:"Barcode"`
	Title        string `json:"Title"`
	Contributors string `json:"Contributors"`
}

// DiscardList is the on-disk layout of an imported discard list
type DiscardList struct {
	Items []DiscardEntry `json:"BusesItems"`
}

// Normalize trims fields and drops entries without a barcode
func (l DiscardList) Normalize() []DiscardEntry {
	out := make([]DiscardEntry, 0, len(l.Items))
	seen := make(map[string]struct{}, len(l.Items))
	for _, e := range l.Items {
		e.Barcode = strings.TrimSpace(e.Barcode)
		e.Title = strings.TrimSpace(e.Title)
		e.Contributors = strings.TrimSpace(e.Contributors)
		if e.Barcode == "" {
			continue
		}
		if _, dup := seen[e.Barcode]; dup {
			continue
		}
		seen[e.Barcode] = struct{}{}
		out = append(out, e)
	}
	return out
}

// DiscardScan is a row of the buses scan table
type DiscardScan struct {
	Barcode      string    `json:"Barcode"`
	Title        string    `json:"Title"`
	Contributors string    `json:"Contributors"`
	Verified     bool      `json:"correct"`
	RecordedAt   time.Time `json:"addedDateTime"`
}

// NewDiscardScan builds a scan row from a list entry
func NewDiscardScan(e DiscardEntry, at time.Time) DiscardScan {
	contributors := e.Contributors
	if strings.TrimSpace(contributors) == "" {
		contributors = DefaultContributors
	}
	return DiscardScan{
		Barcode:      e.Barcode,
		Title:        e.Title,
		Contributors: contributors,
		Verified:     true,
		RecordedAt:   at,
	}
}

// JobState is the lifecycle of a background job
type JobState string

const (
	JobQueued              JobState = "queued"
	JobProcessing          JobState = "processing"
	JobCompleted           JobState = "completed"
	JobCompletedWithErrors JobState = "completed_with_errors"
	JobFailed              JobState = "failed"
)

// JobStatus is what clients poll for async bulk updates and imports
type JobStatus struct {
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	State     JobState  `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DiscardSnapshot is the read model of one station's discard screen
type DiscardSnapshot struct {
	Station     string        `json:"station"`
	Items       []DiscardScan `json:"items"`
	ListSize    int           `json:"listSize"`
	Errors      []string      `json:"errors"`
	Highlighted string        `json:"highlighted,omitempty"`
	Loading     bool          `json:"loading"`
}
