// internal/core/domain/bulk.go
package domain

import (
	"fmt"
	"strings"
)

// NoChange is the explicit marker a client sends for a field it did not edit
const NoChange = "__no_change__"

// RecordKind distinguishes parent (holding) and child (item) records
type RecordKind string

const (
	KindHolding RecordKind = "holding"
	KindItem    RecordKind = "item"
)

// IsUnchanged reports whether v is a "leave as is" value
func IsUnchanged(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == NoChange
}

// FieldValues carries the edited values of one bulk update. Any field that
// IsUnchanged is never written.
type FieldValues struct {
	CallNumber        string `json:"callNumber"`
	CallNumberPrefix  string `json:"callNumberPrefix"`
	CallNumberSuffix  string `json:"callNumberSuffix"`
	PermanentLocation string `json:"permanentLocation"`
}

// Changed returns the logical fields that carry a new value
func (f FieldValues) Changed() map[string]string {
	out := make(map[string]string)
	add := func(k, v string) {
		if !IsUnchanged(v) {
			out[k] = strings.TrimSpace(v)
		}
	}
	add("callNumber", f.CallNumber)
	add("callNumberPrefix", f.CallNumberPrefix)
	add("callNumberSuffix", f.CallNumberSuffix)
	add("permanentLocation", f.PermanentLocation)
	return out
}

// LocationChanged reports whether the update moves records to a new location
func (f FieldValues) LocationChanged() bool {
	return !IsUnchanged(f.PermanentLocation)
}

// holding and item records store call numbers under different keys
var (
	holdingCallNumberFields = map[string]string{
		"callNumber":       "callNumber",
		"callNumberPrefix": "callNumberPrefix",
		"callNumberSuffix": "callNumberSuffix",
	}
	itemCallNumberFields = map[string]string{
		"callNumber":       "itemLevelCallNumber",
		"callNumberPrefix": "itemLevelCallNumberPrefix",
		"callNumberSuffix": "itemLevelCallNumberSuffix",
	}
)

// ApplyCallNumbers writes the changed call number parts onto rec
func (f FieldValues) ApplyCallNumbers(rec Record, kind RecordKind) {
	fields := holdingCallNumberFields
	if kind == KindItem {
		fields = itemCallNumberFields
	}
	changed := f.Changed()
	for logical, key := range fields {
		if v, ok := changed[logical]; ok {
			rec[key] = v
		}
	}
}

// WorkingSet identifies the records a bulk update applies to
type WorkingSet struct {
	Holdings []string `json:"holdings"`
	Items    []string `json:"items"`
}

// Size is the number of records in the set
func (w WorkingSet) Size() int {
	return len(w.Holdings) + len(w.Items)
}

// BulkEditRequest is one bulk update as submitted by a client
type BulkEditRequest struct {
	WorkingSet WorkingSet  `json:"workingSet"`
	Values     FieldValues `json:"fieldValues"`
}

// RecordOutcome is the result of writing a single record
type RecordOutcome struct {
	RecordID string     `json:"recordId"`
	Kind     RecordKind `json:"kind"`
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
}

// BulkResult collects every record outcome of one fan-out
type BulkResult struct {
	Outcomes  []RecordOutcome `json:"outcomes"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// NewBulkResult tallies outcomes
func NewBulkResult(outcomes ...[]RecordOutcome) *BulkResult {
	r := &BulkResult{Outcomes: make([]RecordOutcome, 0)}
	for _, list := range outcomes {
		for _, o := range list {
			r.Outcomes = append(r.Outcomes, o)
			if o.Success {
				r.Succeeded++
			} else {
				r.Failed++
			}
		}
	}
	return r
}

// FailedIDs returns the ids of records whose write failed
func (r *BulkResult) FailedIDs() []string {
	var ids []string
	for _, o := range r.Outcomes {
		if !o.Success {
			ids = append(ids, o.RecordID)
		}
	}
	return ids
}

// Err returns a *PartialBulkFailure when at least one record failed
func (r *BulkResult) Err() error {
	if r == nil || r.Failed == 0 {
		return nil
	}
	return &PartialBulkFailure{Failed: r.FailedIDs(), Total: len(r.Outcomes)}
}

// PartialBulkFailure reports the records that could not be written
type PartialBulkFailure struct {
	Failed []string
	Total  int
}

func (e *PartialBulkFailure) Error() string {
	return fmt.Sprintf("%d of %d records failed: %s", len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}

func (e *PartialBulkFailure) Unwrap() error {
	return ErrPartialBulkFailure
}

// FieldOverride is a pending note edit for one record. FieldKey is the note
// type id; Kind selects holding or item notes.
type FieldOverride struct {
	RecordID string     `json:"recordId"`
	Kind     RecordKind `json:"kind"`
	FieldKey string     `json:"fieldKey"`
	Value    string     `json:"value"`
}

// Key identifies an override slot
func (o FieldOverride) Key() string {
	return string(o.Kind) + ":" + o.RecordID + ":" + o.FieldKey
}

// ApplyNote replaces the note of type o.FieldKey on rec, appending it when
// the record has no note of that type yet.
func (o FieldOverride) ApplyNote(rec Record) {
	typeKey := "holdingsNoteTypeId"
	if o.Kind == KindItem {
		typeKey = "itemNoteTypeId"
	}
	notes, _ := rec["notes"].([]any)
	for i, n := range notes {
		m, ok := n.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := m[typeKey].(string); t == o.FieldKey {
			m["note"] = o.Value
			notes[i] = m
			rec["notes"] = notes
			return
		}
	}
	rec["notes"] = append(notes, map[string]any{
		typeKey:     o.FieldKey,
		"note":      o.Value,
		"staffOnly": false,
	})
}
