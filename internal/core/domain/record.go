// internal/core/domain/record.go
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the full JSON representation of a catalog record as returned by
// the backend. Keeping the raw object lets updates round-trip fields this
// service does not model.
type Record map[string]any

// ID returns the record identifier
func (r Record) ID() string {
	return r.String("id")
}

// String walks path through nested objects and returns the string found there
func (r Record) String(path ...string) string {
	var cur any = map[string]any(r)
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[p]
	}
	switch v := cur.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64, bool, json.Number:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// FirstContributor returns the name of the first contributor, if any
func (r Record) FirstContributor() string {
	for _, key := range []string{"contributorNames", "contributors"} {
		list, ok := r[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if m, ok := list[0].(map[string]any); ok {
			if name, ok := m["name"].(string); ok {
				return name
			}
		}
	}
	return ""
}

// Clone returns a deep copy of the record
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Location is an entry of the backend's location list
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ResolveLocation finds a location by id, code or name (case-insensitive for
// code and name).
func ResolveLocation(locations []Location, ref string) (Location, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Location{}, false
	}
	for _, l := range locations {
		if l.ID == ref {
			return l, true
		}
	}
	for _, l := range locations {
		if strings.EqualFold(l.Code, ref) || strings.EqualFold(l.Name, ref) {
			return l, true
		}
	}
	return Location{}, false
}

// WorkingSetView is the result of an identifier lookup: instances with their
// holdings and items, ready to be edited in bulk.
type WorkingSetView struct {
	Identifier string   `json:"identifier"`
	Instances  []Record `json:"instances"`
	Holdings   []Record `json:"holdings"`
	Items      []Record `json:"items"`
}

// WorkingSet returns the identifiers the bulk editor needs
func (v WorkingSetView) WorkingSet() WorkingSet {
	ws := WorkingSet{}
	for _, h := range v.Holdings {
		ws.Holdings = append(ws.Holdings, h.ID())
	}
	for _, i := range v.Items {
		ws.Items = append(ws.Items, i.ID())
	}
	return ws
}
