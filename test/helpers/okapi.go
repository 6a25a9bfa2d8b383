// test/helpers/okapi.go
package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

var cqlValue = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// FakeOkapi is an in-memory catalog backend speaking the Okapi routes the
// registry client uses.
type FakeOkapi struct {
	Server *httptest.Server
	Tenant string

	mu        sync.Mutex
	instances map[string]domain.Record
	holdings  map[string]domain.Record
	items     map[string]domain.Record
	locations []domain.Location
	failPut   map[string]int
	requests  atomic.Int64
	puts      []string
}

// NewFakeOkapi starts a fake backend that is closed with the test
func NewFakeOkapi(t testing.TB) *FakeOkapi {
	t.Helper()

	f := &FakeOkapi{
		Tenant:    "diku",
		instances: make(map[string]domain.Record),
		holdings:  make(map[string]domain.Record),
		items:     make(map[string]domain.Record),
		failPut:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /instance-storage/instances", f.searchInstances)
	mux.HandleFunc("GET /holdings-storage/holdings", f.holdingsByInstance)
	mux.HandleFunc("GET /holdings-storage/holdings/{id}", f.getRecord(f.holdings))
	mux.HandleFunc("PUT /holdings-storage/holdings/{id}", f.putRecord(f.holdings, "holding"))
	mux.HandleFunc("GET /item-storage/items/{id}", f.getRecord(f.items))
	mux.HandleFunc("PUT /item-storage/items/{id}", f.putRecord(f.items, "item"))
	mux.HandleFunc("GET /inventory/items", f.itemsByBarcode)
	mux.HandleFunc("GET /inventory/items-by-holdings-id", f.itemsByHolding)
	mux.HandleFunc("GET /locations", f.listLocations)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("X-Okapi-Tenant") != f.Tenant {
			http.Error(w, "missing tenant", http.StatusBadRequest)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)

	return f
}

// URL is the base URL of the fake
func (f *FakeOkapi) URL() string {
	return f.Server.URL
}

// Requests is the number of requests served so far
func (f *FakeOkapi) Requests() int64 {
	return f.requests.Load()
}

// AddInstance registers an instance
func (f *FakeOkapi) AddInstance(rec domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances[rec.ID()] = rec.Clone()
}

// AddHolding registers a holdings record
func (f *FakeOkapi) AddHolding(rec domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdings[rec.ID()] = rec.Clone()
}

// AddItem registers an item
func (f *FakeOkapi) AddItem(rec domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[rec.ID()] = rec.Clone()
}

// SetLocations replaces the location list
func (f *FakeOkapi) SetLocations(locs ...domain.Location) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = locs
}

// FailPut makes every PUT of id answer with status
func (f *FakeOkapi) FailPut(id string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut[id] = status
}

// Holding returns a copy of the stored holding
func (f *FakeOkapi) Holding(id string) domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holdings[id].Clone()
}

// Item returns a copy of the stored item
func (f *FakeOkapi) Item(id string) domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Clone()
}

// Puts lists the successful writes as "kind:id"
func (f *FakeOkapi) Puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.puts...)
}

func queryValue(r *http.Request) string {
	m := cqlValue.FindStringSubmatch(r.URL.Query().Get("query"))
	if m == nil {
		return ""
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(m[1])
}

func (f *FakeOkapi) searchInstances(w http.ResponseWriter, r *http.Request) {
	value := queryValue(r)
	f.mu.Lock()
	out := []domain.Record{}
	for _, rec := range f.instances {
		if rec.String("hrid") == value {
			out = append(out, rec.Clone())
			continue
		}
		ids, _ := rec["identifiers"].([]any)
		for _, id := range ids {
			if m, ok := id.(map[string]any); ok && m["value"] == value {
				out = append(out, rec.Clone())
				break
			}
		}
	}
	f.mu.Unlock()
	writeJSON(w, map[string]any{"instances": out, "totalRecords": len(out)})
}

func (f *FakeOkapi) holdingsByInstance(w http.ResponseWriter, r *http.Request) {
	out := f.filter(f.holdings, "instanceId", queryValue(r))
	writeJSON(w, map[string]any{"holdingsRecords": out, "totalRecords": len(out)})
}

func (f *FakeOkapi) itemsByBarcode(w http.ResponseWriter, r *http.Request) {
	out := f.filter(f.items, "barcode", queryValue(r))
	writeJSON(w, map[string]any{"items": out, "totalRecords": len(out)})
}

func (f *FakeOkapi) itemsByHolding(w http.ResponseWriter, r *http.Request) {
	out := f.filter(f.items, "holdingsRecordId", queryValue(r))
	sort.Slice(out, func(i, j int) bool { return out[i].String("barcode") < out[j].String("barcode") })
	writeJSON(w, map[string]any{"items": out, "totalRecords": len(out)})
}

func (f *FakeOkapi) listLocations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	locs := append([]domain.Location{}, f.locations...)
	f.mu.Unlock()
	writeJSON(w, map[string]any{"locations": locs, "totalRecords": len(locs)})
}

func (f *FakeOkapi) filter(records map[string]domain.Record, field, value string) []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Record{}
	for _, rec := range records {
		if rec.String(field) == value {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func (f *FakeOkapi) getRecord(records map[string]domain.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		rec, ok := records[r.PathValue("id")]
		if ok {
			rec = rec.Clone()
		}
		f.mu.Unlock()
		if !ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		writeJSON(w, rec)
	}
}

func (f *FakeOkapi) putRecord(records map[string]domain.Record, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var rec domain.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if status, ok := f.failPut[id]; ok {
			http.Error(w, "write rejected", status)
			return
		}
		if _, ok := records[id]; !ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		records[id] = rec
		f.puts = append(f.puts, kind+":"+id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
