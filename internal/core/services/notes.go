// internal/core/services/notes.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

type notesState struct {
	screenState
	overrides map[string]domain.FieldOverride
}

// NotesEditor accumulates note edits per station and writes them to the
// registry in one fan-out.
type NotesEditor struct {
	registry    ports.CatalogRegistry
	store       ports.ScanStore
	concurrency int
	metrics     *metrics.Metrics
	stations    *stations[notesState]
	logger      *slog.Logger
}

var _ ports.NotesEditor = (*NotesEditor)(nil)

// NewNotesEditor creates a new notes editor
func NewNotesEditor(registry ports.CatalogRegistry, store ports.ScanStore, concurrency int,
	m *metrics.Metrics, logger *slog.Logger) *NotesEditor {
	return &NotesEditor{
		registry:    registry,
		store:       store,
		concurrency: concurrency,
		metrics:     m,
		stations:    newStations[notesState](),
		logger:      logger.With(slog.String("service", "notes_editor")),
	}
}

// lock returns the station state with its mutex held. On a store read
// error the mutex is released.
func (n *NotesEditor) lock(ctx context.Context, station string) (*notesState, error) {
	st := n.stations.get(station)
	st.mu.Lock()
	if st.loaded {
		return st, nil
	}

	var stored []domain.FieldOverride
	if _, err := n.store.Load(ctx, ports.StoreKey(station, ports.KeyNoteOverrides), &stored); err != nil {
		return nil, st.loadFailed(station, err)
	}
	st.overrides = make(map[string]domain.FieldOverride, len(stored))
	for _, o := range stored {
		st.overrides[o.Key()] = o
	}
	st.loaded = true
	return st, nil
}

// Invalidate drops the cached overrides of station
func (n *NotesEditor) Invalidate(station string) {
	n.stations.get(station).invalidate()
}

func (n *NotesEditor) save(ctx context.Context, station string, st *notesState, overrides map[string]domain.FieldOverride) error {
	if err := n.store.Save(ctx, ports.StoreKey(station, ports.KeyNoteOverrides), sortedOverrides(overrides)); err != nil {
		return fmt.Errorf("failed to persist note overrides: %w", err)
	}
	st.overrides = overrides
	return nil
}

// SetOverride records a pending note edit. An unchanged value drops the
// pending edit for that slot.
func (n *NotesEditor) SetOverride(ctx context.Context, station string, o domain.FieldOverride) error {
	o.RecordID = strings.TrimSpace(o.RecordID)
	o.FieldKey = strings.TrimSpace(o.FieldKey)
	if o.RecordID == "" || o.FieldKey == "" {
		return fmt.Errorf("%w: recordId and fieldKey are required", domain.ErrInvalidInput)
	}
	if o.Kind != domain.KindHolding && o.Kind != domain.KindItem {
		return fmt.Errorf("%w: kind must be %q or %q", domain.ErrInvalidInput, domain.KindHolding, domain.KindItem)
	}

	st, err := n.lock(ctx, station)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	next := make(map[string]domain.FieldOverride, len(st.overrides)+1)
	for k, v := range st.overrides {
		next[k] = v
	}
	if domain.IsUnchanged(o.Value) {
		delete(next, o.Key())
	} else {
		next[o.Key()] = o
	}
	return n.save(ctx, station, st, next)
}

// Overrides returns the pending edits of a station
func (n *NotesEditor) Overrides(ctx context.Context, station string) ([]domain.FieldOverride, error) {
	st, err := n.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return sortedOverrides(st.overrides), nil
}

// Flush writes every pending edit, one PUT per record. Edits of records
// that were written are dropped; failed ones stay for a retry.
func (n *NotesEditor) Flush(ctx context.Context, station string) (*domain.BulkResult, error) {
	st, err := n.lock(ctx, station)
	if err != nil {
		return nil, err
	}
	pending := sortedOverrides(st.overrides)
	st.mu.Unlock()

	if len(pending) == 0 {
		return domain.NewBulkResult(), nil
	}

	type recordKey struct {
		kind domain.RecordKind
		id   string
	}
	var order []recordKey
	grouped := make(map[recordKey][]domain.FieldOverride)
	for _, o := range pending {
		k := recordKey{kind: o.Kind, id: o.RecordID}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], o)
	}

	var holdingTasks, itemTasks []Task
	for _, k := range order {
		edits := grouped[k]
		task := Task{
			RecordID: k.id,
			Kind:     k.kind,
			Run: func(ctx context.Context) error {
				return n.writeNotes(ctx, k.kind, k.id, edits)
			},
		}
		if k.kind == domain.KindHolding {
			holdingTasks = append(holdingTasks, task)
		} else {
			itemTasks = append(itemTasks, task)
		}
	}

	holdingOutcomes := RunTasks(ctx, n.concurrency, holdingTasks)
	itemOutcomes := RunTasks(ctx, n.concurrency, itemTasks)
	result := domain.NewBulkResult(holdingOutcomes, itemOutcomes)

	succeeded := make(map[recordKey]bool)
	for _, o := range result.Outcomes {
		if o.Success {
			succeeded[recordKey{kind: o.Kind, id: o.RecordID}] = true
		}
	}

	st, err = n.lock(ctx, station)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to drop flushed note overrides",
			slog.String("station", station),
			slog.String("error", err.Error()))
		return result, nil
	}
	defer st.mu.Unlock()

	next := make(map[string]domain.FieldOverride, len(st.overrides))
	for k, v := range st.overrides {
		next[k] = v
	}
	for _, o := range pending {
		if !succeeded[recordKey{kind: o.Kind, id: o.RecordID}] {
			continue
		}
		// an edit made while the flush was running is kept
		if cur, ok := next[o.Key()]; ok && cur.Value == o.Value {
			delete(next, o.Key())
		}
	}
	if err := n.save(ctx, station, st, next); err != nil {
		n.logger.ErrorContext(ctx, "failed to drop flushed note overrides",
			slog.String("station", station),
			slog.String("error", err.Error()))
	}

	n.metrics.AddBulkRecords("note", result.Succeeded, result.Failed)
	n.logger.InfoContext(ctx, "note overrides flushed",
		slog.String("station", station),
		slog.Int("records", len(result.Outcomes)),
		slog.Int("failed", result.Failed))

	return result, nil
}

func (n *NotesEditor) writeNotes(ctx context.Context, kind domain.RecordKind, id string, edits []domain.FieldOverride) error {
	get, put := n.registry.GetHolding, n.registry.PutHolding
	if kind == domain.KindItem {
		get, put = n.registry.GetItem, n.registry.PutItem
	}

	rec, err := get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	for _, o := range edits {
		o.ApplyNote(rec)
	}
	if err := put(ctx, rec); err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	return nil
}

func sortedOverrides(m map[string]domain.FieldOverride) []domain.FieldOverride {
	out := make([]domain.FieldOverride, 0, len(m))
	for _, o := range m {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
