// internal/handlers/inventory.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/debounce"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
)

// ScanInputRequest is the raw content of a scan input box
type ScanInputRequest struct {
	Value string `json:"value"`
}

// ScanRequest registers one barcode immediately
type ScanRequest struct {
	Barcode string `json:"barcode"`
}

// InputResponse acknowledges debounced input
type InputResponse struct {
	Pending bool `json:"pending"`
}

// InventoryHandler serves the inventory scan screen of a station
type InventoryHandler struct {
	aggregator    ports.ScanAggregator
	debouncer     *debounce.Debouncer
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(aggregator ports.ScanAggregator, debouncer *debounce.Debouncer,
	lookupTimeout time.Duration, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		aggregator:    aggregator,
		debouncer:     debouncer,
		lookupTimeout: lookupTimeout,
		logger:        logger.With(slog.String("handler", "inventory")),
	}
}

func inventoryInputKey(station string) string {
	return "inventory:" + station
}

// GetSnapshot handles GET /api/v1/stations/{station}/inventory
func (h *InventoryHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	snap, err := h.aggregator.Snapshot(r.Context(), station)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build snapshot",
			slog.String("station", station),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to load inventory")
		return
	}
	snap.Loading = snap.Loading || h.debouncer.Pending(inventoryInputKey(station))

	respondJSON(w, http.StatusOK, snap)
}

// SubmitInput handles POST /api/v1/stations/{station}/inventory/input
func (h *InventoryHandler) SubmitInput(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	var req ScanInputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := logger.WithStation(r.Context(), station)
	pending := submitInput(ctx, h.debouncer, inventoryInputKey(station), req.Value, h.lookupTimeout,
		func(ctx context.Context, barcode string) error {
			_, err := h.aggregator.RecordScan(ctx, station, barcode)
			return err
		}, h.logger)

	respondJSON(w, http.StatusAccepted, InputResponse{Pending: pending})
}

// RecordScan handles POST /api/v1/stations/{station}/inventory/scans
func (h *InventoryHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	var req ScanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.aggregator.RecordScan(r.Context(), station, req.Barcode)
	if err != nil {
		h.logger.WarnContext(r.Context(), "scan not recorded",
			slog.String("station", station),
			slog.String("barcode", req.Barcode),
			slog.String("error", err.Error()))
		respondDomainError(w, err, "Failed to record scan")
		return
	}

	status := http.StatusCreated
	if res.AlreadyKnown {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

// RemoveScan handles DELETE /api/v1/stations/{station}/inventory/scans/{barcode}
func (h *InventoryHandler) RemoveScan(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	if err := h.aggregator.RemoveScan(r.Context(), station, r.PathValue("barcode")); err != nil {
		respondDomainError(w, err, "Failed to remove scan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleVerified handles POST /api/v1/stations/{station}/inventory/scans/{barcode}/verified
func (h *InventoryHandler) ToggleVerified(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	ev, err := h.aggregator.ToggleVerified(r.Context(), station, r.PathValue("barcode"))
	if err != nil {
		respondDomainError(w, err, "Failed to update scan")
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// ToggleCleared handles POST /api/v1/stations/{station}/inventory/holdings/{holdingId}/cleared
func (h *InventoryHandler) ToggleCleared(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	summary, err := h.aggregator.ToggleCleared(r.Context(), station, r.PathValue("holdingId"))
	if err != nil {
		respondDomainError(w, err, "Failed to update holding")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Recompute handles POST /api/v1/stations/{station}/inventory/holdings/{holdingId}/recompute
func (h *InventoryHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	summary, err := h.aggregator.RecomputeSummary(r.Context(), station, r.PathValue("holdingId"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "recompute failed",
			slog.String("station", station),
			slog.String("holding_id", r.PathValue("holdingId")),
			slog.String("error", err.Error()))
		respondDomainError(w, err, "Failed to recompute holding")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Clear handles DELETE /api/v1/stations/{station}/inventory
func (h *InventoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	h.debouncer.Cancel(inventoryInputKey(station))
	if err := h.aggregator.Clear(r.Context(), station); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to clear inventory",
			slog.String("station", station),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to clear inventory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submitInput debounces raw input for key. An empty value cancels the pending
// lookup; otherwise the settled value runs lookup detached from the request.
func submitInput(ctx context.Context, d *debounce.Debouncer, key, value string, timeout time.Duration,
	lookup func(context.Context, string) error, log *slog.Logger) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		d.Cancel(key)
		return false
	}

	detached := context.WithoutCancel(ctx)
	return d.Submit(key, func() {
		lookupCtx, cancel := context.WithTimeout(detached, timeout)
		defer cancel()

		if err := lookup(lookupCtx, value); err != nil {
			log.DebugContext(lookupCtx, "debounced lookup failed",
				slog.String("value", value),
				slog.String("error", err.Error()))
		}
	})
}
