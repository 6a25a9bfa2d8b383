// internal/handlers/discard.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/debounce"
	"github.com/ammerola/ils-tools/internal/pkg/logger"
)

// DiscardHandler serves the discard list (buses) screen of a station
type DiscardHandler struct {
	discard       ports.DiscardLog
	debouncer     *debounce.Debouncer
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// NewDiscardHandler creates a new discard handler
func NewDiscardHandler(discard ports.DiscardLog, debouncer *debounce.Debouncer,
	lookupTimeout time.Duration, logger *slog.Logger) *DiscardHandler {
	return &DiscardHandler{
		discard:       discard,
		debouncer:     debouncer,
		lookupTimeout: lookupTimeout,
		logger:        logger.With(slog.String("handler", "discard")),
	}
}

func discardInputKey(station string) string {
	return "discard:" + station
}

// GetSnapshot handles GET /api/v1/stations/{station}/discard
func (h *DiscardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	snap, err := h.discard.Snapshot(r.Context(), station)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build snapshot",
			slog.String("station", station),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to load discard table")
		return
	}
	snap.Loading = snap.Loading || h.debouncer.Pending(discardInputKey(station))

	respondJSON(w, http.StatusOK, snap)
}

// SubmitInput handles POST /api/v1/stations/{station}/discard/input
func (h *DiscardHandler) SubmitInput(w http.ResponseWriter, r *http.Request) {
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
	pending := submitInput(ctx, h.debouncer, discardInputKey(station), req.Value, h.lookupTimeout,
		func(ctx context.Context, barcode string) error {
			_, err := h.discard.RecordScan(ctx, station, barcode)
			return err
		}, h.logger)

	respondJSON(w, http.StatusAccepted, InputResponse{Pending: pending})
}

// RecordScan handles POST /api/v1/stations/{station}/discard/scans
func (h *DiscardHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.discard.RecordScan(r.Context(), station, req.Barcode)
	if err != nil {
		respondDomainError(w, err, "Failed to record scan")
		return
	}

	status := http.StatusCreated
	if res.AlreadyKnown {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

// ToggleVerified handles POST /api/v1/stations/{station}/discard/scans/{barcode}/verified
func (h *DiscardHandler) ToggleVerified(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	scan, err := h.discard.ToggleVerified(r.Context(), station, r.PathValue("barcode"))
	if err != nil {
		respondDomainError(w, err, "Failed to update scan")
		return
	}
	respondJSON(w, http.StatusOK, scan)
}

// Clear handles DELETE /api/v1/stations/{station}/discard
func (h *DiscardHandler) Clear(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	h.debouncer.Cancel(discardInputKey(station))
	if err := h.discard.Clear(r.Context(), station); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to clear discard table",
			slog.String("station", station),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to clear discard table")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
