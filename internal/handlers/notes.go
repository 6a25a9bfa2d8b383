// internal/handlers/notes.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
)

// NotesHandler manages pending note overrides of a station
type NotesHandler struct {
	notes  ports.NotesEditor
	logger *slog.Logger
}

// NewNotesHandler creates a new notes handler
func NewNotesHandler(notes ports.NotesEditor, logger *slog.Logger) *NotesHandler {
	return &NotesHandler{
		notes:  notes,
		logger: logger.With(slog.String("handler", "notes")),
	}
}

// ListOverrides handles GET /api/v1/stations/{station}/notes/overrides
func (h *NotesHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	overrides, err := h.notes.Overrides(r.Context(), station)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load overrides")
		return
	}
	respondJSON(w, http.StatusOK, overrides)
}

// SetOverride handles PUT /api/v1/stations/{station}/notes/overrides
func (h *NotesHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	var o domain.FieldOverride
	if err := decodeJSON(w, r, &o); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.notes.SetOverride(r.Context(), station, o); err != nil {
		respondDomainError(w, err, "Failed to store override")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Flush handles POST /api/v1/stations/{station}/notes/flush
func (h *NotesHandler) Flush(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	result, err := h.notes.Flush(r.Context(), station)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "notes flush failed",
			slog.String("station", station),
			slog.String("error", err.Error()))
		respondDomainError(w, err, "Failed to write notes")
		return
	}

	status := http.StatusOK
	var partial *domain.PartialBulkFailure
	if errors.As(result.Err(), &partial) {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, BulkUpdateResponse{BulkResult: result, FailedIDs: result.FailedIDs()})
}
