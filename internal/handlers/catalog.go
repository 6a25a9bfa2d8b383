// internal/handlers/catalog.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/ils-tools/internal/core/ports"
)

// CatalogHandler exposes read-only catalog lookups for the bulk editor
type CatalogHandler struct {
	lookup ports.CatalogLookup
	logger *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(lookup ports.CatalogLookup, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		lookup: lookup,
		logger: logger.With(slog.String("handler", "catalog")),
	}
}

// WorkingSet handles GET /api/v1/catalog/working-set?identifier=X
func (h *CatalogHandler) WorkingSet(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")

	view, err := h.lookup.WorkingSet(r.Context(), identifier)
	if err != nil {
		h.logger.WarnContext(r.Context(), "working set lookup failed",
			slog.String("identifier", identifier),
			slog.String("error", err.Error()))
		respondDomainError(w, err, "Failed to look up working set")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Locations handles GET /api/v1/catalog/locations. ?refresh=true skips the
// cached list.
func (h *CatalogHandler) Locations(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := h.lookup.InvalidateLocations(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "failed to drop cached locations", slog.String("error", err.Error()))
		}
	}

	locations, err := h.lookup.Locations(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list locations", slog.String("error", err.Error()))
		respondDomainError(w, err, "Failed to list locations")
		return
	}
	respondJSON(w, http.StatusOK, locations)
}
