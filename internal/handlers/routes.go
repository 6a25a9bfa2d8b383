// internal/handlers/routes.go
package handlers

import "net/http"

// Routes groups the handlers served under /api/v1
type Routes struct {
	Inventory *InventoryHandler
	Discard   *DiscardHandler
	Export    *ExportHandler
	Notes     *NotesHandler
	Catalog   *CatalogHandler
	Bulk      *BulkHandler
	Import    *ImportHandler
	Health    *HealthHandler

	// Metrics is mounted at /metrics when set
	Metrics http.Handler
}

// Register adds every route to mux
func (rt *Routes) Register(mux *http.ServeMux) {
	apiV1 := "/api/v1"
	station := apiV1 + "/stations/{station}"

	// Health and readiness endpoints
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /ready", rt.Health.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", rt.Health.Health)

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Inventory screen
	inv := rt.Inventory
	mux.HandleFunc("GET "+station+"/inventory", inv.GetSnapshot)
	mux.HandleFunc("DELETE "+station+"/inventory", inv.Clear)
	mux.HandleFunc("POST "+station+"/inventory/input", inv.SubmitInput)
	mux.HandleFunc("POST "+station+"/inventory/scans", inv.RecordScan)
	mux.HandleFunc("DELETE "+station+"/inventory/scans/{barcode}", inv.RemoveScan)
	mux.HandleFunc("POST "+station+"/inventory/scans/{barcode}/verified", inv.ToggleVerified)
	mux.HandleFunc("POST "+station+"/inventory/holdings/{holdingId}/cleared", inv.ToggleCleared)
	mux.HandleFunc("POST "+station+"/inventory/holdings/{holdingId}/recompute", inv.Recompute)

	// Discard screen
	dis := rt.Discard
	mux.HandleFunc("GET "+station+"/discard", dis.GetSnapshot)
	mux.HandleFunc("DELETE "+station+"/discard", dis.Clear)
	mux.HandleFunc("POST "+station+"/discard/input", dis.SubmitInput)
	mux.HandleFunc("POST "+station+"/discard/scans", dis.RecordScan)
	mux.HandleFunc("POST "+station+"/discard/scans/{barcode}/verified", dis.ToggleVerified)

	// Export endpoints
	mux.HandleFunc("GET "+station+"/inventory/export/items", rt.Export.ExportItems)
	mux.HandleFunc("GET "+station+"/inventory/export/holdings", rt.Export.ExportHoldings)
	mux.HandleFunc("GET "+station+"/discard/export", rt.Export.ExportDiscard)
	mux.HandleFunc("GET "+station+"/exports", rt.Export.ListArchived)

	// Notes overrides
	mux.HandleFunc("GET "+station+"/notes/overrides", rt.Notes.ListOverrides)
	mux.HandleFunc("PUT "+station+"/notes/overrides", rt.Notes.SetOverride)
	mux.HandleFunc("POST "+station+"/notes/flush", rt.Notes.Flush)

	// Catalog lookups and bulk updates
	mux.HandleFunc("GET "+apiV1+"/catalog/working-set", rt.Catalog.WorkingSet)
	mux.HandleFunc("GET "+apiV1+"/catalog/locations", rt.Catalog.Locations)
	mux.HandleFunc("POST "+apiV1+"/bulk-updates", rt.Bulk.ApplyBulkUpdate)
	mux.HandleFunc("GET "+apiV1+"/bulk-updates/{jobId}", rt.Bulk.GetJob)

	// Import endpoints
	mux.HandleFunc("POST "+apiV1+"/import/discard-list", rt.Import.ImportDiscardList)
	mux.HandleFunc("GET "+apiV1+"/import/status/{jobId}", rt.Import.ImportStatus)
}
