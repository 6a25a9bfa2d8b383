// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// ISO 8601 in UTC with dashes instead of colons so the name is a valid filename everywhere
	exportTimestamp = "2006-01-02T15-04-05Z"
)

// Sheet is one exported table
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// ArchivedExport is a previously generated spreadsheet kept in the archive
type ArchivedExport struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// ExportHandler turns station tables into spreadsheet downloads
type ExportHandler struct {
	inventory  ports.ScanAggregator
	discard    ports.DiscardLog
	archive    ports.ExportArchive // nil when archiving is disabled
	presignTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(inventory ports.ScanAggregator, discard ports.DiscardLog, archive ports.ExportArchive,
	presignTTL time.Duration, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		inventory:  inventory,
		discard:    discard,
		archive:    archive,
		presignTTL: presignTTL,
		now:        time.Now,
		logger:     logger.With(slog.String("handler", "export")),
	}
}

// ExportItems handles GET /api/v1/stations/{station}/inventory/export/items
func (h *ExportHandler) ExportItems(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	snap, err := h.inventory.Snapshot(r.Context(), station)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load inventory", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	h.serveWorkbook(w, r, station, "Inventory_", ItemsSheet(snap.Items))
}

// ExportHoldings handles GET /api/v1/stations/{station}/inventory/export/holdings
func (h *ExportHandler) ExportHoldings(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	snap, err := h.inventory.Snapshot(r.Context(), station)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load inventory", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	h.serveWorkbook(w, r, station, "HoldingsSummary_", HoldingsSheet(snap.Summaries))
}

// ExportDiscard handles GET /api/v1/stations/{station}/discard/export
func (h *ExportHandler) ExportDiscard(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}

	snap, err := h.discard.Snapshot(r.Context(), station)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load discard table", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	h.serveWorkbook(w, r, station, "bus_discarding_", DiscardSheet(snap.Items))
}

// ListArchived handles GET /api/v1/stations/{station}/exports
func (h *ExportHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	station, ok := stationParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid station")
		return
	}
	if h.archive == nil {
		respondError(w, http.StatusNotFound, "Export archive is not enabled")
		return
	}

	ctx := r.Context()
	keys, err := h.archive.List(ctx, archivePrefix(station))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list archived exports",
			slog.String("station", station),
			slog.String("error", err.Error()))
		respondError(w, http.StatusBadGateway, "Failed to list archived exports")
		return
	}

	exports := make([]ArchivedExport, 0, len(keys))
	for _, key := range keys {
		url, err := h.archive.GetPresignedURL(ctx, key, h.presignTTL)
		if err != nil {
			h.logger.WarnContext(ctx, "failed to presign export",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		exports = append(exports, ArchivedExport{Key: key, Filename: path.Base(key), URL: url})
	}

	respondJSON(w, http.StatusOK, exports)
}

func archivePrefix(station string) string {
	return "exports/" + station + "/"
}

func (h *ExportHandler) serveWorkbook(w http.ResponseWriter, r *http.Request, station, prefix string, sheet Sheet) {
	ctx := r.Context()

	data, err := GenerateExcelFile(sheet)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate Excel file", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := prefix + h.now().UTC().Format(exportTimestamp) + ".xlsx"
	if h.archive != nil {
		h.archiveExport(ctx, archivePrefix(station)+filename, data)
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.String("station", station),
		slog.Int("total_rows", len(sheet.Rows)),
		slog.String("filename", filename))
}

// archiveExport keeps a copy of the download. Failures only cost the copy.
func (h *ExportHandler) archiveExport(ctx context.Context, key string, data []byte) {
	if _, err := h.archive.Upload(ctx, key, bytes.NewReader(data), xlsxContentType); err != nil {
		h.logger.WarnContext(ctx, "failed to archive export",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// GenerateExcelFile renders one sheet with a bold header row
func GenerateExcelFile(s Sheet) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(s.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range s.Headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for _, values := range s.Rows {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().Value = v
		}
	}

	for i := range s.Headers {
		sheet.SetColWidth(i+1, i+1, 18)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}

// ItemsSheet lists scanned items
func ItemsSheet(items []domain.ScannedItem) Sheet {
	s := Sheet{
		Name:    "Inventory",
		Headers: []string{"barcode", "hrid", "title", "status", "correct", "addedDateTime"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, it := range items {
		s.Rows = append(s.Rows, []string{
			it.Barcode,
			it.HRID,
			it.Title,
			it.Status,
			strconv.FormatBool(it.Verified),
			formatTime(it.RecordedAt),
		})
	}
	return s
}

// HoldingsSheet lists holding summaries
func HoldingsSheet(summaries []domain.ParentSummary) Sheet {
	s := Sheet{
		Name:    "Inventory",
		Headers: []string{"HoldingID", "title", "totalItems", "scannedItems", "status"},
		Rows:    make([][]string, 0, len(summaries)),
	}
	for _, sum := range summaries {
		s.Rows = append(s.Rows, []string{
			sum.ParentKey,
			sum.Title,
			strconv.Itoa(sum.ExpectedCount),
			strconv.Itoa(sum.ScannedCount),
			string(sum.Status),
		})
	}
	return s
}

// DiscardSheet lists discard list scans
func DiscardSheet(scans []domain.DiscardScan) Sheet {
	s := Sheet{
		Name:    "Buses",
		Headers: []string{"Barcode", "Title", "Contributors", "correct", "addedDateTime"},
		Rows:    make([][]string, 0, len(scans)),
	}
	for _, sc := range scans {
		s.Rows = append(s.Rows, []string{
			sc.Barcode,
			sc.Title,
			sc.Contributors,
			strconv.FormatBool(sc.Verified),
			formatTime(sc.RecordedAt),
		})
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
