// internal/workers/excel_processor.go
package workers

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

// discardColumns are the positions used when the first row carries no headers
var discardColumns = map[string]int{"barcode": 0, "title": 1, "contributors": 2}

// ParseDiscardXLSX reads the first sheet of a workbook. A header row naming
// Barcode, Title and Contributors selects the columns; without one the
// columns are taken in that order.
func ParseDiscardXLSX(path string) ([]domain.DiscardEntry, []string, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open Excel file: %v", domain.ErrInvalidInput, err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
	}

	var (
		entries  []domain.DiscardEntry
		warnings []string
		columns  = discardColumns
		rowIdx   = 0
	)

	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		rowIdx++
		if rowIdx == 1 {
			if header, ok := headerColumns(r); ok {
				columns = header
				return nil
			}
		}

		entry := domain.DiscardEntry{
			Barcode:      cellString(r, columns["barcode"]),
			Title:        cellString(r, columns["title"]),
			Contributors: cellString(r, columns["contributors"]),
		}
		if entry.Barcode == "" {
			if entry.Title != "" {
				warnings = append(warnings, fmt.Sprintf("row %d: missing barcode", rowIdx))
			}
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to process Excel rows: %w", err)
	}

	return entries, warnings, nil
}

func headerColumns(r *xlsx.Row) (map[string]int, bool) {
	found := make(map[string]int)
	_ = r.ForEachCell(func(c *xlsx.Cell) error {
		name := strings.ToLower(strings.TrimSpace(c.String()))
		if _, known := discardColumns[name]; known {
			col, _ := c.GetCoordinates()
			found[name] = col
		}
		return nil
	})
	if _, ok := found["barcode"]; !ok {
		return nil, false
	}
	for name, pos := range discardColumns {
		if _, ok := found[name]; !ok {
			found[name] = pos
		}
	}
	return found, true
}

func cellString(r *xlsx.Row, i int) string {
	c := r.GetCell(i)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.String())
}
