// test/benchmarks/helpers.go
package benchmarks

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/test/helpers"
)

var titles = []string{
	"The Go Programming Language",
	"Structure and Interpretation of Computer Programs",
	"A Field Guide to the Birds of North America",
	"Rand McNally Road Atlas 1987",
	"Encyclopaedia Britannica Vol. 12",
	"The Art of Computer Programming, Volume 1",
	"Gray's Anatomy, 29th edition",
	"Annual Report of the Smithsonian Institution",
}

// discardEntries builds n list entries with distinct barcodes
func discardEntries(n int) []domain.DiscardEntry {
	entries := make([]domain.DiscardEntry, n)
	for i := range entries {
		entries[i] = domain.DiscardEntry{
			Barcode:      fmt.Sprintf("3123400%07d", i),
			Title:        titles[i%len(titles)],
			Contributors: fmt.Sprintf("Author %d", i%50),
		}
	}
	return entries
}

// discardJSON renders entries in the uploaded list layout
func discardJSON(entries []domain.DiscardEntry) []byte {
	b, _ := json.Marshal(domain.DiscardList{Items: entries})
	return b
}

// discardWorkbook saves entries as a one-sheet workbook with a header row
func discardWorkbook(b *testing.B, entries []domain.DiscardEntry) string {
	b.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Buses")
	if err != nil {
		b.Fatal(err)
	}
	header := sheet.AddRow()
	for _, h := range []string{"Barcode", "Title", "Contributors"} {
		header.AddCell().SetString(h)
	}
	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetString(e.Barcode)
		row.AddCell().SetString(e.Title)
		row.AddCell().SetString(e.Contributors)
	}

	path := filepath.Join(b.TempDir(), "discard.xlsx")
	if err := file.Save(path); err != nil {
		b.Fatal(err)
	}
	return path
}

// seedHoldings fills the fake backend with holdings of perHolding items each
// and returns every item barcode.
func seedHoldings(fake *helpers.FakeOkapi, holdings, perHolding int) []string {
	fake.SetLocations(domain.Location{ID: "loc-store", Name: "Main Stacks", Code: "MAIN"})
	var barcodes []string
	for h := 0; h < holdings; h++ {
		holdingID := fmt.Sprintf("h%04d", h)
		fake.AddHolding(helpers.HoldingRecord(holdingID, "in1", "loc-store"))
		for i := 0; i < perHolding; i++ {
			barcode := fmt.Sprintf("39%04d%03d", h, i)
			fake.AddItem(helpers.ItemRecord(fmt.Sprintf("%s-i%03d", holdingID, i), barcode, holdingID, "loc-store"))
			barcodes = append(barcodes, barcode)
		}
	}
	return barcodes
}

// scanLog builds a log of n events spread across holdings parents
func scanLog(n, holdings int) []domain.ScanEvent {
	events := make([]domain.ScanEvent, n)
	for i := range events {
		events[i] = domain.ScanEvent{
			Barcode:   fmt.Sprintf("39%07d", i),
			ParentKey: fmt.Sprintf("h%04d", i%holdings),
			Title:     titles[i%len(titles)],
		}
	}
	return events
}
