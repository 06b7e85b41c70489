package curing

import (
	"github.com/ginjaninja78/collections-automation/internal/normalize"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// Entry is the enrichment data captured for one barcode.
type Entry struct {
	Date      sheet.Cell
	Amount    sheet.Cell
	Collector sheet.Cell

	// Phone1 and Phone2 are mobile-normalized.
	Phone1 string
	Phone2 string
}

// Phone returns Phone1, or Phone2 when Phone1 is blank.
func (e Entry) Phone() string {
	if e.Phone1 != "" {
		return e.Phone1
	}
	return e.Phone2
}

// BarcodeIndex maps a barcode to its enrichment data. It is read-only once
// built.
type BarcodeIndex struct {
	entries map[string]Entry
}

// BuildIndex scans rows left to right. When a barcode repeats, the last
// occurrence wins. Rows with a blank barcode are not indexed.
func BuildIndex(rows [][]sheet.Cell, layout Layout) *BarcodeIndex {
	idx := &BarcodeIndex{entries: make(map[string]Entry, len(rows))}
	for _, row := range rows {
		src := source{row: row, layout: layout}
		barcode := src.barcode()
		if barcode.IsEmpty() {
			continue
		}
		idx.entries[key(barcode)] = Entry{
			Date:      src.date(),
			Amount:    src.amount(),
			Collector: src.collector(),
			Phone1:    normalize.NormalizeMobile(src.phone1().String()),
			Phone2:    normalize.NormalizeMobile(src.phone2().String()),
		}
	}
	return idx
}

// Lookup returns the entry of a barcode.
func (idx *BarcodeIndex) Lookup(barcode string) (Entry, bool) {
	e, ok := idx.entries[barcode]
	return e, ok
}

// Len returns the number of distinct barcodes.
func (idx *BarcodeIndex) Len() int {
	return len(idx.entries)
}
