// =============================================================================
// Collections Automation - Remarks Enricher
// =============================================================================
//
// The enricher turns each expanded Item into a full remarks row using the
// barcode index. Field placement depends on the label kind:
//
//   FIELD              NEW / FOLLOW-UP           PAYMENT
//   remark date        date + label time         date + label time
//   ptp date           MM/DD/YYYY                MM/DD/YYYY
//   remark             "1_{phone} - PTP NEW" /   fixed cured text
//                      "{phone} - FPTP"
//   ptp amount         source amount             blank
//   claim paid amount  blank                     source amount
//   phone              phone1, else phone2       blank
//   claim paid date    blank                     MM/DD/YYYY
//
// Degradations never fail the run:
//   - barcode not indexed   -> every enrichment field blank
//   - date not parseable    -> the injected clock is used
//
// =============================================================================

package curing

import (
	"time"

	"github.com/ginjaninja78/collections-automation/internal/normalize"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"go.uber.org/zap"
)

// CuredRemark is the remark text of payment labels.
const CuredRemark = "CURED - CONFIRM VIA SELECTIVE LIST"

// RemarkHeaders are the columns of the remarks table.
var RemarkHeaders = []string{
	"LAN",
	"Action Status",
	"Remark Date",
	"PTP Date",
	"Reason For Default",
	"Field Visit Date",
	"Remark",
	"Next Call Date",
	"PTP Amount",
	"Claim Paid Amount",
	"Remark By",
	"Phone No.",
	"Relation",
	"Claim Paid Date",
}

// Remarks table columns stored as literal text.
const (
	colRemarkDate    = 2
	colPTPDate       = 3
	colClaimPaidDate = 13
)

// OutputRow is one enriched remarks row.
type OutputRow struct {
	Barcode         sheet.Cell
	Label           Label
	RemarkDate      string
	PTPDate         string
	Reason          string
	FieldVisitDate  string
	Remark          string
	NextCallDate    string
	PTPAmount       sheet.Cell
	ClaimPaidAmount sheet.Cell
	RemarkBy        sheet.Cell
	Phone           string
	Relation        string
	ClaimPaidDate   string
}

// Cells renders the row in RemarkHeaders order.
func (r OutputRow) Cells() []sheet.Cell {
	return []sheet.Cell{
		r.Barcode,
		sheet.Text(r.Label.Status),
		sheet.Text(r.RemarkDate),
		sheet.Text(r.PTPDate),
		sheet.Text(r.Reason),
		sheet.Text(r.FieldVisitDate),
		sheet.Text(r.Remark),
		sheet.Text(r.NextCallDate),
		r.PTPAmount,
		r.ClaimPaidAmount,
		r.RemarkBy,
		sheet.Text(r.Phone),
		sheet.Text(r.Relation),
		sheet.Text(r.ClaimPaidDate),
	}
}

// Enricher fills remarks rows from the barcode index.
type Enricher struct {
	index  *BarcodeIndex
	now    func() time.Time
	logger *zap.Logger

	lookupMisses  int
	dateFallbacks int
}

// NewEnricher creates an Enricher. now supplies the fallback date for
// unparseable source dates.
func NewEnricher(index *BarcodeIndex, now func() time.Time, logger *zap.Logger) *Enricher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{index: index, now: now, logger: logger}
}

// Enrich returns one row per item, in item order.
func (e *Enricher) Enrich(items []Item) []OutputRow {
	rows := make([]OutputRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, e.enrichItem(item))
	}
	return rows
}

// LookupMisses returns the number of items whose barcode was not indexed.
func (e *Enricher) LookupMisses() int { return e.lookupMisses }

// DateFallbacks returns the number of items that used the fallback clock.
func (e *Enricher) DateFallbacks() int { return e.dateFallbacks }

func (e *Enricher) enrichItem(item Item) OutputRow {
	row := OutputRow{Barcode: item.Barcode, Label: item.Label}

	barcode := key(item.Barcode)
	entry, ok := e.index.Lookup(barcode)
	if !ok {
		e.lookupMisses++
		e.logger.Warn("barcode not found in source index",
			zap.String("barcode", barcode),
			zap.String("label", item.Label.Status),
		)
		return row
	}

	// =========================================================================
	// DATES
	// =========================================================================

	if !entry.Date.IsEmpty() {
		date, parsed := normalize.ParseDate(entry.Date, normalize.SourceLayouts...)
		if !parsed {
			e.dateFallbacks++
			e.logger.Warn("unparseable remark date, using current date",
				zap.String("barcode", barcode),
				zap.String("label", item.Label.Status),
				zap.String("value", entry.Date.String()),
			)
			date = e.now()
		}

		h, m, s := item.Label.TimeOfDay()
		row.RemarkDate = normalize.AtTimeOfDay(date, h, m, s).Format(normalize.DateTimeLayout)
		row.PTPDate = normalize.FormatMDY(date)

		if item.Label.IsPayment() && parsed {
			row.ClaimPaidDate = normalize.FormatMDY(date)
		}
	}

	// =========================================================================
	// REMARK, AMOUNTS, PHONE
	// =========================================================================

	phone := entry.Phone()
	switch item.Label.Kind {
	case KindNew:
		row.Remark = "1_" + phone + " - PTP NEW"
	case KindFollowUp:
		row.Remark = phone + " - FPTP"
	case KindPayment:
		row.Remark = CuredRemark
	}

	if item.Label.IsPayment() {
		row.ClaimPaidAmount = entry.Amount
	} else {
		row.PTPAmount = entry.Amount
		row.Phone = phone
	}

	row.RemarkBy = entry.Collector
	return row
}

// remarksTable builds the remarks table from enriched rows.
func remarksTable(rows []OutputRow) *sheet.Table {
	t := sheet.New("Remarks", RemarkHeaders...)
	for _, r := range rows {
		t.Append(r.Cells()...)
	}
	t.SetFormat(colRemarkDate, sheet.FormatText)
	t.SetFormat(colPTPDate, sheet.FormatText)
	t.SetFormat(colClaimPaidDate, sheet.FormatText)
	return t
}
