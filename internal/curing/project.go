package curing

import (
	"github.com/ginjaninja78/collections-automation/internal/normalize"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// ReshuffleCollectorHeader is the second column of the reshuffle table.
const ReshuffleCollectorHeader = "REMARK BY"

// PaymentHeaders are the columns of the payments table.
var PaymentHeaders = []string{
	"LAN",
	"ACCOUNT NUMBER",
	"NAME",
	"CARD NUMBER",
	"PAYMENT AMOUNT",
	"PAYMENT DATE",
}

const colPaymentDate = 5

// Reshuffle pairs every source row's barcode with the collector of the first
// source row, in original order, that shares the barcode.
func Reshuffle(src *sheet.Table, layout Layout) *sheet.Table {
	t := sheet.New("Reshuffle", src.Header(layout.Barcode-1), ReshuffleCollectorHeader)

	first := make(map[string]sheet.Cell, len(src.Rows))
	for _, row := range src.Rows {
		s := source{row: row, layout: layout}
		k := key(s.barcode())
		if _, seen := first[k]; !seen {
			first[k] = s.collector()
		}
	}

	for _, row := range src.Rows {
		barcode := source{row: row, layout: layout}.barcode()
		t.Append(barcode, first[key(barcode)])
	}
	return t
}

// Payments remaps every source row into the payments layout.
//
// ACCOUNT NUMBER and CARD NUMBER are always blank. A zero amount is written
// blank. The payment date is written as MM/DD/YYYY text when it can be read
// as a date, and verbatim otherwise.
func Payments(src *sheet.Table, layout Layout) *sheet.Table {
	t := sheet.New("Payments", PaymentHeaders...)
	for _, row := range src.Rows {
		s := source{row: row, layout: layout}

		amount := s.amount()
		if amount.IsZero() {
			amount = sheet.Empty()
		}

		t.Append(
			s.lan(),
			sheet.Empty(),
			s.name(),
			sheet.Empty(),
			amount,
			sheet.Text(paymentDate(s.date())),
		)
	}
	t.SetFormat(colPaymentDate, sheet.FormatText)
	return t
}

func paymentDate(c sheet.Cell) string {
	if date, ok := normalize.ParseDate(c, normalize.SourceLayouts...); ok {
		return normalize.FormatMDY(date)
	}
	return c.String()
}
