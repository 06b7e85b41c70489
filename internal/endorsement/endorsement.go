// =============================================================================
// Collections Automation - Endorsement Remap (Updates / Uploads)
// =============================================================================
//
// Endorsement files from the bank are remapped by header name into the
// 16-column layout expected by the collection system.
//
// COLUMN MAPPING:
//   LAN, NAME, CTL4, UNIT, DPD        -> copied as-is
//   LAN                               -> also CH CODE
//   PAST DUE ... ADA SHORTAGE         -> numeric, rounded to 2 places
//   EMAIL                             -> EMAIL_ALS
//   CONTACT NUMBER 1 / 2              -> MOBILE_NO_ALS / MOBILE_ALFES
//   ENDO DATE                         -> DATE REFERRED (MM/DD/YYYY text)
//   (none)                            -> LANDLINE_NO_ALFES, always blank
//
// Source columns that are missing produce blank output columns, except LAN,
// which is required.
//
// =============================================================================

package endorsement

import (
	"errors"
	"strings"

	"github.com/ginjaninja78/collections-automation/internal/normalize"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/shopspring/decimal"
)

// ErrMissingLAN is returned when the source has no LAN column.
var ErrMissingLAN = errors.New("endorsement file has no LAN column")

// Headers are the output columns, in order.
var Headers = []string{
	"LAN",
	"CH CODE",
	"NAME",
	"CTL4",
	"PAST DUE",
	"PAYOFF AMOUNT",
	"PRINCIPAL",
	"LPC",
	"ADA SHORTAGE",
	"EMAIL_ALS",
	"MOBILE_NO_ALS",
	"MOBILE_ALFES",
	"LANDLINE_NO_ALFES",
	"DATE REFERRED",
	"UNIT",
	"DPD",
}

// NumericColumns are coerced to numbers and written with two decimals.
var NumericColumns = []string{"PAST DUE", "PAYOFF AMOUNT", "PRINCIPAL", "LPC", "ADA SHORTAGE"}

type fieldKind uint8

const (
	fieldCopy fieldKind = iota
	fieldNumeric
	fieldMobile
	fieldDate
	fieldBlank
)

type field struct {
	source string
	kind   fieldKind
}

// fields maps each output header to its source column and conversion.
var fields = map[string]field{
	"LAN":               {"LAN", fieldCopy},
	"CH CODE":           {"LAN", fieldCopy},
	"NAME":              {"NAME", fieldCopy},
	"CTL4":              {"CTL4", fieldCopy},
	"PAST DUE":          {"PAST DUE", fieldNumeric},
	"PAYOFF AMOUNT":     {"PAYOFF AMOUNT", fieldNumeric},
	"PRINCIPAL":         {"PRINCIPAL", fieldNumeric},
	"LPC":               {"LPC", fieldNumeric},
	"ADA SHORTAGE":      {"ADA SHORTAGE", fieldNumeric},
	"EMAIL_ALS":         {"EMAIL", fieldCopy},
	"MOBILE_NO_ALS":     {"CONTACT NUMBER 1", fieldMobile},
	"MOBILE_ALFES":      {"CONTACT NUMBER 2", fieldMobile},
	"LANDLINE_NO_ALFES": {"", fieldBlank},
	"DATE REFERRED":     {"ENDO DATE", fieldDate},
	"UNIT":              {"UNIT", fieldCopy},
	"DPD":               {"DPD", fieldCopy},
}

// Stats summarizes a remap.
type Stats struct {
	Rows int

	// MissingColumns lists source columns that were absent.
	MissingColumns []string

	// CoercedToZero counts numeric cells that were blank or unparseable.
	CoercedToZero int
}

// Remap projects src into the endorsement layout.
func Remap(src *sheet.Table) (*sheet.Table, Stats, error) {
	var stats Stats

	if src.ColumnIndex("LAN") < 0 {
		return nil, stats, ErrMissingLAN
	}

	cols := make([]int, len(Headers))
	missing := make(map[string]bool)
	for i, h := range Headers {
		f := fields[h]
		cols[i] = -1
		if f.kind == fieldBlank {
			continue
		}
		cols[i] = src.ColumnIndex(f.source)
		if cols[i] < 0 && !missing[f.source] {
			missing[f.source] = true
			stats.MissingColumns = append(stats.MissingColumns, f.source)
		}
	}

	out := sheet.New("Sheet1", Headers...)
	for _, row := range src.Rows {
		cells := make([]sheet.Cell, len(Headers))
		for i, h := range Headers {
			f := fields[h]
			if cols[i] < 0 {
				continue
			}
			cell := sheet.CellAt(row, cols[i])

			switch f.kind {
			case fieldCopy:
				cells[i] = cell
			case fieldNumeric:
				d, ok := ToNumber(cell)
				if !ok {
					stats.CoercedToZero++
				}
				cells[i] = sheet.Number(d.Round(2))
			case fieldMobile:
				cells[i] = sheet.Text(normalize.NormalizeMobile(cell.String()))
			case fieldDate:
				cells[i] = sheet.Text(formatDate(cell))
			}
		}
		out.Append(cells...)
	}

	for i, h := range Headers {
		switch {
		case h == "DATE REFERRED":
			out.SetFormat(i, sheet.FormatText)
		case isNumeric(h):
			out.SetFormat(i, sheet.FormatDecimal2)
		}
	}

	stats.Rows = out.Len()
	return out, stats, nil
}

// ToNumber coerces a cell to a decimal. Blank and unparseable cells yield
// zero and false.
func ToNumber(c sheet.Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case sheet.KindNumber:
		return c.Number, true
	case sheet.KindText:
		d, err := decimal.NewFromString(strings.TrimSpace(c.Text))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

func formatDate(c sheet.Cell) string {
	if t, ok := normalize.ParseDate(c, normalize.LenientLayouts...); ok {
		return normalize.FormatMDY(t)
	}
	return c.String()
}

func isNumeric(header string) bool {
	for _, h := range NumericColumns {
		if h == header {
			return true
		}
	}
	return false
}
