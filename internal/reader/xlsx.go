// =============================================================================
// Collections Automation - XLSX Reader
// =============================================================================
//
// This module loads one worksheet of an .xlsx workbook into a sheet.Table.
//
// CELL TYPING:
//   - Shared/inline strings and formula strings -> Text
//   - Numeric cells with a date/time number format -> Time
//   - Other numeric cells -> Number (decimal, exact as stored)
//   - Booleans -> Text "TRUE"/"FALSE"
//   - Missing or empty cells -> Empty
//
// The first row is the header row. Data rows are returned in sheet order,
// including blank rows (cleaning decides what to drop).
//
// =============================================================================

package reader

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads a worksheet from an .xlsx file.
//
// PARAMETERS:
//   - path: The workbook path.
//   - sheetName: The worksheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - The loaded table, named after the worksheet.
//   - An error if the file or worksheet cannot be read.
func ReadXLSX(path, sheetName string) (*sheet.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)",
			sheetName, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	r := &xlsxReader{
		file:       f,
		sheet:      sheetName,
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	table := sheet.New(sheetName, cleanHeaders(rows[0])...)
	for i := 1; i < len(rows); i++ {
		cells := make([]sheet.Cell, len(rows[i]))
		for col, raw := range rows[i] {
			cell, err := r.cell(col+1, i+1, raw)
			if err != nil {
				return nil, fmt.Errorf("error reading row %d: %w", i+1, err)
			}
			cells[col] = cell
		}
		table.Append(cells...)
	}

	return table, nil
}

// =============================================================================
// CELL TYPING
// =============================================================================

type xlsxReader struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// cell converts the raw stored value at a 1-based position into a typed cell.
func (r *xlsxReader) cell(col, row int, raw string) (sheet.Cell, error) {
	if raw == "" {
		return sheet.Empty(), nil
	}

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return sheet.Cell{}, err
	}

	cellType, err := r.file.GetCellType(r.sheet, axis)
	if err != nil {
		return sheet.Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return sheet.Text("TRUE"), nil
		}
		return sheet.Text("FALSE"), nil

	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return sheet.Time(t), nil
			}
		}
		return sheet.Text(raw), nil

	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return sheet.Text(raw), nil
		}
		isDate, err := r.isDateStyled(axis)
		if err != nil {
			return sheet.Cell{}, err
		}
		if isDate {
			serial, _ := d.Float64()
			t, err := excelize.ExcelDateToTime(serial, r.date1904)
			if err == nil {
				return sheet.Time(t), nil
			}
		}
		return sheet.Number(d), nil

	default:
		return sheet.Text(raw), nil
	}
}

// isDateStyled reports whether the cell's number format displays a date or
// time. Results are cached per style ID.
func (r *xlsxReader) isDateStyled(axis string) (bool, error) {
	styleID, err := r.file.GetCellStyle(r.sheet, axis)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", axis, err)
	}
	if styleID == 0 {
		return false, nil
	}
	if isDate, ok := r.dateStyles[styleID]; ok {
		return isDate, nil
	}

	style, err := r.file.GetStyle(styleID)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", styleID, err)
	}

	isDate := IsDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = IsDateFormatCode(*style.CustomNumFmt)
	}
	r.dateStyles[styleID] = isDate
	return isDate, nil
}

// IsDateNumFmt reports whether a built-in number format ID is a date/time
// format.
func IsDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	default:
		return false
	}
}

var (
	quotedSection  = regexp.MustCompile(`"[^"]*"`)
	bracketSection = regexp.MustCompile(`\[[^\]]*\]`)
)

// IsDateFormatCode reports whether a custom number format code contains
// date/time tokens outside quoted literals and bracketed sections.
//
// EXAMPLE:
//   "mm/dd/yyyy"      -> true
//   "[$-409]h:mm AM/PM" -> true
//   "#,##0.00"        -> false
func IsDateFormatCode(code string) bool {
	code = quotedSection.ReplaceAllString(code, "")
	code = bracketSection.ReplaceAllString(code, "")
	code = strings.ToLower(code)
	if code == "general" || code == "@" {
		return false
	}
	return strings.ContainsAny(code, "ydhs")
}

// cleanHeaders trims headers and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}
