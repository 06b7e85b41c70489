// =============================================================================
// Collections Automation - XLSX Writer
// =============================================================================
//
// This module persists a sheet.Table as a single-sheet .xlsx workbook.
//
// OUTPUT LAYOUT:
//   Row 1      : headers (bold)
//   Row 2..n+1 : data rows, one per table row
//
// COLUMN FORMATS:
//   FormatGeneral  : cells keep their type (text, number, date/time)
//   FormatText     : every cell is written as a string with number format "@"
//   FormatDecimal2 : numbers are written with number format "0.00"
//
// Column widths follow the longest rendered value (cosmetic only).
//
// =============================================================================

package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/xuri/excelize/v2"
)

// Built-in number format IDs.
const (
	numFmtDecimal2 = 2
	numFmtText     = 49
)

const (
	defaultSheetName = "Sheet1"
	minColumnWidth   = 8
	maxColumnWidth   = 80
)

// WriteXLSX writes t to path, creating the parent directory if needed.
func WriteXLSX(path string, t *sheet.Table) error {
	f, err := build(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// =============================================================================
// WORKBOOK CONSTRUCTION
// =============================================================================

func build(t *sheet.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	name := t.Name
	if name == "" {
		name = defaultSheetName
	}
	if name != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, name); err != nil {
			f.Close()
			return nil, fmt.Errorf("invalid sheet name %q: %w", name, err)
		}
	}

	if err := writeHeaders(f, name, t); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, name, t); err != nil {
		f.Close()
		return nil, err
	}
	if err := applyFormats(f, name, t); err != nil {
		f.Close()
		return nil, err
	}
	if err := sizeColumns(f, name, t); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeHeaders(f *excelize.File, name string, t *sheet.Table) error {
	if len(t.Headers) == 0 {
		return nil
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
	return f.SetCellStyle(name, "A1", last, style)
}

func writeRows(f *excelize.File, name string, t *sheet.Table) error {
	for i, row := range t.Rows {
		values := make([]interface{}, len(row))
		for col, c := range row {
			values[col] = cellValue(c, t.FormatOf(col))
		}

		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, start, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

// cellValue converts a cell into the value passed to excelize.
func cellValue(c sheet.Cell, format sheet.Format) interface{} {
	switch c.Kind {
	case sheet.KindEmpty:
		return nil
	case sheet.KindText:
		return c.Text
	case sheet.KindNumber:
		if format == sheet.FormatText {
			return c.String()
		}
		v, _ := c.Number.Float64()
		return v
	case sheet.KindTime:
		if format == sheet.FormatText {
			return c.String()
		}
		return c.Time
	default:
		return nil
	}
}

func applyFormats(f *excelize.File, name string, t *sheet.Table) error {
	if t.Len() == 0 || len(t.Formats) == 0 {
		return nil
	}

	cols := make([]int, 0, len(t.Formats))
	for col := range t.Formats {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	styles := make(map[sheet.Format]int)
	for _, col := range cols {
		format := t.Formats[col]

		var numFmt int
		switch format {
		case sheet.FormatText:
			numFmt = numFmtText
		case sheet.FormatDecimal2:
			numFmt = numFmtDecimal2
		default:
			continue
		}

		style, ok := styles[format]
		if !ok {
			var err error
			style, err = f.NewStyle(&excelize.Style{NumFmt: numFmt})
			if err != nil {
				return fmt.Errorf("failed to create column style: %w", err)
			}
			styles[format] = style
		}

		top, _ := excelize.CoordinatesToCellName(col+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(col+1, t.Len()+1)
		if err := f.SetCellStyle(name, top, bottom, style); err != nil {
			return fmt.Errorf("failed to format column %d: %w", col+1, err)
		}
	}
	return nil
}

func sizeColumns(f *excelize.File, name string, t *sheet.Table) error {
	width := t.Width()
	for col := 0; col < width; col++ {
		size := len(t.Header(col))
		for i := range t.Rows {
			if n := len(t.At(i, col).String()); n > size {
				size = n
			}
		}
		size += 2
		if size < minColumnWidth {
			size = minColumnWidth
		}
		if size > maxColumnWidth {
			size = maxColumnWidth
		}

		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, float64(size)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", colName, err)
		}
	}
	return nil
}
