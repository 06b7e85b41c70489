// =============================================================================
// Collections Automation - Tabular Model
// =============================================================================
//
// This package contains the in-memory table used by every automation. A
// workbook sheet is read into a Table once, every transformation works on
// Tables, and the writer persists Tables back to workbooks.
//
// CELL KINDS:
//   - Empty  : the cell holds no value (a blank or missing cell)
//   - Text   : a string value
//   - Number : a numeric value (decimal, to keep amounts exact)
//   - Time   : a native date/time value
//
// Shared by:
//   - reader
//   - writer
//   - cleaning, curing, endorsement
//
// =============================================================================

package sheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELLS
// =============================================================================

// Kind identifies what a Cell holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindTime
)

// Cell is a single typed value of a table.
type Cell struct {
	Kind   Kind
	Text   string
	Number decimal.Decimal
	Time   time.Time
}

// Empty returns a blank cell.
func Empty() Cell {
	return Cell{}
}

// Text returns a text cell. An empty string yields a blank cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

// Number returns a numeric cell.
func Number(d decimal.Decimal) Cell {
	return Cell{Kind: KindNumber, Number: d}
}

// Float returns a numeric cell from a float64.
func Float(f float64) Cell {
	return Number(decimal.NewFromFloat(f))
}

// Time returns a date/time cell.
func Time(t time.Time) Cell {
	return Cell{Kind: KindTime, Time: t}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty
}

// IsZero reports whether the cell is blank or a numeric zero.
// Used where a falsy source value must be treated as missing.
func (c Cell) IsZero() bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindNumber:
		return c.Number.IsZero()
	default:
		return false
	}
}

// String renders the cell as text.
//
// Numbers render without trailing zeros ("1500", "1500.5"); date/time values
// render as "YYYY-MM-DD HH:MM:SS".
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return c.Number.String()
	case KindTime:
		return c.Time.Format(time.DateTime)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and value.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindText:
		return c.Text == o.Text
	case KindNumber:
		return c.Number.Equal(o.Number)
	case KindTime:
		return c.Time.Equal(o.Time)
	default:
		return true
	}
}

// =============================================================================
// COLUMN FORMATS
// =============================================================================

// Format is a column-level number format applied when a table is written.
type Format uint8

const (
	// FormatGeneral leaves cells as typed values.
	FormatGeneral Format = iota

	// FormatText stores cells as literal text ("@") so spreadsheet tools do not
	// reinterpret dates or long digit strings.
	FormatText

	// FormatDecimal2 displays numbers with two decimal places ("0.00").
	FormatDecimal2
)

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered list of rows with named columns.
type Table struct {
	// Name is used as the sheet name when the table is written.
	Name string

	// Headers holds the column names in column order.
	Headers []string

	// Rows holds the data rows. Rows may be shorter than Headers; missing
	// trailing cells read as Empty.
	Rows [][]Cell

	// Formats maps a 0-based column index to its output format.
	Formats map[int]Format
}

// New creates an empty table with the given headers.
func New(name string, headers ...string) *Table {
	return &Table{
		Name:    name,
		Headers: append([]string(nil), headers...),
		Formats: make(map[int]Format),
	}
}

// Append adds a row.
func (t *Table) Append(cells ...Cell) {
	t.Rows = append(t.Rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns spanned by the table, counting both
// the header row and the widest data row.
func (t *Table) Width() int {
	width := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// At returns the cell at a 0-based row and column, or Empty when out of range.
func (t *Table) At(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return Cell{}
	}
	return CellAt(t.Rows[row], col)
}

// CellAt returns the cell at a 0-based column of a row, or Empty when the
// row is too short.
func CellAt(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{}
	}
	return row[col]
}

// Header returns the header of a 0-based column, or "" when out of range.
func (t *Table) Header(col int) string {
	if col < 0 || col >= len(t.Headers) {
		return ""
	}
	return t.Headers[col]
}

// ColumnIndex returns the 0-based index of the first column whose header
// matches name after trimming, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// SetFormat sets the output format of a 0-based column.
func (t *Table) SetFormat(col int, f Format) {
	if t.Formats == nil {
		t.Formats = make(map[int]Format)
	}
	t.Formats[col] = f
}

// FormatOf returns the output format of a 0-based column.
func (t *Table) FormatOf(col int) Format {
	return t.Formats[col]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Headers...)
	out.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	for col, f := range t.Formats {
		out.Formats[col] = f
	}
	return out
}

// =============================================================================
// COLUMN OPERATIONS
// =============================================================================

// AddColumn appends a header and returns its 0-based index. Rows are not
// touched; their missing trailing cells read as Empty.
func (t *Table) AddColumn(name string) int {
	t.Headers = append(t.Headers, name)
	return len(t.Headers) - 1
}

// RemoveColumn deletes a 0-based column from the headers, every row, and the
// format map. Formats of later columns shift left with them.
func (t *Table) RemoveColumn(col int) {
	if col < 0 {
		return
	}
	if col < len(t.Headers) {
		t.Headers = append(t.Headers[:col], t.Headers[col+1:]...)
	}
	for i, row := range t.Rows {
		if col < len(row) {
			t.Rows[i] = append(row[:col], row[col+1:]...)
		}
	}

	formats := make(map[int]Format, len(t.Formats))
	for c, f := range t.Formats {
		switch {
		case c < col:
			formats[c] = f
		case c > col:
			formats[c-1] = f
		}
	}
	t.Formats = formats
}

// Set stores a cell at a 0-based row and column, padding the row with
// Empty cells when it is too short.
func (t *Table) Set(row, col int, c Cell) {
	r := t.Rows[row]
	for len(r) <= col {
		r = append(r, Cell{})
	}
	r[col] = c
	t.Rows[row] = r
}
