// =============================================================================
// Collections Automation - Cured List Source Layout
// =============================================================================
//
// The cured list extract is addressed by column position, not by header name.
// Layout records the 1-based position of every field the pipeline reads.
//
// DEFAULT POSITIONS (BPI extract):
//   1  barcode         17 LAN
//   2  collector code  18 NAME
//   3  remark date     42 phone 1
//   4  amount          43 phone 2
//   8  action flag
//
// =============================================================================

package curing

import (
	"fmt"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// DefaultSpecialCollector is the collector code that forces the special
// collector category.
const DefaultSpecialCollector = "SPMADRID"

// Layout holds 1-based source column positions.
type Layout struct {
	Barcode    int
	Collector  int
	Date       int
	Amount     int
	ActionFlag int
	LAN        int
	Name       int
	Phone1     int
	Phone2     int

	// MinColumns is the number of columns the source table must expose.
	MinColumns int
}

// DefaultLayout returns the positions of the BPI cured list extract.
func DefaultLayout() Layout {
	return Layout{
		Barcode:    1,
		Collector:  2,
		Date:       3,
		Amount:     4,
		ActionFlag: 8,
		LAN:        17,
		Name:       18,
		Phone1:     42,
		Phone2:     43,
		MinColumns: 43,
	}
}

// Validate checks that every position is addressable within MinColumns.
func (l Layout) Validate() error {
	positions := []struct {
		name string
		pos  int
	}{
		{"barcode", l.Barcode},
		{"collector", l.Collector},
		{"date", l.Date},
		{"amount", l.Amount},
		{"action_flag", l.ActionFlag},
		{"lan", l.LAN},
		{"name", l.Name},
		{"phone1", l.Phone1},
		{"phone2", l.Phone2},
	}

	for _, p := range positions {
		if p.pos < 1 {
			return fmt.Errorf("layout position %s must be at least 1, got %d", p.name, p.pos)
		}
		if p.pos > l.MinColumns {
			return fmt.Errorf("layout position %s (%d) exceeds min_columns (%d)", p.name, p.pos, l.MinColumns)
		}
	}
	return nil
}

// source wraps a raw row with positional accessors.
type source struct {
	row    []sheet.Cell
	layout Layout
}

func (s source) at(pos int) sheet.Cell {
	return sheet.CellAt(s.row, pos-1)
}

func (s source) barcode() sheet.Cell    { return s.at(s.layout.Barcode) }
func (s source) collector() sheet.Cell  { return s.at(s.layout.Collector) }
func (s source) date() sheet.Cell       { return s.at(s.layout.Date) }
func (s source) amount() sheet.Cell     { return s.at(s.layout.Amount) }
func (s source) actionFlag() sheet.Cell { return s.at(s.layout.ActionFlag) }
func (s source) lan() sheet.Cell        { return s.at(s.layout.LAN) }
func (s source) name() sheet.Cell       { return s.at(s.layout.Name) }
func (s source) phone1() sheet.Cell     { return s.at(s.layout.Phone1) }
func (s source) phone2() sheet.Cell     { return s.at(s.layout.Phone2) }

// key returns the join key of a barcode cell.
func key(c sheet.Cell) string {
	return c.String()
}
