// =============================================================================
// Collections Automation - Column Manipulation
// =============================================================================
//
// This module applies the configured column operations of a campaign to a
// table before it is cleaned.
//
// OPERATIONS (config.Manipulation.Type):
//   - add_column     : fill a new column with a fixed value, or copy another
//                      column through a chain of transformation actions
//   - remove_columns : drop columns by header
//   - rename_column  : change a header
//   - filter_rows    : keep rows whose column matches a value
//
// TRANSFORMATION ACTIONS (config.TransformationAction.Type):
//   - prepend_string, append_string, uppercase, lowercase, trim
//
// Operations run in the order they are listed. A referenced column that does
// not exist fails the run.
//
// =============================================================================

package manipulation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/shopspring/decimal"
)

// Stats counts what the manipulations changed.
type Stats struct {
	ColumnsAdded   int
	ColumnsRemoved int
	ColumnsRenamed int
	RowsFiltered   int
}

// =============================================================================
// APPLY
// =============================================================================

// Apply runs every manipulation on t in place.
//
// RETURNS:
//   - Counts of added, removed, and renamed columns and of filtered-out rows.
//   - An error naming the first manipulation that failed.
func Apply(t *sheet.Table, manipulations []config.Manipulation) (Stats, error) {
	var stats Stats
	for i, m := range manipulations {
		if err := applyOne(t, m, &stats); err != nil {
			return stats, fmt.Errorf("manipulation %d (%s) failed: %w", i+1, m.Type, err)
		}
	}
	return stats, nil
}

func applyOne(t *sheet.Table, m config.Manipulation, stats *Stats) error {
	switch m.Type {

	case config.ManipulationAddColumn:
		return addColumn(t, m, stats)

	case config.ManipulationRemoveColumns:
		for _, name := range m.Columns {
			col := t.ColumnIndex(name)
			if col < 0 {
				return fmt.Errorf("column %q not found", name)
			}
			t.RemoveColumn(col)
			stats.ColumnsRemoved++
		}
		return nil

	case config.ManipulationRenameColumn:
		col := t.ColumnIndex(m.Column)
		if col < 0 {
			return fmt.Errorf("column %q not found", m.Column)
		}
		t.Headers[col] = m.Value
		stats.ColumnsRenamed++
		return nil

	case config.ManipulationFilterRows:
		col := t.ColumnIndex(m.Column)
		if col < 0 {
			return fmt.Errorf("column %q not found", m.Column)
		}
		before := t.Len()
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			if Matches(sheet.CellAt(row, col), m.Value, m.Match) {
				kept = append(kept, row)
			}
		}
		t.Rows = kept
		stats.RowsFiltered += before - t.Len()
		return nil

	default:
		return fmt.Errorf("unknown manipulation type: %s", m.Type)
	}
}

// addColumn fills m.Column, replacing an existing column of that name.
func addColumn(t *sheet.Table, m config.Manipulation, stats *Stats) error {
	src := -1
	if m.Source != "" {
		src = t.ColumnIndex(m.Source)
		if src < 0 {
			return fmt.Errorf("source column %q not found", m.Source)
		}
	}

	// Computed before the header exists so a self-copy reads the old values.
	values := make([]sheet.Cell, t.Len())
	for i, row := range t.Rows {
		if src < 0 {
			values[i] = sheet.Text(m.Value)
			continue
		}
		c := sheet.CellAt(row, src)
		if len(m.Actions) == 0 {
			values[i] = c
			continue
		}
		v := c.String()
		for _, action := range m.Actions {
			var err error
			v, err = ApplyTransformation(v, action)
			if err != nil {
				return fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
			}
		}
		values[i] = sheet.Text(v)
	}

	col := t.ColumnIndex(m.Column)
	if col < 0 {
		col = t.AddColumn(m.Column)
		stats.ColumnsAdded++
	}
	for i, c := range values {
		t.Set(i, col, c)
	}
	return nil
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// ApplyTransformation applies a single transformation action to a value.
//
// EXAMPLE:
//   Input: "123456"
//   Action: prepend_string with value "BPI-"
//   Output: "BPI-123456"
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "trim":
		return strings.TrimSpace(value), nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// ROW FILTER
// =============================================================================

// Matches reports whether a cell matches a filter value. A numeric cell
// against a numeric value compares as numbers. Otherwise text is compared
// ignoring case, as a substring for "contains" (the default) or whole for
// "equals". Blank cells never match.
func Matches(c sheet.Cell, value, match string) bool {
	if c.IsEmpty() {
		return false
	}
	if c.Kind == sheet.KindNumber {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return c.Number.Equal(d)
		}
	}

	text := strings.ToLower(c.String())
	want := strings.ToLower(value)
	if match == config.MatchEquals {
		return text == want
	}
	return strings.Contains(text, want)
}
