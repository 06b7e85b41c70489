// =============================================================================
// Collections Automation - Data Clean
// =============================================================================
//
// This module cleans a table before it is written or handed to another
// automation.
//
// CLEANING STEPS (applied in this order when enabled):
//   1. remove_blanks     : drop rows whose cells are all empty
//   2. remove_duplicates : drop rows identical to an earlier row
//   3. trim_spaces       : strip leading/trailing whitespace from text cells
//   4. blank_whitespace  : always runs; whitespace-only text becomes empty
//
// Header sanitizing is separate (SanitizeHeaders) since only the standalone
// clean automation renames columns.
//
// =============================================================================

package cleaning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// Options selects the optional cleaning steps.
type Options struct {
	RemoveDuplicates bool
	RemoveBlanks     bool
	TrimSpaces       bool
}

// Step names.
const (
	StepRemoveBlanks     = "remove_blanks"
	StepRemoveDuplicates = "remove_duplicates"
	StepTrimSpaces       = "trim_spaces"
	StepBlankWhitespace  = "blank_whitespace"
)

// Steps returns the ordered step names enabled by the options.
func (o Options) Steps() []string {
	var steps []string
	if o.RemoveBlanks {
		steps = append(steps, StepRemoveBlanks)
	}
	if o.RemoveDuplicates {
		steps = append(steps, StepRemoveDuplicates)
	}
	if o.TrimSpaces {
		steps = append(steps, StepTrimSpaces)
	}
	return append(steps, StepBlankWhitespace)
}

// Stats counts what a clean removed.
type Stats struct {
	InputRows         int
	OutputRows        int
	BlankRowsRemoved  int
	DuplicatesRemoved int
}

// =============================================================================
// CLEAN
// =============================================================================

// Clean returns a cleaned copy of t. t is not modified.
func Clean(t *sheet.Table, opts Options) (*sheet.Table, Stats, error) {
	out := t.Clone()
	stats := Stats{InputRows: t.Len()}

	for _, step := range opts.Steps() {
		before := out.Len()
		if err := ApplyStep(out, step); err != nil {
			return nil, stats, fmt.Errorf("cleaning step '%s' failed: %w", step, err)
		}

		switch step {
		case StepRemoveBlanks:
			stats.BlankRowsRemoved = before - out.Len()
		case StepRemoveDuplicates:
			stats.DuplicatesRemoved = before - out.Len()
		}
	}

	stats.OutputRows = out.Len()
	return out, stats, nil
}

// ApplyStep applies a single named step to t in place.
func ApplyStep(t *sheet.Table, step string) error {
	switch step {

	case StepRemoveBlanks:
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			if !isBlankRow(row) {
				kept = append(kept, row)
			}
		}
		t.Rows = kept
		return nil

	case StepRemoveDuplicates:
		width := t.Width()
		seen := make(map[string]struct{}, len(t.Rows))
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			k := rowKey(row, width)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			kept = append(kept, row)
		}
		t.Rows = kept
		return nil

	case StepTrimSpaces:
		mapTextCells(t, strings.TrimSpace)
		return nil

	case StepBlankWhitespace:
		mapTextCells(t, func(s string) string {
			if strings.TrimSpace(s) == "" {
				return ""
			}
			return s
		})
		return nil

	default:
		return fmt.Errorf("unknown cleaning step: %s", step)
	}
}

// =============================================================================
// HEADERS
// =============================================================================

var headerUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeHeaders replaces every character outside [A-Za-z0-9_] in the
// headers of t with '_'.
//
// EXAMPLE:
//   "Contact No. (1)" -> "Contact_No___1_"
func SanitizeHeaders(t *sheet.Table) {
	for i, h := range t.Headers {
		t.Headers[i] = headerUnsafe.ReplaceAllString(h, "_")
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func isBlankRow(row []sheet.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// rowKey identifies a row by the kind and value of every cell, padded to
// width so short rows compare equal to rows with trailing blanks.
func rowKey(row []sheet.Cell, width int) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		c := sheet.CellAt(row, i)
		b.WriteByte(byte('0' + c.Kind))
		b.WriteString(c.String())
		b.WriteByte(0x1f)
	}
	return b.String()
}

func mapTextCells(t *sheet.Table, fn func(string) string) {
	for _, row := range t.Rows {
		for i, c := range row {
			if c.Kind != sheet.KindText {
				continue
			}
			row[i] = sheet.Text(fn(c.Text))
		}
	}
}
