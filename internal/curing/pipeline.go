// =============================================================================
// Collections Automation - Cured List Pipeline
// =============================================================================
//
// Run turns a cured list extract into the three BPI autocuring reports.
//
// PIPELINE:
//   1. Check the source table is wide enough (the only hard failure)
//   2. Build the barcode index (last occurrence wins)
//   3. Classify rows into categories
//   4. Expand each category into label-major blocks
//   5. Enrich every expanded item into a remarks row
//   6. Project the reshuffle and payments tables from the source
//
// The run is single-pass, synchronous, and deterministic for a fixed clock.
//
// =============================================================================

package curing

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"go.uber.org/zap"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrStructural matches any StructuralError via errors.Is.
var ErrStructural = errors.New("source table structure invalid")

// StructuralError reports a source table narrower than the layout requires.
type StructuralError struct {
	Required int
	Actual   int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("source table has %d columns, at least %d required", e.Actual, e.Required)
}

// Is makes errors.Is(err, ErrStructural) hold.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// =============================================================================
// OPTIONS AND OUTPUT
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Layout addresses the source columns. Zero value means DefaultLayout.
	Layout Layout

	// SpecialCollector forces the special collector category. Empty means
	// DefaultSpecialCollector.
	SpecialCollector string

	// Now supplies the fallback date for unparseable source dates.
	Now func() time.Time

	Logger *zap.Logger
}

// Stats summarizes a run.
type Stats struct {
	SourceRows    int
	Categories    map[Category]int
	RemarkRows    int
	ReshuffleRows int
	PaymentRows   int
	LookupMisses  int
	DateFallbacks int
}

// Output holds the three reports of a run.
type Output struct {
	Remarks   *sheet.Table
	Reshuffle *sheet.Table
	Payments  *sheet.Table
	Stats     Stats
}

// =============================================================================
// RUN
// =============================================================================

// Run executes the pipeline over src. src is not modified.
//
// RETURNS:
//   - The remarks, reshuffle, and payments tables with run statistics.
//   - A *StructuralError when src has fewer columns than the layout requires.
func Run(src *sheet.Table, opts Options) (*Output, error) {
	layout := opts.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	special := opts.SpecialCollector
	if special == "" {
		special = DefaultSpecialCollector
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if width := src.Width(); width < layout.MinColumns {
		return nil, &StructuralError{Required: layout.MinColumns, Actual: width}
	}

	index := BuildIndex(src.Rows, layout)
	buckets := Classify(src.Rows, layout, special)
	items := Expand(buckets, layout)

	enricher := NewEnricher(index, opts.Now, logger)
	rows := enricher.Enrich(items)

	out := &Output{
		Remarks:   remarksTable(rows),
		Reshuffle: Reshuffle(src, layout),
		Payments:  Payments(src, layout),
	}

	out.Stats = Stats{
		SourceRows:    src.Len(),
		Categories:    make(map[Category]int, len(Categories)),
		RemarkRows:    out.Remarks.Len(),
		ReshuffleRows: out.Reshuffle.Len(),
		PaymentRows:   out.Payments.Len(),
		LookupMisses:  enricher.LookupMisses(),
		DateFallbacks: enricher.DateFallbacks(),
	}
	for _, c := range Categories {
		out.Stats.Categories[c] = len(buckets[c])
	}

	logger.Info("cured list pipeline complete",
		zap.Int("source_rows", out.Stats.SourceRows),
		zap.Int("distinct_barcodes", index.Len()),
		zap.Int("negotiation", out.Stats.Categories[CategoryNegotiation]),
		zap.Int("ptp_followup", out.Stats.Categories[CategoryPTPFollowUp]),
		zap.Int("special_collector", out.Stats.Categories[CategorySpecialCollector]),
		zap.Int("remark_rows", out.Stats.RemarkRows),
		zap.Int("lookup_misses", out.Stats.LookupMisses),
		zap.Int("date_fallbacks", out.Stats.DateFallbacks),
	)

	return out, nil
}
