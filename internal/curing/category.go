// =============================================================================
// Collections Automation - Categories and Labels
// =============================================================================
//
// Every source row falls into exactly one Category. Each Category expands
// into a fixed, ordered list of Labels (action statuses). Both orders are
// policy and live in the tables below.
//
// =============================================================================

package curing

import (
	"strings"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// =============================================================================
// LABELS
// =============================================================================

// LabelKind selects the enrichment policy of a label.
type LabelKind uint8

const (
	// KindNew is a new promise-to-pay remark.
	KindNew LabelKind = iota

	// KindFollowUp is a promise-to-pay follow-up remark.
	KindFollowUp

	// KindPayment is a cured-by-payment remark.
	KindPayment
)

// Label is an action status written to the remarks table.
type Label struct {
	Status string
	Kind   LabelKind
}

// The action statuses emitted by the pipeline.
var (
	LabelPTPNew = Label{Status: "PTP NEW - CALL OUTS_PASTDUE", Kind: KindNew}

	LabelPTPFollowUp = Label{Status: "PTP FF UP - CLIENT ANSWERED AND WILL SETTLE", Kind: KindFollowUp}

	LabelPaymentCured = Label{Status: "PAYMENT - CURED", Kind: KindPayment}

	LabelPTPNewGhost = Label{Status: "PTP NEW - CURED_GHOST", Kind: KindNew}
)

// IsPayment reports whether the label records a payment outcome.
func (l Label) IsPayment() bool {
	return l.Kind == KindPayment
}

// TimeOfDay returns the fixed remark time for the label.
//
// RULES (first match wins):
//   - status contains "PTP NEW" -> 14:40:00
//   - status contains "PTP FF"  -> 14:50:00
//   - status contains "CURED"   -> 15:00:00
//   - otherwise                 -> 00:00:00
func (l Label) TimeOfDay() (hour, minute, second int) {
	switch {
	case strings.Contains(l.Status, "PTP NEW"):
		return 14, 40, 0
	case strings.Contains(l.Status, "PTP FF"):
		return 14, 50, 0
	case strings.Contains(l.Status, "CURED"):
		return 15, 0, 0
	default:
		return 0, 0, 0
	}
}

// =============================================================================
// CATEGORIES
// =============================================================================

// Category is the classification bucket of a source row.
type Category uint8

const (
	CategoryNegotiation Category = iota
	CategoryPTPFollowUp
	CategorySpecialCollector
)

// Categories lists every category in processing order.
var Categories = []Category{
	CategoryNegotiation,
	CategoryPTPFollowUp,
	CategorySpecialCollector,
}

// String returns the category name used in logs and metrics.
func (c Category) String() string {
	switch c {
	case CategoryNegotiation:
		return "negotiation"
	case CategoryPTPFollowUp:
		return "ptp_followup"
	case CategorySpecialCollector:
		return "special_collector"
	default:
		return "unknown"
	}
}

// Labels returns the ordered expansion rule of the category.
func (c Category) Labels() []Label {
	switch c {
	case CategoryNegotiation:
		return []Label{LabelPTPNew, LabelPTPFollowUp, LabelPaymentCured}
	case CategoryPTPFollowUp:
		return []Label{LabelPTPFollowUp, LabelPaymentCured}
	case CategorySpecialCollector:
		return []Label{LabelPTPNewGhost, LabelPaymentCured}
	default:
		return nil
	}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Buckets holds source rows partitioned by category, each in original order.
type Buckets map[Category][][]sheet.Cell

// Total returns the number of rows across all buckets.
func (b Buckets) Total() int {
	n := 0
	for _, rows := range b {
		n += len(rows)
	}
	return n
}

// Classify partitions rows into categories.
//
// A row belongs to the special collector category when its collector code
// equals special. Otherwise it is a PTP follow-up when the action flag
// contains "PTP", and a negotiation when it does not (including a blank flag).
func Classify(rows [][]sheet.Cell, layout Layout, special string) Buckets {
	buckets := make(Buckets, len(Categories))
	for _, row := range rows {
		c := classify(source{row: row, layout: layout}, special)
		buckets[c] = append(buckets[c], row)
	}
	return buckets
}

func classify(src source, special string) Category {
	if src.collector().String() == special {
		return CategorySpecialCollector
	}
	if strings.Contains(src.actionFlag().String(), "PTP") {
		return CategoryPTPFollowUp
	}
	return CategoryNegotiation
}
