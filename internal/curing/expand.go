package curing

import (
	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// Item is one expanded work item: a barcode paired with the label it is
// emitted under.
type Item struct {
	Barcode  sheet.Cell
	Label    Label
	Category Category
}

// Expand produces the work items of every category, in category order.
//
// Within a category the output is label-major: the whole bucket is emitted
// under the first label, then again under the second, and so on. For rows
// [A, B] and labels [L1, L2] the result is A/L1, B/L1, A/L2, B/L2. Empty
// buckets contribute nothing.
func Expand(buckets Buckets, layout Layout) []Item {
	var items []Item
	for _, category := range Categories {
		rows := buckets[category]
		if len(rows) == 0 {
			continue
		}
		for _, label := range category.Labels() {
			for _, row := range rows {
				items = append(items, Item{
					Barcode:  source{row: row, layout: layout}.barcode(),
					Label:    label,
					Category: category,
				})
			}
		}
	}
	return items
}

// ExpectedItems returns the number of items Expand yields for buckets.
func ExpectedItems(buckets Buckets) int {
	n := 0
	for _, category := range Categories {
		n += len(buckets[category]) * len(category.Labels())
	}
	return n
}
