// =============================================================================
// Collections Automation - Value Normalizers
// =============================================================================
//
// Normalizers shared by the automations:
//   - NormalizeMobile : canonical local mobile format (09XXXXXXXXX)
//   - ParseDate       : flexible date parsing from typed cells
//   - FormatMDY       : MM/DD/YYYY rendering used by every report
//
// =============================================================================

package normalize

import (
	"strings"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// =============================================================================
// MOBILE NUMBERS
// =============================================================================

// NormalizeMobile converts a mobile number to the local 11-digit form.
//
// RULES (applied after trimming and removing dashes):
//   - "639XXXXXXXXX" (12 digits, country code) -> "09XXXXXXXXX"
//   - "9XXXXXXXXX"   (10 digits, no trunk 0)   -> "09XXXXXXXXX"
//   - anything else is returned unchanged
func NormalizeMobile(raw string) string {
	mobile := strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
	if mobile == "" {
		return ""
	}

	if strings.HasPrefix(mobile, "639") && len(mobile) == 12 {
		return "0" + mobile[2:]
	}
	if strings.HasPrefix(mobile, "9") && len(mobile) == 10 {
		return "0" + mobile
	}
	return mobile
}

// =============================================================================
// DATES
// =============================================================================

// Output layouts.
const (
	// DateLayout renders MM/DD/YYYY.
	DateLayout = "01/02/2006"

	// DateTimeLayout renders MM/DD/YYYY hh:mm:ss AM/PM.
	DateTimeLayout = "01/02/2006 03:04:05 PM"
)

// SourceLayouts are the textual date forms accepted in the collections
// extract: "YYYY-MM-DD HH:MM:SS" first, then "YYYY-MM-DD". Unpadded month and
// day are tolerated.
var SourceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-1-2 15:04:05",
	"2006-01-02",
	"2006-1-2",
}

// LenientLayouts extends SourceLayouts with the slash forms found in
// endorsement files.
var LenientLayouts = append(append([]string(nil), SourceLayouts...),
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	time.RFC3339,
)

// ParseDate interprets a cell as a date/time.
//
// Native date/time cells are returned as-is. Text cells are tried against
// each layout in order. Blank and numeric cells never parse.
//
// RETURNS:
//   - The parsed time.
//   - false when the cell could not be interpreted.
func ParseDate(c sheet.Cell, layouts ...string) (time.Time, bool) {
	switch c.Kind {
	case sheet.KindTime:
		return c.Time, true
	case sheet.KindText:
		value := strings.TrimSpace(c.Text)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FormatMDY renders a time as MM/DD/YYYY.
func FormatMDY(t time.Time) string {
	return t.Format(DateLayout)
}

// AtTimeOfDay combines the calendar date of t with a fixed time of day.
func AtTimeOfDay(t time.Time, hour, minute, second int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, second, 0, t.Location())
}
