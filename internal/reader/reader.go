// =============================================================================
// Collections Automation - Source Reader
// =============================================================================
//
// Load picks the reader for a source file by extension:
//   .xlsx, .xlsm -> ReadXLSX
//   .csv, .txt   -> ReadCSV
//
// =============================================================================

package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// Options controls how a source file is loaded.
type Options struct {
	// Sheet is the worksheet to read from a workbook. Empty means the first.
	Sheet string

	// Delimiter is the field separator of delimited text files.
	// Default: ","
	Delimiter string
}

// Load reads a source file into a table.
func Load(path string, opts Options) (*sheet.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, opts.Sheet)
	case ".csv", ".txt":
		return ReadCSV(path, opts.Delimiter)
	default:
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, filepath.Base(path))
	}
}

// Supported reports whether Load can read the file.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv", ".txt":
		return true
	default:
		return false
	}
}
