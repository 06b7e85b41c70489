package reader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/ginjaninja78/collections-automation/internal/sheet"
)

// ReadCSV reads a delimited text extract. Row 1 is the header; every data
// cell is loaded as text.
func ReadCSV(path, delimiter string) (*sheet.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	csvReader := csv.NewReader(bufio.NewReader(file))
	configureReader(csvReader, delimiter)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	table := sheet.New("Sheet1", cleanHeaders(allRows[0])...)
	for _, raw := range allRows[1:] {
		cells := make([]sheet.Cell, len(raw))
		for i, value := range raw {
			cells[i] = sheet.Text(value)
		}
		table.Append(cells...)
	}
	return table, nil
}

// configureReader sets the delimiter and relaxes quoting and field counts.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}
