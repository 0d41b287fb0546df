package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// parseCSV parses raw comma-separated text with a header row into one
// record per data row, keyed by header. Real-world exports are messy, so
// quoting is lax and rows with a mismatched column count are padded or
// truncated to the header width rather than rejected.
func parseCSV(data string) ([]map[string]string, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Cause(err) == io.EOF {
			return nil, nil // no header row; caller reports the empty batch
		}
		return nil, errors.Wrap(err, "reading CSV header")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	headerCount := len(headers)

	var records []map[string]string
	for {
		row, err := reader.Read()
		if errors.Cause(err) == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading CSV row")
		}

		if len(row) < headerCount {
			padded := make([]string, headerCount)
			copy(padded, row)
			row = padded
		} else if len(row) > headerCount {
			row = row[:headerCount]
		}

		record := make(map[string]string, headerCount)
		for i, h := range headers {
			record[h] = row[i]
		}
		records = append(records, record)
	}
	return records, nil
}
