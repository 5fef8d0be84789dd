package bom

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/teranos/bomx/errors"
)

// DelimiterForPath picks the field delimiter from a file extension.
// Tab-separated for .tsv/.txt, comma otherwise.
func DelimiterForPath(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return '\t'
	default:
		return ','
	}
}

// ReadTable reads a delimited BOM file into a header row and data rows.
// Fully-empty rows are skipped. A file with no header row or no data rows
// is a job-fatal condition.
func ReadTable(r io.Reader, delimiter rune) (headers []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // BOM exports are ragged
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read input file")
	}

	for _, record := range records {
		if emptyRow(record) {
			continue
		}
		if headers == nil {
			headers = trimFields(record)
			continue
		}
		rows = append(rows, trimFields(record))
	}

	if headers == nil {
		return nil, nil, errors.NewJobFatalError("input file has no header row")
	}
	if len(rows) == 0 {
		return nil, nil, errors.NewJobFatalError("input file has no data rows")
	}

	return headers, rows, nil
}

func emptyRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
