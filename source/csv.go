package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// CSV SOURCE: Parses CSV data into []dataset.Row
// ============================================================================
// The first record is the header. Cells that parse as plain floats become
// float64, empty and null-like cells become nil, everything else stays a
// string so formatted numbers ("$1,200") and dates keep their text for type
// inference downstream.
// ============================================================================

// CSVSource serves rows parsed from CSV data.
type CSVSource struct {
	Static
}

// ReadCSV parses CSV from r. It returns the rows and the header order.
// Malformed records are skipped; short records leave trailing columns nil.
func ReadCSV(r io.Reader) ([]dataset.Row, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("CSV has no header row")
		}
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	var rows []dataset.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		row := make(dataset.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i >= len(record) {
				row[h] = nil
				continue
			}
			row[h] = parseCell(record[i])
		}
		rows = append(rows, row)
	}
	return rows, headers, nil
}

// NewCSVSource reads all of r into memory.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	rows, headers, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return &CSVSource{Static: Static{rows: rows, columns: headers}}, nil
}

// OpenCSVFile reads a CSV file from disk.
func OpenCSVFile(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()
	src, err := NewCSVSource(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

var nullTokens = map[string]bool{"null": true, "NULL": true, "N/A": true, "n/a": true, "NaN": true}

func parseCell(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" || nullTokens[s] {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return f
	}
	return s
}
