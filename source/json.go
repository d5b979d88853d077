package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// JSON SOURCE: Array of objects → []dataset.Row
// ============================================================================

// JSONSource serves rows decoded from a JSON array of objects.
type JSONSource struct {
	Static
}

// ReadJSON decodes a JSON array of flat objects. Numbers become float64;
// nested objects and arrays are kept as their compact JSON text.
func ReadJSON(r io.Reader) ([]dataset.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON rows: %w", err)
	}

	rows := make([]dataset.Row, 0, len(raw))
	for _, obj := range raw {
		row := make(dataset.Row, len(obj))
		for k, v := range obj {
			row[k] = jsonCell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func jsonCell(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any, []any:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(t); err != nil {
			return nil
		}
		return string(bytes.TrimSpace(buf.Bytes()))
	}
	return v
}

// NewJSONSource reads all of r into memory.
func NewJSONSource(r io.Reader) (*JSONSource, error) {
	rows, err := ReadJSON(r)
	if err != nil {
		return nil, err
	}
	return &JSONSource{Static: Static{rows: rows}}, nil
}

// OpenJSONFile reads a JSON file from disk.
func OpenJSONFile(path string) (*JSONSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer func() { _ = f.Close() }()
	src, err := NewJSONSource(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}
