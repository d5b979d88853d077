// Package engine answers natural-language analytical questions over an
// in-memory tabular dataset. Analyze resolves the question into an Intent,
// filters and aggregates the rows, and returns a narrative answer plus an
// optional chart configuration.
//
// The engine is stateless: the only state carried between turns is the
// Context returned in each Response, which the caller passes back in.
package engine

import (
	"github.com/spektr-org/askdata/chart"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// RESPONSE: Render-ready output
// ============================================================================

// Response is the engine's answer to one question.
type Response struct {
	Answer     string           `json:"answer" yaml:"answer"`
	Chart      *chart.Config    `json:"chart,omitempty" yaml:"chart,omitempty"`
	ChartTitle string           `json:"chartTitle,omitempty" yaml:"chartTitle,omitempty"`
	ChartType  intent.ChartType `json:"chartType,omitempty" yaml:"chartType,omitempty"`

	// Data holds the aggregated rows behind the answer, in answer order.
	Data  []dataset.Row `json:"data,omitempty" yaml:"data,omitempty"`
	Table *TableData    `json:"table,omitempty" yaml:"table,omitempty"`

	// Intent is the fully resolved query; Context seeds the next turn.
	Intent  intent.Intent  `json:"intent" yaml:"intent"`
	Context intent.Context `json:"context" yaml:"context"`
}

// HasChart reports whether the response carries a chart.
func (r *Response) HasChart() bool { return r != nil && r.Chart != nil }

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is a tabular rendering of aggregated rows.
type TableData struct {
	Title   string     `json:"title" yaml:"title"`
	Columns []Column   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
	Summary *Summary   `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type" yaml:"type"`   // "text", "number"
	Align string `json:"align" yaml:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label" yaml:"label"`
	Values map[string]string `json:"values" yaml:"values"`
}
