// Package intent turns a lowercased natural-language question plus a
// dataset's columns into a structured Intent: which column is the metric,
// which is the dimension, which aggregation and chart are implied, and which
// equality filters apply.
//
// Extraction is an explicit ordered pipeline of named passes (see Passes).
// Each pass takes the partial Intent and returns a new one, so every rule can
// be tested in isolation and the order is part of the contract.
package intent

// Aggregation is a summary function applied to a metric.
type Aggregation string

const (
	Sum    Aggregation = "sum"
	Avg    Aggregation = "avg"
	Median Aggregation = "median"
	Mode   Aggregation = "mode"
	Count  Aggregation = "count"
	Min    Aggregation = "min"
	Max    Aggregation = "max"
)

// ChartType names a chart family understood by the chart compiler.
type ChartType string

const (
	Bar          ChartType = "bar"
	Line         ChartType = "line"
	Pie          ChartType = "pie"
	Area         ChartType = "area"
	Scatter      ChartType = "scatter"
	Radar        ChartType = "radar"
	Funnel       ChartType = "funnel"
	Gauge        ChartType = "gauge"
	Heatmap      ChartType = "heatmap"
	Treemap      ChartType = "treemap"
	Sunburst     ChartType = "sunburst"
	Sankey       ChartType = "sankey"
	Waterfall    ChartType = "waterfall"
	ThemeRiver   ChartType = "themeRiver"
	PolarBar     ChartType = "polarBar"
	PictorialBar ChartType = "pictorialBar"
)

// Intent is the resolved structured query. Empty strings and a zero Limit
// mean "not set".
type Intent struct {
	Metric      string            `json:"metric,omitempty" yaml:"metric,omitempty"`
	Dimension   string            `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Dimension2  string            `json:"dimension2,omitempty" yaml:"dimension2,omitempty"`
	ChartType   ChartType         `json:"chartType,omitempty" yaml:"chartType,omitempty"`
	Aggregation Aggregation       `json:"aggregation" yaml:"aggregation"`
	Filters     map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
	Limit       int               `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Context is the part of a previous turn's Intent carried into the next turn.
// The caller owns it and passes it explicitly on every call.
type Context struct {
	Metric      string      `json:"metric,omitempty" yaml:"metric,omitempty"`
	Dimension   string      `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	ChartType   ChartType   `json:"chartType,omitempty" yaml:"chartType,omitempty"`
	Aggregation Aggregation `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
}

// Context returns the carried-forward subset of the intent.
func (in Intent) Context() Context {
	return Context{
		Metric:      in.Metric,
		Dimension:   in.Dimension,
		ChartType:   in.ChartType,
		Aggregation: in.Aggregation,
	}
}

// HasFilter reports whether an equality filter is set on column.
func (in Intent) HasFilter(column string) bool {
	_, ok := in.Filters[column]
	return ok
}

// clone returns a copy whose Filters map can be modified independently.
func (in Intent) clone() Intent {
	out := in
	out.Filters = make(map[string]string, len(in.Filters))
	for k, v := range in.Filters {
		out.Filters[k] = v
	}
	return out
}
