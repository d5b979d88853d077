// Package chart compiles an engine recommendation plus aggregated rows into a
// renderer-neutral chart configuration. The compiler never looks at the
// original question; identical input always yields an identical Config.
package chart

import "github.com/spektr-org/askdata/intent"

// ============================================================================
// INPUT: what the engine hands over
// ============================================================================

// Recommendation is the engine's chart request.
type Recommendation struct {
	Title   string           `json:"title"`
	Type    intent.ChartType `json:"type"`
	XAxis   string           `json:"xAxis"`
	YAxis   string           `json:"yAxis"`
	Stacked bool             `json:"stacked,omitempty"`

	// BreakdownDimensions split each x-axis category into sub-series.
	BreakdownDimensions []string `json:"breakdownDimension,omitempty"`
}

// SortOrder tells the compiler how the rows should be ordered.
type SortOrder string

const (
	SortPreserve      SortOrder = ""
	SortValueDesc     SortOrder = "value_desc"
	SortValueAsc      SortOrder = "value_asc"
	SortChronological SortOrder = "chronological"
)

// ============================================================================
// OUTPUT: render-ready configuration
// ============================================================================

// Config defines how to render a chart.
type Config struct {
	ChartType  intent.ChartType `json:"chartType"`
	Title      string           `json:"title"`
	XAxis      string           `json:"xAxis,omitempty"`
	YAxis      string           `json:"yAxis,omitempty"`
	Categories []string         `json:"categories,omitempty"`
	Series     []Series         `json:"series"`
	Colors     []string         `json:"colors,omitempty"`
	ShowLegend bool             `json:"showLegend"`
	ShowGrid   bool             `json:"showGrid"`
	Stacked    bool             `json:"stacked,omitempty"`
	Tooltip    string           `json:"tooltip,omitempty"`

	// Family-specific payloads.
	YCategories []string    `json:"yCategories,omitempty"` // heatmap
	Indicators  []Indicator `json:"indicators,omitempty"`  // radar
	Nodes       []Node      `json:"nodes,omitempty"`       // sankey
	Links       []Link      `json:"links,omitempty"`       // sankey
	Tree        []TreeNode  `json:"tree,omitempty"`        // treemap, sunburst
	Gauge       *Gauge      `json:"gauge,omitempty"`
}

// Series represents a data series in a chart.
type Series struct {
	Name  string           `json:"name"`
	Type  intent.ChartType `json:"type,omitempty"`
	Data  []Point          `json:"data"`
	Color string           `json:"color,omitempty"`
	Stack string           `json:"stack,omitempty"`
}

// Point is a single data point. X and Y are category indexes for heatmaps;
// Base is the invisible offset of a waterfall bar.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	X     int     `json:"x,omitempty"`
	Y     int     `json:"y,omitempty"`
	Base  float64 `json:"base,omitempty"`
}

// Indicator is one radar axis.
type Indicator struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

// Node is a sankey node.
type Node struct {
	Name string `json:"name"`
}

// Link is a weighted sankey edge.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// TreeNode is a hierarchical treemap/sunburst entry.
type TreeNode struct {
	Name     string     `json:"name"`
	Value    float64    `json:"value"`
	Children []TreeNode `json:"children,omitempty"`
}

// Gauge shows a single value against a scale.
type Gauge struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}
