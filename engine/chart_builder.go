package engine

import (
	"github.com/spektr-org/askdata/chart"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// CHART BUILDER: Recommendation → chart.Compile
// ============================================================================

// chartPlan is what the executor decided to draw.
type chartPlan struct {
	chartType  intent.ChartType
	dimension  string
	dimension2 string
	valueCol   string
	agg        intent.Aggregation
	timeSeries bool
	order      chart.SortOrder
	limit      int
}

// recommendation builds the compiler input for a plan.
func (p chartPlan) recommendation() chart.Recommendation {
	rec := chart.Recommendation{
		Title: chartTitle(p.agg, p.valueCol, p.dimension),
		Type:  p.chartType,
		XAxis: p.dimension,
		YAxis: p.valueCol,
	}
	if p.dimension2 != "" {
		rec.BreakdownDimensions = []string{p.dimension2}
		rec.Stacked = p.chartType == intent.Bar || p.chartType == intent.Area
	}
	return rec
}

// buildChart compiles the chart for already sorted rows. Time series keep
// every row; other charts keep the first limit rows.
func buildChart(p chartPlan, rows []dataset.Row) *chart.Config {
	if !p.timeSeries && p.limit > 0 && len(rows) > p.limit && p.dimension2 == "" {
		rows = rows[:p.limit]
	}
	return chart.Compile(p.recommendation(), rows, p.order)
}

// chartTitle reads "Total Sales By Region", "Average Price By Month",
// "Count By Category".
func chartTitle(agg intent.Aggregation, valueCol, dimension string) string {
	if agg == intent.Count && valueCol == ValueColumn("") {
		return chart.DefaultTitle("count", dimension)
	}
	return chart.DefaultTitle(seriesLabel(agg, valueCol), dimension)
}
