package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// FIXTURES
// ============================================================================

func salesView() dataset.View {
	return dataset.NewSliceView([]dataset.Row{
		{"category": "A", "sales": 10.0},
		{"category": "A", "sales": 5.0},
		{"category": "B", "sales": 7.0},
	})
}

func storeView() dataset.View {
	return dataset.NewSliceView([]dataset.Row{
		{"region": "West", "product": "Chair", "order_id": "ORD-1001", "sales": "$120", "quantity": 2.0, "order_date": "2024-01-03"},
		{"region": "East", "product": "Desk", "order_id": "ORD-1002", "sales": "$300", "quantity": 1.0, "order_date": "2024-02-10"},
		{"region": "West", "product": "Lamp", "order_id": "ORD-1003", "sales": "$40", "quantity": 4.0, "order_date": "2024-02-21"},
		{"region": "North", "product": "Chair", "order_id": "ORD-1004", "sales": "$150", "quantity": 3.0, "order_date": "2024-03-15"},
	})
}

// ============================================================================
// PIPELINE
// ============================================================================

func TestPassesOrder(t *testing.T) {
	var names []string
	for _, p := range Passes() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"dimension", "metric", "aggregation", "chart",
		"total-count", "row-count", "same-column", "listing-count", "maxmin-sum",
		"context", "filters", "secondary-dimension", "scalar-forcing", "limit",
	}, names)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		view  dataset.View
		query string
		want  Intent
	}{
		{
			name:  "scalar total",
			view:  salesView(),
			query: "total sales",
			want:  Intent{Metric: "sales", Aggregation: Sum},
		},
		{
			name:  "group by",
			view:  salesView(),
			query: "sales by category",
			want:  Intent{Metric: "sales", Dimension: "category", Aggregation: Sum},
		},
		{
			name:  "winner reads max as sum",
			view:  salesView(),
			query: "Which category has the highest sales?",
			want:  Intent{Metric: "sales", Dimension: "category", Aggregation: Sum},
		},
		{
			name:  "listing",
			view:  salesView(),
			query: "list categories",
			want:  Intent{Dimension: "category", Aggregation: Count},
		},
		{
			name:  "row count",
			view:  salesView(),
			query: "how many records are there",
			want:  Intent{Aggregation: Count},
		},
		{
			name:  "pie chart",
			view:  salesView(),
			query: "sales by category as a pie chart",
			want:  Intent{Metric: "sales", Dimension: "category", ChartType: Pie, Aggregation: Sum},
		},
		{
			name:  "scalar max keeps literal meaning",
			view:  storeView(),
			query: "what is the max quantity",
			want:  Intent{Metric: "quantity", Aggregation: Max},
		},
		{
			name:  "filter forces scalar",
			view:  storeView(),
			query: "sales in region west",
			want:  Intent{Metric: "sales", Aggregation: Sum, Filters: map[string]string{"region": "west"}},
		},
		{
			name:  "filter with breakdown substitutes dimension",
			view:  storeView(),
			query: "sales by region for west products",
			want:  Intent{Metric: "sales", Dimension: "product", Aggregation: Sum, Filters: map[string]string{"region": "west"}},
		},
		{
			name:  "total count of a field",
			view:  storeView(),
			query: "total count of region",
			want:  Intent{Metric: "region", Aggregation: Count},
		},
		{
			name:  "total number of a plural field",
			view:  storeView(),
			query: "total number of products",
			want:  Intent{Metric: "product", Aggregation: Count},
		},
		{
			name:  "singular record keeps max",
			view:  storeView(),
			query: "what is the highest sales record",
			want:  Intent{Metric: "sales", Aggregation: Max},
		},
		{
			name:  "top n",
			view:  storeView(),
			query: "top 3 products by sales",
			want:  Intent{Metric: "sales", Dimension: "product", Aggregation: Sum, Limit: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.query, tt.view, nil)
			if tt.want.Filters == nil {
				tt.want.Filters = map[string]string{}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTraceVisitsEveryPass(t *testing.T) {
	var seen []string
	ExtractQuery(NewQuery("sales by category", salesView(), nil), func(pass string, _ Intent) {
		seen = append(seen, pass)
	})
	assert.Len(t, seen, len(Passes()))
}

func TestExtractNeverGroupsByMetric(t *testing.T) {
	view := dataset.NewSliceView([]dataset.Row{
		{"name": "a", "time": 3.0},
		{"name": "b", "time": 4.0},
	})
	for _, q := range []string{"average time", "total time", "time", "max time", "time by time", "show time"} {
		in := Extract(q, view, nil)
		if in.Metric != "" && in.Dimension != "" {
			assert.NotEqual(t, in.Metric, in.Dimension, q)
		}
		if q == "average time" {
			assert.Equal(t, "time", in.Metric)
			assert.Empty(t, in.Dimension)
		}
	}
}

// ============================================================================
// INDIVIDUAL PASSES
// ============================================================================

func TestDetectAggregationPrecedence(t *testing.T) {
	tests := []struct {
		query string
		want  Aggregation
	}{
		{"total and average", Sum},
		{"average of the highest", Avg},
		{"median price", Median},
		{"most common mode", Mode},
		{"how many orders at most", Count},
		{"lowest and highest", Min},
		{"peak month", Max},
		{"sales", Sum},
	}
	for _, tt := range tests {
		got, _ := DetectAggregation(tt.query)
		assert.Equal(t, tt.want, got, tt.query)
	}
	_, explicit := DetectAggregation("sales")
	assert.False(t, explicit)
}

func TestDetectChartType(t *testing.T) {
	tests := []struct {
		query string
		want  ChartType
	}{
		{"funnel of stages", Funnel},
		{"show a heatmap", Heatmap},
		{"tree map of spend", Treemap},
		{"sankey flow", Sankey},
		{"theme river by month", ThemeRiver},
		{"sales as a line chart", Line},
		{"stacked area chart", Area},
		{"a donut please", Pie},
		{"bar chart", Bar},
		{"sales by region", ""},
		{"the line of products", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectChartType(tt.query), tt.query)
	}
}

func TestResolveTotalCount(t *testing.T) {
	q := NewQuery("total count of region", storeView(), nil)
	got := resolveTotalCount(q, Intent{Dimension: "region", Aggregation: Sum})
	assert.Equal(t, "region", got.Metric)
	assert.Empty(t, got.Dimension)
	assert.Equal(t, Count, got.Aggregation)
}

func TestResolveTotalCountKeepsSeparateMetric(t *testing.T) {
	q := NewQuery("total count of region", storeView(), nil)

	same := resolveTotalCount(q, Intent{Metric: "region", Dimension: "region", Aggregation: Sum})
	assert.Equal(t, "region", same.Metric)
	assert.Empty(t, same.Dimension)
	assert.Equal(t, Count, same.Aggregation)

	other := Intent{Metric: "sales", Dimension: "region", Aggregation: Sum}
	assert.Equal(t, other, resolveTotalCount(q, other))
}

func TestResolveRowCountNeedsPlural(t *testing.T) {
	view := storeView()
	in := Intent{Metric: "sales", Aggregation: Max}

	assert.Equal(t, Max, resolveRowCount(NewQuery("what is the highest sales record", view, nil), in).Aggregation)
	assert.Equal(t, Max, resolveRowCount(NewQuery("largest row of sales", view, nil), in).Aggregation)
	assert.Equal(t, Count, resolveRowCount(NewQuery("how many records are there", view, nil), in).Aggregation)
	assert.Equal(t, Count, resolveRowCount(NewQuery("rows in west", view, nil), in).Aggregation)
	assert.Equal(t, Count, resolveRowCount(NewQuery("how many data points", view, nil), in).Aggregation)
}

func TestCommonMetricNeedsMatchingWord(t *testing.T) {
	// Neither column name holds "sales" or "price" as a whole token.
	view := dataset.NewSliceView([]dataset.Row{
		{"region": "West", "unitprice": 2.0, "netsales": 10.0},
		{"region": "East", "unitprice": 3.0, "netsales": 7.0},
	})
	assert.Equal(t, "netsales", findMetric(NewQuery("sales for west", view, nil), ""))
	assert.Equal(t, "unitprice", findMetric(NewQuery("price for west", view, nil), ""))
	assert.Empty(t, findMetric(NewQuery("total count of region", view, nil), "region"))
}

func TestNumericDimensionUnderAggregation(t *testing.T) {
	view := dataset.NewSliceView([]dataset.Row{
		{"task": "Build", "time": 3.0, "cost": 40.0},
		{"task": "Test", "time": 5.0, "cost": 25.0},
	})

	assert.Equal(t, "time", findDimension(NewQuery("average time by time", view, nil), nil))
	assert.Empty(t, findDimension(NewQuery("average cost by time", view, nil), nil))

	got := Extract("average time by time", view, nil)
	assert.Equal(t, "time", got.Dimension)
	assert.Empty(t, got.Metric)
}

func TestResolveSameColumn(t *testing.T) {
	view := storeView()
	in := Intent{Metric: "region", Dimension: "region", Aggregation: Sum}

	byQuery := resolveSameColumn(NewQuery("count by region", view, nil), in)
	assert.Equal(t, "region", byQuery.Dimension)
	assert.Empty(t, byQuery.Metric)

	scalar := resolveSameColumn(NewQuery("distinct region", view, nil), in)
	assert.Equal(t, "region", scalar.Metric)
	assert.Empty(t, scalar.Dimension)
}

func TestResolveMaxMinSum(t *testing.T) {
	view := storeView()
	in := Intent{Metric: "sales", Dimension: "region", Aggregation: Max}

	assert.Equal(t, Sum, resolveMaxMinSum(NewQuery("highest sales by region", view, nil), in).Aggregation)
	assert.Equal(t, Max, resolveMaxMinSum(NewQuery("highest single sales record by region", view, nil), in).Aggregation)

	in.Dimension = ""
	assert.Equal(t, Max, resolveMaxMinSum(NewQuery("highest sales", view, nil), in).Aggregation)
}

func TestSecondaryDimension(t *testing.T) {
	q := NewQuery("heatmap of sales by region", storeView(), nil)
	got := detectSecondaryDimension(q, Intent{Metric: "sales", Dimension: "region", ChartType: Heatmap, Aggregation: Sum})
	assert.Equal(t, "order_date", got.Dimension2)

	got = detectSecondaryDimension(q, Intent{Metric: "sales", Dimension: "region", ChartType: Bar, Aggregation: Sum})
	assert.Empty(t, got.Dimension2)
}

func TestFilterSkipsShortValuesAndStopwords(t *testing.T) {
	view := dataset.NewSliceView([]dataset.Row{
		{"abbr": "of", "city": "Paris", "amount": 1.0},
		{"abbr": "NY", "city": "New York", "amount": 2.0},
		{"abbr": "the", "city": "Rome", "amount": 3.0},
	})
	got := Extract("amount of the orders in new york", view, nil)
	assert.Equal(t, map[string]string{"city": "new york"}, got.Filters)
}

func TestDetectLimit(t *testing.T) {
	q := NewQuery("bottom 5 regions", storeView(), nil)
	assert.Equal(t, 5, detectLimit(q, Intent{}).Limit)
	q = NewQuery("regions", storeView(), nil)
	assert.Zero(t, detectLimit(q, Intent{}).Limit)
}

// ============================================================================
// CONTEXT
// ============================================================================

func TestContextInheritsOnChartChange(t *testing.T) {
	view := salesView()
	first := Extract("sales by category", view, nil)
	first.ChartType = Bar
	prev := first.Context()

	got := Extract("now show as a pie chart", view, &prev)
	assert.Equal(t, "sales", got.Metric)
	assert.Equal(t, "category", got.Dimension)
	assert.Equal(t, Pie, got.ChartType)
	assert.Equal(t, Sum, got.Aggregation)
}

func TestContextFollowUp(t *testing.T) {
	prev := &Context{Metric: "sales", Dimension: "region", ChartType: Bar, Aggregation: Avg}
	got := Extract("and for 2024", storeView(), prev)
	assert.Equal(t, "sales", got.Metric)
	assert.Equal(t, "region", got.Dimension)
	assert.Equal(t, Bar, got.ChartType)
	assert.Equal(t, Avg, got.Aggregation)
}

func TestContextScalarQuestionDoesNotInheritDimension(t *testing.T) {
	prev := &Context{Metric: "sales", Dimension: "region", Aggregation: Sum}
	got := Extract("what is the total quantity", storeView(), prev)
	assert.Equal(t, "quantity", got.Metric)
	assert.Empty(t, got.Dimension)
}

func TestContextInheritsMetricForBreakdown(t *testing.T) {
	prev := &Context{Metric: "sales", Dimension: "region", Aggregation: Sum}
	got := Extract("break down by product", storeView(), prev)
	assert.Equal(t, "product", got.Dimension)
	assert.Equal(t, "sales", got.Metric)
}

func TestContextExplicitTotalKeepsSum(t *testing.T) {
	prev := &Context{Metric: "sales", Aggregation: Avg}
	got := Extract("total quantity", storeView(), prev)
	assert.Equal(t, Sum, got.Aggregation)
}

func TestQueryClassification(t *testing.T) {
	q := NewQuery("sort descending please", salesView(), nil)
	assert.True(t, q.IsFollowUp())
	assert.False(t, q.IsNewIntent())

	q = NewQuery("visualize the spread of sales across every category", salesView(), nil)
	require.True(t, q.IsNewIntent())
	assert.False(t, q.IsFollowUp())
}
