package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/chart"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// FIXTURES
// ============================================================================

func salesRows() []dataset.Row {
	return []dataset.Row{
		{"category": "A", "sales": 10.0},
		{"category": "A", "sales": 5.0},
		{"category": "B", "sales": 7.0},
	}
}

func storeRows() []dataset.Row {
	return []dataset.Row{
		{"region": "West", "product": "Chair", "order_id": "ORD-1001", "sales": "$120", "quantity": 2.0, "order_date": "2024-01-03"},
		{"region": "East", "product": "Desk", "order_id": "ORD-1002", "sales": "$300", "quantity": 1.0, "order_date": "2024-02-10"},
		{"region": "West", "product": "Lamp", "order_id": "ORD-1003", "sales": "$40", "quantity": 4.0, "order_date": "2024-02-21"},
		{"region": "North", "product": "Chair", "order_id": "ORD-1004", "sales": "$150", "quantity": 3.0, "order_date": "2024-03-15"},
	}
}

func mustAnalyze(t *testing.T, query string, rows []dataset.Row, prev *intent.Context) *Response {
	t.Helper()
	resp := Analyze(query, rows, prev)
	require.NotNil(t, resp, "query %q was declined", query)
	return resp
}

// ============================================================================
// GATE
// ============================================================================

func TestAnalyzeDeclines(t *testing.T) {
	tests := []struct {
		name  string
		query string
		rows  []dataset.Row
	}{
		{"empty dataset", "total sales", nil},
		{"empty query", "", salesRows()},
		{"general knowledge", "What is the capital of France?", salesRows()},
		{"no metric", "show the trend", []dataset.Row{{"note": "x"}, {"note": "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Analyze(tt.query, tt.rows, nil))
		})
	}
}

func TestAnalyzeViewNil(t *testing.T) {
	assert.Nil(t, AnalyzeView("total sales", nil, nil))
}

// ============================================================================
// SCALAR
// ============================================================================

func TestScalarAnswers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		rows  []dataset.Row
		want  string
	}{
		{"total", "total sales", salesRows(), "The total sales is 22."},
		{"average", "average sales", salesRows(), "The average sales is 7.33."},
		{"count", "How many records are there?", storeRows(), "There are 4 records."},
		{"filtered total", "total sales for west", storeRows(), "The total sales for west is 160."},
		{"min and max", "min and max sales", salesRows(), "Minimum sales is 5 and maximum sales is 10."},
		{"year echo", "total sales in 2024", storeRows(), "The total sales in 2024 is 610."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := mustAnalyze(t, tt.query, tt.rows, nil)
			assert.Equal(t, tt.want, resp.Answer)
			assert.Nil(t, resp.Chart)
		})
	}
}

func TestScalarStatistics(t *testing.T) {
	resp := mustAnalyze(t, "summary of sales", salesRows(), nil)
	assert.Equal(t, "Statistics for sales:\n- Count: 3\n- Sum: 22\n- Average: 7.33\n- Min: 5\n- Max: 10", resp.Answer)
}

func TestFilterCorrectness(t *testing.T) {
	rows := storeRows()
	var want float64
	for _, r := range rows {
		if r["region"] == "West" {
			f, _ := dataset.ToNumber(r["sales"])
			want += f
		}
	}

	for _, query := range []string{"sales in region west", "total sales for west"} {
		t.Run(query, func(t *testing.T) {
			resp := mustAnalyze(t, query, rows, nil)
			require.Equal(t, map[string]string{"region": "west"}, resp.Intent.Filters)
			require.Len(t, resp.Data, 1)
			assert.Equal(t, want, resp.Data[0]["sales"])
		})
	}
}

func TestTotalCountOfField(t *testing.T) {
	rows := storeRows()
	tests := []struct {
		query  string
		metric string
	}{
		{"total count of region", "region"},
		{"total number of products", "product"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := mustAnalyze(t, tt.query, rows, nil)
			assert.Equal(t, tt.metric, resp.Intent.Metric)
			assert.Empty(t, resp.Intent.Dimension)
			assert.Equal(t, intent.Count, resp.Intent.Aggregation)
			assert.Nil(t, resp.Chart)
			require.Len(t, resp.Data, 1)
			assert.Equal(t, float64(len(rows)), resp.Data[0][tt.metric])
		})
	}
}

func TestSingleRecordMax(t *testing.T) {
	resp := mustAnalyze(t, "what is the highest sales record", storeRows(), nil)
	assert.Equal(t, intent.Max, resp.Intent.Aggregation)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 300.0, resp.Data[0]["sales"])
}

// ============================================================================
// GROUPED
// ============================================================================

func TestGroupedRanking(t *testing.T) {
	resp := mustAnalyze(t, "sales by category", salesRows(), nil)

	assert.Equal(t, "Total sales by category:\n1. A: 15\n2. B: 7", resp.Answer)
	assert.Equal(t, []dataset.Row{
		{"category": "A", "sales": 15.0},
		{"category": "B", "sales": 7.0},
	}, resp.Data)

	require.True(t, resp.HasChart())
	assert.Equal(t, intent.Bar, resp.ChartType)
	assert.Equal(t, "Total Sales By Category", resp.ChartTitle)
	assert.Equal(t, "category", resp.Chart.XAxis)
	assert.Equal(t, "sales", resp.Chart.YAxis)
	assert.Equal(t, []string{"A", "B"}, resp.Chart.Categories)

	assert.Equal(t, intent.Context{Metric: "sales", Dimension: "category", ChartType: intent.Bar, Aggregation: intent.Sum}, resp.Context)

	require.NotNil(t, resp.Table)
	assert.Equal(t, [][]string{{"A", "15"}, {"B", "7"}}, resp.Table.Rows)
	assert.Equal(t, "22", resp.Table.Summary.Values["sales"])
}

func TestWinner(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Which category has the highest sales?", "A has the highest total sales at 15."},
		{"Which category has the lowest sales?", "B has the lowest total sales at 7."},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := mustAnalyze(t, tt.query, salesRows(), nil)
			assert.Equal(t, tt.want, resp.Answer)
			assert.NotContains(t, resp.Answer, "1.")
			assert.Nil(t, resp.Chart, "a direct question stays text-only")
		})
	}
}

func TestBottomN(t *testing.T) {
	resp := mustAnalyze(t, "bottom 2 products by sales", storeRows(), nil)

	assert.Equal(t, 2, resp.Intent.Limit)
	assert.Equal(t, "Total sales by product:\n1. Lamp: 40\n2. Chair: 270\n...and 1 more", resp.Answer)
	require.True(t, resp.HasChart())
	assert.Equal(t, []string{"Lamp", "Chair"}, resp.Chart.Categories)
}

func TestDistributionDefaultsToPie(t *testing.T) {
	resp := mustAnalyze(t, "distribution of sales by category", salesRows(), nil)
	assert.Equal(t, intent.Pie, resp.ChartType)
}

func TestTimeSeries(t *testing.T) {
	resp := mustAnalyze(t, "show sales by order_date", storeRows(), nil)

	assert.Equal(t, intent.Line, resp.ChartType)
	assert.Equal(t, "Total sales peaked in 2024-02-10 at 300. The average across 4 periods is 152.5.", resp.Answer)

	var periods []string
	for _, r := range resp.Data {
		periods = append(periods, r["order_date"].(string))
	}
	assert.Equal(t, []string{"2024-01-03", "2024-02-10", "2024-02-21", "2024-03-15"}, periods)
}

func TestAutoDimension(t *testing.T) {
	resp := mustAnalyze(t, "plot sales", storeRows(), nil)

	assert.Equal(t, "order_date", resp.Intent.Dimension)
	assert.Equal(t, intent.Line, resp.ChartType)
	require.True(t, resp.HasChart())
	assert.Equal(t, "order_date", resp.Chart.XAxis)
}

func TestCountInvariant(t *testing.T) {
	rows := storeRows()
	resp := mustAnalyze(t, "how many records by region", rows, nil)

	require.Equal(t, intent.Count, resp.Intent.Aggregation)
	var total float64
	for _, r := range resp.Data {
		total += r["count"].(float64)
	}
	assert.Equal(t, float64(len(rows)), total)
	assert.Equal(t, "Count by region:\n1. West: 2\n2. East: 1\n3. North: 1", resp.Answer)
}

func TestCountAllRecords(t *testing.T) {
	rows := storeRows()
	resp := mustAnalyze(t, "how many records are there", rows, nil)

	assert.Equal(t, intent.Count, resp.Intent.Aggregation)
	assert.Empty(t, resp.Intent.Dimension)
	assert.Equal(t, "There are 4 records.", resp.Answer)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, float64(len(rows)), resp.Data[0][ValueColumn("")])
}

func TestContextFollowUp(t *testing.T) {
	first := mustAnalyze(t, "sales by category", salesRows(), nil)
	prev := first.Context

	resp := mustAnalyze(t, "now show as a pie chart", salesRows(), &prev)
	assert.Equal(t, intent.Pie, resp.ChartType)
	assert.Equal(t, "sales", resp.Intent.Metric)
	assert.Equal(t, "category", resp.Intent.Dimension)
	require.True(t, resp.HasChart())
	require.Len(t, resp.Chart.Series, 1)
	assert.Equal(t, []chart.Point{{Label: "A", Value: 15}, {Label: "B", Value: 7}}, resp.Chart.Series[0].Data)
}

// ============================================================================
// LISTING / HELP
// ============================================================================

func TestListing(t *testing.T) {
	resp := mustAnalyze(t, "list categories", salesRows(), nil)
	assert.Equal(t, "Category values: A, B", resp.Answer)
	assert.Nil(t, resp.Chart)
}

func TestListingCap(t *testing.T) {
	resp := Analyze("list all products", storeRows(), nil, WithListCap(2))
	require.NotNil(t, resp)
	assert.Equal(t, "Product values: Chair, Desk ...and 1 more", resp.Answer)
}

func TestHelp(t *testing.T) {
	resp := mustAnalyze(t, "help", salesRows(), nil)
	assert.Contains(t, resp.Answer, "Here are some questions you can ask about this data:")
	assert.Contains(t, resp.Answer, "- What is the total sales?")
	assert.Nil(t, resp.Chart)

	charts := mustAnalyze(t, "what charts can you draw", salesRows(), nil)
	assert.Contains(t, charts.Answer, "I can draw these chart types:")
	assert.Contains(t, charts.Answer, "sankey")
}

// ============================================================================
// PROPERTIES
// ============================================================================

func TestDeterminism(t *testing.T) {
	queries := []string{
		"sales by category",
		"total sales",
		"show sales by order_date",
		"bottom 2 products by sales",
		"how many records by region",
	}
	for _, q := range queries {
		rows := storeRows()
		if q == "sales by category" || q == "total sales" {
			rows = salesRows()
		}
		assert.Equal(t, Analyze(q, rows, nil), Analyze(q, rows, nil), q)
	}
}

func TestNoDegenerateGrouping(t *testing.T) {
	queries := []string{
		"sales by category", "list categories", "summary of sales", "plot sales",
		"show sales by order_date", "show quantity by quantity", "category by category",
	}
	for _, q := range queries {
		for _, rows := range [][]dataset.Row{salesRows(), storeRows()} {
			resp := Analyze(q, rows, nil)
			if resp == nil {
				continue
			}
			in := resp.Intent
			if in.Metric != "" && in.Dimension != "" {
				assert.NotEqual(t, in.Metric, in.Dimension, q)
			}
		}
	}
}

func TestNoMatchAnswer(t *testing.T) {
	assert.Equal(t, "No data found matching region = west and product = desk.",
		BuildNoMatch(map[string]string{"region": "west", "product": "desk"}))
}

func TestWithDefaultLimit(t *testing.T) {
	resp := Analyze("sales by product", storeRows(), nil, WithDefaultLimit(1))
	require.NotNil(t, resp)
	assert.Equal(t, "Total sales by product:\n1. Desk: 300\n...and 2 more", resp.Answer)
	require.True(t, resp.HasChart())
	assert.Len(t, resp.Chart.Categories, 1)
}
