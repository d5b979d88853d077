package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

func categoryRows() []dataset.Row {
	return []dataset.Row{
		{"category": "B", "sales": 7.0},
		{"category": "A", "sales": 15.0},
	}
}

func TestCompileBar(t *testing.T) {
	rec := Recommendation{Type: intent.Bar, XAxis: "category", YAxis: "sales"}
	cfg := Compile(rec, categoryRows(), SortValueDesc)
	require.NotNil(t, cfg)

	assert.Equal(t, intent.Bar, cfg.ChartType)
	assert.Equal(t, "Sales By Category", cfg.Title)
	assert.Equal(t, "category", cfg.XAxis)
	assert.Equal(t, "sales", cfg.YAxis)
	assert.True(t, cfg.ShowGrid)
	require.Len(t, cfg.Series, 1)
	assert.Equal(t, []Point{{Label: "A", Value: 15}, {Label: "B", Value: 7}}, cfg.Series[0].Data)
	assert.Equal(t, []string{"A", "B"}, cfg.Categories)
}

func TestCompileDoesNotReorderInput(t *testing.T) {
	rows := categoryRows()
	Compile(Recommendation{Type: intent.Bar, XAxis: "category", YAxis: "sales"}, rows, SortValueDesc)
	assert.Equal(t, "B", rows[0]["category"])
}

func TestCompileUnknownTypeFallsBackToBar(t *testing.T) {
	cfg := Compile(Recommendation{Type: "bubble", XAxis: "category", YAxis: "sales"}, categoryRows(), SortPreserve)
	require.NotNil(t, cfg)
	assert.Equal(t, intent.Bar, cfg.ChartType)
}

func TestCompileEmpty(t *testing.T) {
	assert.Nil(t, Compile(Recommendation{Type: intent.Bar, XAxis: "category"}, nil, SortPreserve))
	assert.Nil(t, Compile(Recommendation{Type: intent.Bar}, categoryRows(), SortPreserve))
}

func TestCompileChronological(t *testing.T) {
	rows := []dataset.Row{
		{"month": "2024-03-01", "sales": 1.0},
		{"month": "2024-01-01", "sales": 3.0},
		{"month": "2024-02-01", "sales": 2.0},
	}
	cfg := Compile(Recommendation{Type: intent.Line, XAxis: "month", YAxis: "sales"}, rows, SortChronological)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"}, cfg.Categories)
}

func TestCompileStackedBreakdown(t *testing.T) {
	rows := []dataset.Row{
		{"region": "West", "product": "Chair", "sales": 10.0},
		{"region": "West", "product": "Desk", "sales": 5.0},
		{"region": "East", "product": "Desk", "sales": 8.0},
	}
	rec := Recommendation{Type: intent.Bar, XAxis: "region", YAxis: "sales", Stacked: true, BreakdownDimensions: []string{"product"}}

	for i := 0; i < 5; i++ {
		cfg := Compile(rec, rows, SortPreserve)
		require.Len(t, cfg.Series, 2)
		assert.Equal(t, "Chair", cfg.Series[0].Name)
		assert.Equal(t, "Desk", cfg.Series[1].Name)
		assert.Equal(t, "total", cfg.Series[0].Stack)
		assert.Equal(t, []Point{{Label: "West", Value: 10}, {Label: "East", Value: 0}}, cfg.Series[0].Data)
		assert.Equal(t, []Point{{Label: "West", Value: 5}, {Label: "East", Value: 8}}, cfg.Series[1].Data)
		assert.Equal(t, []string{"#4F46E5", "#10B981"}, cfg.Colors)
	}
}

func TestCompilePieCollapsesBreakdown(t *testing.T) {
	rows := []dataset.Row{
		{"region": "West", "product": "Chair", "sales": 10.0},
		{"region": "West", "product": "Desk", "sales": 5.0},
	}
	cfg := Compile(Recommendation{Type: intent.Pie, XAxis: "region", YAxis: "sales", BreakdownDimensions: []string{"product"}}, rows, SortPreserve)
	assert.False(t, cfg.ShowGrid)
	assert.Equal(t, []Point{{Label: "West", Value: 15}}, cfg.Series[0].Data)
}

func TestCompileFamilies(t *testing.T) {
	rows := []dataset.Row{
		{"stage": "Visit", "to": "Cart", "users": 100.0},
		{"stage": "Cart", "to": "Buy", "users": 40.0},
		{"stage": "Lead", "to": "Cart", "users": 60.0},
	}

	funnel := Compile(Recommendation{Type: intent.Funnel, XAxis: "stage", YAxis: "users"}, rows, SortPreserve)
	assert.Equal(t, "Visit", funnel.Series[0].Data[0].Label)
	assert.Equal(t, "Cart", funnel.Series[0].Data[2].Label)

	waterfall := Compile(Recommendation{Type: intent.Waterfall, XAxis: "stage", YAxis: "users"}, rows, SortPreserve)
	assert.Equal(t, []float64{0, 100, 140}, []float64{
		waterfall.Series[0].Data[0].Base, waterfall.Series[0].Data[1].Base, waterfall.Series[0].Data[2].Base,
	})

	gauge := Compile(Recommendation{Type: intent.Gauge, XAxis: "stage", YAxis: "users"}, rows, SortPreserve)
	require.NotNil(t, gauge.Gauge)
	assert.Equal(t, Gauge{Name: "Visit", Value: 100, Min: 0, Max: 100}, *gauge.Gauge)

	radar := Compile(Recommendation{Type: intent.Radar, XAxis: "stage", YAxis: "users"}, rows, SortPreserve)
	assert.Len(t, radar.Indicators, 3)
	assert.Equal(t, 100.0, radar.Indicators[0].Max)

	sankey := Compile(Recommendation{Type: intent.Sankey, XAxis: "stage", YAxis: "users", BreakdownDimensions: []string{"to"}}, rows, SortPreserve)
	assert.Equal(t, []Node{{Name: "Visit"}, {Name: "Cart"}, {Name: "Lead"}, {Name: "Buy"}}, sankey.Nodes)
	assert.Contains(t, sankey.Links, Link{Source: "Visit", Target: "Cart", Value: 100})

	heat := Compile(Recommendation{Type: intent.Heatmap, XAxis: "stage", YAxis: "users", BreakdownDimensions: []string{"to"}}, rows, SortPreserve)
	assert.Equal(t, []string{"Cart", "Buy"}, heat.YCategories)
	assert.Len(t, heat.Series[0].Data, 3)

	tree := Compile(Recommendation{Type: intent.Treemap, XAxis: "to", YAxis: "users", BreakdownDimensions: []string{"stage"}}, rows, SortPreserve)
	require.Len(t, tree.Tree, 2)
	assert.Equal(t, "Cart", tree.Tree[0].Name)
	assert.Equal(t, 160.0, tree.Tree[0].Value)
	assert.Len(t, tree.Tree[0].Children, 2)

	river := Compile(Recommendation{Type: intent.ThemeRiver, XAxis: "stage", YAxis: "users", BreakdownDimensions: []string{"to"}}, rows, SortPreserve)
	assert.True(t, river.Stacked)
}

func TestNiceCeil(t *testing.T) {
	assert.Equal(t, 800.0, niceCeil(734))
	assert.Equal(t, 1.0, niceCeil(0))
	assert.Equal(t, 100.0, niceCeil(100))
}
