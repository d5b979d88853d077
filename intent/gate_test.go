package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAnalytical(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"total sales", true},
		{"Sales by Category?", true},
		{"which region has the highest revenue", true},
		{"show me a pie chart", true},
		{"how many records are there", true},
		{"what is the average price", true},
		{"what is a pivot table", false},
		{"how to export my data", false},
		{"explain gross margin", false},
		{"hello there", false},
		{"", false},
		{"help", true},
		{"what type of questions can i ask", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnalytical(tt.query))
		})
	}
}

func TestIsAnalyticalWholeWords(t *testing.T) {
	// "bypass" contains "by", "summit" contains "sum".
	assert.False(t, IsAnalytical("summit bypass"))
}

func TestMetaQueries(t *testing.T) {
	assert.True(t, IsMetaQuery("What charts can you draw?"))
	assert.True(t, IsChartMetaQuery("what charts are supported"))
	assert.True(t, IsMetaQuery("what can i ask"))
	assert.False(t, IsChartMetaQuery("what can i ask"))
	assert.False(t, IsMetaQuery("sales by region"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sales by region", Normalize("  Sales   BY region?! "))
}

func TestIsAnalyticalOverColumns(t *testing.T) {
	columns := []string{"region", "sales", "order_id"}
	tests := []struct {
		query string
		want  bool
	}{
		{"sales in region west", true},
		{"Regions?", true},
		{"What is the capital of France?", false},
		{"explain quantum physics", false},
		{"explain sales", true},
		{"order", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnalyticalOver(tt.query, columns))
		})
	}
	assert.False(t, IsAnalytical("sales in region west"))
}
