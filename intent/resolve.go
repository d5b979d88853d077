package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// CONFLICT RESOLUTION
// ============================================================================

var (
	totalCountRe = regexp.MustCompile(`\btotal\s+(?:count|number)\b`)
	rowCountRe   = regexp.MustCompile(`\b(?:records|rows)\b|\bhow many data\b`)
	singleRe     = wordRe("record", "records", "transaction", "transactions", "single")
	listRe       = wordRe("list")

	summableMetricWords = []string{
		"sale", "revenue", "amount", "quantity", "price", "cost", "rate",
		"value", "hour", "time", "duration", "score",
	}
)

// resolveTotalCount reads "total count of X" as a count of X, not a breakdown.
// A metric that is the dimension itself was not found separately.
func resolveTotalCount(q *Query, in Intent) Intent {
	if in.Dimension == "" || (in.Metric != "" && in.Metric != in.Dimension) || !q.Has(totalCountRe) {
		return in
	}
	out := in.clone()
	out.Metric, out.Dimension = in.Dimension, ""
	out.Aggregation = Count
	return out
}

func resolveRowCount(q *Query, in Intent) Intent {
	if !q.Has(rowCountRe) {
		return in
	}
	out := in.clone()
	out.Aggregation = Count
	return out
}

// resolveSameColumn keeps the grouping reading when the query asks for a
// breakdown and the scalar reading otherwise.
func resolveSameColumn(q *Query, in Intent) Intent {
	if in.Metric == "" || in.Metric != in.Dimension {
		return in
	}
	out := in.clone()
	if strings.Contains(" "+q.Text+" ", " by ") || q.Has(listRe) || in.ChartType != "" {
		out.Metric = ""
	} else {
		out.Dimension = ""
	}
	return out
}

func resolveListingCount(q *Query, in Intent) Intent {
	if in.Aggregation != Sum || in.Metric != "" || !q.Has(listRe) {
		return in
	}
	if _, explicit := DetectAggregation(q.Text); explicit {
		return in
	}
	out := in.clone()
	out.Aggregation = Count
	return out
}

// resolveMaxMinSum reads "highest sales by region" as the highest total.
// Without a dimension max/min keep their literal meaning.
func resolveMaxMinSum(q *Query, in Intent) Intent {
	if in.Aggregation != Max && in.Aggregation != Min {
		return in
	}
	if in.Dimension == "" || in.Metric == "" || q.Has(singleRe) {
		return in
	}
	if !containsAny(normalizeName(in.Metric), summableMetricWords) {
		return in
	}
	out := in.clone()
	out.Aggregation = Sum
	return out
}

// ============================================================================
// FILTERS
// ============================================================================

var (
	filterStopwords = map[string]bool{
		"the": true, "and": true, "or": true, "in": true, "on": true, "at": true,
		"to": true, "for": true, "of": true, "a": true, "an": true, "is": true,
		"are": true, "was": true, "were": true,
	}

	breakdownRe  = wordRe("by", "per", "each", "breakdown", "break down", "compare", "chart", "graph", "plot")
	unitHintRe   = wordRe("product", "products", "item", "items", "unit", "units")
	unitHintCols = []string{"product", "item", "unit", "sku"}
)

// detectFilters finds the first non-numeric column whose value is named in
// the query and records it as an equality filter.
func detectFilters(q *Query, in Intent) Intent {
	out := in.clone()
	for _, c := range q.Columns {
		if c == in.Dimension || c == in.Metric || q.IsNumeric(c) || out.HasFilter(c) {
			continue
		}
		if v := matchValue(q, c); v != "" {
			out.Filters[c] = v
			break
		}
	}

	if in.Dimension == "" || out.HasFilter(in.Dimension) {
		return out
	}
	v := matchValue(q, in.Dimension)
	if v == "" {
		return out
	}
	out.Filters[in.Dimension] = v
	if q.Has(breakdownRe) || in.ChartType != "" {
		out.Dimension = substituteDimension(q, out)
	}
	return out
}

// matchValue returns the longest distinct value of column that appears as a
// whole word in the query.
func matchValue(q *Query, column string) string {
	var candidates []string
	for _, raw := range dataset.DistinctValues(q.View, column) {
		v := strings.ToLower(raw)
		if len(v) <= 2 || filterStopwords[v] || findColumn(q.Columns, v) != "" {
			continue
		}
		candidates = append(candidates, v)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	for _, v := range candidates {
		if indexWord(q.Text, v) >= 0 {
			return v
		}
	}
	return ""
}

// substituteDimension picks a new grouping column after the old one became a
// filter. It may return "".
func substituteDimension(q *Query, in Intent) string {
	usable := func(c string) bool {
		return !in.HasFilter(c) && c != in.Metric && !q.IsNumeric(c) && !dataset.IsIDColumn(c)
	}
	if q.Has(unitHintRe) {
		for _, hint := range unitHintCols {
			for _, c := range q.Columns {
				if usable(c) && strings.Contains(normalizeName(c), hint) {
					return c
				}
			}
		}
	}
	exclude := map[string]bool{in.Metric: true}
	for c := range in.Filters {
		exclude[c] = true
	}
	if c := findDimension(q, exclude); c != "" && usable(c) {
		return c
	}
	for _, c := range q.Columns {
		if usable(c) {
			return c
		}
	}
	return ""
}

// ============================================================================
// SECONDARY DIMENSION / SCALAR FORCING
// ============================================================================

var twoAxisCharts = map[ChartType]bool{Sankey: true, Heatmap: true, ThemeRiver: true, Scatter: true}

func detectSecondaryDimension(q *Query, in Intent) Intent {
	if in.Dimension == "" || !twoAxisCharts[in.ChartType] || in.Dimension2 != "" {
		return in
	}
	out := in.clone()
	for _, c := range q.Columns {
		if c == in.Dimension || c == in.Metric || q.IsNumeric(c) || dataset.IsIDColumn(c) {
			continue
		}
		out.Dimension2 = c
		break
	}
	return out
}

// forceScalar drops a dimension that is pinned to one value by a filter.
func forceScalar(_ *Query, in Intent) Intent {
	if in.Dimension == "" || !in.HasFilter(in.Dimension) {
		return in
	}
	out := in.clone()
	out.Dimension = ""
	out.Dimension2 = ""
	return out
}
