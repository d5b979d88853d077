package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
	"github.com/spektr-org/askdata/schema"
)

// ============================================================================
// TEXT BUILDER: Narrative answers
// ============================================================================
// All functions operate on dataset.View or aggregated rows; none of them
// decides what to compute, only how to say it.
// ============================================================================

// chartCatalog lists the chart families the compiler supports, in the order
// the help answer presents them.
var chartCatalog = []intent.ChartType{
	intent.Bar, intent.Line, intent.Pie, intent.Area, intent.Scatter,
	intent.Radar, intent.Funnel, intent.Gauge, intent.Heatmap, intent.Treemap,
	intent.Sunburst, intent.Sankey, intent.Waterfall, intent.ThemeRiver,
	intent.PolarBar, intent.PictorialBar,
}

var genericExamples = []string{
	"What is the total sales?",
	"Show revenue by region",
	"Which product has the highest sales?",
	"Show sales by month as a line chart",
	"How many records are there?",
}

// BuildGuidance answers a help question. Chart questions list the supported
// chart types; anything else lists example questions built from the
// dataset's own columns.
func BuildGuidance(view dataset.View, chartsOnly bool) string {
	var b strings.Builder
	if chartsOnly {
		names := make([]string, len(chartCatalog))
		for i, c := range chartCatalog {
			names[i] = string(c)
		}
		b.WriteString("I can draw these chart types: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(".\nName one in your question, for example \"show sales by region as a pie chart\".")
		return b.String()
	}

	examples := genericExamples
	if sch, err := schema.Discover(view); err == nil {
		if q := sch.ExampleQuestions(6); len(q) > 0 {
			examples = q
		}
	}
	b.WriteString("Here are some questions you can ask about this data:")
	for _, q := range examples {
		b.WriteString("\n- ")
		b.WriteString(q)
	}
	return b.String()
}

// BuildListing renders distinct values as comma-joined text, capped.
func BuildListing(column string, values []string, limit int) string {
	if len(values) == 0 {
		return fmt.Sprintf("No %s values found.", LabelForColumn(column))
	}
	shown := values
	if limit > 0 && len(values) > limit {
		shown = values[:limit]
	}
	text := fmt.Sprintf("%s values: %s", capitalize(LabelForColumn(column)), strings.Join(shown, ", "))
	if rest := len(values) - len(shown); rest > 0 {
		text += fmt.Sprintf(" ...and %d more", rest)
	}
	return text
}

// BuildNoMatch is the answer when filters remove every row.
func BuildNoMatch(filters map[string]string) string {
	return fmt.Sprintf("No data found matching %s.", describeFilters(filters, " and "))
}

// BuildCount answers a row-count question.
func BuildCount(n int, filters map[string]string) string {
	if n == 1 {
		return fmt.Sprintf("There is 1 record%s.", filterScope(filters))
	}
	return fmt.Sprintf("There are %d records%s.", n, filterScope(filters))
}

// BuildStats renders the multi-line statistics block for one metric.
func BuildStats(view dataset.View, metric string) string {
	label := LabelForColumn(metric)
	lines := []string{
		fmt.Sprintf("Statistics for %s:", label),
		"- Count: " + FormatValue(ScalarAggregate(view, metric, intent.Count)),
		"- Sum: " + FormatValue(ScalarAggregate(view, metric, intent.Sum)),
		"- Average: " + FormatValue(ScalarAggregate(view, metric, intent.Avg)),
		"- Min: " + FormatValue(ScalarAggregate(view, metric, intent.Min)),
		"- Max: " + FormatValue(ScalarAggregate(view, metric, intent.Max)),
	}
	return strings.Join(lines, "\n")
}

// BuildMinMax renders the combined min and max sentence.
func BuildMinMax(view dataset.View, metric, year string) string {
	label := LabelForColumn(metric)
	return fmt.Sprintf("Minimum %s%s is %s and maximum %s is %s.",
		label, yearScope(year),
		FormatValue(ScalarAggregate(view, metric, intent.Min)),
		label,
		FormatValue(ScalarAggregate(view, metric, intent.Max)))
}

// BuildScalar renders one aggregate as a sentence.
func BuildScalar(agg intent.Aggregation, metric string, value any, year string, filters map[string]string) string {
	label := LabelForColumn(metric)
	scope := filterScope(filters) + yearScope(year)
	if agg == intent.Count {
		return fmt.Sprintf("The count of %s%s is %s.", label, scope, FormatValue(value))
	}
	return fmt.Sprintf("The %s %s%s is %s.", strings.ToLower(LabelForAggregation(agg)), label, scope, FormatValue(value))
}

// ============================================================================
// GROUPED NARRATIVES
// ============================================================================

// BuildTrend names the peak period and the average across periods.
func BuildTrend(rows []dataset.Row, dimension, valueCol string, agg intent.Aggregation) string {
	if len(rows) == 0 {
		return "No data to summarize."
	}
	peak := rows[0]
	var total float64
	for _, r := range rows {
		if CompareValues(r[valueCol], peak[valueCol]) > 0 {
			peak = r
		}
		if f, ok := dataset.ToNumber(r[valueCol]); ok {
			total += f
		}
	}
	subject := seriesLabel(agg, valueCol)
	return fmt.Sprintf("%s peaked in %s at %s. The average across %d periods is %s.",
		capitalize(subject),
		dataset.ValueString(peak[dimension]),
		FormatValue(peak[valueCol]),
		len(rows),
		FormatNumber(total/float64(len(rows))))
}

// BuildWinner names the single top (or bottom) group.
func BuildWinner(row dataset.Row, dimensions []string, valueCol string, agg intent.Aggregation, lowest bool) string {
	word := "highest"
	if lowest {
		word = "lowest"
	}
	return fmt.Sprintf("%s has the %s %s at %s.",
		groupLabel(row, dimensions), word, seriesLabel(agg, valueCol), FormatValue(row[valueCol]))
}

// BuildRanking renders the top n groups as a numbered list. A "lowest is"
// line is appended when withLowest is set.
func BuildRanking(rows []dataset.Row, dimensions []string, valueCol string, agg intent.Aggregation, n int, withLowest bool) string {
	if len(rows) == 0 {
		return "No data to summarize."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s by %s:", capitalize(seriesLabel(agg, valueCol)), LabelForColumn(dimensions[0]))

	shown := rows
	if n > 0 && len(rows) > n {
		shown = rows[:n]
	}
	for i, r := range shown {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, groupLabel(r, dimensions), FormatValue(r[valueCol]))
	}
	if rest := len(rows) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more", rest)
	}
	if withLowest {
		low := rows[len(rows)-1]
		fmt.Fprintf(&b, "\nLowest is %s at %s.", groupLabel(low, dimensions), FormatValue(low[valueCol]))
	}
	return b.String()
}

// ============================================================================
// HELPERS
// ============================================================================

// seriesLabel is the phrase for an aggregated column: "total sales",
// "average price", "count".
func seriesLabel(agg intent.Aggregation, valueCol string) string {
	if agg == intent.Count {
		if valueCol == "" || valueCol == "count" {
			return "count"
		}
		return "count of " + LabelForColumn(valueCol)
	}
	return strings.ToLower(LabelForAggregation(agg)) + " " + LabelForColumn(valueCol)
}

// groupLabel renders a group key across one or two dimensions.
func groupLabel(r dataset.Row, dimensions []string) string {
	parts := make([]string, len(dimensions))
	for i, d := range dimensions {
		parts[i] = dataset.ValueString(r[d])
	}
	return strings.Join(parts, " / ")
}

func filterScope(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	return " for " + describeFilterValues(filters)
}

func yearScope(year string) string {
	if year == "" {
		return ""
	}
	return " in " + year
}

func describeFilters(filters map[string]string, sep string) string {
	keys := sortedFilterKeys(filters)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = %s", LabelForColumn(k), filters[k])
	}
	return strings.Join(parts, sep)
}

func describeFilterValues(filters map[string]string) string {
	keys := sortedFilterKeys(filters)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = filters[k]
	}
	return strings.Join(parts, ", ")
}

func sortedFilterKeys(filters map[string]string) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
