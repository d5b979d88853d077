package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// DETECTION PASSES: dimension, metric, aggregation, chart type, limit
// ============================================================================

var (
	sumRe    = wordRe("sum", "total", "combined")
	avgRe    = wordRe("avg", "average", "mean")
	medianRe = wordRe("median")
	modeRe   = wordRe("mode")
	countRe  = wordRe("count", "how many", "number of")
	minRe    = wordRe("min", "lowest", "bottom", "worst", "least", "minimum")
	maxRe    = wordRe("max", "highest", "top", "peak", "best", "most", "maximum")

	arithmeticRe = wordRe("average", "avg", "sum", "total", "mean")

	aggregationLanguageRe = wordRe(
		"sum", "total", "combined", "avg", "average", "mean", "median", "mode",
		"count", "how many", "number of", "min", "lowest", "bottom", "worst",
		"least", "minimum", "max", "highest", "top", "peak", "best", "most", "maximum",
	)

	limitRe = regexp.MustCompile(`\b(?:top|bottom|first|last|limit|best|worst)\s+(\d{1,4})\b`)
)

// aggregationRules are checked in order; the first match wins.
var aggregationRules = []struct {
	re  *regexp.Regexp
	agg Aggregation
}{
	{sumRe, Sum},
	{avgRe, Avg},
	{medianRe, Median},
	{modeRe, Mode},
	{countRe, Count},
	{minRe, Min},
	{maxRe, Max},
}

// chartRules lists special chart families before the generic ones.
var chartRules = []struct {
	re    *regexp.Regexp
	chart ChartType
}{
	{regexp.MustCompile(`\bfunnel\b`), Funnel},
	{regexp.MustCompile(`\b(?:gauge|speedometer)\b`), Gauge},
	{regexp.MustCompile(`\b(?:radar|spider)\b`), Radar},
	{regexp.MustCompile(`\bscatter\b`), Scatter},
	{regexp.MustCompile(`\bheat\s?map\b`), Heatmap},
	{regexp.MustCompile(`\btree\s?map\b`), Treemap},
	{regexp.MustCompile(`\bsunburst\b`), Sunburst},
	{regexp.MustCompile(`\bsankey\b`), Sankey},
	{regexp.MustCompile(`\bwaterfall\b`), Waterfall},
	{regexp.MustCompile(`\b(?:theme\s?river|streamgraph)\b`), ThemeRiver},
	{regexp.MustCompile(`\bpolar\b`), PolarBar},
	{regexp.MustCompile(`\bpictorial\b`), PictorialBar},
	{regexp.MustCompile(`\barea\s+(?:chart|graph|plot)s?\b|\bas (?:an )?area\b|\bstacked area\b`), Area},
	{regexp.MustCompile(`\bline\s+(?:chart|graph|plot)s?\b|\bas (?:a )?line\b`), Line},
	{regexp.MustCompile(`\b(?:pie|donut|doughnut)\b`), Pie},
	{regexp.MustCompile(`\bbars?\b|\bcolumn chart\b|\bhistogram\b`), Bar},
}

// ============================================================================
// DIMENSION
// ============================================================================

// dimensionTemplates are tried in order. precedesBy marks templates whose
// capture sits in front of "by"; a numeric column there is the metric being
// broken down, so it is rejected as a dimension. Numeric captures are also
// rejected under aggregation language ("top 3 products by sales") unless the
// same column appears earlier in the question.
var dimensionTemplates = []struct {
	re         *regexp.Regexp
	precedesBy bool
}{
	{regexp.MustCompile(`\b(?:which|what)\s+([a-z0-9_ -]+?)\s+(?:has|have|had|is|are|was|were)\b`), false},
	{regexp.MustCompile(`\blist\s+(?:all\s+)?(?:the\s+)?([a-z0-9_ -]+?)\s+by\b`), true},
	{regexp.MustCompile(`\bshow\s+(?:me\s+)?(?:all\s+)?(?:the\s+)?([a-z0-9_ -]+?)\s+by\b`), true},
	{regexp.MustCompile(`\bbreak\s?down\s+(?:by|of)\s+([a-z0-9_ -]+)`), false},
	{regexp.MustCompile(`\bgroup(?:ed)?\s+by\s+([a-z0-9_ -]+)`), false},
	{regexp.MustCompile(`\bper\s+([a-z0-9_ -]+)`), false},
	{regexp.MustCompile(`\bby\s+([a-z0-9_ -]+)`), false},
}

var auxiliaries = map[string]bool{"is": true, "are": true, "was": true, "were": true, "do": true, "does": true, "did": true}

func detectDimension(q *Query, in Intent) Intent {
	out := in.clone()
	out.Dimension = findDimension(q, nil)
	return out
}

// findDimension runs the three dimension tiers, skipping excluded columns.
func findDimension(q *Query, exclude map[string]bool) string {
	accept := func(c string) bool { return !exclude[c] }
	aggLang := q.Has(aggregationLanguageRe)

	for _, t := range dimensionTemplates {
		for _, m := range t.re.FindAllStringSubmatchIndex(q.Text, -1) {
			phrase := strings.TrimSpace(q.Text[m[2]:m[3]])
			if first, _, _ := strings.Cut(phrase, " "); auxiliaries[first] {
				continue
			}
			before := q.Text[:m[0]]
			col := matchPhrase(phrase, q.Columns, func(c string) bool {
				if !accept(c) {
					return false
				}
				if !q.IsNumeric(c) {
					return true
				}
				// A numeric capture already named as the metric is a grouping
				// of that column ("average time by time").
				return !t.precedesBy && (!aggLang || mentionIndex(before, c) >= 0)
			})
			if col != "" {
				return col
			}
		}
	}

	eligible := func(c string) bool {
		return accept(c) && !(aggLang && q.IsNumeric(c))
	}
	for _, c := range q.Columns {
		if eligible(c) && q.Mentions(c) {
			return c
		}
	}
	for _, c := range q.Columns {
		if !eligible(c) || dataset.IsIDColumn(c) {
			continue
		}
		if mentionsToken(q.Text, c) {
			return c
		}
	}
	return ""
}

func mentionsToken(text, column string) bool {
	for _, tok := range tokens(column) {
		for _, v := range []string{tok, singular(tok), plural(tok)} {
			if indexWord(text, v) >= 0 {
				return true
			}
		}
	}
	return false
}

// ============================================================================
// METRIC
// ============================================================================

// metricOverrides map fixed phrases straight to expected column names and
// take precedence over generic detection.
var metricOverrides = []struct {
	phrase  string
	columns []string
}{
	{"worked hours", []string{"worked_hours", "hours_worked", "work_hours", "hours"}},
	{"hours worked", []string{"hours_worked", "worked_hours", "work_hours", "hours"}},
	{"overtime", []string{"overtime_hours", "overtime"}},
	{"productivity", []string{"productivity_score", "productivity"}},
	{"attendance", []string{"attendance_rate", "attendance"}},
	{"units sold", []string{"units_sold", "quantity_sold", "quantity", "units"}},
}

// metricSynonyms map query vocabulary to column-name fragments.
var metricSynonyms = []struct {
	re    *regexp.Regexp
	hints []string
}{
	{wordRe("revenue", "turnover", "earnings"), []string{"revenue", "sales", "income", "amount"}},
	{wordRe("profit", "profits", "margin"), []string{"profit", "margin", "net"}},
	{wordRe("spend", "spent", "spending", "expense", "expenses", "cost", "costs"), []string{"cost", "expense", "spend", "amount"}},
	{wordRe("price", "prices", "pricing"), []string{"price", "cost", "rate"}},
	{wordRe("quantity", "qty", "units", "volume"), []string{"quantity", "qty", "units", "volume"}},
	{wordRe("salary", "salaries", "pay", "wage", "wages"), []string{"salary", "pay", "wage", "compensation"}},
	{wordRe("rating", "ratings"), []string{"rating", "score"}},
}

var (
	commonMetricWords = []string{"sales", "revenue", "amount", "profit", "price", "quantity", "cost", "value", "income", "spend", "score"}

	soldRe    = wordRe("sold", "sell", "selling", "sells")
	soldHints = []string{"quantity", "qty", "units", "sold", "volume", "sales"}
)

func detectMetric(q *Query, in Intent) Intent {
	out := in.clone()
	out.Metric = findMetric(q, in.Dimension)
	return out
}

func findMetric(q *Query, dimension string) string {
	for _, o := range metricOverrides {
		if !strings.Contains(q.Text, o.phrase) {
			continue
		}
		for _, cand := range o.columns {
			if c := findColumn(q.Columns, cand); c != "" {
				return c
			}
		}
	}

	numericOnly := q.Has(arithmeticRe)
	eligible := func(c string) bool { return !numericOnly || q.IsNumeric(c) }

	for _, s := range metricSynonyms {
		if !q.Has(s.re) {
			continue
		}
		for _, hint := range s.hints {
			for _, c := range q.Columns {
				if eligible(c) && c != dimension && strings.Contains(normalizeName(c), hint) {
					return c
				}
			}
		}
	}

	var direct []string
	for _, c := range q.Columns {
		if eligible(c) && q.Mentions(c) {
			direct = append(direct, c)
		}
	}
	if c := preferMetric(q, direct, dimension); c != "" {
		return c
	}

	var byToken []string
	for _, c := range q.Columns {
		if eligible(c) && !dataset.IsIDColumn(c) && mentionsToken(q.Text, c) {
			byToken = append(byToken, c)
		}
	}
	if c := preferMetric(q, byToken, dimension); c != "" {
		return c
	}

	// The column must carry the vocabulary word the query used.
	for _, w := range commonMetricWords {
		if indexWord(q.Text, w) < 0 {
			continue
		}
		for _, c := range q.Columns {
			if q.IsNumeric(c) && c != dimension && !dataset.IsIDColumn(c) && strings.Contains(normalizeName(c), w) {
				return c
			}
		}
	}

	if q.Has(soldRe) {
		for _, hint := range soldHints {
			for _, c := range q.Columns {
				if q.IsNumeric(c) && c != dimension && strings.Contains(normalizeName(c), hint) {
					return c
				}
			}
		}
	}
	return ""
}

// preferMetric picks a numeric candidate that is not the dimension, then any
// non-dimension candidate, then the first one.
func preferMetric(q *Query, candidates []string, dimension string) string {
	for _, c := range candidates {
		if c != dimension && q.IsNumeric(c) {
			return c
		}
	}
	for _, c := range candidates {
		if c != dimension {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ============================================================================
// AGGREGATION / CHART / LIMIT
// ============================================================================

// DetectAggregation returns the first aggregation whose keywords appear in
// the query, and whether any matched. Sum is the default.
func DetectAggregation(text string) (Aggregation, bool) {
	for _, r := range aggregationRules {
		if r.re.MatchString(text) {
			return r.agg, true
		}
	}
	return Sum, false
}

func detectAggregation(q *Query, in Intent) Intent {
	out := in.clone()
	out.Aggregation, _ = DetectAggregation(q.Text)
	return out
}

// DetectChartType returns the requested chart family, or "" when none.
func DetectChartType(text string) ChartType {
	for _, r := range chartRules {
		if r.re.MatchString(text) {
			return r.chart
		}
	}
	return ""
}

func detectChartType(q *Query, in Intent) Intent {
	out := in.clone()
	out.ChartType = DetectChartType(q.Text)
	return out
}

func detectLimit(q *Query, in Intent) Intent {
	out := in.clone()
	if m := limitRe.FindStringSubmatch(q.Text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.Limit = n
		}
	}
	return out
}
