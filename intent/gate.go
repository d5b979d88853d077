package intent

import (
	"regexp"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// analyticalKeywords is the documented vocabulary that routes a question to
// the engine instead of a general-purpose fallback.
var analyticalKeywords = []string{
	"trend", "trends", "trending", "compare", "comparison", "versus", "vs",
	"distribution", "breakdown", "break down", "sum", "total", "totals",
	"average", "avg", "mean", "median", "mode", "count", "how many", "number of",
	"highest", "lowest", "top", "bottom", "max", "maximum", "min", "minimum",
	"most", "least", "best", "worst", "peak", "which", "who", "chart", "charts",
	"graph", "graphs", "plot", "visualize", "visualise", "show", "list", "group",
	"by", "per", "each", "growth", "share", "percentage", "proportion", "ratio",
	"analyze", "analyse", "analysis", "summary", "summarize", "stats",
	"statistics", "records", "rows", "pie", "bar", "line", "scatter", "heatmap",
	"funnel", "over time", "rank", "ranking",
}

var (
	analyticalRe = wordRe(analyticalKeywords...)

	// generalPrefixes open general-knowledge questions.
	generalPrefixes = []string{"what is", "how to", "explain"}

	metaRe = regexp.MustCompile(`^(?:help|help me|\?)$|` +
		`\bwhat (?:type|types|kind|kinds|sort) of (?:questions|charts|graphs)\b|` +
		`\bwhat (?:questions|charts|graphs)\b|\bwhich (?:charts|graphs)\b|` +
		`\bwhat can (?:i|you) (?:ask|do)\b|\bexample questions\b|\bsupported charts\b`)

	chartMetaRe = regexp.MustCompile(`\b(?:charts?|graphs?|visuali[sz]ations?)\b`)
)

// IsAnalytical reports whether a question should be answered by the engine.
// General-knowledge openers ("what is", "how to", "explain") are rejected
// unless the rest of the question carries an analytical keyword.
func IsAnalytical(query string) bool {
	return IsAnalyticalOver(query, nil)
}

// IsAnalyticalOver is IsAnalytical that also accepts a question naming one of
// the dataset's columns, so "sales in region west" reaches the engine.
func IsAnalyticalOver(query string, columns []string) bool {
	q := Normalize(query)
	if q == "" {
		return false
	}
	if IsMetaQuery(q) {
		return true
	}
	for _, p := range generalPrefixes {
		if q == p || strings.HasPrefix(q, p+" ") {
			return analyticalOver(strings.TrimPrefix(q, p), columns)
		}
	}
	return analyticalOver(q, columns)
}

func analyticalOver(text string, columns []string) bool {
	if analyticalRe.MatchString(text) {
		return true
	}
	for _, c := range columns {
		if dataset.IsIDColumn(c) {
			continue
		}
		if mentionIndex(text, c) >= 0 {
			return true
		}
	}
	return false
}

// IsMetaQuery reports whether the question asks what the engine can do.
func IsMetaQuery(query string) bool {
	return metaRe.MatchString(Normalize(query))
}

// IsChartMetaQuery reports whether a meta question is about chart types.
func IsChartMetaQuery(query string) bool {
	q := Normalize(query)
	return IsMetaQuery(q) && chartMetaRe.MatchString(q)
}
