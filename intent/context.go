package intent

import "regexp"

// ============================================================================
// CONTEXT MERGER: carries metric/dimension/chart/aggregation across turns
// ============================================================================

var (
	newIntentPrefixes = []string{
		"show", "what", "which", "list", "give", "tell", "who", "how", "sum",
		"count", "average", "avg", "min", "max", "total", "summary",
	}
	newIntentRe = wordRe("analyze", "analyse", "visualize", "visualise", "graph", "chart")

	followUpPrefixes = []string{"sort", "order", "filter", "limit", "top", "bottom", "and", "but"}

	groupingRe   = wordRe("by", "breakdown", "break down", "per", "each", "group", "grouped")
	explicitByRe = wordRe("by", "breakdown", "break down")

	scalarQuestionRe = regexp.MustCompile(`^(?:what is|what's|what was|how many|how much|total|sum|count|average|avg)\b`)
)

const followUpMaxLen = 20

// IsNewIntent reports whether the query starts a fresh question.
func (q *Query) IsNewIntent() bool {
	return q.HasPrefix(newIntentPrefixes...) || q.Has(newIntentRe)
}

// IsFollowUp reports whether the query reads as a refinement of the last turn.
func (q *Query) IsFollowUp() bool {
	return len(q.Text) < followUpMaxLen || q.HasPrefix(followUpPrefixes...)
}

// mergeContext fills gaps in the current extraction from the previous turn.
func mergeContext(q *Query, in Intent) Intent {
	prev := q.Prev
	if prev == nil {
		return in
	}
	out := in.clone()
	newIntent := q.IsNewIntent()

	switch {
	case in.Dimension != "" && in.Metric == "":
		if prev.Metric != "" && prev.Metric != in.Dimension && !(newIntent && !q.Has(explicitByRe)) {
			out.Metric = prev.Metric
		}
	case in.Metric != "" && in.Dimension == "":
		scalar := q.Has(scalarQuestionRe) && !q.Has(groupingRe)
		if prev.Dimension != "" && prev.Dimension != in.Metric && !scalar {
			out.Dimension = prev.Dimension
		}
	case in.Metric == "" && in.Dimension == "":
		chartChanged := in.ChartType != "" && in.ChartType != prev.ChartType
		if (q.IsFollowUp() && !newIntent) || chartChanged {
			out.Metric = prev.Metric
			out.Dimension = prev.Dimension
			if out.Metric == out.Dimension {
				out.Metric = ""
			}
			if out.ChartType == "" {
				out.ChartType = prev.ChartType
			}
		}
	}

	if in.Aggregation == Sum && prev.Aggregation != "" && !q.Has(sumRe) {
		out.Aggregation = prev.Aggregation
	}
	return out
}
