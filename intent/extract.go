package intent

import "github.com/spektr-org/askdata/dataset"

// Pass is one named resolution step of the extraction pipeline.
type Pass struct {
	Name  string
	Apply func(q *Query, in Intent) Intent
}

// Passes returns the extraction pipeline in execution order. The order is
// part of the contract: later passes may overwrite earlier results.
func Passes() []Pass {
	return []Pass{
		{"dimension", detectDimension},
		{"metric", detectMetric},
		{"aggregation", detectAggregation},
		{"chart", detectChartType},
		{"total-count", resolveTotalCount},
		{"row-count", resolveRowCount},
		{"same-column", resolveSameColumn},
		{"listing-count", resolveListingCount},
		{"maxmin-sum", resolveMaxMinSum},
		{"context", mergeContext},
		{"filters", detectFilters},
		{"secondary-dimension", detectSecondaryDimension},
		{"scalar-forcing", forceScalar},
		{"limit", detectLimit},
	}
}

// TraceFunc observes the intent after each pass.
type TraceFunc func(pass string, in Intent)

// Extract resolves a question against view into an Intent.
func Extract(text string, view dataset.View, prev *Context) Intent {
	return ExtractQuery(NewQuery(text, view, prev), nil)
}

// ExtractQuery runs every pass over q, calling trace (if non-nil) after each.
func ExtractQuery(q *Query, trace TraceFunc) Intent {
	in := Intent{Aggregation: Sum, Filters: map[string]string{}}
	for _, p := range Passes() {
		in = p.Apply(q, in)
		if trace != nil {
			trace(p.Name, in)
		}
	}
	return in
}
