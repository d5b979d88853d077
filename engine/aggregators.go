package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// AGGREGATORS: Scalar and group aggregation over dataset.View
// ============================================================================
// Values are typed per cell: numeric-ish cells compare as numbers, date-like
// cells chronologically, everything else as strings. Unparseable cells are
// skipped by sum/avg/median and kept by min/max/mode.
// ============================================================================

// UnknownGroup labels rows whose dimension value is missing.
const UnknownGroup = "Unknown"

// compositeKeyDelimiter joins dimension values into one group key.
const compositeKeyDelimiter = "\x1f"

// ValueColumn names the aggregated column: the metric, or "count" when a
// count has no metric.
func ValueColumn(metric string) string {
	if metric == "" {
		return "count"
	}
	return metric
}

// ============================================================================
// SCALAR
// ============================================================================

// ScalarAggregate computes one summary value over column. Numeric results are
// float64; min/max/mode over dates or text return the original string. The
// result is nil when no value qualifies.
func ScalarAggregate(view dataset.View, column string, agg intent.Aggregation) any {
	if agg == intent.Count {
		return float64(countValues(view, column))
	}

	values := columnValues(view, column)
	if len(values) == 0 {
		return nil
	}
	dates := allDates(values)

	switch agg {
	case intent.Sum, intent.Avg, intent.Median:
		if dates {
			return 0.0
		}
		nums := numbers(values)
		if len(nums) == 0 {
			return nil
		}
		switch agg {
		case intent.Avg:
			return sum(nums) / float64(len(nums))
		case intent.Median:
			return median(nums)
		default:
			return sum(nums)
		}
	case intent.Min, intent.Max:
		sortValues(values)
		if agg == intent.Min {
			return normalize(values[0])
		}
		return normalize(values[len(values)-1])
	case intent.Mode:
		return normalize(mode(values))
	}
	return nil
}

func countValues(view dataset.View, column string) int {
	if column == "" {
		return view.Len()
	}
	n := 0
	for i := 0; i < view.Len(); i++ {
		if !dataset.IsEmpty(view.Value(i, column)) {
			n++
		}
	}
	return n
}

func columnValues(view dataset.View, column string) []any {
	out := make([]any, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v := view.Value(i, column); !dataset.IsEmpty(v) {
			out = append(out, v)
		}
	}
	return out
}

func allDates(values []any) bool {
	for _, v := range values {
		if !dataset.IsDateLike(v) {
			return false
		}
	}
	return true
}

func numbers(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if dataset.IsDateLike(v) {
			continue
		}
		if f, ok := dataset.ToNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func sum(nums []float64) float64 {
	var total float64
	for _, n := range nums {
		total += n
	}
	return total
}

func median(nums []float64) float64 {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mode returns the most frequent value; ties go to the value that sorts first.
func mode(values []any) any {
	sorted := append([]any(nil), values...)
	sortValues(sorted)
	counts := make(map[string]int, len(sorted))
	for _, v := range sorted {
		counts[dataset.ValueString(v)]++
	}
	var best any
	bestCount := 0
	for _, v := range sorted {
		if c := counts[dataset.ValueString(v)]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

// normalize turns numeric-ish cells into float64 and everything else into
// its rendered string.
func normalize(v any) any {
	if !dataset.IsDateLike(v) {
		if f, ok := dataset.ToNumber(v); ok {
			return f
		}
	}
	return dataset.ValueString(v)
}

// ============================================================================
// ORDERING
// ============================================================================

const (
	kindNumber = iota
	kindDate
	kindText
)

func valueKind(v any) int {
	switch {
	case dataset.IsDateLike(v):
		return kindDate
	case dataset.IsNumericValue(v):
		return kindNumber
	}
	return kindText
}

// CompareValues orders two cells: numbers before dates before text, numbers
// numerically, dates chronologically, text lexicographically.
func CompareValues(a, b any) int {
	ka, kb := valueKind(a), valueKind(b)
	if ka != kb {
		return ka - kb
	}
	switch ka {
	case kindNumber:
		fa, _ := dataset.ToNumber(a)
		fb, _ := dataset.ToNumber(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case kindDate:
		ta, okA := dataset.ParseDate(a)
		tb, okB := dataset.ParseDate(b)
		if okA && okB {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(dataset.ValueString(a), dataset.ValueString(b))
}

func sortValues(values []any) {
	sort.SliceStable(values, func(i, j int) bool { return CompareValues(values[i], values[j]) < 0 })
}

// ============================================================================
// GROUPING
// ============================================================================

type group struct {
	labels  []string
	indices []int
}

// GroupAggregate groups rows by the rendered values of dimensions and
// aggregates metric within each group. Groups keep first-seen order. Each
// output row holds the dimension values plus the aggregate under
// ValueColumn(metric).
func GroupAggregate(view dataset.View, dimensions []string, metric string, agg intent.Aggregation) []dataset.Row {
	if view.Len() == 0 || len(dimensions) == 0 {
		return nil
	}
	groups, order := foldGroups(view, dimensions)
	valueCol := ValueColumn(metric)

	out := make([]dataset.Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := make(dataset.Row, len(dimensions)+1)
		for i, d := range dimensions {
			row[d] = g.labels[i]
		}
		row[valueCol] = ScalarAggregate(dataset.NewSubView(view, g.indices), metric, agg)
		out = append(out, row)
	}
	return out
}

// foldGroups builds a fresh key → group map for one call.
func foldGroups(view dataset.View, dimensions []string) (map[string]*group, []string) {
	groups := make(map[string]*group)
	var order []string
	labels := make([]string, len(dimensions))
	for i := 0; i < view.Len(); i++ {
		for j, d := range dimensions {
			labels[j] = dataset.ValueString(view.Value(i, d))
			if labels[j] == "" {
				labels[j] = UnknownGroup
			}
		}
		key := strings.Join(labels, compositeKeyDelimiter)
		g, ok := groups[key]
		if !ok {
			g = &group{labels: append([]string(nil), labels...)}
			groups[key] = g
			order = append(order, key)
		}
		g.indices = append(g.indices, i)
	}
	return groups, order
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatNumber rounds to two decimals, drops trailing zeros and groups
// thousands: 1234.5 → "1,234.5".
func FormatNumber(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

// FormatValue renders an aggregate for narrative text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "n/a"
	case float64:
		return FormatNumber(t)
	}
	return dataset.ValueString(v)
}

// LabelForColumn turns a column name into readable words: "unit_price" →
// "unit price".
func LabelForColumn(column string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(column)), " ")
}

// LabelForAggregation returns a human-readable label for an aggregation type.
func LabelForAggregation(agg intent.Aggregation) string {
	switch agg {
	case intent.Sum:
		return "Total"
	case intent.Count:
		return "Count"
	case intent.Avg:
		return "Average"
	case intent.Max:
		return "Maximum"
	case intent.Min:
		return "Minimum"
	case intent.Median:
		return "Median"
	case intent.Mode:
		return "Most common"
	default:
		return "Value"
	}
}
