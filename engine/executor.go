package engine

import (
	"log/slog"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/spektr-org/askdata/chart"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// EXECUTOR: Question in, Response out
// ============================================================================
// Flow:
//   1. Gate: empty dataset or non-analytical question → nil
//   2. Extract the Intent (pass pipeline + context merge)
//   3. Filter rows; an emptied result is answered, not deferred
//   4. Help, listing, scalar or grouped answer
// ============================================================================

var (
	chartWordsRe = regexp.MustCompile(`\b(?:chart|charts|graph|graphs|plot|plots|visuali[sz]e)\b`)
	listWordRe   = regexp.MustCompile(`\blist\b`)
	statsRe      = regexp.MustCompile(`\b(?:all|summary|summarize|stats|statistics)\b`)
	minWordRe    = regexp.MustCompile(`\b(?:min|minimum|lowest|least|smallest)\b`)
	maxWordRe    = regexp.MustCompile(`\b(?:max|maximum|highest|largest|biggest)\b`)
	avgWordRe    = regexp.MustCompile(`\b(?:avg|average|mean)\b`)
	yearRe       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	shareRe      = regexp.MustCompile(`\b(?:share|distribution|proportion|percentage|composition)\b`)
	bottomRe     = regexp.MustCompile(`\b(?:bottom|worst)\s+\d+\b`)

	winnerHighRe = regexp.MustCompile(`^(?:which|what|who)\b.*\b(?:highest|most|max|maximum|largest|biggest|top|best)\b`)
	winnerLowRe  = regexp.MustCompile(`^(?:which|what|who)\b.*\b(?:lowest|least|smallest|min|minimum|worst)\b`)
)

var (
	// interrogativePrefixes open questions that want a sentence, not a chart.
	interrogativePrefixes = []string{"which", "what", "who", "list", "tell", "give"}
	displayPrefixes       = []string{"show", "display", "plot", "visualize", "visualise"}

	// dimensionHints name columns that make good default groupings.
	dimensionHints = []string{
		"category", "region", "segment", "product", "type", "department",
		"country", "city", "state", "channel",
	}
)

// maxAutoDimensionLength caps the sampled cell length of an auto-picked
// dimension; long free text makes a poor axis.
const maxAutoDimensionLength = 40

// Analyze answers query over rows. prev is the Context of the previous turn
// (nil for the first). A nil Response means the engine declines and the
// caller should defer to a general assistant.
func Analyze(query string, rows []dataset.Row, prev *intent.Context, opts ...Option) *Response {
	if len(rows) == 0 {
		return nil
	}
	return AnalyzeView(query, dataset.NewSliceView(rows), prev, opts...)
}

// AnalyzeView is Analyze over any dataset.View.
func AnalyzeView(query string, view dataset.View, prev *intent.Context, opts ...Option) *Response {
	if view == nil || view.Len() == 0 || !intent.IsAnalyticalOver(query, view.Columns()) {
		return nil
	}
	cfg := applyOptions(opts)
	q := intent.NewQuery(query, view, prev)

	in := intent.ExtractQuery(q, func(pass string, in intent.Intent) {
		cfg.Logger.Debug("intent pass",
			slog.String("pass", pass),
			slog.String("metric", in.Metric),
			slog.String("dimension", in.Dimension),
			slog.String("aggregation", string(in.Aggregation)),
			slog.String("chart", string(in.ChartType)),
			slog.Any("filters", in.Filters),
			slog.Int("limit", in.Limit))
	})

	a := &analysis{cfg: cfg, q: q, in: in, view: view}
	resp := a.run()
	if resp != nil {
		cfg.Logger.Debug("analyzed",
			slog.String("query", q.Text),
			slog.String("chart", string(resp.ChartType)),
			slog.Int("groups", len(resp.Data)))
	} else {
		cfg.Logger.Debug("declined", slog.String("query", q.Text))
	}
	return resp
}

// analysis carries one evaluation; it never outlives the Analyze call.
type analysis struct {
	cfg      *config
	q        *intent.Query
	in       intent.Intent
	view     dataset.View
	filtered dataset.View
}

func (a *analysis) run() *Response {
	a.filtered = ApplyFilters(a.view, a.in.Filters)
	if len(a.in.Filters) > 0 && a.filtered.Len() == 0 {
		return a.text(BuildNoMatch(a.in.Filters))
	}

	if intent.IsMetaQuery(a.q.Text) {
		return a.text(BuildGuidance(a.view, intent.IsChartMetaQuery(a.q.Text)))
	}

	if a.isListing() {
		limit := a.in.Limit
		if limit == 0 {
			limit = a.cfg.ListCap
		}
		values := dataset.DistinctValues(a.filtered, a.in.Dimension)
		return a.text(BuildListing(a.in.Dimension, values, limit))
	}

	if a.in.Dimension == "" && a.wantsAutoDimension() {
		a.in.Dimension = a.autoDimension()
	}
	if a.in.Dimension == "" {
		return a.scalar()
	}
	return a.grouped()
}

// text wraps a narrative-only answer.
func (a *analysis) text(answer string) *Response {
	return &Response{Answer: answer, Intent: a.in, Context: a.in.Context()}
}

// ============================================================================
// LISTING / AUTO-DIMENSION
// ============================================================================

func (a *analysis) isListing() bool {
	in := a.in
	return in.Dimension != "" &&
		a.q.Has(listWordRe) &&
		!a.q.Has(chartWordsRe) &&
		in.ChartType == "" &&
		(in.Metric == "" || in.Metric == in.Dimension)
}

// wantsAutoDimension reports a chart-style request that named no grouping.
func (a *analysis) wantsAutoDimension() bool {
	if a.in.ChartType != "" || a.q.Has(chartWordsRe) {
		return true
	}
	if a.in.Aggregation == intent.Count && a.in.Metric == "" {
		return false
	}
	_, explicit := intent.DetectAggregation(a.q.Text)
	return a.in.Metric != "" && a.q.HasPrefix(displayPrefixes...) && !explicit
}

// autoDimension picks a grouping column: a time-like column first, then a
// conventionally named one, then the first short categorical column.
func (a *analysis) autoDimension() string {
	usable := func(c string) bool {
		return c != a.in.Metric && !a.in.HasFilter(c) && !dataset.IsIDColumn(c) && !dataset.IsURLColumn(a.view, c)
	}
	for _, c := range a.q.Columns {
		if usable(c) && dataset.IsTimeLikeColumn(a.view, c) {
			return c
		}
	}
	for _, hint := range dimensionHints {
		for _, c := range a.q.Columns {
			if usable(c) && !a.q.IsNumeric(c) && strings.Contains(strings.ToLower(c), hint) {
				return c
			}
		}
	}
	for _, c := range a.q.Columns {
		if usable(c) && !a.q.IsNumeric(c) && dataset.MaxSampleLength(a.view, c) <= maxAutoDimensionLength {
			return c
		}
	}
	return ""
}

// firstMeasure returns the first numeric, non-ID column outside exclude.
func (a *analysis) firstMeasure(exclude ...string) string {
	for _, c := range a.q.Columns {
		if !a.q.IsNumeric(c) || dataset.IsIDColumn(c) || dataset.IsTimeLikeColumn(a.view, c) {
			continue
		}
		if !slices.Contains(exclude, c) {
			return c
		}
	}
	return ""
}

// ============================================================================
// SCALAR BRANCH
// ============================================================================

func (a *analysis) scalar() *Response {
	in := &a.in
	if in.Aggregation == intent.Count && in.Metric == "" {
		resp := a.text(BuildCount(a.filtered.Len(), in.Filters))
		resp.Data = []dataset.Row{{ValueColumn(""): float64(a.filtered.Len())}}
		return resp
	}
	if in.Metric == "" {
		in.Metric = a.firstMeasure()
		if in.Metric == "" {
			return nil
		}
	}

	year := yearRe.FindString(a.q.Text)
	var answer string
	switch {
	case a.q.Has(statsRe) || (a.q.Has(minWordRe) && a.q.Has(maxWordRe) && a.q.Has(avgWordRe)):
		answer = BuildStats(a.filtered, in.Metric)
	case a.q.Has(minWordRe) && a.q.Has(maxWordRe):
		answer = BuildMinMax(a.filtered, in.Metric, year)
	default:
		value := ScalarAggregate(a.filtered, in.Metric, in.Aggregation)
		answer = BuildScalar(in.Aggregation, in.Metric, value, year, in.Filters)
		resp := a.text(answer)
		resp.Data = []dataset.Row{{in.Metric: value}}
		return resp
	}
	return a.text(answer)
}

// ============================================================================
// GROUPED BRANCH
// ============================================================================

func (a *analysis) grouped() *Response {
	in := &a.in
	dim := in.Dimension
	if in.Metric == dim {
		in.Metric = ""
	}

	if in.Metric == "" && in.Aggregation != intent.Count {
		in.Metric = a.firstMeasure(dim, in.Dimension2)
		if in.Metric == "" {
			wantsChart := in.ChartType != "" || a.q.Has(chartWordsRe)
			if !wantsChart && in.Aggregation != intent.Max && in.Aggregation != intent.Min {
				return nil
			}
			in.Aggregation = intent.Count
		}
	}

	timeLike := dataset.IsTimeLikeColumn(a.view, dim)
	chartType := in.ChartType
	if chartType == "" && (timeLike || !a.q.HasPrefix(interrogativePrefixes...)) {
		switch {
		case timeLike:
			chartType = intent.Line
		case a.q.Has(shareRe):
			chartType = intent.Pie
		default:
			chartType = intent.Bar
		}
	}
	in.ChartType = chartType

	dims := []string{dim}
	if d2 := in.Dimension2; d2 != "" && d2 != dim && d2 != in.Metric {
		dims = append(dims, d2)
	}
	valueCol := ValueColumn(in.Metric)
	rows := dropEmpty(GroupAggregate(a.filtered, dims, in.Metric, in.Aggregation), valueCol)
	if len(rows) == 0 {
		return a.text("No data to summarize.")
	}

	timeSeries := timeLike && (chartType == intent.Line || chartType == intent.Area ||
		chartType == intent.ThemeRiver)
	order := chart.SortValueDesc
	switch {
	case timeSeries:
		order = chart.SortChronological
		sort.SliceStable(rows, func(i, j int) bool { return chronoLess(rows[i][dim], rows[j][dim]) })
	case a.q.Has(bottomRe):
		order = chart.SortValueAsc
		sort.SliceStable(rows, func(i, j int) bool { return CompareValues(rows[i][valueCol], rows[j][valueCol]) < 0 })
	default:
		sort.SliceStable(rows, func(i, j int) bool { return CompareValues(rows[i][valueCol], rows[j][valueCol]) > 0 })
	}

	limit := in.Limit
	if limit == 0 {
		limit = a.cfg.DefaultLimit
	}
	descending := order == chart.SortValueDesc
	single := in.Limit <= 1

	var answer string
	switch {
	case timeSeries:
		answer = BuildTrend(rows, dim, valueCol, in.Aggregation)
	case single && a.q.Has(winnerHighRe):
		best := rows[0]
		if !descending {
			best = highest(rows, valueCol)
		}
		answer = BuildWinner(best, dims, valueCol, in.Aggregation, false)
	case single && a.q.Has(winnerLowRe):
		worst := rows[len(rows)-1]
		if !descending {
			worst = rows[0]
		}
		answer = BuildWinner(worst, dims, valueCol, in.Aggregation, true)
	default:
		answer = BuildRanking(rows, dims, valueCol, in.Aggregation, limit, descending && a.q.Has(minWordRe))
	}

	resp := &Response{
		Answer: answer,
		Data:   rows,
		Table:  BuildTable(chartTitle(in.Aggregation, valueCol, dim), rows, dims, valueCol, in.Aggregation),
	}
	if chartType != "" {
		plan := chartPlan{
			chartType:  chartType,
			dimension:  dim,
			valueCol:   valueCol,
			agg:        in.Aggregation,
			timeSeries: timeSeries,
			order:      order,
			limit:      limit,
		}
		if len(dims) > 1 {
			plan.dimension2 = dims[1]
		}
		if cfg := buildChart(plan, rows); cfg != nil {
			resp.Chart = cfg
			resp.ChartTitle = cfg.Title
			resp.ChartType = cfg.ChartType
		}
	}
	resp.Intent = a.in
	resp.Context = a.in.Context()
	return resp
}

// dropEmpty discards groups whose aggregate is missing or not a number.
func dropEmpty(rows []dataset.Row, valueCol string) []dataset.Row {
	out := rows[:0]
	for _, r := range rows {
		v := r[valueCol]
		if dataset.IsEmpty(v) {
			continue
		}
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func highest(rows []dataset.Row, valueCol string) dataset.Row {
	best := rows[0]
	for _, r := range rows[1:] {
		if CompareValues(r[valueCol], best[valueCol]) > 0 {
			best = r
		}
	}
	return best
}

// chronoLess orders period labels by parsed date, falling back to value order
// so numeric years and plain text still sort.
func chronoLess(a, b any) bool {
	ta, okA := dataset.ParseDate(a)
	tb, okB := dataset.ParseDate(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return CompareValues(a, b) < 0
}
