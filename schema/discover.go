package schema

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/source"
)

// ============================================================================
// AUTO-DISCOVERY: Heuristic column classification
// ============================================================================
// Inspects a dataset.View and generates a schema.Config automatically.
//
// Classification pipeline per column:
//   1. Sample values → detect type (numeric, date, bool, string)
//   2. Type + cardinality → classify role (dimension, measure, skip)
//   3. Pattern matching → detect special types (link, currency, temporal)
//   4. Add the synthetic record_count measure
//   5. Detect parent/child hierarchies between dimensions
//
// Numeric and date tests go through the dataset package so discovery agrees
// with the engine about what a column is.
// ============================================================================

// ErrNoData is returned when the view has no columns or no rows.
var ErrNoData = errors.New("dataset has no data rows")

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Dataset name override (otherwise inferred)
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// Discover generates a Config by inspecting view.
func Discover(view dataset.View, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if view == nil || view.Len() == 0 || len(view.Columns()) == 0 {
		return nil, ErrNoData
	}

	sampled := head(view, opt.SampleSize)

	headers := view.Columns()
	columns := make([]columnAnalysis, len(headers))
	for i, header := range headers {
		columns[i] = analyzeColumn(sampled, header)
	}

	recoverSet := make(map[string]bool, len(opt.RecoverColumns))
	for _, col := range opt.RecoverColumns {
		recoverSet[strings.ToLower(col)] = true
	}

	config := &Config{
		Name:         opt.Name,
		RowCount:     view.Len(),
		DiscoveredAt: time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	for i := range columns {
		col := &columns[i]
		if col.role == roleSkipped && recoverSet[strings.ToLower(col.header)] {
			col.role = roleDimension
		}

		config.Columns = append(config.Columns, ColumnInfo{
			Name:         col.header,
			Kind:         col.kind,
			Cardinality:  col.uniqueCount,
			Nulls:        col.nullCount,
			SampleValues: col.sampleVals,
		})

		switch col.role {
		case roleDimension:
			config.Dimensions = append(config.Dimensions, col.toDimension())
		case roleMeasure:
			config.Measures = append(config.Measures, col.toMeasure())
		case roleSkipped:
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.header,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
		}
	}

	// every dataset can be counted
	config.Measures = append(config.Measures, MeasureMeta{
		Key:                RecordCountKey,
		DisplayName:        "Record Count",
		IsSynthetic:        true,
		Aggregations:       []string{"count"},
		DefaultAggregation: "count",
	})

	detectHierarchies(config.Dimensions, sampled, columns)

	return config, nil
}

// head returns the first n rows of view, or view itself when n <= 0 or the
// view is already small enough.
func head(view dataset.View, n int) dataset.View {
	if n <= 0 || view.Len() <= n {
		return view
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return dataset.NewSubView(view, indices)
}

// DiscoverFromCSV generates a Config by inspecting CSV data.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	rows, headers, err := source.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV has no data rows")
	}
	config, err := Discover(dataset.NewSliceViewWithColumns(rows, headers), opts...)
	if err != nil {
		return nil, err
	}
	config.DiscoveredFrom = "CSV"
	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleDimension columnRole = iota
	roleMeasure
	roleSkipped
)

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

type columnAnalysis struct {
	header      string
	colType     columnType
	kind        Kind
	role        columnRole
	skipReason  string
	recoverable bool

	// Stats
	uniqueCount int
	totalCount  int
	nullCount   int
	sampleVals  []string

	// Special type detection
	isTemporal      bool
	temporalFormat  string
	isCurrencyCode  bool
	isCoded         bool
	hasDecimals     bool
	hasCurrencySign bool
	hasPercentSign  bool
	cardinalityHint string
}

// analyzeColumn inspects all sampled values in a column and classifies it.
func analyzeColumn(view dataset.View, header string) columnAnalysis {
	col := columnAnalysis{
		header:     header,
		totalCount: view.Len(),
	}

	values := make([]any, 0, view.Len())
	uniqueSet := make(map[string]bool)
	for i := 0; i < view.Len(); i++ {
		v := view.Value(i, header)
		if dataset.IsEmpty(v) {
			col.nullCount++
			continue
		}
		values = append(values, v)
		uniqueSet[dataset.ValueString(v)] = true
	}
	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.kind = KindEmpty
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		return col
	}

	// Collect sample values (up to 10, sorted)
	col.sampleVals = collectSamples(uniqueSet, 10)

	// Step 1: Detect type
	col.colType = detectType(values)

	if col.colType == typeNumeric {
		for _, v := range values {
			s := dataset.ValueString(v)
			col.hasDecimals = col.hasDecimals || strings.Contains(s, ".")
			col.hasCurrencySign = col.hasCurrencySign || strings.ContainsAny(s, "$€£¥")
			col.hasPercentSign = col.hasPercentSign || strings.Contains(s, "%")
		}
	}

	// Step 2: Detect special patterns BEFORE role classification
	switch col.colType {
	case typeString:
		col.isCurrencyCode = detectCurrencyCodes(col.sampleVals)
		col.isTemporal, col.temporalFormat = detectTemporalPattern(col.sampleVals)
	case typeDate:
		col.isTemporal = true
	case typeNumeric:
		col.isTemporal = dataset.TimeLikeName(header)
	}

	// Step 3: Classify role based on type + cardinality
	col.classifyRole(view)

	col.cardinalityHint = cardinalityHint(col.uniqueCount)
	return col
}

func cardinalityHint(distinct int) string {
	switch {
	case distinct <= 10:
		return "low"
	case distinct <= 100:
		return "medium"
	}
	return "high"
}

// skip marks the column as excluded from the schema's dimensions and
// measures.
func (col *columnAnalysis) skip(kind Kind, reason string) {
	if kind != "" {
		col.kind = kind
	}
	col.role = roleSkipped
	col.skipReason = reason
}

// uniquePerRow reports a column whose every value is distinct across more
// than a handful of rows.
func (col *columnAnalysis) uniquePerRow() bool {
	return col.totalCount > 10 && col.uniqueCount == col.totalCount
}

// classifyRole decides between dimension, measure and skipped.
func (col *columnAnalysis) classifyRole(view dataset.View) {
	switch {
	case dataset.IsIDColumn(col.header):
		col.skip(KindIdentifier, "identifier column")
		return
	case dataset.IsURLColumn(view, col.header):
		col.skip(KindURL, "link column, not useful for grouping")
		return
	}

	switch col.colType {
	case typeNumeric:
		col.classifyNumeric()
	case typeDate:
		col.kind, col.role = KindTemporal, roleDimension
	case typeBool:
		col.kind, col.role = KindCategorical, roleDimension
	default:
		col.classifyText()
	}
}

func (col *columnAnalysis) classifyNumeric() {
	col.kind = KindNumeric
	continuous := col.hasDecimals || col.hasCurrencySign || col.hasPercentSign

	switch {
	case col.isTemporal:
		// year or month numbers are periods
		col.kind, col.role = KindTemporal, roleDimension
	case !continuous && col.uniquePerRow():
		col.skip(KindIdentifier, "unique integer per row, likely an ID")
	case continuous:
		col.role = roleMeasure
	case col.uniqueCount < 20 && float64(col.uniqueCount)/float64(col.totalCount) < 0.3:
		// small integer codes such as priority 1-5
		col.role = roleDimension
		col.isCoded = true
	default:
		col.role = roleMeasure
	}
}

func (col *columnAnalysis) classifyText() {
	col.kind = KindCategorical
	if col.isTemporal {
		col.kind = KindTemporal
	}

	switch {
	case col.uniquePerRow():
		col.skip(KindIdentifier, "unique per row, likely an identifier or free text")
	case col.uniqueCount > 50 && col.uniqueCount > col.totalCount/2:
		col.skip("", fmt.Sprintf("high cardinality (%d unique values)", col.uniqueCount))
		col.recoverable = true
	default:
		col.role = roleDimension
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// typeThreshold is the share of non-null values that must agree before a
// column is typed as bool, date or numeric.
const typeThreshold = 0.8

// share returns the fraction of values for which match reports true.
func share[T any](values []T, match func(T) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if match(v) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// detectType picks the type most values agree on. Bool is tested before
// date, and date before numeric.
func detectType(values []any) columnType {
	switch {
	case len(values) == 0:
		return typeString
	case share(values, isBool) >= typeThreshold:
		return typeBool
	case share(values, dataset.IsDateLike) >= typeThreshold:
		return typeDate
	case share(values, dataset.IsNumericValue) >= typeThreshold:
		return typeNumeric
	default:
		return typeString
	}
}

func isBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "false", "yes", "no":
			return true
		}
	}
	return false
}

// ============================================================================
// SPECIAL PATTERN DETECTION
// ============================================================================

// isCurrencyCode reports whether s is an upper-case ISO 4217 code such as
// "USD" or "SGD".
func isCurrencyCode(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 3 || strings.ToUpper(s) != s {
		return false
	}
	_, err := currency.ParseISO(s)
	return err == nil
}

func detectCurrencyCodes(samples []string) bool {
	return share(samples, isCurrencyCode) >= typeThreshold
}

// periodPatterns are textual period labels that are temporal even though
// they do not parse as dates.
var periodPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"},
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},
	{regexp.MustCompile(`^Q[1-4][-\s]\d{4}$`), "QN-yyyy"},
	{regexp.MustCompile(`^(?:19|20)\d{2}$`), "yyyy"},
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},
	{regexp.MustCompile(`^(?:FY)?\d{4}[-/]\d{2}$`), "yyyy/yy"},
}

// detectTemporalPattern returns the first period format most samples match.
func detectTemporalPattern(samples []string) (bool, string) {
	for _, p := range periodPatterns {
		matches := func(s string) bool { return p.re.MatchString(strings.TrimSpace(s)) }
		if share(samples, matches) >= typeThreshold {
			return true, p.format
		}
	}
	return false, ""
}

// ============================================================================
// HIERARCHY DETECTION
// ============================================================================

// detectHierarchies sets Parent on dimensions that roll up into another
// dimension: every child value co-occurs with exactly one parent value and
// the parent has fewer distinct values. Among several candidates the parent
// with the most distinct values wins, being the nearest level up.
func detectHierarchies(dimensions []DimensionMeta, view dataset.View, columns []columnAnalysis) {
	distinct := make(map[string]int, len(columns))
	for _, col := range columns {
		distinct[col.header] = col.uniqueCount
	}

	for i := range dimensions {
		child := dimensions[i].Key
		var best string
		for _, cand := range dimensions {
			parent := cand.Key
			if parent == child || cand.IsTemporal || distinct[parent] >= distinct[child] {
				continue
			}
			if best != "" && distinct[parent] <= distinct[best] {
				continue
			}
			if rollsUp(view, child, parent) {
				best = parent
			}
		}
		if best != "" {
			dimensions[i].Parent = best
		}
	}
}

// rollsUp reports whether child functionally determines parent over the
// non-empty pairs in view, with at least two child values seen.
func rollsUp(view dataset.View, child, parent string) bool {
	parentOf := make(map[string]string)
	for i := range view.Len() {
		c := dataset.ValueString(view.Value(i, child))
		p := dataset.ValueString(view.Value(i, parent))
		if c == "" || p == "" {
			continue
		}
		if prev, seen := parentOf[c]; seen && prev != p {
			return false
		}
		parentOf[c] = p
	}
	return len(parentOf) > 1
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

// toDimension converts a column analysis into DimensionMeta.
func (col *columnAnalysis) toDimension() DimensionMeta {
	return DimensionMeta{
		Key:             col.header,
		DisplayName:     toDisplayName(col.header),
		SampleValues:    col.sampleVals,
		IsTemporal:      col.isTemporal,
		TemporalFormat:  col.temporalFormat,
		IsCurrencyCode:  col.isCurrencyCode,
		IsCoded:         col.isCoded,
		CardinalityHint: col.cardinalityHint,
	}
}

// toMeasure converts a column analysis into MeasureMeta.
func (col *columnAnalysis) toMeasure() MeasureMeta {
	unit := detectUnit(col)
	agg := "sum"
	if unit == "percent" || unit == "points" || unit == "score" {
		agg = "avg"
	}
	return MeasureMeta{
		Key:                col.header,
		DisplayName:        toDisplayName(col.header),
		Unit:               unit,
		Aggregations:       []string{"sum", "avg", "median", "min", "max", "count"},
		DefaultAggregation: agg,
	}
}

var unitHints = []struct {
	unit  string
	words []string
}{
	{"hours", []string{"hour", "hrs"}},
	{"percent", []string{"percent", "pct", "ratio", "rate", "discount"}},
	{"points", []string{"points", "pts"}},
	{"score", []string{"score", "rating"}},
	{"currency", []string{"price", "revenue", "sales", "amount", "cost", "salary", "profit", "spend", "income", "expense"}},
	{"units", []string{"quantity", "qty", "units", "count"}},
}

func detectUnit(col *columnAnalysis) string {
	switch {
	case col.hasPercentSign:
		return "percent"
	case col.hasCurrencySign:
		return "currency"
	}
	name := strings.ToLower(col.header)
	for _, h := range unitHints {
		for _, w := range h.words {
			if strings.Contains(name, w) {
				return h.unit
			}
		}
	}
	return ""
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName turns a header into a label: "story_points" becomes
// "Story Points". Headers that already contain spaces are kept as written.
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// collectSamples returns up to maxSamples distinct values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := slices.Sorted(maps.Keys(uniqueSet))
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
