package chart

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// CHART COMPILER: Recommendation + aggregated rows → Config
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

var supported = map[intent.ChartType]bool{
	intent.Bar: true, intent.Line: true, intent.Pie: true, intent.Area: true,
	intent.Scatter: true, intent.Radar: true, intent.Funnel: true, intent.Gauge: true,
	intent.Heatmap: true, intent.Treemap: true, intent.Sunburst: true, intent.Sankey: true,
	intent.Waterfall: true, intent.ThemeRiver: true, intent.PolarBar: true, intent.PictorialBar: true,
}

// gridless chart families have no cartesian axes.
var gridless = map[intent.ChartType]bool{
	intent.Pie: true, intent.Radar: true, intent.Funnel: true, intent.Gauge: true,
	intent.Treemap: true, intent.Sunburst: true, intent.Sankey: true, intent.PolarBar: true,
}

const (
	unknownLabel  = "Unknown"
	breakdownJoin = " / "
)

// Compile turns a recommendation and its aggregated rows into a Config.
// Unknown chart types fall back to bar. It returns nil when there is nothing
// to draw.
func Compile(rec Recommendation, rows []dataset.Row, order SortOrder) *Config {
	if len(rows) == 0 || rec.XAxis == "" {
		return nil
	}
	chartType := rec.Type
	if !supported[chartType] {
		chartType = intent.Bar
	}
	title := rec.Title
	if title == "" {
		title = DefaultTitle(rec.YAxis, rec.XAxis)
	}

	c := &compiler{rec: rec, rows: sortRows(rows, rec, order)}
	cfg := &Config{
		ChartType:  chartType,
		Title:      title,
		XAxis:      rec.XAxis,
		YAxis:      rec.YAxis,
		ShowLegend: true,
		ShowGrid:   !gridless[chartType],
		Stacked:    rec.Stacked,
		Tooltip:    "{label}: {value}",
	}

	switch chartType {
	case intent.Pie:
		cfg.Series = []Series{c.totalsSeries(chartType)}
	case intent.Funnel:
		s := c.totalsSeries(chartType)
		sort.SliceStable(s.Data, func(i, j int) bool { return s.Data[i].Value > s.Data[j].Value })
		cfg.Series = []Series{s}
	case intent.Waterfall:
		cfg.Series = []Series{c.waterfallSeries()}
	case intent.Gauge:
		c.compileGauge(cfg)
	case intent.Radar:
		c.compileRadar(cfg)
	case intent.Heatmap:
		c.compileHeatmap(cfg)
	case intent.Treemap, intent.Sunburst:
		cfg.Tree = c.tree()
	case intent.Sankey:
		c.compileSankey(cfg)
	case intent.ThemeRiver:
		cfg.Stacked = true
		c.compileCartesian(cfg, chartType)
	default:
		c.compileCartesian(cfg, chartType)
	}

	n := len(cfg.Series)
	if chartType == intent.Pie || chartType == intent.Funnel {
		n = len(cfg.Series[0].Data)
	}
	cfg.Colors = assignColors(n)
	for i := range cfg.Series {
		if len(cfg.Series) > 1 {
			cfg.Series[i].Color = defaultColors[i%len(defaultColors)]
		}
	}
	return cfg
}

// DefaultTitle builds a title such as "Sales By Category".
func DefaultTitle(yAxis, xAxis string) string {
	y := humanize(yAxis)
	if y == "" {
		y = "count"
	}
	return cases.Title(language.English).String(y + " by " + humanize(xAxis))
}

func humanize(column string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(column)), " ")
}

// ============================================================================
// ROW ACCESS
// ============================================================================

type compiler struct {
	rec  Recommendation
	rows []dataset.Row
}

func (c *compiler) label(row dataset.Row) string {
	return cellLabel(row, c.rec.XAxis)
}

func (c *compiler) value(row dataset.Row) float64 {
	v, _ := dataset.ToNumber(row[c.rec.YAxis])
	return v
}

// subKey joins the breakdown values of a row; "" when there is no breakdown.
func (c *compiler) subKey(row dataset.Row) string {
	if len(c.rec.BreakdownDimensions) == 0 {
		return ""
	}
	parts := make([]string, len(c.rec.BreakdownDimensions))
	for i, d := range c.rec.BreakdownDimensions {
		parts[i] = cellLabel(row, d)
	}
	return strings.Join(parts, breakdownJoin)
}

func (c *compiler) hasBreakdown() bool { return len(c.rec.BreakdownDimensions) > 0 }

func (c *compiler) seriesName() string {
	if c.rec.YAxis == "" {
		return "Count"
	}
	return cases.Title(language.English).String(humanize(c.rec.YAxis))
}

// pivot returns x categories and sub-keys in first-seen order with summed values.
func (c *compiler) pivot() (cats, keys []string, values map[[2]string]float64) {
	values = make(map[[2]string]float64)
	seenCat, seenKey := map[string]bool{}, map[string]bool{}
	for _, row := range c.rows {
		cat, key := c.label(row), c.subKey(row)
		if !seenCat[cat] {
			seenCat[cat] = true
			cats = append(cats, cat)
		}
		if !seenKey[key] {
			seenKey[key] = true
			keys = append(keys, key)
		}
		values[[2]string{cat, key}] += c.value(row)
	}
	return cats, keys, values
}

func cellLabel(row dataset.Row, column string) string {
	if s := dataset.ValueString(row[column]); s != "" {
		return s
	}
	return unknownLabel
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func (c *compiler) compileCartesian(cfg *Config, chartType intent.ChartType) {
	cats, keys, values := c.pivot()
	cfg.Categories = cats
	if !c.hasBreakdown() {
		points := make([]Point, 0, len(c.rows))
		for _, row := range c.rows {
			points = append(points, Point{Label: c.label(row), Value: round2(c.value(row))})
		}
		cfg.Categories = labels(points)
		cfg.Series = []Series{{Name: c.seriesName(), Type: chartType, Data: points}}
		return
	}
	for _, key := range keys {
		s := Series{Name: key, Type: chartType, Data: make([]Point, 0, len(cats))}
		if cfg.Stacked {
			s.Stack = "total"
		}
		for _, cat := range cats {
			s.Data = append(s.Data, Point{Label: cat, Value: round2(values[[2]string{cat, key}])})
		}
		cfg.Series = append(cfg.Series, s)
	}
}

// totalsSeries collapses any breakdown into one value per category.
func (c *compiler) totalsSeries(chartType intent.ChartType) Series {
	cats, keys, values := c.pivot()
	points := make([]Point, 0, len(cats))
	for _, cat := range cats {
		var total float64
		for _, key := range keys {
			total += values[[2]string{cat, key}]
		}
		points = append(points, Point{Label: cat, Value: round2(total)})
	}
	return Series{Name: c.seriesName(), Type: chartType, Data: points}
}

func (c *compiler) waterfallSeries() Series {
	s := c.totalsSeries(intent.Waterfall)
	var running float64
	for i := range s.Data {
		s.Data[i].Base = round2(running)
		running += s.Data[i].Value
	}
	return s
}

func (c *compiler) compileGauge(cfg *Config) {
	s := c.totalsSeries(intent.Gauge)
	var peak float64
	for _, p := range s.Data {
		peak = math.Max(peak, p.Value)
	}
	first := s.Data[0]
	cfg.Gauge = &Gauge{Name: first.Label, Value: first.Value, Min: 0, Max: niceCeil(peak)}
	cfg.Series = []Series{{Name: s.Name, Type: intent.Gauge, Data: s.Data[:1]}}
}

func (c *compiler) compileRadar(cfg *Config) {
	cats, keys, values := c.pivot()
	var peak float64
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	scale := niceCeil(peak)
	for _, cat := range cats {
		cfg.Indicators = append(cfg.Indicators, Indicator{Name: cat, Max: scale})
	}
	for _, key := range keys {
		name := key
		if name == "" {
			name = c.seriesName()
		}
		s := Series{Name: name, Type: intent.Radar}
		for _, cat := range cats {
			s.Data = append(s.Data, Point{Label: cat, Value: round2(values[[2]string{cat, key}])})
		}
		cfg.Series = append(cfg.Series, s)
	}
}

func (c *compiler) compileHeatmap(cfg *Config) {
	cats, keys, values := c.pivot()
	cfg.Categories = cats
	cfg.YCategories = keys
	if !c.hasBreakdown() {
		cfg.YCategories = []string{c.seriesName()}
	}
	s := Series{Name: c.seriesName(), Type: intent.Heatmap}
	for y, key := range keys {
		for x, cat := range cats {
			v, ok := values[[2]string{cat, key}]
			if !ok {
				continue
			}
			s.Data = append(s.Data, Point{Label: cat, Value: round2(v), X: x, Y: y})
		}
	}
	cfg.Series = []Series{s}
}

func (c *compiler) tree() []TreeNode {
	cats, keys, values := c.pivot()
	nodes := make([]TreeNode, 0, len(cats))
	for _, cat := range cats {
		n := TreeNode{Name: cat}
		for _, key := range keys {
			v, ok := values[[2]string{cat, key}]
			if !ok {
				continue
			}
			n.Value += v
			if key != "" {
				n.Children = append(n.Children, TreeNode{Name: key, Value: round2(v)})
			}
		}
		n.Value = round2(n.Value)
		nodes = append(nodes, n)
	}
	return nodes
}

func (c *compiler) compileSankey(cfg *Config) {
	cats, keys, values := c.pivot()
	seen := map[string]bool{}
	addNode := func(name string) {
		if !seen[name] {
			seen[name] = true
			cfg.Nodes = append(cfg.Nodes, Node{Name: name})
		}
	}
	if !c.hasBreakdown() {
		source := c.seriesName()
		addNode(source)
		for _, cat := range cats {
			addNode(cat)
			cfg.Links = append(cfg.Links, Link{Source: source, Target: cat, Value: round2(values[[2]string{cat, ""}])})
		}
		return
	}
	for _, cat := range cats {
		addNode(cat)
	}
	for _, key := range keys {
		addNode(key)
	}
	for _, cat := range cats {
		for _, key := range keys {
			if v, ok := values[[2]string{cat, key}]; ok && cat != key {
				cfg.Links = append(cfg.Links, Link{Source: cat, Target: key, Value: round2(v)})
			}
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// sortRows returns a sorted copy; the caller's slice is never reordered.
func sortRows(rows []dataset.Row, rec Recommendation, order SortOrder) []dataset.Row {
	out := make([]dataset.Row, len(rows))
	copy(out, rows)
	value := func(r dataset.Row) float64 {
		v, _ := dataset.ToNumber(r[rec.YAxis])
		return v
	}
	switch order {
	case SortValueDesc:
		sort.SliceStable(out, func(i, j int) bool { return value(out[i]) > value(out[j]) })
	case SortValueAsc:
		sort.SliceStable(out, func(i, j int) bool { return value(out[i]) < value(out[j]) })
	case SortChronological:
		sort.SliceStable(out, func(i, j int) bool {
			return chronoLess(out[i][rec.XAxis], out[j][rec.XAxis])
		})
	}
	return out
}

func chronoLess(a, b any) bool {
	ta, okA := dataset.ParseDate(a)
	tb, okB := dataset.ParseDate(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return dataset.ValueString(a) < dataset.ValueString(b)
}

func labels(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// niceCeil rounds v up to one significant digit (734 → 800).
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(v)))
	if mag*10 <= v {
		mag *= 10
	}
	return math.Ceil(v/mag-1e-9) * mag
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
