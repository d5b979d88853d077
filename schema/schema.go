// Package schema describes the shape of a dataset: which columns are
// measures, which are dimensions, and which were skipped. It is
// auto-discovered from a dataset.View and feeds the engine's help answers,
// the CLI's discover command and the fallback prompt.
package schema

// ============================================================================
// SCHEMA: Describes the shape of a dataset
// ============================================================================

// Kind classifies a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindTemporal    Kind = "temporal"
	KindCategorical Kind = "categorical"
	KindIdentifier  Kind = "identifier"
	KindURL         Kind = "url"
	KindEmpty       Kind = "empty"
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name     string `json:"name" yaml:"name"`
	RowCount int    `json:"rowCount" yaml:"rowCount"`

	// Columns lists every column in source order with its classification.
	Columns []ColumnInfo `json:"columns" yaml:"columns"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`

	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty" yaml:"discoveredAt,omitempty"`
}

// ColumnInfo is the per-column summary shown by the discover command.
type ColumnInfo struct {
	Name         string   `json:"name" yaml:"name"`
	Kind         Kind     `json:"kind" yaml:"kind"`
	Cardinality  int      `json:"cardinality" yaml:"cardinality"`
	Nulls        int      `json:"nulls" yaml:"nulls"`
	SampleValues []string `json:"sampleValues,omitempty" yaml:"sampleValues,omitempty"`
}

// DimensionMeta describes a column used for grouping/filtering.
type DimensionMeta struct {
	Key             string   `json:"key" yaml:"key"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	SampleValues    []string `json:"sampleValues" yaml:"sampleValues"`
	Parent          string   `json:"parent,omitempty" yaml:"parent,omitempty"` // Parent dimension key for hierarchies
	IsTemporal      bool     `json:"isTemporal,omitempty" yaml:"isTemporal,omitempty"`
	TemporalFormat  string   `json:"temporalFormat,omitempty" yaml:"temporalFormat,omitempty"`
	IsCurrencyCode  bool     `json:"isCurrencyCode,omitempty" yaml:"isCurrencyCode,omitempty"`
	IsCoded         bool     `json:"isCoded,omitempty" yaml:"isCoded,omitempty"`                 // low-cardinality integers
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric column used for aggregation.
type MeasureMeta struct {
	Key                string   `json:"key" yaml:"key"`
	DisplayName        string   `json:"displayName" yaml:"displayName"`
	Unit               string   `json:"unit,omitempty" yaml:"unit,omitempty"` // "currency", "percent", "hours"
	IsSynthetic        bool     `json:"isSynthetic,omitempty" yaml:"isSynthetic,omitempty"`
	Aggregations       []string `json:"aggregations,omitempty" yaml:"aggregations,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty" yaml:"defaultAggregation,omitempty"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column" yaml:"column"`
	Reason      string `json:"reason" yaml:"reason"`
	Recoverable bool   `json:"recoverable" yaml:"recoverable"` // Can be restored via DiscoverOptions.RecoverColumns
}

// RecordCountKey is the synthetic measure every discovered schema carries.
const RecordCountKey = "record_count"

// DefaultMeasure returns the first real measure's key, or "" when the
// dataset has none.
func (c Config) DefaultMeasure() string {
	for _, m := range c.Measures {
		if !m.IsSynthetic {
			return m.Key
		}
	}
	return ""
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Column returns the summary for name.
func (c Config) Column(name string) (ColumnInfo, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnInfo{}, false
}
