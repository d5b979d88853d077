// Package source loads tabular rows from files and databases into
// []dataset.Row. Every Source pages its data through Fetch; the Registry
// maps data source ids to sources and paginates transparently.
package source

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// SOURCE: Paged row access
// ============================================================================

// ErrNotFound is returned when a data source id is not registered.
var ErrNotFound = errors.New("data source not found")

// ErrUnsupportedKind is returned by Open for an unknown Spec kind.
var ErrUnsupportedKind = errors.New("unsupported data source kind")

// Source returns up to limit rows starting at offset. A short or empty page
// signals the end of the data.
type Source interface {
	Fetch(ctx context.Context, offset, limit int) ([]dataset.Row, error)
}

// Columnar is implemented by sources that know their column order (CSV
// header, SQL result columns).
type Columnar interface {
	Columns() []string
}

// Kind names a source implementation in configuration.
type Kind string

const (
	KindCSV    Kind = "csv"
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
	KindPG     Kind = "postgres"
	KindMySQL  Kind = "mysql"
)

// Spec describes one configured data source.
type Spec struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Kind  Kind   `mapstructure:"kind" yaml:"kind"`
	Path  string `mapstructure:"path" yaml:"path,omitempty"`   // csv, json, sqlite file
	DSN   string `mapstructure:"dsn" yaml:"dsn,omitempty"`     // postgres, mysql
	Table string `mapstructure:"table" yaml:"table,omitempty"` // sql kinds
}

// ============================================================================
// OPTIONS
// ============================================================================

// Option configures a Registry or a source opened through Open.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	pageSize int
	maxRows  int
}

const (
	defaultPageSize = 1000
	defaultMaxRows  = 50000
)

// WithLogger sets the logger for source I/O. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPageSize sets how many rows each Fetch requests.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxRows caps how many rows a Load returns.
func WithMaxRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRows = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger:   slog.New(slog.DiscardHandler),
		pageSize: defaultPageSize,
		maxRows:  defaultMaxRows,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ============================================================================
// STATIC SOURCE
// ============================================================================

// Static serves rows already held in memory.
type Static struct {
	rows    []dataset.Row
	columns []string
}

// NewStatic wraps rows as a Source. columns may be nil.
func NewStatic(rows []dataset.Row, columns []string) *Static {
	return &Static{rows: rows, columns: columns}
}

// Fetch returns the requested page of rows.
func (s *Static) Fetch(ctx context.Context, offset, limit int) ([]dataset.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return page(s.rows, offset, limit), nil
}

// Columns returns the column order, if known.
func (s *Static) Columns() []string { return s.columns }

func page(rows []dataset.Row, offset, limit int) []dataset.Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
