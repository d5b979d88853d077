package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// REGISTRY: dataSourceID → Source, with transparent pagination
// ============================================================================

// Registry maps data source ids to sources. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	opts    options
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		sources: make(map[string]Source),
		opts:    applyOptions(opts),
	}
}

// Register adds or replaces a source under id.
func (r *Registry) Register(id string, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[id] = src
}

// Get returns the source registered under id.
func (r *Registry) Get(id string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return src, nil
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load fetches every page of a source, up to the registry's row cap.
func (r *Registry) Load(ctx context.Context, id string) ([]dataset.Row, error) {
	src, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	var rows []dataset.Row
	for offset := 0; offset < r.opts.maxRows; {
		limit := min(r.opts.pageSize, r.opts.maxRows-offset)
		batch, err := src.Fetch(ctx, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("load %q at offset %d: %w", id, offset, err)
		}
		rows = append(rows, batch...)
		offset += len(batch)
		if len(batch) < limit {
			break
		}
	}
	r.opts.logger.Debug("loaded data source", slog.String("id", id), slog.Int("rows", len(rows)))
	return rows, nil
}

// LoadView loads a source and keeps its column order when the source
// knows it.
func (r *Registry) LoadView(ctx context.Context, id string) (dataset.View, error) {
	rows, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	src, _ := r.Get(id)
	if c, ok := src.(Columnar); ok && len(c.Columns()) > 0 {
		return dataset.NewSliceViewWithColumns(rows, c.Columns()), nil
	}
	return dataset.NewSliceView(rows), nil
}

// Close closes every registered source that holds a resource.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for id, src := range r.sources {
		c, ok := src.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %q: %w", id, err)
		}
	}
	return firstErr
}

// ============================================================================
// OPEN: Spec → Source
// ============================================================================

// Open builds a Source from a configured Spec.
func Open(ctx context.Context, spec Spec, opts ...Option) (Source, error) {
	o := applyOptions(opts)
	var (
		src Source
		err error
	)
	switch spec.Kind {
	case KindCSV:
		src, err = OpenCSVFile(spec.Path)
	case KindJSON:
		src, err = OpenJSONFile(spec.Path)
	case KindSQLite:
		src, err = OpenSQL(ctx, "sqlite", spec.Path, spec.Table, o.logger)
	case KindPG:
		src, err = OpenSQL(ctx, "pgx", spec.DSN, spec.Table, o.logger)
	case KindMySQL:
		src, err = OpenSQL(ctx, "mysql", spec.DSN, spec.Table, o.logger)
	default:
		return nil, fmt.Errorf("%q: %w", spec.Kind, ErrUnsupportedKind)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// OpenAll opens every spec and registers it. Sources opened before a
// failure stay registered so the caller can Close the registry.
func (r *Registry) OpenAll(ctx context.Context, specs []Spec) error {
	for _, spec := range specs {
		src, err := Open(ctx, spec, WithLogger(r.opts.logger))
		if err != nil {
			return fmt.Errorf("open source %q: %w", spec.ID, err)
		}
		r.Register(spec.ID, src)
	}
	return nil
}
