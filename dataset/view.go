package dataset

// ============================================================================
// VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns caller data. It reads through this interface.
//
// Implementations:
//   SliceView      - wraps []Row (CSV, JSON, SQL sources)
//   DomainView[T]  - reads typed structs via accessor functions (zero-copy)
//   SubView        - filtered subset (indices into parent, zero-copy)
//
// Callers must not mutate the underlying rows while a query is running.
// ============================================================================

// Row is one dataset record: column name → dynamically typed cell value.
// Values are numbers, strings, bools, nil, or date-like strings.
type Row map[string]any

// View provides indexed, read-only access to a dataset.
// The engine calls Value in tight loops - keep implementations fast.
type View interface {
	Len() int
	Value(index int, column string) any
	Columns() []string // column names in first-seen order
}

// ============================================================================
// SLICE VIEW: wraps []Row
// ============================================================================

// SliceView wraps a []Row slice as a View.
type SliceView struct {
	rows    []Row
	columns []string
}

// NewSliceView creates a View from a []Row slice.
// Column order is the sorted key order of the first row, followed by any
// keys first seen in later rows.
func NewSliceView(rows []Row) View {
	v := &SliceView{rows: rows}
	v.cacheColumns()
	return v
}

// NewSliceViewWithColumns creates a View with an explicit column order,
// typically the header order of the source file or table.
func NewSliceViewWithColumns(rows []Row, columns []string) View {
	return &SliceView{rows: rows, columns: columns}
}

func (v *SliceView) cacheColumns() {
	seen := make(map[string]bool)
	for _, r := range v.rows {
		for _, k := range sortedKeys(r) {
			if !seen[k] {
				seen[k] = true
				v.columns = append(v.columns, k)
			}
		}
	}
}

func (v *SliceView) Len() int { return len(v.rows) }

func (v *SliceView) Value(i int, column string) any {
	if i < 0 || i >= len(v.rows) {
		return nil
	}
	return v.rows[i][column]
}

func (v *SliceView) Columns() []string { return v.columns }

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent View.
// Holds indices into the parent - no data copy.
type SubView struct {
	parent  View
	indices []int
}

// NewSubView returns a view over the given parent indices.
func NewSubView(parent View, indices []int) View {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, column string) any {
	if i < 0 || i >= len(v.indices) {
		return nil
	}
	return v.parent.Value(v.indices[i], column)
}

func (v *SubView) Columns() []string { return v.parent.Columns() }

// Rows materializes a view into a fresh []Row.
func Rows(v View) []Row {
	cols := v.Columns()
	out := make([]Row, v.Len())
	for i := range out {
		r := make(Row, len(cols))
		for _, c := range cols {
			if val := v.Value(i, c); val != nil {
				r[c] = val
			}
		}
		out[i] = r
	}
	return out
}

// ============================================================================
// DOMAIN ADAPTER: Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := dataset.NewDomainAdapter[Order]().
//	    Column("region", func(o Order) any { return o.Region }).
//	    Column("sales", func(o Order) any { return o.Total })
//
//	view := adapter.Bind(orders)
//	resp := engine.AnalyzeView("sales by region", view, nil)
//
// ============================================================================

// DomainAdapter builds a View from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	order []string
	cols  map[string]func(T) any
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{cols: make(map[string]func(T) any)}
}

// Column registers a column accessor.
func (a *DomainAdapter[T]) Column(name string, fn func(T) any) *DomainAdapter[T] {
	if _, exists := a.cols[name]; !exists {
		a.order = append(a.order, name)
	}
	a.cols[name] = fn
	return a
}

// Bind creates a View from a data slice. Zero-copy - holds reference.
func (a *DomainAdapter[T]) Bind(data []T) View {
	return &DomainView[T]{data: data, cols: a.cols, order: a.order}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data  []T
	cols  map[string]func(T) any
	order []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Value(i int, column string) any {
	if i < 0 || i >= len(v.data) {
		return nil
	}
	if fn, ok := v.cols[column]; ok {
		return fn(v.data[i])
	}
	return nil
}

func (v *DomainView[T]) Columns() []string { return v.order }
