package engine

import (
	"sort"
	"strings"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// FILTERS: Equality filtering via dataset.View
// ============================================================================
// Single pass: checks every column constraint per row in one loop.
// Returns a SubView (index list into parent), never a copy.
// ============================================================================

// ApplyFilters returns a view of rows whose columns equal every filter value,
// compared case-insensitively. An empty filter set returns view unchanged.
func ApplyFilters(view dataset.View, filters map[string]string) dataset.View {
	if len(filters) == 0 {
		return view
	}

	columns := make([]string, 0, len(filters))
	want := make(map[string]string, len(filters))
	for col, val := range filters {
		columns = append(columns, col)
		want[col] = strings.ToLower(strings.TrimSpace(val))
	}
	sort.Strings(columns)

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, col := range columns {
			if strings.ToLower(dataset.ValueString(view.Value(i, col))) != want[col] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return dataset.NewSubView(view, indices)
}
