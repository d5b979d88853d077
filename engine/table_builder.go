package engine

import (
	"fmt"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/intent"
)

// ============================================================================
// TABLE BUILDER: Produces TableData from aggregated rows
// ============================================================================

// BuildTable renders aggregated rows as a table: one text column per
// dimension and a right-aligned value column. Sum and count results carry a
// total row.
func BuildTable(title string, rows []dataset.Row, dimensions []string, valueCol string, agg intent.Aggregation) *TableData {
	columns := make([]Column, 0, len(dimensions)+1)
	for _, d := range dimensions {
		columns = append(columns, Column{Key: d, Label: LabelForColumn(d), Type: "text", Align: "left"})
	}
	columns = append(columns, Column{
		Key:   valueCol,
		Label: fmt.Sprintf("%s %s", LabelForAggregation(agg), LabelForColumn(valueCol)),
		Type:  "number",
		Align: "right",
	})
	if agg == intent.Count {
		columns[len(columns)-1].Label = "Count"
	}

	table := &TableData{
		Title:   title,
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
	}

	var total float64
	for _, r := range rows {
		cells := make([]string, 0, len(columns))
		for _, d := range dimensions {
			cells = append(cells, dataset.ValueString(r[d]))
		}
		cells = append(cells, FormatValue(r[valueCol]))
		table.Rows = append(table.Rows, cells)
		if f, ok := r[valueCol].(float64); ok {
			total += f
		}
	}

	if agg == intent.Sum || agg == intent.Count {
		table.Summary = &Summary{
			Label:  fmt.Sprintf("Total (%d groups)", len(rows)),
			Values: map[string]string{valueCol: FormatNumber(total)},
		}
	}
	return table
}
