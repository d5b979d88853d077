package fallback

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spektr-org/askdata/schema"
)

// ============================================================================
// PROMPT BUILDER: Schema-driven context for general questions
// ============================================================================
// Total data sent: the question plus column metadata, typically well under
// 2KB. Sample values are capped per column.
// ============================================================================

// maxPromptSamples caps the sample values listed per dimension.
const maxPromptSamples = 5

// Summary is the machine-readable dataset description embedded in the prompt.
type Summary struct {
	Name        string              `json:"name,omitempty"`
	RecordCount int                 `json:"recordCount"`
	Columns     map[string]string   `json:"columns"`              // column → kind
	Dimensions  map[string][]string `json:"dimensions,omitempty"` // dimension → sample values
}

// Summarize reduces a schema to its prompt summary.
func Summarize(sch schema.Config) Summary {
	s := Summary{
		Name:        sch.Name,
		RecordCount: sch.RowCount,
		Columns:     make(map[string]string, len(sch.Columns)),
		Dimensions:  make(map[string][]string, len(sch.Dimensions)),
	}
	for _, c := range sch.Columns {
		s.Columns[c.Name] = string(c.Kind)
	}
	for _, d := range sch.Dimensions {
		samples := d.SampleValues
		if len(samples) > maxPromptSamples {
			samples = samples[:maxPromptSamples]
		}
		s.Dimensions[d.Key] = samples
	}
	return s
}

// BuildPrompt renders the full prompt for one question.
func BuildPrompt(question string, sch *schema.Config, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a helpful data assistant inside a command-line analytics tool.

CURRENT DATE: %s

YOUR ROLE:
Answer the user's question in a few plain sentences. The tool's own engine already
declined this question, so it is likely general or conceptual.
You cannot see the data rows. Never invent figures; if the answer needs values
computed from the data, say which question the user could ask the tool instead.

`, now.Format("2006-01-02"))

	if sch != nil {
		summary, _ := json.MarshalIndent(Summarize(*sch), "", "  ")
		fmt.Fprintf(&b, "DATA SUMMARY (metadata only, not actual values):\n%s\n\n", summary)

		b.WriteString("DATA MODEL:\n")
		b.WriteString(describeDimensions(*sch))
		b.WriteString(describeMeasures(*sch))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "USER QUESTION: %s\n\nRespond in plain text, no markdown:", question)
	return b.String()
}

func describeDimensions(sch schema.Config) string {
	if len(sch.Dimensions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("DIMENSIONS (grouping and filtering):\n")
	for _, d := range sch.Dimensions {
		fmt.Fprintf(&b, "- %q", d.Key)
		if d.Parent != "" {
			fmt.Fprintf(&b, " (child of %q)", d.Parent)
		}
		if d.IsTemporal {
			b.WriteString(" [temporal]")
		}
		if d.IsCurrencyCode {
			b.WriteString(" [currency code]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeMeasures(sch schema.Config) string {
	var b strings.Builder
	for _, m := range sch.Measures {
		if m.IsSynthetic {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("MEASURES (numeric, aggregatable):\n")
		}
		fmt.Fprintf(&b, "- %q", m.Key)
		if m.Unit != "" {
			fmt.Fprintf(&b, " [unit: %s]", m.Unit)
		}
		if m.DefaultAggregation != "" {
			fmt.Fprintf(&b, " default: %s", m.DefaultAggregation)
		}
		b.WriteString("\n")
	}
	return b.String()
}
