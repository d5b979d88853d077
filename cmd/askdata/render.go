package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/askdata/config"
	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/schema"
)

// ============================================================================
// STYLES
// ============================================================================

// theme is the terminal color scheme.
type theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
}

var defaultTheme = theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

type styles struct {
	Title  lipgloss.Style
	Answer lipgloss.Style
	Help   lipgloss.Style
}

func newStyles(t theme) styles {
	return styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Answer: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

var ui = newStyles(defaultTheme)

// ============================================================================
// STRUCTURED OUTPUT
// ============================================================================

// fallbackOutput is the structured form of a general (non-engine) answer.
type fallbackOutput struct {
	Answer   string `json:"answer" yaml:"answer"`
	Fallback bool   `json:"fallback" yaml:"fallback"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
}

func renderStructured(w io.Writer, v any, format string) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// ============================================================================
// RESPONSE
// ============================================================================

func renderResponse(w io.Writer, resp *engine.Response, format string) error {
	if format != config.OutputText {
		return renderStructured(w, resp, format)
	}

	first, rest, _ := strings.Cut(resp.Answer, "\n")
	_, _ = fmt.Fprintln(w, ui.Answer.Render(first))
	if rest != "" {
		_, _ = fmt.Fprintln(w, rest)
	}

	if resp.Table != nil && len(resp.Table.Rows) > 0 {
		_, _ = fmt.Fprintln(w)
		renderTable(w, resp.Table)
	}
	if resp.HasChart() {
		_, _ = fmt.Fprintln(w, ui.Help.Render(fmt.Sprintf("chart: %s %q (use -o json for the full config)", resp.ChartType, resp.ChartTitle)))
	}
	return nil
}

func renderTable(w io.Writer, td *engine.TableData) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(td.Columns))
	configs := make([]table.ColumnConfig, 0, len(td.Columns))
	for i, c := range td.Columns {
		header[i] = c.Label
		if c.Align == "right" {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignFooter: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, r := range td.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	if td.Summary != nil {
		footer := make(table.Row, len(td.Columns))
		footer[0] = td.Summary.Label
		for i, c := range td.Columns {
			if v, ok := td.Summary.Values[c.Key]; ok {
				footer[i] = v
			}
		}
		t.AppendFooter(footer)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(td.Rows))
}

// renderFallback prints a general answer from the fallback model.
func renderFallback(w io.Writer, answer, model, format string) error {
	if format != config.OutputText {
		return renderStructured(w, fallbackOutput{Answer: answer, Fallback: true, Model: model}, format)
	}
	_, _ = fmt.Fprintln(w, ui.Help.Render("general answer ("+model+"):"))
	_, _ = fmt.Fprintln(w, answer)
	return nil
}

// cannotAnswer is printed when the engine declines and no fallback is
// configured.
const cannotAnswer = "askdata cannot answer that from this dataset. Try a question such as \"total <metric> by <column>\", or set GEMINI_API_KEY for general questions."

func renderDeclined(w io.Writer, format string) error {
	if format != config.OutputText {
		return renderStructured(w, fallbackOutput{Answer: cannotAnswer}, format)
	}
	_, _ = fmt.Fprintln(w, cannotAnswer)
	return nil
}

// ============================================================================
// SCHEMA
// ============================================================================

func renderSchema(w io.Writer, sch *schema.Config, format string) error {
	if format != config.OutputText {
		return renderStructured(w, sch, format)
	}

	_, _ = fmt.Fprintln(w, ui.Title.Render(fmt.Sprintf("%s (%d rows)", sch.Name, sch.RowCount)))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Kind", "Distinct", "Nulls", "Samples"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for _, c := range sch.Columns {
		samples := c.SampleValues
		if len(samples) > 3 {
			samples = samples[:3]
		}
		t.AppendRow(table.Row{c.Name, string(c.Kind), c.Cardinality, c.Nulls, strings.Join(samples, ", ")})
	}
	t.Render()

	if len(sch.SkippedColumns) > 0 {
		for _, s := range sch.SkippedColumns {
			_, _ = fmt.Fprintln(w, ui.Help.Render(fmt.Sprintf("skipped %s: %s", s.Column, s.Reason)))
		}
	}

	if examples := sch.ExampleQuestions(5); len(examples) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Try asking:")
		for _, q := range examples {
			_, _ = fmt.Fprintf(w, "  - %s\n", q)
		}
	}
	return nil
}
