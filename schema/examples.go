package schema

import (
	"fmt"
	"strings"
)

// ============================================================================
// EXAMPLE QUESTIONS: Schema-driven help text
// ============================================================================
// Picks a measure, a categorical dimension, a second dimension and a
// temporal dimension from the discovered schema and fills question
// templates with real column names.
// ============================================================================

// ExampleQuestions returns up to limit questions that the engine can answer
// against this dataset. limit <= 0 means no cap.
func (c Config) ExampleQuestions(limit int) []string {
	measure := spoken(c.DefaultMeasure())

	var firstDim, secondDim, temporalDim string
	for _, d := range c.Dimensions {
		switch {
		case d.IsTemporal:
			if temporalDim == "" {
				temporalDim = spoken(d.Key)
			}
		case d.IsCoded:
			// numeric codes read poorly in questions
		case firstDim == "":
			firstDim = spoken(d.Key)
		case secondDim == "":
			secondDim = spoken(d.Key)
		}
	}

	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	if measure != "" {
		add("What is the total %s?", measure)
		if firstDim != "" {
			add("Show %s by %s", measure, firstDim)
			add("Which %s has the highest %s?", firstDim, measure)
			add("Show %s by %s as a pie chart", measure, firstDim)
		}
		if temporalDim != "" {
			add("Show %s by %s as a line chart", measure, temporalDim)
		}
		if secondDim != "" {
			add("What is the average %s by %s?", measure, secondDim)
		}
	} else {
		add("How many records are there?")
	}
	if firstDim != "" {
		add("List all %s", firstDim)
		if measure == "" {
			add("Count of rows by %s", firstDim)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// spoken renders a column name the way a user would type it.
func spoken(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key)), " "))
}
