package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spektr-org/askdata/dataset"
)

// Query holds the immutable inputs shared by every extraction pass.
type Query struct {
	Text    string // normalized, lowercased question
	View    dataset.View
	Columns []string
	Prev    *Context

	numeric map[string]bool
}

// NewQuery normalizes text and classifies every column once.
func NewQuery(text string, view dataset.View, prev *Context) *Query {
	q := &Query{
		Text:    Normalize(text),
		View:    view,
		Columns: view.Columns(),
		Prev:    prev,
		numeric: make(map[string]bool, len(view.Columns())),
	}
	for _, c := range q.Columns {
		q.numeric[c] = dataset.IsNumericColumn(view, c)
	}
	return q
}

// IsNumeric reports the sampled numeric classification of a column.
func (q *Query) IsNumeric(column string) bool { return q.numeric[column] }

// Has reports whether the query matches re.
func (q *Query) Has(re *regexp.Regexp) bool { return re.MatchString(q.Text) }

// HasPrefix reports whether the query starts with any of the given words.
func (q *Query) HasPrefix(words ...string) bool {
	for _, w := range words {
		if q.Text == w || strings.HasPrefix(q.Text, w+" ") {
			return true
		}
	}
	return false
}

// Mentions reports whether column (or its singular/plural form) appears as a
// whole word in the query.
func (q *Query) Mentions(column string) bool {
	return mentionIndex(q.Text, column) >= 0
}

// Normalize lowercases a question, collapses whitespace and drops trailing
// punctuation.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, "?!. ")
}

// ============================================================================
// WORD MATCHING
// ============================================================================

// wordRe builds a case-insensitive whole-word alternation.
func wordRe(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func isWordRune(r byte) bool {
	return r == '_' || r < 0x80 && (unicode.IsLetter(rune(r)) || unicode.IsDigit(rune(r)))
}

// indexWord returns the byte index of the first whole-word occurrence of w
// in text, or -1.
func indexWord(text, w string) int {
	if w == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], w)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(w)
		before := start == 0 || !isWordRune(text[start-1])
		after := end == len(text) || !isWordRune(text[end])
		if before && after {
			return start
		}
		offset = start + 1
	}
}

// normalizeName lowercases a column name and turns separators into spaces.
func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("_", " ", "-", " ").Replace(n)
	return strings.Join(strings.Fields(n), " ")
}

// nameVariants returns the normalized name with singular and plural forms of
// its last word.
func nameVariants(name string) []string {
	n := normalizeName(name)
	if n == "" {
		return nil
	}
	out := []string{n}
	head, last := "", n
	if i := strings.LastIndex(n, " "); i >= 0 {
		head, last = n[:i+1], n[i+1:]
	}
	for _, v := range []string{singular(last), plural(last)} {
		if v != last {
			out = append(out, head+v)
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(name)); raw != n {
		out = append(out, raw)
	}
	return out
}

// mentionIndex returns the earliest whole-word position of any variant of
// column in text, or -1.
func mentionIndex(text, column string) int {
	best := -1
	for _, v := range nameVariants(column) {
		if i := indexWord(text, v); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// tokens splits a column name on underscores, spaces and hyphens, keeping
// tokens of at least three characters.
func tokens(name string) []string {
	var out []string
	for _, t := range strings.Fields(normalizeName(name)) {
		if len(t) >= 3 {
			out = append(out, t)
		}
	}
	return out
}

func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && (strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes") ||
		strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes")):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

func plural(w string) string {
	switch {
	case strings.HasSuffix(w, "y") && len(w) > 2 && !strings.ContainsAny(w[len(w)-2:len(w)-1], "aeiou"):
		return w[:len(w)-1] + "ies"
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"),
		strings.HasSuffix(w, "ch"), strings.HasSuffix(w, "sh"):
		return w + "es"
	}
	return w + "s"
}

// findColumn returns the column whose normalized name equals candidate.
func findColumn(columns []string, candidate string) string {
	want := normalizeName(candidate)
	for _, c := range columns {
		if normalizeName(c) == want {
			return c
		}
	}
	return ""
}

// matchPhrase fuzzy-matches a captured phrase against column names:
// exact (with singular/plural) first, then the column mentioned earliest in
// the phrase, then a column whose name contains the phrase.
func matchPhrase(phrase string, columns []string, accept func(string) bool) string {
	p := normalizeName(phrase)
	if p == "" {
		return ""
	}
	for _, c := range columns {
		if !accept(c) {
			continue
		}
		for _, v := range nameVariants(c) {
			if v == p || v == singular(p) {
				return c
			}
		}
	}
	best, bestIdx := "", -1
	for _, c := range columns {
		if !accept(c) {
			continue
		}
		if i := mentionIndex(p, c); i >= 0 && (bestIdx < 0 || i < bestIdx) {
			best, bestIdx = c, i
		}
	}
	if best != "" {
		return best
	}
	if len(p) >= 3 {
		for _, c := range columns {
			if accept(c) && strings.Contains(normalizeName(c), p) {
				return c
			}
		}
	}
	return ""
}
