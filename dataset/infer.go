package dataset

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ============================================================================
// TYPE INFERENCE: one shared definition of "numeric enough"
// ============================================================================
// Cells are untyped at the storage layer. Every component (extractor,
// aggregators, filter scanner, schema discovery) classifies values through
// the functions in this file.
// ============================================================================

// SampleSize is the number of non-empty values inspected per column.
const SampleSize = 5

// nonNumericBudget is the count of leftover characters at which a string
// stops being treated as a formatted number.
const nonNumericBudget = 3

var (
	numericStrip  = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "%", "", ",", "")
	leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?|-?\.\d+`)
	isoDate       = regexp.MustCompile(`^\d{4}-\d{1,2}(-\d{1,2})?([ t]\d{1,2}:\d{2}(:\d{2})?(\.\d+)?(z|[+-]\d{2}:?\d{2})?)?$`)
)

// dateLayouts are tried in order when parsing a date-like string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"02/01/2006 15:04",
	"01/02/2006 15:04:05",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"Jan 2, 2006",
	"15:04:05",
	"15:04",
}

// IsEmpty reports whether a cell is nil or a blank string.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return math.IsNaN(t)
	}
	return false
}

// ValueString renders a cell the way grouping keys and filters see it.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return fmt.Sprint(t)
	}
}

// IsNumericValue reports whether a single cell passes the lenient numeric test:
// native numbers always pass; strings pass when, after stripping currency,
// percent and separator symbols, at least one digit remains and fewer than
// three other characters are left. Date-like strings never pass.
func IsNumericValue(v any) bool {
	switch t := v.(type) {
	case float64:
		return !math.IsNaN(t)
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case string:
		return isNumericString(t)
	case []byte:
		return isNumericString(string(t))
	}
	return false
}

func isNumericString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || IsDateLike(s) {
		return false
	}
	stripped := numericStrip.Replace(s)
	digits := 0
	garbage := 0
	for _, r := range stripped {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == '-' || unicode.IsSpace(r):
		default:
			garbage++
		}
	}
	return digits > 0 && garbage < nonNumericBudget
}

// ToNumber coerces a cell to float64. Currency symbols and thousand
// separators are stripped from strings and the leading number is taken.
func ToNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case []byte:
		return ToNumber(string(t))
	case string:
		if !isNumericString(t) {
			return 0, false
		}
		cleaned := strings.ReplaceAll(numericStrip.Replace(strings.TrimSpace(t)), " ", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f, true
		}
		m := leadingNumber.FindString(cleaned)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	}
	return 0, false
}

// IsDateLike reports whether a value looks like a date: a time.Time, an ISO
// date string, or a slash/colon-containing string that parses.
func IsDateLike(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return !t.IsZero()
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "" {
			return false
		}
		if isoDate.MatchString(s) {
			return true
		}
		if strings.ContainsAny(s, "/:") {
			_, ok := ParseDate(t)
			return ok
		}
	}
	return false
}

// ParseDate parses a date-like cell using the known layouts.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// ============================================================================
// COLUMN CLASSIFICATION
// ============================================================================

// Sample returns up to SampleSize non-empty values of a column, in row order.
func Sample(v View, column string) []any {
	out := make([]any, 0, SampleSize)
	for i := 0; i < v.Len() && len(out) < SampleSize; i++ {
		val := v.Value(i, column)
		if !IsEmpty(val) {
			out = append(out, val)
		}
	}
	return out
}

// IsNumericColumn reports whether every sampled value of a column is numeric.
// A column with no non-empty values is not numeric.
func IsNumericColumn(v View, column string) bool {
	return allSampled(Sample(v, column), IsNumericValue)
}

// IsDateColumn reports whether every sampled value of a column is date-like.
func IsDateColumn(v View, column string) bool {
	return allSampled(Sample(v, column), IsDateLike)
}

// IsURLColumn reports whether sampled values look like links.
func IsURLColumn(v View, column string) bool {
	return allSampled(Sample(v, column), func(x any) bool {
		s := strings.ToLower(ValueString(x))
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.")
	})
}

// MaxSampleLength returns the longest rendered sampled value of a column.
func MaxSampleLength(v View, column string) int {
	n := 0
	for _, x := range Sample(v, column) {
		if l := len(ValueString(x)); l > n {
			n = l
		}
	}
	return n
}

func allSampled(sample []any, pred func(any) bool) bool {
	if len(sample) == 0 {
		return false
	}
	for _, x := range sample {
		if !pred(x) {
			return false
		}
	}
	return true
}

// IsIDColumn reports whether a column name denotes an identifier.
func IsIDColumn(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "id", n == "uuid", n == "guid", n == "key":
		return true
	case strings.HasSuffix(n, "_id"), strings.HasSuffix(n, " id"), strings.HasSuffix(n, "-id"):
		return true
	case strings.HasPrefix(n, "id_"), strings.HasSuffix(n, "uuid"), strings.HasSuffix(n, "guid"):
		return true
	}
	// camelCase ids: "orderId", "customerID"
	raw := strings.TrimSpace(name)
	return len(raw) > 2 && (strings.HasSuffix(raw, "Id") || strings.HasSuffix(raw, "ID"))
}

// TimeLikeName reports whether a column name suggests a temporal dimension.
func TimeLikeName(name string) bool {
	n := strings.ToLower(name)
	for _, w := range []string{"date", "time", "month", "year", "day", "week", "quarter", "period", "timestamp"} {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}

// IsTimeLikeColumn reports whether a column is temporal by name or by values.
func IsTimeLikeColumn(v View, column string) bool {
	return TimeLikeName(column) || IsDateColumn(v, column)
}

// DistinctValues returns the distinct rendered values of a column in
// first-seen order. Empty cells are skipped.
func DistinctValues(v View, column string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < v.Len(); i++ {
		s := ValueString(v.Value(i, column))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
