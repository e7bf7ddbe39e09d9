// Package importer reconciles spreadsheet rows with an existing collection:
// it normalizes raw cells into records, resolves identifiers, drops duplicates
// and reports what happened.
package importer

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Row is one untyped input record keyed by lowercased column name.
type Row map[string]any

// NewRow copies raw with trimmed, lowercased keys. Later duplicates of a key win.
func NewRow(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		row[key] = v
	}
	return row
}

// String returns the cell coerced to a trimmed string. Integral numbers render
// without a fractional part, so 101.0 becomes "101".
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return formatFloat(f)
		}
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// Number parses the cell permissively. Currency symbols, thousands separators and
// accounting parentheses are understood; anything else non-numeric yields 0.
func (r Row) Number(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return finite(f)
	}
	return ParseNumber(r.String(key))
}

// ParseNumber parses s as a decimal amount, returning 0 when it is not one.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	for _, symbol := range []string{"$", "€", "£", "₹", ",", " "} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	if !numericPattern.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		f = -f
	}
	return finite(f)
}

// Missing lists the keys whose cells are empty.
func (r Row) Missing(keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if r.String(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Coalesce returns the first non-empty value.
func Coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
