// Package extract turns raw search-result payloads into classified rate
// offers: tolerant price parsing, membership/refundability detection from
// free text, offer extraction from loosely structured records, and fuzzy
// matching of the target hotel among near-duplicate candidates.
package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches the first numeral group in a price string:
// digit groups possibly comma-separated, with an optional decimal tail
// that is discarded. Covers "$129", "USD 129", "129.00", "1,299 per night".
var amountPattern = regexp.MustCompile(`(\d[\d,]*)(?:\.\d+)?`)

// ParseAmount parses a heterogeneous price representation into integer
// dollars. Numeric values truncate toward zero; strings use the first
// numeral group found. Returns false for nil input or strings with no
// numeral.
func ParseAmount(v interface{}) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		m := amountPattern.FindStringSubmatch(t)
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bounds is the plausibility guardrail for nightly rates in one market.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds is tuned for the Beckley market; override via config.
var DefaultBounds = Bounds{Min: 40, Max: 600}

// Plausible reports whether v is a believable nightly rate. Out-of-range
// values are discarded, never clamped.
func (b Bounds) Plausible(v int) bool {
	return v >= b.Min && v <= b.Max
}

// PlausibleAmount combines ParseAmount with the plausibility filter.
func (b Bounds) PlausibleAmount(v interface{}) (int, bool) {
	n, ok := ParseAmount(v)
	if !ok || !b.Plausible(n) {
		return 0, false
	}
	return n, true
}
