package flightlog

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric converts a raw cell into a number. Decimal strings and
// 0x-prefixed hex strings are accepted; empty, unparseable and non-finite
// values are reported as not present rather than zero.
func ParseNumeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, isFinite(x)
	case float32:
		return float64(x), isFinite(float64(x))
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		return parseNumericString(x)
	default:
		return 0, false
	}
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	switch body[0] {
	case '-':
		neg = true
		body = body[1:]
	case '+':
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		n, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		if neg {
			return -float64(n), true
		}
		return float64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// isBlank reports whether a raw cell counts as absent for alias matching.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

// ValueFromKeys returns the first numeric value found by trying keys in
// order. Blank and unparseable cells are skipped.
func ValueFromKeys(row Row, keys []string) *float64 {
	if row == nil {
		return nil
	}
	for _, key := range keys {
		raw, ok := row[key]
		if !ok || isBlank(raw) {
			continue
		}
		if f, ok := ParseNumeric(raw); ok {
			return &f
		}
	}
	return nil
}

// Value resolves a canonical channel in a row by trying its aliases in
// priority order. Unknown channel names are looked up verbatim.
func Value(row Row, canonical string) *float64 {
	return ValueFromKeys(row, aliasesFor(canonical))
}

// ResolvedHeader reports which CSV column supplied the value Value returns.
func ResolvedHeader(row Row, canonical string) (string, bool) {
	if row == nil {
		return "", false
	}
	for _, key := range aliasesFor(canonical) {
		if _, ok := ParseNumeric(row[key]); ok {
			return key, true
		}
	}
	return "", false
}

func aliasesFor(canonical string) []string {
	if ch, ok := Lookup(canonical); ok && len(ch.Aliases) > 0 {
		return ch.Aliases
	}
	return []string{canonical}
}
