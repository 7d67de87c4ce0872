package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// parseCoordinate converts a cell or JSON value into degrees, NaN when invalid
func parseCoordinate(v any) float64 {
	switch val := v.(type) {
	case nil:
		return math.NaN()
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case float64:
		return val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// stringValue renders a loosely typed JSON value as text
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseStake reads a non-negative weight; ok is false when nothing usable was found
func parseStake(v any) (float64, bool) {
	f := parseCoordinate(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// parseIntPrefix reads the leading integer of s, ignoring anything after it
// ("123.9 SOL" reads as 123). Negative or missing numbers read as 0.
func parseIntPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// isTorMarker reports whether a field carries the literal TOR flag
func isTorMarker(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "TOR")
}

// isOnionAddress reports whether an address is an onion service
func isOnionAddress(s string) bool {
	return strings.Contains(strings.ToLower(s), ".onion")
}
