// Package country resolves free-text country names and codes found in node
// dumps into lowercase ISO 3166-1 alpha-2 codes.
package country

import (
	"strings"
	"sync"

	"github.com/pariz/gountries"
)

// TorMarker is the pseudo-country some dumps use for onion-only nodes
const TorMarker = "tor"

var (
	query     *gountries.Query
	queryOnce sync.Once
)

func countries() *gountries.Query {
	queryOnce.Do(func() {
		query = gountries.New()
	})
	return query
}

// Normalize trims and case-folds a raw country cell
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`)))
}

// Resolve maps a country name or code to a lowercase two-letter code.
// Two ASCII letters are passed through as a code without any lookup, so an
// explicit code always wins over name matching. Unresolvable input returns
// ("", false); callers must exclude such records from country aggregation.
func Resolve(nameOrCode string) (string, bool) {
	s := Normalize(nameOrCode)
	if s == "" || s == TorMarker {
		return "", false
	}
	if isCodeShaped(s) {
		return s, true
	}
	if code, ok := aliases[s]; ok {
		return code, true
	}
	if c, err := countries().FindCountryByName(s); err == nil && c.Codes.Alpha2 != "" {
		return strings.ToLower(c.Codes.Alpha2), true
	}
	if len(s) == 3 {
		if c, err := countries().FindCountryByAlpha(s); err == nil && c.Codes.Alpha2 != "" {
			return strings.ToLower(c.Codes.Alpha2), true
		}
	}
	return "", false
}

// isCodeShaped reports whether s is exactly two lowercase ASCII letters
func isCodeShaped(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// ResolveOrRaw returns the resolved code, or the normalized raw string when
// resolution fails. The boolean reports whether resolution succeeded.
func ResolveOrRaw(nameOrCode string) (string, bool) {
	if code, ok := Resolve(nameOrCode); ok {
		return code, true
	}
	return Normalize(nameOrCode), false
}

// CodeToName returns the common English name for a code, for presentation only.
// Unknown codes fall back to the uppercased code.
func CodeToName(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return ""
	}
	if c, err := countries().FindCountryByAlpha(upper); err == nil && c.Name.Common != "" {
		return c.Name.Common
	}
	return upper
}

// Region returns the world region ("Europe", "Americas", ...) of a code, or ""
func Region(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if len(upper) != 2 {
		return ""
	}
	if c, err := countries().FindCountryByAlpha(upper); err == nil {
		return c.Geo.Region
	}
	return ""
}

// Regions lists the world regions used for placement suggestions
var Regions = []string{"Africa", "Americas", "Asia", "Europe", "Oceania"}
