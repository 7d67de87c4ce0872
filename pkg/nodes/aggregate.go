package nodes

import (
	"sort"
	"strings"
)

// CountCountries derives per-country counts from a record set.
// Only countable records (resolved code, not anonymous) contribute.
// The result is ordered by count descending, then code ascending.
func CountCountries(records []NodeRecord) []CountryCount {
	perCountry := make(map[string]int)
	for _, r := range records {
		if !r.Countable() {
			continue
		}
		perCountry[r.Country]++
	}

	counts := make([]CountryCount, 0, len(perCountry))
	for code, value := range perCountry {
		counts = append(counts, CountryCount{Code: code, Value: value})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Value != counts[j].Value {
			return counts[i].Value > counts[j].Value
		}
		return counts[i].Code < counts[j].Code
	})
	return counts
}

// CountProviders derives per-provider counts. Provider names are grouped
// case-insensitively; the first spelling seen is kept for display.
func CountProviders(records []NodeRecord) []ProviderCount {
	perProvider := make(map[string]int)
	display := make(map[string]string)
	for _, r := range records {
		name := strings.TrimSpace(r.Provider)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := display[key]; !ok {
			display[key] = name
		}
		perProvider[key]++
	}

	counts := make([]ProviderCount, 0, len(perProvider))
	for key, value := range perProvider {
		counts = append(counts, ProviderCount{Name: display[key], Value: value})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Value != counts[j].Value {
			return counts[i].Value > counts[j].Value
		}
		return strings.ToLower(counts[i].Name) < strings.ToLower(counts[j].Name)
	})
	return counts
}

// DistinctCountries returns how many different countries the countable records span
func DistinctCountries(records []NodeRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Countable() {
			seen[r.Country] = struct{}{}
		}
	}
	return len(seen)
}

// Points returns the records that carry usable coordinates, in order
func Points(records []NodeRecord) []NodeRecord {
	points := make([]NodeRecord, 0, len(records))
	for _, r := range records {
		if r.HasLocation() {
			points = append(points, r)
		}
	}
	return points
}

// CountAnonymous returns the number of anonymity-network records
func CountAnonymous(records []NodeRecord) int {
	n := 0
	for _, r := range records {
		if r.Anonymous {
			n++
		}
	}
	return n
}

// TotalStake sums the stake of every record
func TotalStake(records []NodeRecord) float64 {
	total := 0.0
	for _, r := range records {
		if r.Stake > 0 {
			total += r.Stake
		}
	}
	return total
}

// NewParseResult assembles a ParseResult from extracted records,
// deriving points and counts so they can never drift from the node set.
func NewParseResult(records []NodeRecord, torCount int) ParseResult {
	if records == nil {
		records = []NodeRecord{}
	}
	return ParseResult{
		Nodes:    records,
		Points:   Points(records),
		Counts:   CountCountries(records),
		TorCount: torCount,
	}
}
