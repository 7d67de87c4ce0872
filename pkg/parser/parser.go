// Package parser turns raw node dumps from supported networks into a uniform
// node set. Parsing is tolerant: malformed records are degraded or dropped
// and a structurally invalid document yields an empty result, never a panic.
package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Parser converts the raw text of one network's dump format
type Parser interface {
	Network() nodes.Network
	// Parse never fails; structural errors produce an empty result
	Parse(raw string) nodes.ParseResult
	// ParseReport behaves like Parse but also returns the structural error, if any
	ParseReport(raw string) (nodes.ParseResult, error)
}

var parsers = map[nodes.Network]Parser{
	nodes.Bitcoin:  BitcoinParser{},
	nodes.Ethereum: EthereumParser{},
	nodes.Solana:   SolanaParser{},
}

// For returns the parser registered for a network
func For(network nodes.Network) (Parser, error) {
	p, ok := parsers[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", nodes.ErrUnknownNetwork, network)
	}
	return p, nil
}

// Parse dispatches raw text to the parser for network.
// An unsupported network yields an empty result.
func Parse(network nodes.Network, raw string) nodes.ParseResult {
	result, _ := ParseReport(network, raw)
	return result
}

// ParseReport is Parse with the structural error exposed for logging
func ParseReport(network nodes.Network, raw string) (nodes.ParseResult, error) {
	p, err := For(network)
	if err != nil {
		return nodes.NewParseResult(nil, 0), err
	}
	return p.ParseReport(raw)
}

// positionalName is the label given to records without a name
func positionalName(prefix string, index int) string {
	return fmt.Sprintf("%s %d", prefix, index)
}

// applyCountry fills the country fields of a record from a raw cell.
// The TOR marker is never treated as a country.
func applyCountry(rec *nodes.NodeRecord, raw string) {
	if raw == "" || isTorMarker(raw) {
		return
	}
	rec.Country, rec.CountryResolved = country.ResolveOrRaw(raw)
}

// newRecord returns a record with unknown coordinates and the default weight
func newRecord(name string) nodes.NodeRecord {
	return nodes.NodeRecord{
		Name:      name,
		Latitude:  math.NaN(),
		Longitude: math.NaN(),
		Stake:     1,
	}
}

// classify trims the input and reports whether it opens a JSON array or object
func classify(raw string) (string, byte) {
	trim := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if trim == "" {
		return trim, 0
	}
	switch trim[0] {
	case '[', '{':
		return trim, trim[0]
	default:
		return trim, 0
	}
}
