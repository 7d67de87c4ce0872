package nodes

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Network identifies the source schema of a node dump
type Network string

const (
	Bitcoin  Network = "bitcoin"
	Ethereum Network = "ethereum"
	Solana   Network = "solana"
)

// Networks lists every supported network in display order
var Networks = []Network{Bitcoin, Ethereum, Solana}

// ErrUnknownNetwork is returned by ParseNetwork for unsupported names
var ErrUnknownNetwork = errors.New("unknown network")

// ParseNetwork converts a user supplied network name into a Network.
// An empty string or "auto" yields ("", nil), meaning the caller should detect it.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case "bitcoin", "btc":
		return Bitcoin, nil
	case "ethereum", "eth":
		return Ethereum, nil
	case "solana", "sol":
		return Solana, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
}

// String returns the wire name of the network
func (n Network) String() string {
	return string(n)
}

// NodeRecord is one network participant extracted from a dump.
// Latitude and Longitude hold NaN when the source lacks geolocation.
type NodeRecord struct {
	Name            string  `json:"name" yaml:"name"`
	Latitude        float64 `json:"lat" yaml:"lat"`
	Longitude       float64 `json:"lon" yaml:"lon"`
	Country         string  `json:"country,omitempty" yaml:"country,omitempty"`
	CountryResolved bool    `json:"countryResolved" yaml:"countryResolved"`
	Stake           float64 `json:"stake" yaml:"stake"`
	Provider        string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Address         string  `json:"address,omitempty" yaml:"address,omitempty"`
	ASN             string  `json:"asn,omitempty" yaml:"asn,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty" yaml:"anonymous,omitempty"`
}

// HasLocation reports whether the record can be placed on a map.
// (0,0) is treated as unknown rather than a point in the Gulf of Guinea.
func (r NodeRecord) HasLocation() bool {
	return ValidCoordinates(r.Latitude, r.Longitude)
}

// Countable reports whether the record contributes to country aggregation
func (r NodeRecord) Countable() bool {
	return r.CountryResolved && r.Country != "" && !r.Anonymous
}

// ValidCoordinates applies the coordinate gate shared by every parser
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return !(lat == 0 && lon == 0)
}

// CountryCount is the number of nodes attributed to one country
type CountryCount struct {
	Code  string `json:"code" yaml:"code"`
	Value int    `json:"value" yaml:"value"`
}

// DisplayCode returns the uppercased code used by renderers
func (c CountryCount) DisplayCode() string {
	return strings.ToUpper(c.Code)
}

// ProviderCount is the number of nodes hosted by one provider
type ProviderCount struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// ParseResult is the uniform output of every format parser.
// Nodes holds every extracted record in input order; Points is the subset
// with usable coordinates; Counts is always derived from Nodes.
type ParseResult struct {
	Nodes    []NodeRecord   `json:"nodes" yaml:"nodes"`
	Points   []NodeRecord   `json:"points" yaml:"points"`
	Counts   []CountryCount `json:"counts" yaml:"counts"`
	TorCount int            `json:"torCount" yaml:"torCount"`
}

// Empty reports whether nothing was extracted
func (p ParseResult) Empty() bool {
	return len(p.Nodes) == 0
}

// AnalysisResult is the immutable outcome of one analysis invocation
type AnalysisResult struct {
	Network             Network         `json:"network" yaml:"network"`
	Scenario            string          `json:"scenario" yaml:"scenario"`
	Targets             []string        `json:"targets,omitempty" yaml:"targets,omitempty"`
	Gini                float64         `json:"gini" yaml:"gini"`
	Nakamoto            int             `json:"nakamoto" yaml:"nakamoto"`
	NakamotoByProvider  int             `json:"nakamotoByProvider" yaml:"nakamotoByProvider"`
	ConnectivityLossPct float64         `json:"connectivityLossPct" yaml:"connectivityLossPct"`
	StakeLossPct        float64         `json:"stakeLossPct" yaml:"stakeLossPct"`
	FailedNodes         int             `json:"failedNodes" yaml:"failedNodes"`
	TotalNodes          int             `json:"totalNodes" yaml:"totalNodes"`
	RemainingCountries  int             `json:"remainingCountries" yaml:"remainingCountries"`
	NoMatchingTargets   bool            `json:"noMatchingTargets" yaml:"noMatchingTargets"`
	TorCount            int             `json:"torCount" yaml:"torCount"`
	PointCount          int             `json:"pointCount" yaml:"pointCount"`
	Countries           []CountryCount  `json:"countries" yaml:"countries"`
	Providers           []ProviderCount `json:"providers,omitempty" yaml:"providers,omitempty"`
	Suggestions         []string        `json:"suggestions" yaml:"suggestions"`
	Warnings            []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	GeneratedAt         time.Time       `json:"generatedAt" yaml:"generatedAt"`
}

// ConnectivityLoss formats the loss the way the dashboard displays it
func (a *AnalysisResult) ConnectivityLoss() string {
	return fmt.Sprintf("%.2f%%", a.ConnectivityLossPct)
}
