// Package report assembles the renderer-neutral data bundle behind exported
// analysis reports.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Format is an export encoding
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat accepts json (the default), yaml and yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the HTTP media type for f
func (f Format) ContentType() string {
	if f == YAML {
		return "application/x-yaml"
	}
	return "application/json"
}

// Metrics is the headline block of a report
type Metrics struct {
	Gini               float64 `json:"gini" yaml:"gini"`
	Nakamoto           int     `json:"nakamoto" yaml:"nakamoto"`
	NakamotoByProvider int     `json:"nakamotoByProvider" yaml:"nakamotoByProvider"`
	ConnectivityLoss   string  `json:"connectivityLoss" yaml:"connectivityLoss"`
	StakeLossPct       float64 `json:"stakeLossPct" yaml:"stakeLossPct"`
	TotalNodes         int     `json:"totalNodes" yaml:"totalNodes"`
	FailedNodes        int     `json:"failedNodes" yaml:"failedNodes"`
	RemainingCountries int     `json:"remainingCountries" yaml:"remainingCountries"`
}

// CountryRow is one line of the country table
type CountryRow struct {
	Code    string  `json:"code" yaml:"code"`
	Name    string  `json:"name" yaml:"name"`
	Region  string  `json:"region,omitempty" yaml:"region,omitempty"`
	Nodes   int     `json:"nodes" yaml:"nodes"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// ProviderRow is one line of the provider table
type ProviderRow struct {
	Name    string  `json:"name" yaml:"name"`
	Nodes   int     `json:"nodes" yaml:"nodes"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// RegionRow totals countries by world region
type RegionRow struct {
	Region  string  `json:"region" yaml:"region"`
	Nodes   int     `json:"nodes" yaml:"nodes"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Bundle is everything a PDF or chart renderer needs
type Bundle struct {
	Name        string        `json:"name" yaml:"name"`
	Network     nodes.Network `json:"network" yaml:"network"`
	Scenario    string        `json:"scenario" yaml:"scenario"`
	Targets     []string      `json:"targets,omitempty" yaml:"targets,omitempty"`
	GeneratedAt time.Time     `json:"generatedAt" yaml:"generatedAt"`
	Metrics     Metrics       `json:"metrics" yaml:"metrics"`
	Suggestions []string      `json:"suggestions" yaml:"suggestions"`
	Warnings    []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Countries   []CountryRow  `json:"countries" yaml:"countries"`
	Regions     []RegionRow   `json:"regions" yaml:"regions"`
	Providers   []ProviderRow `json:"providers,omitempty" yaml:"providers,omitempty"`
	TorCount    int           `json:"torCount" yaml:"torCount"`
	PointCount  int           `json:"pointCount" yaml:"pointCount"`
}

// Build derives a bundle from an analysis result. Percentages are of the
// nodes attributed to a country (or provider), rounded to two decimals.
func Build(name string, r *nodes.AnalysisResult) *Bundle {
	b := &Bundle{
		Name:        name,
		Network:     r.Network,
		Scenario:    r.Scenario,
		Targets:     r.Targets,
		GeneratedAt: r.GeneratedAt,
		Metrics: Metrics{
			Gini:               r.Gini,
			Nakamoto:           r.Nakamoto,
			NakamotoByProvider: r.NakamotoByProvider,
			ConnectivityLoss:   r.ConnectivityLoss(),
			StakeLossPct:       r.StakeLossPct,
			TotalNodes:         r.TotalNodes,
			FailedNodes:        r.FailedNodes,
			RemainingCountries: r.RemainingCountries,
		},
		Suggestions: append([]string{}, r.Suggestions...),
		Warnings:    r.Warnings,
		Countries:   make([]CountryRow, 0, len(r.Countries)),
		TorCount:    r.TorCount,
		PointCount:  r.PointCount,
	}

	countryTotal := 0
	for _, c := range r.Countries {
		countryTotal += c.Value
	}
	regions := make(map[string]int)
	for _, c := range r.Countries {
		row := CountryRow{
			Code:    c.DisplayCode(),
			Name:    country.CodeToName(c.Code),
			Region:  country.Region(c.Code),
			Nodes:   c.Value,
			Percent: percent(c.Value, countryTotal),
		}
		b.Countries = append(b.Countries, row)
		if row.Region != "" {
			regions[row.Region] += c.Value
		}
	}
	sort.SliceStable(b.Countries, func(i, j int) bool {
		if b.Countries[i].Nodes != b.Countries[j].Nodes {
			return b.Countries[i].Nodes > b.Countries[j].Nodes
		}
		return b.Countries[i].Code < b.Countries[j].Code
	})

	b.Regions = make([]RegionRow, 0, len(country.Regions))
	for _, region := range country.Regions {
		b.Regions = append(b.Regions, RegionRow{
			Region:  region,
			Nodes:   regions[region],
			Percent: percent(regions[region], countryTotal),
		})
	}

	providerTotal := 0
	for _, p := range r.Providers {
		providerTotal += p.Value
	}
	for _, p := range r.Providers {
		b.Providers = append(b.Providers, ProviderRow{
			Name:    p.Name,
			Nodes:   p.Value,
			Percent: percent(p.Value, providerTotal),
		})
	}
	return b
}

// Encode writes b in format f
func (b *Bundle) Encode(w io.Writer, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	v := float64(part) / float64(total) * 100
	return float64(int64(v*100+0.5)) / 100
}
