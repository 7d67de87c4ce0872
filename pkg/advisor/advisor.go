// Package advisor turns simulation outcomes and distributions into ordered,
// human readable placement suggestions.
package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/concentration"
	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
)

// Balanced is returned when no rule fires
const Balanced = "Network looks balanced - no major suggestions."

// underrepresentedLimit is how many of the smallest countries are suggested
const underrepresentedLimit = 5

// Thresholds controls when each rule fires
type Thresholds struct {
	LossWarnPct      float64 `yaml:"loss_warn_pct" json:"lossWarnPct"`
	MaxGini          float64 `yaml:"max_gini" json:"maxGini"`
	MaxCountryShare  float64 `yaml:"max_country_share" json:"maxCountryShare"`
	MaxProviderShare float64 `yaml:"max_provider_share" json:"maxProviderShare"`
	MinNakamoto      int     `yaml:"min_nakamoto" json:"minNakamoto"`
}

// DefaultThresholds returns the stock thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		LossWarnPct:      25,
		MaxGini:          0.5,
		MaxCountryShare:  0.30,
		MaxProviderShare: 0.30,
		MinNakamoto:      5,
	}
}

// Input is everything the rules look at
type Input struct {
	Network    nodes.Network
	Simulation simulation.Result
	// Countries and Providers are shares of the remaining node set
	Countries []concentration.Share
	Providers []concentration.Share
	// TorCount is the number of anonymous nodes observed before the scenario
	TorCount int
}

// Advisor evaluates the suggestion rules against one set of thresholds
type Advisor struct {
	Thresholds Thresholds
}

// New returns an Advisor; zero thresholds are replaced by defaults
func New(th Thresholds) *Advisor {
	def := DefaultThresholds()
	if th.LossWarnPct <= 0 {
		th.LossWarnPct = def.LossWarnPct
	}
	if th.MaxGini <= 0 {
		th.MaxGini = def.MaxGini
	}
	if th.MaxCountryShare <= 0 {
		th.MaxCountryShare = def.MaxCountryShare
	}
	if th.MaxProviderShare <= 0 {
		th.MaxProviderShare = def.MaxProviderShare
	}
	if th.MinNakamoto <= 0 {
		th.MinNakamoto = def.MinNakamoto
	}
	return &Advisor{Thresholds: th}
}

// Suggest is the convenience form of Advisor.Suggest. TOR loss is judged
// against the result's own remaining count, so the TOR rule never fires here.
func Suggest(result simulation.Result, countries, providers []concentration.Share, network nodes.Network, th Thresholds) []string {
	return New(th).Suggest(Input{
		Network:    network,
		Simulation: result,
		Countries:  countries,
		Providers:  providers,
		TorCount:   result.RemainingTor,
	})
}

type rule func(a *Advisor, in Input) []string

// rules run in order; the output keeps that order
var rules = []rule{
	(*Advisor).lossRule,
	(*Advisor).giniRule,
	(*Advisor).countryShareRule,
	(*Advisor).providerShareRule,
	(*Advisor).nakamotoRule,
	(*Advisor).underrepresentedRule,
	(*Advisor).regionRule,
	(*Advisor).torRule,
}

// Suggest returns the suggestions for in, never empty
func (a *Advisor) Suggest(in Input) []string {
	var out []string
	for _, r := range rules {
		out = append(out, r(a, in)...)
	}
	if len(out) == 0 {
		return []string{Balanced}
	}
	return out
}

func (a *Advisor) lossRule(in Input) []string {
	sim := in.Simulation
	if sim.Scenario == simulation.None || sim.TotalNodes == 0 || sim.ConnectivityLossPct < a.Thresholds.LossWarnPct {
		return nil
	}
	what := "the scenario"
	if len(sim.Targets) > 0 {
		what = strings.ToUpper(strings.Join(sim.Targets, ", "))
	}
	return []string{fmt.Sprintf(
		"A %s affecting %s takes down %.2f%% of %s (%d of %d). Spread %s so no single failure removes more than %.0f%%.",
		sim.Scenario.Label(), what, sim.ConnectivityLossPct, unit(in.Network),
		sim.FailedNodes, sim.TotalNodes, unit(in.Network), a.Thresholds.LossWarnPct,
	)}
}

func (a *Advisor) giniRule(in Input) []string {
	if in.Simulation.Gini <= a.Thresholds.MaxGini {
		return nil
	}
	return []string{"High concentration detected. Consider redistributing nodes to improve decentralization."}
}

func (a *Advisor) countryShareRule(in Input) []string {
	if len(in.Countries) < 1 {
		return nil
	}
	top := in.Countries[0]
	if top.Fraction <= a.Thresholds.MaxCountryShare {
		return nil
	}
	name := country.CodeToName(top.Key)
	return []string{fmt.Sprintf("%s hosts %.0f%% of %s. Place new %s outside %s.",
		name, top.Fraction*100, unit(in.Network), unit(in.Network), name)}
}

func (a *Advisor) providerShareRule(in Input) []string {
	if len(in.Providers) < 1 {
		return nil
	}
	top := in.Providers[0]
	if top.Fraction <= a.Thresholds.MaxProviderShare {
		return nil
	}
	if in.Network == nodes.Solana {
		return []string{fmt.Sprintf("%s hosts %.0f%% of validator stake. Delegate to validators on other providers or bare metal.",
			top.Label, top.Fraction*100)}
	}
	return []string{fmt.Sprintf("%s hosts %.0f%% of %s. Diversify hosting providers.",
		top.Label, top.Fraction*100, unit(in.Network))}
}

func (a *Advisor) nakamotoRule(in Input) []string {
	if in.Simulation.TotalNodes == 0 || in.Simulation.Nakamoto >= a.Thresholds.MinNakamoto {
		return nil
	}
	return []string{fmt.Sprintf("Low Nakamoto coefficient (%d). Add nodes to diverse locations to increase resilience.",
		in.Simulation.Nakamoto)}
}

func (a *Advisor) underrepresentedRule(in Input) []string {
	if len(in.Countries) == 0 {
		return nil
	}
	smallest := make([]concentration.Share, len(in.Countries))
	copy(smallest, in.Countries)
	sort.Slice(smallest, func(i, j int) bool {
		if smallest[i].Weight != smallest[j].Weight {
			return smallest[i].Weight < smallest[j].Weight
		}
		return smallest[i].Key < smallest[j].Key
	})
	if len(smallest) > underrepresentedLimit {
		smallest = smallest[:underrepresentedLimit]
	}
	codes := make([]string, len(smallest))
	for i, s := range smallest {
		codes[i] = strings.ToUpper(s.Key)
	}
	return []string{"Add nodes in underrepresented countries: " + strings.Join(codes, ", ")}
}

func (a *Advisor) regionRule(in Input) []string {
	if len(in.Countries) == 0 {
		return nil
	}
	covered := make(map[string]bool, len(country.Regions))
	for _, s := range in.Countries {
		if region := country.Region(s.Key); region != "" {
			covered[region] = true
		}
	}
	var missing []string
	for _, region := range country.Regions {
		if !covered[region] {
			missing = append(missing, region)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("No %s remain in %s. Consider placing %s there.",
		unit(in.Network), strings.Join(missing, ", "), unit(in.Network))}
}

func (a *Advisor) torRule(in Input) []string {
	if in.Network != nodes.Bitcoin || in.TorCount == 0 || in.Simulation.RemainingTor > 0 {
		return nil
	}
	return []string{fmt.Sprintf("All %d onion-reachable nodes were lost. Keep Tor listeners on surviving nodes to preserve censorship resistance.",
		in.TorCount)}
}

func unit(network nodes.Network) string {
	if network == nodes.Solana {
		return "validators"
	}
	return "nodes"
}
