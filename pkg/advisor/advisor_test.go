package advisor

import (
	"strings"
	"testing"

	"github.com/dd0wney/nodelyzer/pkg/concentration"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
)

func shares(pairs ...any) []concentration.Share {
	total := 0.0
	for i := 1; i < len(pairs); i += 2 {
		total += pairs[i].(float64)
	}
	out := make([]concentration.Share, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		w := pairs[i+1].(float64)
		out = append(out, concentration.Share{
			Key:      pairs[i].(string),
			Label:    pairs[i].(string),
			Weight:   w,
			Fraction: w / total,
		})
	}
	return out
}

// balancedCountries spans every region with no dominant country
func balancedCountries() []concentration.Share {
	return shares(
		"us", 10.0, "br", 10.0, "de", 10.0, "fr", 10.0, "jp", 10.0,
		"sg", 10.0, "au", 10.0, "za", 10.0, "ng", 10.0, "ca", 10.0,
	)
}

func TestBalancedNetworkStillListsUnderrepresented(t *testing.T) {
	result := simulation.Result{Scenario: simulation.None, TotalNodes: 100, Nakamoto: 6, Gini: 0.1}
	got := Suggest(result, balancedCountries(), nil, nodes.Ethereum, DefaultThresholds())

	if len(got) != 1 {
		t.Fatalf("got %d suggestions: %v", len(got), got)
	}
	if got[0] != "Add nodes in underrepresented countries: AU, BR, CA, DE, FR" {
		t.Errorf("got %q", got[0])
	}
}

func TestFallback(t *testing.T) {
	result := simulation.Result{Scenario: simulation.None}
	got := Suggest(result, nil, nil, nodes.Ethereum, DefaultThresholds())
	if len(got) != 1 || got[0] != Balanced {
		t.Errorf("got %v, want fallback", got)
	}
}

func TestRuleOrder(t *testing.T) {
	result := simulation.Result{
		Scenario:            simulation.Region,
		Targets:             []string{"us"},
		TotalNodes:          10,
		FailedNodes:         6,
		ConnectivityLossPct: 60,
		Gini:                0.6,
		Nakamoto:            1,
	}
	countries := shares("de", 3.0, "fr", 1.0)
	providers := shares("Hetzner", 3.0, "OVH", 1.0)

	got := Suggest(result, countries, providers, nodes.Ethereum, DefaultThresholds())

	prefixes := []string{
		"A regional outage affecting US takes down 60.00% of nodes (6 of 10)",
		"High concentration detected",
		"Germany hosts 75% of nodes",
		"Hetzner hosts 75% of nodes",
		"Low Nakamoto coefficient (1)",
		"Add nodes in underrepresented countries: FR, DE",
		"No nodes remain in Africa, Americas, Asia, Oceania",
	}
	if len(got) != len(prefixes) {
		t.Fatalf("got %d suggestions, want %d: %v", len(got), len(prefixes), got)
	}
	for i, p := range prefixes {
		if !strings.HasPrefix(got[i], p) {
			t.Errorf("suggestion %d = %q, want prefix %q", i, got[i], p)
		}
	}
}

func TestLossBelowThreshold(t *testing.T) {
	a := New(Thresholds{LossWarnPct: 50})
	in := Input{
		Network:    nodes.Ethereum,
		Simulation: simulation.Result{Scenario: simulation.Cloud, TotalNodes: 10, FailedNodes: 4, ConnectivityLossPct: 40, Nakamoto: 9},
		Countries:  balancedCountries(),
	}
	for _, s := range a.Suggest(in) {
		if strings.Contains(s, "takes down") {
			t.Errorf("unexpected loss warning: %q", s)
		}
	}
}

func TestSolanaProviderWording(t *testing.T) {
	result := simulation.Result{Scenario: simulation.None, TotalNodes: 10, Nakamoto: 9}
	providers := shares("Teraswitch", 8.0, "Latitude", 2.0)

	got := Suggest(result, balancedCountries(), providers, nodes.Solana, DefaultThresholds())
	found := false
	for _, s := range got {
		if strings.HasPrefix(s, "Teraswitch hosts 80% of validator stake") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing Solana provider suggestion in %v", got)
	}
}

func TestTorRule(t *testing.T) {
	a := New(DefaultThresholds())
	in := Input{
		Network:    nodes.Bitcoin,
		Simulation: simulation.Result{Scenario: simulation.Majority, TotalNodes: 10, Nakamoto: 9, RemainingTor: 0},
		Countries:  balancedCountries(),
		TorCount:   3,
	}
	got := a.Suggest(in)
	if !strings.HasPrefix(got[len(got)-1], "All 3 onion-reachable nodes were lost") {
		t.Errorf("last suggestion = %q", got[len(got)-1])
	}

	in.Network = nodes.Ethereum
	for _, s := range a.Suggest(in) {
		if strings.Contains(s, "onion") {
			t.Errorf("TOR rule fired for ethereum: %q", s)
		}
	}
}

func TestNewFillsDefaults(t *testing.T) {
	a := New(Thresholds{MaxGini: 0.7})
	if a.Thresholds.MaxGini != 0.7 {
		t.Errorf("MaxGini = %v", a.Thresholds.MaxGini)
	}
	if a.Thresholds.MinNakamoto != 5 || a.Thresholds.LossWarnPct != 25 {
		t.Errorf("defaults not applied: %+v", a.Thresholds)
	}
}

func TestDeterministic(t *testing.T) {
	result := simulation.Result{Scenario: simulation.None, TotalNodes: 10, Gini: 0.9, Nakamoto: 2}
	countries := shares("us", 5.0, "de", 2.0, "fr", 2.0, "jp", 1.0)
	first := Suggest(result, countries, nil, nodes.Bitcoin, DefaultThresholds())
	for i := 0; i < 5; i++ {
		again := Suggest(result, countries, nil, nodes.Bitcoin, DefaultThresholds())
		if strings.Join(first, "|") != strings.Join(again, "|") {
			t.Fatal("suggestions differ between runs")
		}
	}
}
