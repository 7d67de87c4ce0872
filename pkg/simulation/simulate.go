package simulation

import (
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/concentration"
	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Result describes the node set after a scenario has been applied
type Result struct {
	Scenario Scenario `json:"scenario"`
	// Targets are the normalized targets that were matched against
	Targets            []string           `json:"targets,omitempty"`
	Remaining          []nodes.NodeRecord `json:"-"`
	FailedNodes        int                `json:"failedNodes"`
	TotalNodes         int                `json:"totalNodes"`
	RemainingCountries int                `json:"remainingCountries"`
	RemainingTor       int                `json:"remainingTor"`
	Gini               float64            `json:"gini"`
	Nakamoto           int                `json:"nakamoto"`
	NakamotoByProvider int                `json:"nakamotoByProvider"`
	// ConnectivityLossPct is failed/total*100, 0 for an empty node set
	ConnectivityLossPct float64  `json:"connectivityLossPct"`
	StakeLossPct        float64  `json:"stakeLossPct"`
	NoMatchingTargets   bool     `json:"noMatchingTargets"`
	RemovedOwners       []string `json:"removedOwners,omitempty"`
}

// Simulate applies scenario to records. It never modifies records and is
// deterministic for a given input.
func Simulate(records []nodes.NodeRecord, scenario Scenario, targets []string) Result {
	result := Result{
		Scenario:   scenario,
		TotalNodes: len(records),
	}

	var fails func(i int, r nodes.NodeRecord) bool
	switch scenario {
	case Region:
		result.Targets = normalizeTargets(targets, true)
		set := toSet(result.Targets)
		fails = func(_ int, r nodes.NodeRecord) bool {
			_, hit := set[strings.ToLower(r.Country)]
			return r.Country != "" && hit
		}
	case Cloud:
		result.Targets = normalizeTargets(targets, false)
		set := toSet(result.Targets)
		fails = func(_ int, r nodes.NodeRecord) bool {
			_, hit := set[strings.ToLower(strings.TrimSpace(r.Provider))]
			return r.Provider != "" && hit
		}
	case Majority:
		result.RemovedOwners = concentration.ByOwner(records).MajoritySet()
		set := toSet(result.RemovedOwners)
		fails = func(i int, r nodes.NodeRecord) bool {
			_, hit := set[concentration.OwnerKey(r, i)]
			return hit
		}
	default:
		result.Scenario = None
	}

	remaining := make([]nodes.NodeRecord, 0, len(records))
	removed := make([]nodes.NodeRecord, 0)
	for i, r := range records {
		if fails != nil && fails(i, r) {
			removed = append(removed, r)
			continue
		}
		remaining = append(remaining, r)
	}

	result.Remaining = remaining
	result.FailedNodes = len(removed)
	result.NoMatchingTargets = result.Scenario != None && len(removed) == 0
	if len(records) > 0 {
		result.ConnectivityLossPct = float64(len(removed)) / float64(len(records)) * 100
	}
	result.StakeLossPct = stakeLoss(records, removed)

	byCountry := concentration.ByCountry(remaining)
	result.RemainingCountries = byCountry.Len()
	result.Gini = byCountry.Gini()
	result.Nakamoto = byCountry.Nakamoto()
	result.NakamotoByProvider = concentration.ByProvider(remaining).Nakamoto()
	result.RemainingTor = nodes.CountAnonymous(remaining)

	return result
}

// stakeLoss is the share of weight removed, using the same weighting as the
// distributions: stake when any record has it, one per node otherwise
func stakeLoss(all, removed []nodes.NodeRecord) float64 {
	total := nodes.TotalStake(all)
	if total > 0 {
		return nodes.TotalStake(removed) / total * 100
	}
	if len(all) == 0 {
		return 0
	}
	return float64(len(removed)) / float64(len(all)) * 100
}

// normalizeTargets trims, lowercases and de-duplicates targets. Country
// targets are also resolved so names and codes match alike.
func normalizeTargets(targets []string, resolveCountry bool) []string {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if resolveCountry {
			t, _ = country.ResolveOrRaw(t)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
