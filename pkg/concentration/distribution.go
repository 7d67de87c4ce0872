package concentration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Share is one key's portion of a distribution
type Share struct {
	Key      string  `json:"key" yaml:"key"`
	Label    string  `json:"label" yaml:"label"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// Distribution accumulates weights per key. Keys are normalized; labels keep
// the first spelling seen.
type Distribution struct {
	Weights map[string]float64
	labels  map[string]string
	// StakeWeighted is false when every record weighed 1
	StakeWeighted bool
}

func newDistribution(stakeWeighted bool) *Distribution {
	return &Distribution{
		Weights:       make(map[string]float64),
		labels:        make(map[string]string),
		StakeWeighted: stakeWeighted,
	}
}

func (d *Distribution) add(key, label string, weight float64) {
	if _, ok := d.labels[key]; !ok {
		d.labels[key] = label
	}
	d.Weights[key] += weight
}

// weigher picks stake weights when the set carries any stake, else one per node
func weigher(records []nodes.NodeRecord) (func(nodes.NodeRecord) float64, bool) {
	if nodes.TotalStake(records) > 0 {
		return func(r nodes.NodeRecord) float64 {
			if r.Stake > 0 {
				return r.Stake
			}
			return 0
		}, true
	}
	return func(nodes.NodeRecord) float64 { return 1 }, false
}

// ByCountry groups countable records by country code
func ByCountry(records []nodes.NodeRecord) *Distribution {
	weight, staked := weigher(records)
	d := newDistribution(staked)
	for _, r := range records {
		if !r.Countable() {
			continue
		}
		d.add(r.Country, strings.ToUpper(r.Country), weight(r))
	}
	return d
}

// ByProvider groups records by hosting provider, case-insensitively.
// Records without a provider are left out.
func ByProvider(records []nodes.NodeRecord) *Distribution {
	weight, staked := weigher(records)
	d := newDistribution(staked)
	for _, r := range records {
		name := strings.TrimSpace(r.Provider)
		if name == "" {
			continue
		}
		d.add(strings.ToLower(name), name, weight(r))
	}
	return d
}

// OwnerKey is the owner a record is attributed to: its name, or a unique
// positional key for unnamed records
func OwnerKey(r nodes.NodeRecord, index int) string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index)
}

// ByOwner groups records by OwnerKey
func ByOwner(records []nodes.NodeRecord) *Distribution {
	weight, staked := weigher(records)
	d := newDistribution(staked)
	for i, r := range records {
		key := OwnerKey(r, i)
		d.add(key, key, weight(r))
	}
	return d
}

// Len returns the number of keys
func (d *Distribution) Len() int {
	return len(d.Weights)
}

// Total returns the summed weight
func (d *Distribution) Total() float64 {
	total := 0.0
	for _, w := range d.Weights {
		total += w
	}
	return total
}

// Values returns the raw weights in key order
func (d *Distribution) Values() []float64 {
	keys := make([]string, 0, len(d.Weights))
	for k := range d.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = d.Weights[k]
	}
	return values
}

// Gini returns the Gini coefficient of the distribution
func (d *Distribution) Gini() float64 {
	return Gini(d.Values())
}

// Nakamoto returns the Nakamoto coefficient of the distribution
func (d *Distribution) Nakamoto() int {
	return Nakamoto(d.Weights)
}

// Shares returns every key ordered by weight descending, then key ascending
func (d *Distribution) Shares() []Share {
	total := d.Total()
	shares := make([]Share, 0, len(d.Weights))
	for key, w := range d.Weights {
		s := Share{Key: key, Label: d.labels[key], Weight: w}
		if total > 0 {
			s.Fraction = w / total
		}
		shares = append(shares, s)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Weight != shares[j].Weight {
			return shares[i].Weight > shares[j].Weight
		}
		return shares[i].Key < shares[j].Key
	})
	return shares
}

// Top returns the heaviest share; ok is false for an empty distribution
func (d *Distribution) Top() (Share, bool) {
	shares := d.Shares()
	if len(shares) == 0 {
		return Share{}, false
	}
	return shares[0], true
}

// MajoritySet returns the keys of the smallest majority coalition
func (d *Distribution) MajoritySet() []string {
	return MajoritySet(d.Weights)
}
