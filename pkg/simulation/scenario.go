// Package simulation removes the nodes affected by a failure or attack
// scenario and recomputes decentralization metrics over what remains.
package simulation

import (
	"errors"
	"fmt"
	"strings"
)

// Scenario names a failure model
type Scenario string

const (
	// None removes nothing; it yields the baseline overview
	None Scenario = "none"
	// Region removes every node located in a target country
	Region Scenario = "region"
	// Cloud removes every node hosted by a target provider
	Cloud Scenario = "cloud"
	// Majority removes the smallest set of top owners holding a stake majority.
	// Its wire value is "51".
	Majority Scenario = "51"
)

// Scenarios lists the accepted scenarios in display order
var Scenarios = []Scenario{None, Region, Cloud, Majority}

// ErrUnknownScenario is returned by ParseScenario for unsupported names
var ErrUnknownScenario = errors.New("unknown scenario")

// ParseScenario accepts wire values and common aliases
func ParseScenario(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "overview":
		return None, nil
	case "region", "regional":
		return Region, nil
	case "cloud", "provider":
		return Cloud, nil
	case "51", "majority", "attack", "51%":
		return Majority, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScenario, s)
	}
}

// String returns the wire value
func (s Scenario) String() string {
	return string(s)
}

// Label is the human readable scenario name
func (s Scenario) Label() string {
	switch s {
	case Region:
		return "regional outage"
	case Cloud:
		return "cloud provider failure"
	case Majority:
		return "51% attack"
	default:
		return "overview"
	}
}

// UsesTargets reports whether the scenario reads its targets
func (s Scenario) UsesTargets() bool {
	return s == Region || s == Cloud
}
