package parser

import (
	"encoding/json"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// detectRule is one ordered detection heuristic
type detectRule struct {
	name  string
	match func(lowerText, lowerFile string) bool
	kind  nodes.Network
}

// detectRules are evaluated in order and the first match wins. File name
// hints come before content sniffing: small samples are often ambiguous.
var detectRules = []detectRule{
	{
		name:  "filename:solana",
		match: func(_, file string) bool { return containsAny(file, "solana", "validator") },
		kind:  nodes.Solana,
	},
	{
		name:  "filename:bitcoin",
		match: func(_, file string) bool { return containsAny(file, "bitnodes", "bitcoin") },
		kind:  nodes.Bitcoin,
	},
	{
		name:  "filename:ethereum",
		match: func(_, file string) bool { return containsAny(file, "ethernodes", "ethereum") },
		kind:  nodes.Ethereum,
	},
	{
		name:  "content:bitcoin",
		match: func(text, _ string) bool { return strings.Contains(text, "protocol_version") || hasNodesKey(text) },
		kind:  nodes.Bitcoin,
	},
	{
		name:  "content:solana",
		match: func(text, _ string) bool { return containsAny(text, "epoch", "activatedstake", "nodepubkey") },
		kind:  nodes.Solana,
	},
}

// Detect classifies raw text into a supported network. fileName may be empty.
// Ethereum is the fallback when no rule matches.
func Detect(raw, fileName string) nodes.Network {
	network, _ := DetectWithRule(raw, fileName)
	return network
}

// DetectWithRule is Detect that also names the rule that decided
func DetectWithRule(raw, fileName string) (nodes.Network, string) {
	lowerText := strings.ToLower(raw)
	lowerFile := strings.ToLower(fileName)
	for _, rule := range detectRules {
		if rule.match(lowerText, lowerFile) {
			return rule.kind, rule.name
		}
	}
	return nodes.Ethereum, "default"
}

// hasNodesKey reports whether text is a JSON object with a top-level "nodes" key
func hasNodesKey(lowerText string) bool {
	trim := strings.TrimSpace(lowerText)
	if !strings.HasPrefix(trim, "{") || !strings.Contains(trim, `"nodes"`) {
		return false
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trim), &doc); err != nil {
		return false
	}
	_, ok := doc["nodes"]
	return ok
}

func containsAny(s string, needles ...string) bool {
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
