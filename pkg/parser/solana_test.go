package parser

import (
	"errors"
	"strings"
	"testing"
)

// solanaRow builds a 20 column validator row with the positional fields set
func solanaRow(country, location, provider, name, stake string) string {
	cells := make([]string, solanaMinColumns)
	for i := range cells {
		cells[i] = "x"
	}
	cells[solanaCountryColumn] = country
	cells[solanaLocationColumn] = location
	cells[solanaProviderColumn] = provider
	cells[solanaNameColumn] = name
	cells[solanaStakeColumn] = stake
	return strings.Join(cells, ",")
}

func solanaHeader() string {
	cells := make([]string, solanaMinColumns)
	for i := range cells {
		cells[i] = "col"
	}
	return strings.Join(cells, ",")
}

func TestSolanaPositionalRows(t *testing.T) {
	raw := strings.Join([]string{
		solanaHeader(),
		solanaRow("DE", "50.11 8.68", "Hetzner", "validator-a", "1500000"),
		solanaRow("United States", "39.04 -77.48", "AWS", "", "250abc"),
		"too,short,row",
		solanaRow("TOR", "0 0", "", "hidden", "x"),
		solanaRow("Nowhere", "", "Latitude", "v-d", ""),
	}, "\n")

	result := SolanaParser{}.Parse(raw)
	if len(result.Nodes) != 4 {
		t.Fatalf("Nodes = %d, want 4 (short rows skipped)", len(result.Nodes))
	}

	a := result.Nodes[0]
	if a.Name != "validator-a" || a.Provider != "Hetzner" || a.Stake != 1500000 || a.Country != "de" {
		t.Errorf("first validator = %+v", a)
	}
	if a.Latitude != 50.11 || a.Longitude != 8.68 {
		t.Errorf("location = %v,%v", a.Latitude, a.Longitude)
	}

	b := result.Nodes[1]
	if b.Name != "Validator 2" {
		t.Errorf("Name = %q, want positional label", b.Name)
	}
	if b.Stake != 250 {
		t.Errorf("Stake = %v, want integer prefix 250", b.Stake)
	}

	if result.Nodes[2].Stake != 0 || result.Nodes[3].Stake != 0 {
		t.Errorf("unparsable stake should default to 0")
	}
	if result.TorCount != 1 {
		t.Errorf("TorCount = %d, want 1", result.TorCount)
	}
	if len(result.Points) != 2 {
		t.Errorf("Points = %d, want 2", len(result.Points))
	}

	total := 0
	for _, c := range result.Counts {
		total += c.Value
	}
	if total != 2 {
		t.Errorf("counted = %d, want 2 (TOR and unresolved excluded)", total)
	}
}

func TestSolanaOnlyShortRows(t *testing.T) {
	result, err := SolanaParser{}.ParseReport("a,b,c\n1,2,3\n4,5,6\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Empty() {
		t.Errorf("expected no validators, got %d", len(result.Nodes))
	}
}

func TestSolanaHeaderOnly(t *testing.T) {
	result, err := SolanaParser{}.ParseReport(solanaHeader())
	if err == nil {
		t.Error("expected error for header-only export")
	}
	if !result.Empty() {
		t.Errorf("expected empty result")
	}
}

func TestSolanaJSONList(t *testing.T) {
	raw := `[
		{"identity": "Val1", "country": "Germany", "lat": 50.1, "lon": 8.6, "data_center": "Hetzner", "activatedStake": 4200000000},
		{"name": "Val2", "country": "TOR", "stake": "12.5"},
		{"country": "us"}
	]`
	result := SolanaParser{}.Parse(raw)
	if len(result.Nodes) != 3 {
		t.Fatalf("Nodes = %d, want 3", len(result.Nodes))
	}
	first := result.Nodes[0]
	if first.Name != "Val1" || first.Provider != "Hetzner" || first.Stake != 4200000000 || first.Country != "de" {
		t.Errorf("first = %+v", first)
	}
	if result.Nodes[1].Stake != 12 || !result.Nodes[1].Anonymous {
		t.Errorf("second = %+v", result.Nodes[1])
	}
	if result.Nodes[2].Name != "Validator 3" || result.Nodes[2].Stake != 0 {
		t.Errorf("third = %+v", result.Nodes[2])
	}
	if result.TorCount != 1 || len(result.Points) != 1 {
		t.Errorf("TorCount=%d Points=%d", result.TorCount, len(result.Points))
	}
}

func TestSolanaStrayQuoteKeepsLaterRows(t *testing.T) {
	raw := strings.Join([]string{
		solanaHeader(),
		solanaRow("US", "39.04 -77.48", "AWS", "name1", "10"),
		solanaRow(`"DE`, "50.11 8.68", "Hetzner", "name2", "20"),
		solanaRow("FR", "48.85 2.35", "OVH", "name3", "30"),
	}, "\n")

	result := SolanaParser{}.Parse(raw)
	if len(result.Nodes) != 3 {
		t.Fatalf("Nodes = %d, want 3", len(result.Nodes))
	}
	if n := result.Nodes[1]; n.Name != "name2" || n.Country != "de" {
		t.Errorf("quoted row = %+v", n)
	}
	if n := result.Nodes[2]; n.Name != "name3" || n.Provider != "OVH" {
		t.Errorf("row after the quote = %+v", n)
	}
}

func TestSolanaJSONObjectIsUnsupported(t *testing.T) {
	result, err := SolanaParser{}.ParseReport(`{"validators": []}`)
	if !errors.Is(err, errUnsupportedObject) {
		t.Errorf("err = %v, want %v", err, errUnsupportedObject)
	}
	if !result.Empty() {
		t.Errorf("expected empty result, got %+v", result)
	}
}
