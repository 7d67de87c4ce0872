package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// sameResult compares two results through their JSON form so NaN coordinates
// compare equal
func sameResult(a, b nodes.ParseResult) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

func TestFor(t *testing.T) {
	for _, network := range nodes.Networks {
		p, err := For(network)
		if err != nil {
			t.Fatalf("For(%s): %v", network, err)
		}
		if p.Network() != network {
			t.Errorf("For(%s).Network() = %s", network, p.Network())
		}
	}

	if _, err := For("dogecoin"); !errors.Is(err, nodes.ErrUnknownNetwork) {
		t.Errorf("expected ErrUnknownNetwork, got %v", err)
	}
}

func TestParseUnknownNetworkIsEmpty(t *testing.T) {
	result := Parse("dogecoin", "lat,lon\n1,2\n")
	if !result.Empty() || result.Points == nil || result.Counts == nil {
		t.Errorf("expected empty non-nil result, got %+v", result)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	inputs := map[nodes.Network]string{
		nodes.Bitcoin:  bitnodesSnapshot,
		nodes.Ethereum: "name,country,lat,lon\na,de,1,2\nb,fr,,\n",
		nodes.Solana:   solanaHeader() + "\n" + solanaRow("DE", "1 2", "AWS", "v", "10"),
	}
	for network, raw := range inputs {
		first := Parse(network, raw)
		second := Parse(network, raw)
		if !sameResult(first, second) {
			t.Errorf("%s: parsing twice gave different results", network)
		}
	}
}

func TestParseStripsByteOrderMark(t *testing.T) {
	result := Parse(nodes.Ethereum, "\ufeffname,country\na,de\n")
	if len(result.Counts) != 1 || result.Counts[0].Code != "de" {
		t.Errorf("Counts = %+v", result.Counts)
	}
}

func TestCountsAreSorted(t *testing.T) {
	raw := "country\nfr\nde\nde\nus\nus\nus\nat\n"
	result := Parse(nodes.Ethereum, raw)
	want := []string{"us", "de", "at", "fr"}
	if len(result.Counts) != len(want) {
		t.Fatalf("Counts = %+v", result.Counts)
	}
	for i, code := range want {
		if result.Counts[i].Code != code {
			t.Errorf("Counts[%d] = %s, want %s", i, result.Counts[i].Code, code)
		}
	}
}

// csvFixtureRows are the building blocks for generated dumps: each row carries
// whether it should count towards a country and whether it has a location.
var csvFixtureRows = []struct {
	line      string
	countable bool
	located   bool
}{
	{"1.1.1.1,AS1,52.5,13.4,de", true, true},
	{"2.2.2.2,AS2,0,0,us", true, false},
	{"3.3.3.3,AS3,,,fr", true, false},
	{"a.onion,TOR,0,0,", false, false},
	{"4.4.4.4,TOR,10,10,", false, true},
	{"5.5.5.5,AS5,-33.9,151.2,Australia", true, true},
	{"6.6.6.6,AS6,40.7,-74.0,Atlantis", false, true},
}

func TestBitcoinCSVProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	build := func(picks []int) (string, int, int) {
		var b strings.Builder
		b.WriteString("address,asn,lat,lon,country\n")
		countable, located := 0, 0
		for _, idx := range picks {
			row := csvFixtureRows[idx]
			b.WriteString(row.line)
			b.WriteByte('\n')
			if row.countable {
				countable++
			}
			if row.located {
				located++
			}
		}
		return b.String(), countable, located
	}

	pick := gen.SliceOf(gen.IntRange(0, len(csvFixtureRows)-1))

	properties.Property("counts sum to the countable rows", prop.ForAll(
		func(picks []int) bool {
			raw, countable, _ := build(picks)
			total := 0
			result := BitcoinParser{}.Parse(raw)
			for _, c := range result.Counts {
				total += c.Value
			}
			return total == countable
		},
		pick,
	))

	properties.Property("points are exactly the located rows", prop.ForAll(
		func(picks []int) bool {
			raw, _, located := build(picks)
			result := BitcoinParser{}.Parse(raw)
			for _, p := range result.Points {
				if !p.HasLocation() {
					return false
				}
			}
			return len(result.Points) == located
		},
		pick,
	))

	properties.Property("every row becomes a node", prop.ForAll(
		func(picks []int) bool {
			raw, _, _ := build(picks)
			return len(BitcoinParser{}.Parse(raw).Nodes) == len(picks)
		},
		pick,
	))

	properties.TestingRun(t)
}
