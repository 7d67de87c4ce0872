package parser

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

const bitnodesSnapshot = `{
  "timestamp": 1700000000,
  "total_nodes": 4,
  "latest_height": 820000,
  "nodes": {
    "1.2.3.4:8333": [70016, "/Satoshi:25.0.0/", 1699990000, 1037, 820000, "host-a", "Frankfurt", "DE", 50.11, 8.68, "Europe/Berlin", "AS16509", "Amazon.com, Inc."],
    "5.6.7.8:8333": [70016, "/Satoshi:25.0.0/", 1699990000, 1037, 820000, "host-b", "Ashburn", "US", 39.04, -77.48, "America/New_York", "AS14618", "Amazon.com, Inc."],
    "abcdefghijklmnop.onion:8333": [70016, "/Satoshi:24.0.1/", 1699990000, 1037, 820000, null, null, null, 0.0, 0.0, null, "TOR", "Tor network"],
    "qrstuvwxyz234567.onion:8333": [70016, "/Satoshi:24.0.1/", 1699990000, 1037, 820000, null, null, "DE", 0.0, 0.0, null, "AS24940", "Hetzner"]
  }
}`

func TestBitcoinSnapshot(t *testing.T) {
	result := BitcoinParser{}.Parse(bitnodesSnapshot)

	if len(result.Nodes) != 4 {
		t.Fatalf("Nodes = %d, want 4", len(result.Nodes))
	}
	if len(result.Points) != 2 {
		t.Errorf("Points = %d, want 2 (onion nodes sit at 0,0)", len(result.Points))
	}
	if result.TorCount != 2 {
		t.Errorf("TorCount = %d, want 2", result.TorCount)
	}

	want := []nodes.CountryCount{{Code: "de", Value: 1}, {Code: "us", Value: 1}}
	if !reflect.DeepEqual(result.Counts, want) {
		t.Errorf("Counts = %+v, want %+v", result.Counts, want)
	}

	first := result.Nodes[0]
	if first.Address != "1.2.3.4:8333" || first.Country != "de" || first.Provider != "Amazon.com, Inc." {
		t.Errorf("first node = %+v", first)
	}
	if first.Stake != 1 {
		t.Errorf("default stake = %v, want 1", first.Stake)
	}
}

func TestBitcoinSnapshotOnionIgnoresCountry(t *testing.T) {
	raw := `{"nodes": {"zzzz.onion:8333": [70016, "", 0, 0, 0, "", "", "US", 10.0, 20.0, "", "AS1", ""]}}`
	result := BitcoinParser{}.Parse(raw)

	if result.TorCount != 1 {
		t.Errorf("TorCount = %d, want 1", result.TorCount)
	}
	if len(result.Counts) != 0 {
		t.Errorf("Counts = %+v, want none: TOR nodes are excluded from country aggregation", result.Counts)
	}
	if len(result.Points) != 1 {
		t.Errorf("Points = %d, want 1", len(result.Points))
	}
}

func TestBitcoinCSV(t *testing.T) {
	raw := "address,asn,lat,lon,country\n" +
		"1.1.1.1:8333,AS1,52.52,13.40,DE\n" +
		"\"2.2.2.2:8333\",\"AS2\",\"48.85\",\"2.35\",\"France\"\n" +
		"xyz.onion:8333,TOR,0,0,\n" +
		"3.3.3.3:8333,TOR,,,\n" +
		"4.4.4.4:8333,AS4,,,US\n" +
		"5.5.5.5:8333,AS5,10,20,TOR\n"

	result := BitcoinParser{}.Parse(raw)

	if len(result.Nodes) != 6 {
		t.Fatalf("Nodes = %d, want 6", len(result.Nodes))
	}
	if result.TorCount != 3 {
		t.Errorf("TorCount = %d, want 3", result.TorCount)
	}
	if len(result.Points) != 3 {
		t.Errorf("Points = %d, want 3", len(result.Points))
	}

	counts := map[string]int{}
	for _, c := range result.Counts {
		counts[c.Code] = c.Value
	}
	if counts["de"] != 1 || counts["fr"] != 1 || counts["us"] != 1 || len(counts) != 3 {
		t.Errorf("Counts = %+v", result.Counts)
	}
	if result.Nodes[1].Address != "2.2.2.2:8333" {
		t.Errorf("quoted cell not stripped: %q", result.Nodes[1].Address)
	}
	if result.Nodes[0].Name != "Node 1" {
		t.Errorf("Name = %q, want Node 1", result.Nodes[0].Name)
	}
}

func TestBitcoinSemicolonAndTabDelimiters(t *testing.T) {
	for name, raw := range map[string]string{
		"semicolon": "Latitude;Longitude;CC\n52.5;13.4;de\n40.7;-74.0;us\n",
		"tab":       "lat\tlng\tcountry_code\n52.5\t13.4\tde\n40.7\t-74.0\tus\n",
	} {
		t.Run(name, func(t *testing.T) {
			result := BitcoinParser{}.Parse(raw)
			if len(result.Points) != 2 || len(result.Counts) != 2 {
				t.Errorf("points=%d counts=%+v", len(result.Points), result.Counts)
			}
		})
	}
}

func TestBitcoinJSONArray(t *testing.T) {
	raw := `[
		{"name": "alpha", "lat": 52.5, "lon": 13.4, "country": "DE"},
		{"Latitude": "40.7", "Longitude": "-74.0", "cc": "United States"},
		{"lat": null, "lon": null, "country": "TOR"},
		"not an object"
	]`
	result := BitcoinParser{}.Parse(raw)

	if len(result.Nodes) != 3 {
		t.Fatalf("Nodes = %d, want 3", len(result.Nodes))
	}
	if result.Nodes[0].Name != "alpha" || result.Nodes[1].Name != "Node 2" {
		t.Errorf("names = %q, %q", result.Nodes[0].Name, result.Nodes[1].Name)
	}
	if result.Nodes[1].Country != "us" {
		t.Errorf("country = %q, want us", result.Nodes[1].Country)
	}
	if result.TorCount != 1 || len(result.Points) != 2 {
		t.Errorf("TorCount=%d Points=%d", result.TorCount, len(result.Points))
	}
	if !math.IsNaN(result.Nodes[2].Latitude) {
		t.Errorf("missing latitude should be NaN, got %v", result.Nodes[2].Latitude)
	}
}

func TestBitcoinMalformedInputs(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"broken array":  `[{"lat": 1,`,
		"broken object": `{"nodes": {"a": [1,2`,
		"header only":   "lat,lon,country\n",
		"nodes not map": `{"nodes": [1, 2, 3]}`,
		"whitespace":    "   \n\n  ",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := BitcoinParser{}.ParseReport(raw)
			if err == nil {
				t.Errorf("expected a structural error")
			}
			if !result.Empty() || len(result.Points) != 0 || len(result.Counts) != 0 || result.TorCount != 0 {
				t.Errorf("expected empty result, got %+v", result)
			}
		})
	}
}

func TestBitcoinObjectWithoutNodesIsUnsupported(t *testing.T) {
	tests := map[string]string{
		"single line":    `{"status": "ok"}`,
		"pretty printed": "{\n\"foo\": 1,\n\"bar\": 2\n}",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := BitcoinParser{}.ParseReport(raw)
			if !errors.Is(err, errUnsupportedObject) {
				t.Errorf("err = %v, want %v", err, errUnsupportedObject)
			}
			if !result.Empty() {
				t.Errorf("expected empty result, got %+v", result)
			}
		})
	}
}

func TestBitcoinUnterminatedQuoteOnlyDegradesItsRow(t *testing.T) {
	raw := "name,country,lat,lon\n" +
		"n1,us,1,1\n" +
		"\"n2,de,2,2\n" +
		"n3,fr,3,3\n" +
		"n4,jp,4,4\n" +
		"n5,br,5,5\n"

	result := BitcoinParser{}.Parse(raw)

	want := []nodes.CountryCount{{Code: "br", Value: 1}, {Code: "fr", Value: 1}, {Code: "jp", Value: 1}, {Code: "us", Value: 1}}
	if !reflect.DeepEqual(result.Counts, want) {
		t.Errorf("Counts = %+v, want %+v", result.Counts, want)
	}
	if len(result.Points) != 4 {
		t.Errorf("Points = %d, want 4", len(result.Points))
	}
	last := result.Nodes[len(result.Nodes)-1]
	if last.Name != "n5" {
		t.Errorf("last node = %q, rows after the bad quote were lost", last.Name)
	}
}

func TestBitcoinSnapshotDeterministic(t *testing.T) {
	a := BitcoinParser{}.Parse(bitnodesSnapshot)
	for i := 0; i < 5; i++ {
		b := BitcoinParser{}.Parse(bitnodesSnapshot)
		if !sameResult(a, b) {
			t.Fatal("snapshot parse is not deterministic")
		}
	}
}
