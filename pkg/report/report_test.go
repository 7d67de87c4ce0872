package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

func sampleResult() *nodes.AnalysisResult {
	return &nodes.AnalysisResult{
		Network:             nodes.Bitcoin,
		Scenario:            "region",
		Targets:             []string{"us"},
		Gini:                0.25,
		Nakamoto:            2,
		ConnectivityLossPct: 60,
		FailedNodes:         3,
		TotalNodes:          5,
		RemainingCountries:  2,
		TorCount:            4,
		PointCount:          2,
		Countries: []nodes.CountryCount{
			{Code: "fr", Value: 1},
			{Code: "de", Value: 2},
			{Code: "zz", Value: 1},
		},
		Providers:   []nodes.ProviderCount{{Name: "Hetzner", Value: 3}, {Name: "OVH", Value: 1}},
		Suggestions: []string{"Add nodes in underrepresented countries: FR, ZZ, DE"},
		GeneratedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	b := Build("Weekly snapshot", sampleResult())

	assert.Equal(t, "Weekly snapshot", b.Name)
	assert.Equal(t, "60.00%", b.Metrics.ConnectivityLoss)
	assert.Equal(t, 4, b.TorCount)
	assert.Equal(t, 2, b.PointCount)

	require.Len(t, b.Countries, 3)
	assert.Equal(t, CountryRow{Code: "DE", Name: "Germany", Region: "Europe", Nodes: 2, Percent: 50}, b.Countries[0])
	assert.Equal(t, "FR", b.Countries[1].Code, "ties order by code")
	assert.Equal(t, "ZZ", b.Countries[2].Name, "unknown codes fall back to the code")
	assert.Equal(t, 25.0, b.Countries[2].Percent)

	require.Len(t, b.Regions, 5)
	for _, r := range b.Regions {
		if r.Region == "Europe" {
			assert.Equal(t, 3, r.Nodes)
			assert.Equal(t, 75.0, r.Percent)
		} else {
			assert.Zero(t, r.Nodes, r.Region)
		}
	}

	require.Len(t, b.Providers, 2)
	assert.Equal(t, 75.0, b.Providers[0].Percent)
}

func TestBuildEmpty(t *testing.T) {
	b := Build("", &nodes.AnalysisResult{Network: nodes.Solana})
	assert.Empty(t, b.Countries)
	assert.Empty(t, b.Providers)
	for _, r := range b.Regions {
		assert.Zero(t, r.Percent)
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build("x", sampleResult()).Encode(&buf, JSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "bitcoin", decoded["network"])
	assert.EqualValues(t, 4, decoded["torCount"])
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build("x", sampleResult()).Encode(&buf, YAML))

	var decoded struct {
		Metrics struct {
			Nakamoto int `yaml:"nakamoto"`
		} `yaml:"metrics"`
		Countries []CountryRow `yaml:"countries"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Metrics.Nakamoto)
	assert.Len(t, decoded.Countries, 3)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", JSON, false},
		{"JSON", JSON, false},
		{"yml", YAML, false},
		{"yaml", YAML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "application/x-yaml", YAML.ContentType())
	assert.Error(t, Build("x", sampleResult()).Encode(&bytes.Buffer{}, Format("pdf")))
}
