package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/nodelyzer/pkg/advisor"
	"github.com/dd0wney/nodelyzer/pkg/events"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/metrics"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

const ethereumCSV = "name,country,lat,lon,provider\n" +
	"a,us,40.7,-74.0,AWS\n" +
	"b,us,37.7,-122.4,AWS\n" +
	"c,us,47.6,-122.3,Google\n" +
	"d,de,52.5,13.4,Hetzner\n" +
	"e,de,48.1,11.6,Hetzner\n"

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *events.Bus, *metrics.Registry) {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(func() { bus.Close() })
	reg := metrics.NewRegistry()
	svc := NewService(Config{
		Logger:  logging.NewNopLogger(),
		Metrics: reg,
		Events:  bus,
		Now:     func() time.Time { return fixedNow },
	})
	return svc, bus, reg
}

func TestRunRegionScenario(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Run(context.Background(), Request{
		Network:  "ethereum",
		Raw:      ethereumCSV,
		Scenario: "region",
		Targets:  []string{"United States"},
	})
	require.NoError(t, err)

	assert.Equal(t, nodes.Ethereum, result.Network)
	assert.Equal(t, "region", result.Scenario)
	assert.Equal(t, []string{"us"}, result.Targets)
	assert.Equal(t, 3, result.FailedNodes)
	assert.Equal(t, 5, result.TotalNodes)
	assert.Equal(t, 1, result.RemainingCountries)
	assert.Equal(t, "60.00%", result.ConnectivityLoss())
	assert.Equal(t, []nodes.CountryCount{{Code: "de", Value: 2}}, result.Countries)
	assert.Equal(t, 2, result.PointCount)
	assert.Equal(t, fixedNow, result.GeneratedAt)
	assert.NotEmpty(t, result.Suggestions)
	assert.True(t, strings.HasPrefix(result.Suggestions[0], "A regional outage affecting US"))
}

func TestOverviewDetectsNetwork(t *testing.T) {
	svc, _, reg := newTestService(t)

	result, err := svc.Overview(context.Background(), Request{
		FileName: "peers.csv",
		Raw:      ethereumCSV,
		Scenario: "region",
		Targets:  []string{"us"},
	})
	require.NoError(t, err)
	assert.Equal(t, nodes.Ethereum, result.Network)
	assert.Equal(t, "none", result.Scenario)
	assert.Zero(t, result.FailedNodes)
	assert.Zero(t, result.ConnectivityLossPct)
	assert.Equal(t, 2, result.RemainingCountries)

	counter, err := reg.DetectionsTotal.GetMetricWithLabelValues("ethereum", "default")
	require.NoError(t, err)
	assert.NotNil(t, counter)
}

func TestRunErrors(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name string
		req  Request
		kind Kind
		is   error
	}{
		{"empty data", Request{Raw: "  \n"}, KindInvalidInput, nil},
		{"unknown network", Request{Network: "dogecoin", Raw: ethereumCSV}, KindUnsupported, ErrUnknownNetwork},
		{"unknown scenario", Request{Network: "eth", Raw: ethereumCSV, Scenario: "meteor"}, KindUnsupported, ErrUnknownScenario},
		{"no nodes", Request{Network: "bitcoin", Raw: `{"nodes": `}, KindNoNodes, nil},
		{"header only", Request{Network: "ethereum", Raw: "name,country\n"}, KindNoNodes, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)

			var ae *Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.kind, ae.Kind)
			assert.Equal(t, tt.kind, KindOf(err))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestCloudWithoutProvidersWarns(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Run(context.Background(), Request{
		Network:  "ethereum",
		Raw:      "name,country\na,us\nb,de\n",
		Scenario: "cloud",
		Targets:  []string{"aws"},
	})
	require.NoError(t, err)
	assert.True(t, result.NoMatchingTargets)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "lacks provider information")
}

func TestMajorityScenarioSolana(t *testing.T) {
	svc, _, _ := newTestService(t)

	raw := `[
		{"identity": "whale", "country": "us", "data_center": "AWS", "activatedStake": 600},
		{"identity": "v2", "country": "de", "data_center": "Hetzner", "activatedStake": 200},
		{"identity": "v3", "country": "fr", "data_center": "OVH", "activatedStake": 200}
	]`
	result, err := svc.Run(context.Background(), Request{Network: "solana", Raw: raw, Scenario: "51"})
	require.NoError(t, err)

	assert.Equal(t, "51", result.Scenario)
	assert.Equal(t, 1, result.FailedNodes)
	assert.InDelta(t, 60.0, result.StakeLossPct, 1e-9)
	assert.Equal(t, 2, result.RemainingCountries)
}

func TestRunPublishesEvent(t *testing.T) {
	svc, bus, _ := newTestService(t)

	sub, err := bus.Subscribe(context.Background(), events.TopicAnalysisCompleted)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), Request{Network: "ethereum", Raw: ethereumCSV, AnalysisID: "rec-1"})
	require.NoError(t, err)

	select {
	case e := <-sub.Events():
		payload, ok := e.Payload.(events.AnalysisCompleted)
		require.True(t, ok)
		assert.Equal(t, "rec-1", payload.AnalysisID)
		assert.Equal(t, "ethereum", payload.Network)
		assert.Equal(t, 5, payload.TotalNodes)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestBitcoinTorWarning(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(Config{Logger: logging.NewJSONLogger(&buf, logging.DebugLevel)})

	raw := `{"nodes": {
		"a.onion:8333": [70016, "", 0, 0, 0, "", "", "", 0, 0, "", "TOR", ""],
		"1.1.1.1:8333": [70016, "", 0, 0, 0, "", "", "DE", 52.5, 13.4, "", "AS1", "Hetzner"]
	}}`
	result, err := svc.Run(context.Background(), Request{Raw: raw, FileName: "snapshot.json"})
	require.NoError(t, err)

	assert.Equal(t, nodes.Bitcoin, result.Network)
	assert.Equal(t, 1, result.TorCount)
	assert.Contains(t, result.Warnings, "1 TOR nodes are excluded from country metrics.")
	assert.Contains(t, buf.String(), `"msg":"analysis complete"`)
}

func TestSolanaTorWarning(t *testing.T) {
	svc, _, _ := newTestService(t)

	raw := `[
		{"identity": "v1", "country": "TOR", "activatedStake": 100},
		{"identity": "v2", "country": "de", "lat": 52.5, "lon": 13.4, "activatedStake": 100}
	]`
	result, err := svc.Run(context.Background(), Request{Network: "solana", Raw: raw})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TorCount)
	assert.Equal(t, []nodes.CountryCount{{Code: "de", Value: 1}}, result.Countries)
	assert.Contains(t, result.Warnings, "1 TOR nodes are excluded from country metrics.")
}

func TestThresholdsFromConfig(t *testing.T) {
	svc := NewService(Config{Thresholds: advisor.Thresholds{MinNakamoto: 1}})
	assert.Equal(t, 1, svc.Thresholds().MinNakamoto)
	assert.Equal(t, 0.5, svc.Thresholds().MaxGini)
}
