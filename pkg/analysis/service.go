// Package analysis runs the full pipeline over one node dump: network
// detection, parsing, failure simulation and placement advice.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dd0wney/nodelyzer/pkg/advisor"
	"github.com/dd0wney/nodelyzer/pkg/concentration"
	"github.com/dd0wney/nodelyzer/pkg/events"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/metrics"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/parser"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
)

// Request describes one analysis
type Request struct {
	// Network is a network name or alias; empty or "auto" detects it
	Network  string
	FileName string
	Raw      string
	Scenario string
	Targets  []string
	// AnalysisID links the run to a stored record, if any
	AnalysisID string
}

// Dataset is a parsed dump ready for simulation
type Dataset struct {
	Network nodes.Network
	// DetectedBy names the detection rule, empty when the network was given
	DetectedBy string
	Parsed     nodes.ParseResult
}

// Config wires the collaborators of a Service. Every field is optional.
type Config struct {
	Logger     logging.Logger
	Metrics    *metrics.Registry
	Events     events.Publisher
	Thresholds advisor.Thresholds
	Now        func() time.Time
}

// Service runs analyses. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	logger  logging.Logger
	metrics *metrics.Registry
	events  events.Publisher
	advisor *advisor.Advisor
	now     func() time.Time
}

// NewService creates a Service
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		logger:  cfg.Logger.With(logging.Component("analysis")),
		metrics: cfg.Metrics,
		events:  cfg.Events,
		advisor: advisor.New(cfg.Thresholds),
		now:     cfg.Now,
	}
}

// Thresholds returns the advisor thresholds in effect
func (s *Service) Thresholds() advisor.Thresholds {
	return s.advisor.Thresholds
}

// Load resolves the network of raw data and parses it. An empty parse is
// reported as KindNoNodes.
func (s *Service) Load(ctx context.Context, networkName, fileName, raw string) (*Dataset, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newError(KindInvalidInput, "node data is empty", nil)
	}

	network, err := nodes.ParseNetwork(networkName)
	if err != nil {
		return nil, newError(KindUnsupported, "unsupported network", err)
	}

	ds := &Dataset{Network: network}
	if network == "" {
		ds.Network, ds.DetectedBy = parser.DetectWithRule(raw, fileName)
		if s.metrics != nil {
			s.metrics.RecordDetection(ds.Network.String(), ds.DetectedBy)
		}
	}

	log := logging.FromContext(ctx)
	timer := logging.StartTimer(log, "parse", logging.Network(ds.Network.String()))
	parsed, parseErr := parser.ParseReport(ds.Network, raw)
	if parseErr != nil {
		timer.End(logging.String("parse_error", parseErr.Error()))
	} else {
		timer.End(logging.Nodes(len(parsed.Nodes)), logging.Int("tor", parsed.TorCount))
	}
	if s.metrics != nil {
		s.metrics.RecordParse(ds.Network.String(), len(parsed.Nodes), parsed.TorCount, parseErr != nil, timer.Elapsed())
	}

	if parsed.Empty() {
		return nil, newError(KindNoNodes, fmt.Sprintf("no %s nodes found in input", ds.Network), parseErr)
	}
	ds.Parsed = parsed
	return ds, nil
}

// Run loads and analyzes a request
func (s *Service) Run(ctx context.Context, req Request) (*nodes.AnalysisResult, error) {
	start := s.now()
	ds, err := s.Load(ctx, req.Network, req.FileName, req.Raw)
	if err != nil {
		s.recordFailure(req.Network, req.Scenario, err, start)
		return nil, err
	}
	return s.Analyze(ctx, ds, req.Scenario, req.Targets, req.AnalysisID)
}

// Overview runs the baseline analysis with no failure applied
func (s *Service) Overview(ctx context.Context, req Request) (*nodes.AnalysisResult, error) {
	req.Scenario = string(simulation.None)
	req.Targets = nil
	return s.Run(ctx, req)
}

// Analyze simulates a scenario over an already parsed dataset
func (s *Service) Analyze(ctx context.Context, ds *Dataset, scenarioName string, targets []string, analysisID string) (*nodes.AnalysisResult, error) {
	start := s.now()
	scenario, err := simulation.ParseScenario(scenarioName)
	if err != nil {
		e := newError(KindUnsupported, "unsupported scenario", err)
		s.recordFailure(ds.Network.String(), scenarioName, e, start)
		return nil, e
	}

	log := logging.FromContext(ctx).With(
		logging.Network(ds.Network.String()),
		logging.Scenario(scenario.String()),
	)
	if analysisID != "" {
		log = log.With(logging.AnalysisID(analysisID))
	}

	sim := simulation.Simulate(ds.Parsed.Nodes, scenario, targets)
	countries := concentration.ByCountry(sim.Remaining).Shares()
	providers := concentration.ByProvider(sim.Remaining).Shares()

	suggestions := s.advisor.Suggest(advisor.Input{
		Network:    ds.Network,
		Simulation: sim,
		Countries:  countries,
		Providers:  providers,
		TorCount:   ds.Parsed.TorCount,
	})

	result := &nodes.AnalysisResult{
		Network:             ds.Network,
		Scenario:            scenario.String(),
		Targets:             sim.Targets,
		Gini:                sim.Gini,
		Nakamoto:            sim.Nakamoto,
		NakamotoByProvider:  sim.NakamotoByProvider,
		ConnectivityLossPct: sim.ConnectivityLossPct,
		StakeLossPct:        sim.StakeLossPct,
		FailedNodes:         sim.FailedNodes,
		TotalNodes:          sim.TotalNodes,
		RemainingCountries:  sim.RemainingCountries,
		NoMatchingTargets:   sim.NoMatchingTargets,
		TorCount:            ds.Parsed.TorCount,
		PointCount:          len(nodes.Points(sim.Remaining)),
		Countries:           nodes.CountCountries(sim.Remaining),
		Providers:           nodes.CountProviders(sim.Remaining),
		Suggestions:         suggestions,
		Warnings:            warnings(ds, sim),
		GeneratedAt:         s.now().UTC(),
	}

	log.Info("analysis complete",
		logging.Nodes(result.TotalNodes),
		logging.Int("failed", result.FailedNodes),
		logging.Float64("gini", result.Gini),
		logging.Int("nakamoto", result.Nakamoto),
		logging.Latency(s.now().Sub(start)),
	)
	for _, w := range result.Warnings {
		log.Warn(w)
	}

	if s.metrics != nil {
		s.metrics.RecordAnalysis(metrics.AnalysisOutcome{
			Network:           ds.Network.String(),
			Scenario:          scenario.String(),
			Gini:              result.Gini,
			Nakamoto:          result.Nakamoto,
			LossPct:           result.ConnectivityLossPct,
			NoMatchingTargets: result.NoMatchingTargets,
			Duration:          s.now().Sub(start),
		})
	}
	s.publish(ctx, log, analysisID, result)

	return result, nil
}

func (s *Service) publish(ctx context.Context, log logging.Logger, analysisID string, r *nodes.AnalysisResult) {
	if s.events == nil {
		return
	}
	e := events.New(events.TopicAnalysisCompleted, events.AnalysisCompleted{
		AnalysisID:          analysisID,
		Network:             r.Network.String(),
		Scenario:            r.Scenario,
		Targets:             r.Targets,
		Gini:                r.Gini,
		Nakamoto:            r.Nakamoto,
		ConnectivityLossPct: r.ConnectivityLossPct,
		TotalNodes:          r.TotalNodes,
		FailedNodes:         r.FailedNodes,
	})
	if err := s.events.Publish(ctx, e); err != nil {
		log.Warn("failed to publish analysis event", logging.Error(err))
	}
}

func (s *Service) recordFailure(network, scenario string, err error, start time.Time) {
	s.logger.Warn("analysis failed",
		logging.Network(network),
		logging.Scenario(scenario),
		logging.String("kind", KindOf(err).String()),
		logging.Error(err),
	)
	if s.metrics != nil {
		if network == "" {
			network = "auto"
		}
		if scenario == "" {
			scenario = string(simulation.None)
		}
		s.metrics.RecordAnalysis(metrics.AnalysisOutcome{
			Network:  network,
			Scenario: scenario,
			Err:      err,
			Duration: s.now().Sub(start),
		})
	}
}

// warnings explains outcomes that are not errors but deserve attention
func warnings(ds *Dataset, sim simulation.Result) []string {
	var out []string
	switch {
	case sim.Scenario == simulation.Cloud && len(nodes.CountProviders(ds.Parsed.Nodes)) == 0:
		out = append(out, "Node data lacks provider information; the cloud scenario cannot match any node.")
	case sim.Scenario.UsesTargets() && len(sim.Targets) == 0:
		out = append(out, fmt.Sprintf("No targets given for the %s scenario; nothing was removed.", sim.Scenario.Label()))
	case sim.NoMatchingTargets && sim.Scenario.UsesTargets():
		out = append(out, fmt.Sprintf("No nodes matched targets %s.", strings.Join(sim.Targets, ", ")))
	case sim.NoMatchingTargets:
		out = append(out, "The scenario removed no nodes.")
	}
	if ds.Parsed.TorCount > 0 {
		out = append(out, fmt.Sprintf("%d TOR nodes are excluded from country metrics.", ds.Parsed.TorCount))
	}
	return out
}
