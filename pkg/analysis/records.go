package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/store"
	"github.com/dd0wney/nodelyzer/pkg/validation"
)

// NewRecord turns a validated create request into a record. Metrics supplied
// by the caller win; otherwise the overview is computed from the dump. A dump
// with no recognisable nodes is still saved, without metrics.
func (s *Service) NewRecord(ctx context.Context, req validation.RecordRequest) (*store.Record, error) {
	rec := &store.Record{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Name:        req.Name,
		RawNodeData: req.NodeData,
		CreatedAt:   s.now().UTC(),
		Metrics:     storeMetrics(req.Metrics),
	}

	network, err := nodes.ParseNetwork(req.Network)
	if err != nil {
		return nil, newError(KindUnsupported, "unsupported network", err)
	}
	rec.Network = network

	result, err := s.overview(ctx, network.String(), req.NodeData, rec.ID)
	switch {
	case err == nil:
		rec.Network = result.Network
		if rec.Metrics == nil {
			rec.Metrics = store.MetricsFrom(result)
		}
	case KindOf(err) == KindNoNodes || KindOf(err) == KindInvalidInput:
		if rec.Network == "" {
			return nil, newError(KindInvalidInput, "network is required when the dump has no recognisable nodes", err)
		}
	default:
		return nil, err
	}
	return rec, nil
}

// PreparePatch converts a validated patch into a store patch. Replacing the
// dump recomputes the metrics unless the caller supplied them.
func (s *Service) PreparePatch(ctx context.Context, st store.Store, id string, p validation.RecordPatch) (store.Patch, error) {
	patch := store.Patch{
		Name:        p.Name,
		RawNodeData: p.NodeData,
		Metrics:     storeMetrics(p.Metrics),
	}
	if p.NodeData == nil || patch.Metrics != nil {
		return patch, nil
	}

	current, err := st.Get(ctx, id)
	if err != nil {
		return store.Patch{}, err
	}
	result, err := s.overview(ctx, current.Network.String(), *p.NodeData, id)
	switch {
	case err == nil:
		patch.Metrics = store.MetricsFrom(result)
	case KindOf(err) == KindNoNodes || KindOf(err) == KindInvalidInput:
		// metrics of the previous dump no longer apply
		zero, none, loss := 0.0, 0, fmt.Sprintf("%.2f%%", 0.0)
		patch.Metrics = &store.Metrics{Gini: &zero, Nakamoto: &none, ConnectivityLoss: &loss}
	default:
		return store.Patch{}, err
	}
	return patch, nil
}

// Rerun analyzes a saved record under a scenario
func (s *Service) Rerun(ctx context.Context, rec *store.Record, scenario string, targets []string) (*nodes.AnalysisResult, error) {
	return s.Run(ctx, Request{
		Network:    rec.Network.String(),
		Raw:        rec.RawNodeData,
		Scenario:   scenario,
		Targets:    targets,
		AnalysisID: rec.ID,
	})
}

func (s *Service) overview(ctx context.Context, network, raw, id string) (*nodes.AnalysisResult, error) {
	return s.Overview(ctx, Request{Network: network, Raw: raw, AnalysisID: id})
}

func storeMetrics(m *validation.RecordMetrics) *store.Metrics {
	if m == nil {
		return nil
	}
	return &store.Metrics{
		Gini:             m.Gini,
		Nakamoto:         m.Nakamoto,
		ConnectivityLoss: m.ConnectivityLoss,
	}
}
