package api

import (
	"net/http"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/parser"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
	"github.com/dd0wney/nodelyzer/pkg/validation"
)

// nodeListFileName hints detection for posted node lists
const nodeListFileName = "nodes.json"

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req validation.DetectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	network, rule := parser.DetectWithRule(req.Data, req.FileName)
	if s.metrics != nil {
		s.metrics.RecordDetection(network.String(), rule)
	}
	s.respondJSON(w, http.StatusOK, DetectResponse{Network: network, Rule: rule})
}

// handleParse never fails on content: unparseable dumps yield an empty result
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req validation.ParseRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	network, err := nodes.ParseNetwork(req.Network)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := ParseResponse{Network: network}
	if network == "" {
		resp.Network, resp.DetectedBy = parser.DetectWithRule(req.Data, req.FileName)
	}

	resp.ParseResult = parser.Parse(resp.Network, req.Data)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulateFailure(w http.ResponseWriter, r *http.Request) {
	var req validation.SimulateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	raw, err := nodesToRaw(req.Nodes)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "nodes are not serializable")
		return
	}

	result, err := s.analysis.Run(r.Context(), analysis.Request{
		Network:  req.Network,
		FileName: nodeListFileName,
		Raw:      raw,
		Scenario: req.Scenario,
		Targets:  req.Targets,
	})
	if err != nil {
		s.respondServiceError(w, r, "simulate failure", err)
		return
	}

	scenario := result.Scenario
	if scenario == simulation.None.String() {
		scenario = simulation.None.Label()
	}
	s.respondJSON(w, http.StatusOK, FailureResponse{
		TotalNodes:         result.TotalNodes,
		FailedNodes:        result.FailedNodes,
		ConnectivityLoss:   result.ConnectivityLoss(),
		Scenario:           scenario,
		Gini:               result.Gini,
		Nakamoto:           result.Nakamoto,
		RemainingCountries: result.RemainingCountries,
		NoMatchingTargets:  result.NoMatchingTargets,
		Warnings:           result.Warnings,
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req validation.OptimizeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	raw, err := nodesToRaw(req.Nodes)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "nodes are not serializable")
		return
	}

	result, err := s.analysis.Overview(r.Context(), analysis.Request{
		Network:  req.Network,
		FileName: nodeListFileName,
		Raw:      raw,
	})
	if err != nil {
		s.respondServiceError(w, r, "optimize", err)
		return
	}
	s.respondJSON(w, http.StatusOK, OptimizeResponse{
		Gini:        result.Gini,
		Nakamoto:    result.Nakamoto,
		Suggestions: result.Suggestions,
	})
}

// handleAnalyze runs the full pipeline over raw dump text or a node list
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req validation.AnalyzeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	raw, fileName := req.Data, req.FileName
	if raw == "" {
		var err error
		if raw, err = nodesToRaw(req.Nodes); err != nil {
			s.respondError(w, http.StatusBadRequest, "nodes are not serializable")
			return
		}
		if fileName == "" {
			fileName = nodeListFileName
		}
	}

	result, err := s.analysis.Run(r.Context(), analysis.Request{
		Network:  req.Network,
		FileName: fileName,
		Raw:      raw,
		Scenario: req.Scenario,
		Targets:  req.Targets,
	})
	if err != nil {
		s.respondServiceError(w, r, "analyze", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}
