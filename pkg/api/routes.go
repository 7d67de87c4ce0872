package api

import (
	"net/http"

	"github.com/dd0wney/nodelyzer/pkg/health"
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /health", s.health.Handler(health.KindHealth))
	mux.Handle("GET /health/ready", s.health.Handler(health.KindReadiness))
	mux.Handle("GET /health/live", s.health.Handler(health.KindLiveness))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// stateless analysis
	mux.HandleFunc("POST /detect", s.handleDetect)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("POST /simulate-failure", s.handleSimulateFailure)
	mux.HandleFunc("POST /optimize", s.handleOptimize)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)

	// saved analyses
	mux.HandleFunc("POST /analyses", s.handleCreateAnalysis)
	mux.HandleFunc("GET /analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("PATCH /analyses/{id}", s.handleUpdateAnalysis)
	mux.HandleFunc("POST /analyses/{id}/run", s.handleRunAnalysis)
	mux.HandleFunc("GET /analyses/{id}/report", s.handleReport)

	mux.Handle("/graphql", s.graphql)

	return mux
}
