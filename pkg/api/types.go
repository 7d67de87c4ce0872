package api

import (
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DetectResponse names the network a dump belongs to and the rule that matched
type DetectResponse struct {
	Network nodes.Network `json:"network"`
	Rule    string        `json:"rule"`
}

// ParseResponse is a parse result tagged with the network it was parsed as
type ParseResponse struct {
	Network    nodes.Network `json:"network"`
	DetectedBy string        `json:"detectedBy,omitempty"`
	nodes.ParseResult
}

// FailureResponse is the reply to /simulate-failure. Field names follow the
// snake_case shape dashboards already consume.
type FailureResponse struct {
	TotalNodes         int      `json:"total_nodes"`
	FailedNodes        int      `json:"failed_nodes"`
	ConnectivityLoss   string   `json:"connectivity_loss"`
	Scenario           string   `json:"scenario"`
	Gini               float64  `json:"gini"`
	Nakamoto           int      `json:"nakamoto"`
	RemainingCountries int      `json:"remaining_countries"`
	NoMatchingTargets  bool     `json:"no_matching_targets"`
	Warnings           []string `json:"warnings,omitempty"`
}

// OptimizeResponse is the reply to /optimize
type OptimizeResponse struct {
	Gini        float64  `json:"gini"`
	Nakamoto    int      `json:"nakamoto"`
	Suggestions []string `json:"suggestions"`
}

// RecordListResponse lists a user's saved analyses, newest first
type RecordListResponse struct {
	Analyses []*store.Record `json:"analyses"`
	Count    int             `json:"count"`
}

// RunResponse pairs a re-run result with the record it updated
type RunResponse struct {
	Analysis *store.Record         `json:"analysis"`
	Result   *nodes.AnalysisResult `json:"result"`
}
