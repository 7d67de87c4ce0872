package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/report"
	"github.com/dd0wney/nodelyzer/pkg/store"
	"github.com/dd0wney/nodelyzer/pkg/validation"
)

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req validation.RecordRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.analysis.NewRecord(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, "create analysis", err)
		return
	}
	if _, err := s.store.Create(r.Context(), rec); err != nil {
		s.respondServiceError(w, r, "create analysis", err)
		return
	}

	logging.FromContext(r.Context()).Info("analysis saved",
		logging.AnalysisID(rec.ID),
		logging.UserID(rec.UserID),
		logging.Network(rec.Network.String()),
	)
	w.Header().Set("Location", "/analyses/"+rec.ID)
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		s.respondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	records, err := s.store.ListByUser(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, r, "list analyses", err)
		return
	}
	if records == nil {
		records = []*store.Record{}
	}
	s.respondJSON(w, http.StatusOK, RecordListResponse{Analyses: records, Count: len(records)})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, r, "get analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req validation.RecordPatch
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateRecordPatch(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch, err := s.analysis.PreparePatch(r.Context(), s.store, id, req)
	if err != nil {
		s.respondServiceError(w, r, "update analysis", err)
		return
	}
	rec, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		s.respondServiceError(w, r, "update analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

// handleRunAnalysis re-runs a saved dump under a scenario and stores the
// resulting headline metrics on the record
func (s *Server) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req validation.RunRequest
	if r.ContentLength != 0 {
		if !s.decodeJSON(w, r, &req) {
			return
		}
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, "run analysis", err)
		return
	}
	result, err := s.analysis.Rerun(r.Context(), rec, req.Scenario, req.Targets)
	if err != nil {
		s.respondServiceError(w, r, "run analysis", err)
		return
	}
	updated, err := s.store.Update(r.Context(), id, store.Patch{Metrics: store.MetricsFrom(result)})
	if err != nil {
		s.respondServiceError(w, r, "run analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, RunResponse{Analysis: updated, Result: result})
}

// handleReport renders the report bundle of a saved analysis. The scenario
// and comma separated targets come from the query string.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := report.ParseFormat(q.Get("format"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, r, "report", err)
		return
	}
	result, err := s.analysis.Rerun(r.Context(), rec, q.Get("scenario"), splitTargets(q.Get("targets")))
	if err != nil {
		s.respondServiceError(w, r, "report", err)
		return
	}

	var buf bytes.Buffer
	if err := report.Build(rec.Name, result).Encode(&buf, format); err != nil {
		s.respondServiceError(w, r, "report", err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
