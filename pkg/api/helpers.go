package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/store"
	"github.com/dd0wney/nodelyzer/pkg/validation"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode json response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondServiceError maps store and analysis errors to status codes.
// Server side failures are logged and answered with a generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var ae *analysis.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, store.ErrInvalidRecord):
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.As(err, &ae):
		switch ae.Kind {
		case analysis.KindInvalidInput, analysis.KindUnsupported:
			s.respondError(w, http.StatusBadRequest, ae.Detail)
			return
		case analysis.KindNoNodes:
			s.respondError(w, http.StatusUnprocessableEntity, ae.Detail)
			return
		}
	}

	logging.FromContext(r.Context()).Error(operation+" failed",
		logging.Operation(operation),
		logging.Error(err),
	)
	s.respondError(w, http.StatusInternalServerError, operation+" failed")
}

// decodeJSON decodes the body into v and validates its struct tags. It
// answers the request itself and returns false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validation.Struct(v); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// nodesToRaw turns a posted node list into a JSON array dump the parsers
// accept
func nodesToRaw(list []map[string]any) (string, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// splitTargets reads a comma separated query parameter
func splitTargets(q string) []string {
	var out []string
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
