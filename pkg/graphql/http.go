package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/nodelyzer/pkg/logging"
)

// Request represents a GraphQL HTTP request
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response represents a GraphQL HTTP response
type Response struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Error represents a GraphQL error
type Error struct {
	Message string `json:"message"`
}

// Handler serves GraphQL over HTTP. CORS is left to the API middleware.
type Handler struct {
	schema   graphql.Schema
	maxDepth int
}

// NewHandler creates a handler enforcing maxDepth (0 disables the check)
func NewHandler(schema graphql.Schema, maxDepth int) *Handler {
	return &Handler{schema: schema, maxDepth: maxDepth}
}

// ServeHTTP accepts POST bodies and GET ?query= requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, Response{Errors: []Error{{Message: "invalid request body"}}})
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, Response{Errors: []Error{{Message: "method not allowed"}}})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, Response{Errors: []Error{{Message: "query is required"}}})
		return
	}

	result := Execute(r.Context(), h.schema, req, h.maxDepth)

	response := Response{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]Error, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = Error{Message: err.Message}
		}
		logging.FromContext(r.Context()).Debug("graphql request returned errors",
			logging.Count(len(result.Errors)),
			logging.String("first_error", result.Errors[0].Message),
		)
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
