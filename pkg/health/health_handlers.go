package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregate response for kind. Overall health stays 200
// while degraded; readiness and liveness are binary.
func (c *Checker) Handler(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Run(r.Context(), kind)

		code := http.StatusOK
		switch {
		case response.Status == StatusUnhealthy:
			code = http.StatusServiceUnavailable
		case kind != KindHealth && response.Status != StatusHealthy:
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(response)
	}
}
