package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Response is the JSON body for the detailed health endpoint.
type Response struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON body for a single health check.
type CheckResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// LivenessHandler returns an HTTP handler for liveness probes.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// Handler returns an HTTP handler that runs the given checkers and reports
// detailed JSON health. Overall status is unhealthy if any check is.
func Handler(checkers ...Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		overall := StatusHealthy
		response := Response{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(checkers)),
		}

		for _, checker := range checkers {
			result := checker.Check(ctx)
			if result.Status != StatusHealthy {
				overall = StatusUnhealthy
			}

			check := CheckResponse{
				Status:  result.Status.String(),
				Message: result.Message,
				Details: result.Details,
			}
			if result.Error != nil {
				check.Error = result.Error.Error()
			}
			response.Checks[checker.Name()] = check
		}

		response.Status = overall.String()

		w.Header().Set("Content-Type", "application/json")
		if overall == StatusHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}
