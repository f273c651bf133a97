package handler

import "net/http"

// HealthResponse reports liveness and whether the remote datastore is configured.
type HealthResponse struct {
	Status string `json:"status"`
	Remote string `json:"remote"`
}

// Health returns the handler for GET /health.
func Health(remoteConfigured bool) http.HandlerFunc {
	resp := HealthResponse{Status: "healthy", Remote: "unconfigured"}
	if remoteConfigured {
		resp.Remote = "configured"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}
