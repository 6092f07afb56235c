package handlers

import "net/http"

// Health handles GET /, the liveness check.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Clinic assistant API is running"})
}
