// Package httputil writes the JSON responses of the debug endpoints.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
)

// WriteJSON writes data as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		monitoring.Logger.WithError(err).Warn("Failed to encode JSON response.")
	}
}

// WriteJSONError writes {"error": msg} with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// MethodNotAllowed rejects a request, advertising the allowed methods.
func MethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}
