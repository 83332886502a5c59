package resp

import (
	"encoding/json"
	"net/http"
)

// WriteJSONResponse writes v as a JSON body with the given status code.
func WriteJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error body with a machine-readable reason.
func WriteError(w http.ResponseWriter, status int, reason string) {
	WriteJSONResponse(w, status, map[string]string{"error": reason})
}
