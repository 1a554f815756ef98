// Package shared holds the response helpers every handler uses, so the
// envelope stays uniform: flat JSON with a success flag, and business
// failures reported as HTTP 200 with success=false. 5xx is reserved for
// failures that prevent producing any structured payload at all.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "gatehouse/pkg/domain-errors"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a flat success payload; extra fields merge next to
// "success": true.
func WriteSuccess(w http.ResponseWriter, fields map[string]any) {
	payload := map[string]any{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	WriteJSON(w, http.StatusOK, payload)
}

// WriteFailure converts a domain error into the uniform failure payload.
func WriteFailure(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"error":   dErrors.Message(err),
	})
}
