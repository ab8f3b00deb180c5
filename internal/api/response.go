package api

import (
	"encoding/json"
	"net/http"
)

// Every response carries a success flag alongside its payload; clients of
// the original dashboard branch on it rather than on status codes alone.

func jsonOK(w http.ResponseWriter, payload map[string]any) {
	payload["success"] = true
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
	})
}
