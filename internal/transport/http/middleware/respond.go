package middleware

import (
	"encoding/json"
	"net/http"
)

// writeErr emits the same JSON error envelope the handlers use. Middleware
// rejections must look like every other API error to clients.
func writeErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
