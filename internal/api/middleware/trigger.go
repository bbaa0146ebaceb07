package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
)

// TriggerAuth guards the cron-invoked job endpoints with a shared token
// carried in the X-Trigger-Token header. An empty configured token is a
// deployment error and fails every request rather than running open.
func TriggerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				log.Printf("[TRIGGER] Rejecting request: TRIGGER_TOKEN is not configured")
				writeAuthError(w, http.StatusInternalServerError, "trigger token not configured")
				return
			}

			provided := r.Header.Get("X-Trigger-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				writeAuthError(w, http.StatusUnauthorized, "invalid trigger token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	}); err != nil {
		log.Printf("Failed to encode auth error response: %v", err)
	}
}
