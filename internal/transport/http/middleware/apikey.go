package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// APIKey returns middleware gating the crawler ingestion endpoint on a shared
// key. Only the bcrypt hash of the key is configured; an empty hash locks the
// endpoint entirely rather than leaving it open.
func APIKey(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				writeJSONError(w, http.StatusUnauthorized, "ingestion disabled: no API key configured")
				return
			}
			key := r.Header.Get("X-Api-Key")
			if key == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
