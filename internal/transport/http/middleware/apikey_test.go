package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKey_ValidKeyPasses(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("crawler-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	req.Header.Set("X-Api-Key", "crawler-secret")
	rec := httptest.NewRecorder()
	APIKey(string(hash))(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKey_WrongKeyRejected(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("crawler-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	req.Header.Set("X-Api-Key", "guess")
	rec := httptest.NewRecorder()
	APIKey(string(hash))(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKey_MissingKeyRejected(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("crawler-secret"), bcrypt.MinCost)

	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	rec := httptest.NewRecorder()
	APIKey(string(hash))(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKey_NoHashConfiguredLocksEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	req.Header.Set("X-Api-Key", "anything")
	rec := httptest.NewRecorder()
	APIKey("")(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
