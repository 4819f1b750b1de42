package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dealradar/api/internal/domain"
)

// EventEnvelope wraps ingestion responses: {ok:true, action:...} on success,
// {ok:false, error:...} otherwise.
type EventEnvelope struct {
	OK            bool   `json:"ok"`
	Action        string `json:"action,omitempty"`
	Reason        string `json:"reason,omitempty"`
	OfferID       string `json:"offer_id,omitempty"`
	NotifiedUsers int    `json:"notified_users,omitempty"`
	Error         string `json:"error,omitempty"`
}

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, EventEnvelope{OK: false, Error: msg})
}

// httpError maps domain sentinel errors onto HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
