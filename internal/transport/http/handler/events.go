package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dealradar/api/internal/application/reconcile"
	"github.com/dealradar/api/internal/domain"
	"github.com/dealradar/api/internal/infrastructure/alert"
	"github.com/dealradar/api/internal/pkg/id"
	"github.com/dealradar/api/internal/pkg/validate"
)

// EventArchiver stores accepted ingestion envelopes for audit.
type EventArchiver interface {
	StoreEvent(ctx context.Context, eventID string, envelope interface{}) (string, error)
}

// EventHandler is the ingestion endpoint for crawl channel events.
type EventHandler struct {
	reconciler reconcile.Service
	archive    EventArchiver // nil disables archival
	alerter    alert.Alerter
}

func NewEventHandler(reconciler reconcile.Service, archive EventArchiver, alerter alert.Alerter) *EventHandler {
	return &EventHandler{reconciler: reconciler, archive: archive, alerter: alerter}
}

// Ingest reconciles one event. Validation failures are 4xx with no side
// effects; arbitration rejections are 200 with a descriptive no-op action;
// anything unexpected is a 5xx plus an external alert, with no rollback of
// writes that already landed.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var ev domain.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	eventID := id.New()
	if h.archive != nil {
		if _, err := h.archive.StoreEvent(r.Context(), eventID, ev); err != nil {
			slog.Warn("event archival failed", "event_id", eventID, "err", err)
		}
	}

	res, err := h.reconciler.Process(r.Context(), ev)
	if err != nil {
		slog.Error("event reconciliation failed", "event_id", eventID, "code", ev.Post.Code, "err", err)
		if h.alerter != nil {
			h.alerter.Alert(r.Context(), "event reconciliation failed", err.Error())
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, EventEnvelope{
		OK:            true,
		Action:        res.Action,
		Reason:        res.Reason,
		OfferID:       res.OfferID,
		NotifiedUsers: res.NotifiedUsers,
	})
}
