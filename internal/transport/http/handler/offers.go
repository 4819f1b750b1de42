package handler

import (
	"net/http"

	"github.com/dealradar/api/internal/application/retraction"
	"github.com/go-chi/chi/v5"
)

// OfferHandler exposes operational actions on offers.
type OfferHandler struct {
	retractor retraction.Service
}

func NewOfferHandler(retractor retraction.Service) *OfferHandler {
	return &OfferHandler{retractor: retractor}
}

// Retract withdraws every delivered, non-withdrawn notification for an offer.
// Zero matching receipts is a normal outcome, not an error.
func (h *OfferHandler) Retract(w http.ResponseWriter, r *http.Request) {
	res, err := h.retractor.RetractByOffer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
