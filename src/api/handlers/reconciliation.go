package handlers

import (
	"context"
	"net/http"
	"time"
)

// CheckFees compares fee totals between transactions and the round-up ledger.
func (h *Handler) CheckFees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	report, err := h.SettlementController.CheckFees(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, report, 200)
}
