package handlers

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) GetLedgerEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	entries, err := h.SettlementController.GetLedgerEntries(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, entries, 200)
}

// BuildRoundups walks pending transactions and writes their ledger entries.
func (h *Handler) BuildRoundups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.SettlementController.BuildRoundups(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}

// StageQueue moves built transactions into the market queue.
func (h *Handler) StageQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.SettlementController.StageQueue(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}
