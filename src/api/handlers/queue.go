package handlers

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) GetQueueItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	items, err := h.SettlementController.GetQueueItems(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, items, 200)
}

// ExecuteQueue places a broker order for every pending queue item. Order
// placement can retry, so the deadline is wider than a plain read.
func (h *Handler) ExecuteQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.SettlementController.ExecuteQueue(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}

func (h *Handler) RequeueStuck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.SettlementController.RequeueStuck(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}
