package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"roundup/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetRenewalQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	items, err := h.RenewalsController.GetRenewalQueue(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, items, 200)
}

func (h *Handler) GetRenewalHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	items, err := h.RenewalsController.GetRenewalHistory(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, items, 200)
}

// AttemptRenewal charges the due renewal of one subscription immediately
// instead of waiting for the scheduled run.
func (h *Handler) AttemptRenewal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	subscriptionID, err := strconv.Atoi(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("subscriptionID must be an integer"))
		return
	}

	outcome, err := h.RenewalsController.AttemptRenewal(ctx, subscriptionID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, outcome, 200)
}

// RunDueRenewals charges every renewal due today.
func (h *Handler) RunDueRenewals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.RenewalsController.RunDueRenewals(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, 200)
}
