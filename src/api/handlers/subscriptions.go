package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAllSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	status := r.URL.Query().Get("status")
	subscriptions, err := h.RenewalsController.GetAllSubscriptions(ctx, status, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, subscriptions, 200)
}

func (h *Handler) GetSubscriptionByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("id must be an integer"))
		return
	}

	subscription, err := h.RenewalsController.GetSubscriptionByID(ctx, id)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, subscription, 200)
}

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var request schemas.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	subscription, err := h.RenewalsController.CreateSubscription(ctx, &request)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, subscription, 201)
}

func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("id must be an integer"))
		return
	}

	subscription, err := h.RenewalsController.CancelSubscription(ctx, id)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, subscription, 200)
}

func (h *Handler) GetSubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("id must be an integer"))
		return
	}

	history, err := h.RenewalsController.GetSubscriptionHistory(ctx, id)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, history, 200)
}
