package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"roundup/src/schemas"
	"roundup/src/utils"
)

func (h *Handler) GetOperatingCosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	costs, err := h.FinancialsController.GetOperatingCosts(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, costs, 200)
}

func (h *Handler) CreateOperatingCost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var request schemas.CreateOperatingCostRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	cost, err := h.FinancialsController.CreateOperatingCost(ctx, &request)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, cost, 201)
}
