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

func (h *Handler) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, offset := pagination(r)
	transactions, err := h.TransactionsController.GetAllTransactions(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, transactions, 200)
}

func (h *Handler) GetTransactionByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("id must be an integer"))
		return
	}

	transaction, err := h.TransactionsController.GetTransactionByID(ctx, id)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, transaction, 200)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var request schemas.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	transaction, err := h.TransactionsController.CreateTransaction(ctx, &request)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, transaction, 201)
}
