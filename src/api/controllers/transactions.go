package controllers

import (
	"context"
	"fmt"

	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/shopspring/decimal"
)

type TransactionsControllerI interface {
	GetAllTransactions(ctx context.Context, limit, offset int) ([]schemas.TransactionResponse, error)
	GetTransactionByID(ctx context.Context, id int) (*schemas.TransactionResponse, error)
	CreateTransaction(ctx context.Context, request *schemas.CreateTransactionRequest) (*schemas.TransactionResponse, error)
}

type TransactionsController struct {
	TransactionRepo repositories.TransactionRepository
}

func NewTransactionsController(transactionRepo repositories.TransactionRepository) *TransactionsController {
	return &TransactionsController{TransactionRepo: transactionRepo}
}

func (c *TransactionsController) GetAllTransactions(ctx context.Context, limit, offset int) ([]schemas.TransactionResponse, error) {
	transactions, err := c.TransactionRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return schemas.NewTransactionResponses(transactions), nil
}

func (c *TransactionsController) GetTransactionByID(ctx context.Context, id int) (*schemas.TransactionResponse, error) {
	transaction, err := c.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("transaction %d: %w", id, utils.ErrNotFound)
	}
	response := schemas.NewTransactionResponse(*transaction)
	return &response, nil
}

// CreateTransaction ingests one settled card purchase. It lands in pending
// and waits for the settlement jobs to pick it up.
func (c *TransactionsController) CreateTransaction(ctx context.Context, request *schemas.CreateTransactionRequest) (*schemas.TransactionResponse, error) {
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrInvalidAmount
	}
	if request.UserID == "" {
		return nil, utils.BadRequest("user_id is required")
	}

	transaction := &models.Transaction{
		UserID:   request.UserID,
		Merchant: request.Merchant,
		Amount:   request.Amount,
		Ticker:   request.Ticker,
		Status:   models.TransactionPending,
	}
	if err := c.TransactionRepo.Create(ctx, transaction, nil); err != nil {
		return nil, err
	}
	response := schemas.NewTransactionResponse(*transaction)
	return &response, nil
}
