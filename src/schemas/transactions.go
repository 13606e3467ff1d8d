package schemas

import (
	"time"

	"roundup/src/models"

	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	UserID   string          `json:"user_id"`
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Ticker   *string         `json:"ticker,omitempty"`
}

type TransactionResponse struct {
	ID            int             `json:"id"`
	UserID        string          `json:"user_id"`
	Merchant      string          `json:"merchant"`
	Amount        decimal.Decimal `json:"amount"`
	RoundUpAmount decimal.Decimal `json:"round_up_amount"`
	Fee           decimal.Decimal `json:"fee"`
	Ticker        *string         `json:"ticker,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Merchant:      t.Merchant,
		Amount:        t.Amount,
		RoundUpAmount: t.RoundUpAmount,
		Fee:           t.Fee,
		Ticker:        t.Ticker,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
	}
}

func NewTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, NewTransactionResponse(t))
	}
	return responses
}
