package payments

import "github.com/shopspring/decimal"

const (
	ChargeSucceeded = "succeeded"
	ChargeDeclined  = "declined"
)

type ChargeRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	UserID         string          `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
}

type ChargeResponse struct {
	ChargeID      string  `json:"charge_id"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"payment_method"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
