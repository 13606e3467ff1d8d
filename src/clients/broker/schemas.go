package broker

import (
	"time"

	"github.com/shopspring/decimal"
)

const SideBuy = "buy"

type OrderRequest struct {
	// ClientOrderID is deterministic per queue item, so resubmitting the
	// same item cannot place a second order.
	ClientOrderID string          `json:"client_order_id"`
	Ticker        string          `json:"ticker"`
	Notional      decimal.Decimal `json:"notional"`
	Side          string          `json:"side"`
}

type OrderResponse struct {
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Ticker        string          `json:"ticker"`
	Notional      decimal.Decimal `json:"notional"`
	Status        string          `json:"status"`
	FilledAt      *time.Time      `json:"filled_at,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
