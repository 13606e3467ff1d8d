package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperatingCost struct {
	ID          int             `db:"id"`
	Provider    string          `db:"provider"`
	Description *string         `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	IncurredAt  time.Time       `db:"incurred_at"`
	CreatedAt   time.Time       `db:"created_at"`
}
