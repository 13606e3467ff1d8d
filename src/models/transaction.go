package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks a card purchase through the settlement pipeline.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionMapped    TransactionStatus = "mapped"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionPending: {TransactionMapped},
	TransactionMapped:  {TransactionCompleted, TransactionFailed},
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionMapped, TransactionCompleted, TransactionFailed:
		return true
	}
	return false
}

func (s TransactionStatus) Terminal() bool {
	return s == TransactionCompleted || s == TransactionFailed
}

func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID            int               `db:"id"`
	UserID        string            `db:"user_id"`
	Merchant      string            `db:"merchant"`
	Amount        decimal.Decimal   `db:"amount"`
	RoundUpAmount decimal.Decimal   `db:"round_up_amount"`
	Fee           decimal.Decimal   `db:"fee"`
	Ticker        *string           `db:"ticker"`
	Status        TransactionStatus `db:"status"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
}
