package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryStatus tracks a round-up amount from computation to sweep.
type LedgerEntryStatus string

const (
	LedgerEntryPending   LedgerEntryStatus = "pending"
	LedgerEntryAllocated LedgerEntryStatus = "allocated"
	LedgerEntrySwept     LedgerEntryStatus = "swept"
	LedgerEntryFailed    LedgerEntryStatus = "failed"
)

var ledgerEntryTransitions = map[LedgerEntryStatus][]LedgerEntryStatus{
	LedgerEntryPending:   {LedgerEntryAllocated},
	LedgerEntryAllocated: {LedgerEntrySwept, LedgerEntryFailed},
}

func (s LedgerEntryStatus) Valid() bool {
	switch s {
	case LedgerEntryPending, LedgerEntryAllocated, LedgerEntrySwept, LedgerEntryFailed:
		return true
	}
	return false
}

func (s LedgerEntryStatus) Terminal() bool {
	return s == LedgerEntrySwept || s == LedgerEntryFailed
}

func (s LedgerEntryStatus) CanTransitionTo(next LedgerEntryStatus) bool {
	for _, allowed := range ledgerEntryTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

type RoundupLedgerEntry struct {
	ID            int               `db:"id"`
	TransactionID *int              `db:"transaction_id"`
	UserID        string            `db:"user_id"`
	RoundUpAmount decimal.Decimal   `db:"round_up_amount"`
	FeeAmount     decimal.Decimal   `db:"fee_amount"`
	Status        LedgerEntryStatus `db:"status"`
	SweptAt       *time.Time        `db:"swept_at"`
	CreatedAt     time.Time         `db:"created_at"`
}
