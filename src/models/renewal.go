package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RenewalQueueStatus tracks a pending charge attempt for a subscription.
type RenewalQueueStatus string

const (
	RenewalScheduled RenewalQueueStatus = "scheduled"
	RenewalRetrying  RenewalQueueStatus = "retrying"
)

func (s RenewalQueueStatus) Valid() bool {
	return s == RenewalScheduled || s == RenewalRetrying
}

// RenewalHistoryStatus records the final outcome of a renewal attempt cycle.
type RenewalHistoryStatus string

const (
	RenewalSucceeded RenewalHistoryStatus = "success"
	RenewalFailed    RenewalHistoryStatus = "failed"
)

func (s RenewalHistoryStatus) Valid() bool {
	return s == RenewalSucceeded || s == RenewalFailed
}

type RenewalQueueItem struct {
	ID             int                `db:"id"`
	SubscriptionID int                `db:"subscription_id"`
	Amount         decimal.Decimal    `db:"amount"`
	ScheduledDate  time.Time          `db:"scheduled_date"`
	Status         RenewalQueueStatus `db:"status"`
	AttemptCount   int                `db:"attempt_count"`
	LastError      *string            `db:"last_error"`
	CreatedAt      time.Time          `db:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at"`
}

type RenewalHistoryItem struct {
	ID             int                  `db:"id"`
	SubscriptionID int                  `db:"subscription_id"`
	Amount         decimal.Decimal      `db:"amount"`
	Status         RenewalHistoryStatus `db:"status"`
	PaymentMethod  *string              `db:"payment_method"`
	FailureReason  *string              `db:"failure_reason"`
	RenewalDate    time.Time            `db:"renewal_date"`
	CreatedAt      time.Time            `db:"created_at"`
}
