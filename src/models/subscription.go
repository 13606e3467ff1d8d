package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled:
		return true
	}
	return false
}

type Subscription struct {
	ID           int                `db:"id"`
	UserID       string             `db:"user_id"`
	Plan         string             `db:"plan"`
	MonthlyPrice decimal.Decimal    `db:"monthly_price"`
	Status       SubscriptionStatus `db:"status"`
	RenewalDate  time.Time          `db:"renewal_date"`
	CanceledAt   *time.Time         `db:"canceled_at"`
	CreatedAt    time.Time          `db:"created_at"`
}
