package schemas

import (
	"time"

	"roundup/src/models"

	"github.com/shopspring/decimal"
)

type RenewalOutcomeStatus string

const (
	RenewalOutcomeSucceeded      RenewalOutcomeStatus = "succeeded"
	RenewalOutcomeRetryScheduled RenewalOutcomeStatus = "retry_scheduled"
	RenewalOutcomeExhausted      RenewalOutcomeStatus = "exhausted"
)

// RenewalOutcome reports what a single charge attempt did to a renewal.
type RenewalOutcome struct {
	SubscriptionID  int                  `json:"subscription_id"`
	Status          RenewalOutcomeStatus `json:"status"`
	AttemptCount    int                  `json:"attempt_count"`
	Amount          decimal.Decimal      `json:"amount"`
	PaymentMethod   *string              `json:"payment_method,omitempty"`
	NextRenewalDate *time.Time           `json:"next_renewal_date,omitempty"`
	Error           *string              `json:"error,omitempty"`
}

// RunRenewalsResult summarizes one pass over all due renewals.
type RunRenewalsResult struct {
	Succeeded int              `json:"succeeded"`
	Retrying  int              `json:"retrying"`
	Exhausted int              `json:"exhausted"`
	Outcomes  []RenewalOutcome `json:"outcomes,omitempty"`
}

type CreateSubscriptionRequest struct {
	UserID       string          `json:"user_id"`
	Plan         string          `json:"plan"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	RenewalDate  Date            `json:"renewal_date"`
}

type SubscriptionResponse struct {
	ID           int             `json:"id"`
	UserID       string          `json:"user_id"`
	Plan         string          `json:"plan"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Status       string          `json:"status"`
	RenewalDate  time.Time       `json:"renewal_date"`
	CanceledAt   *time.Time      `json:"canceled_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewSubscriptionResponse(s models.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		Plan:         s.Plan,
		MonthlyPrice: s.MonthlyPrice,
		Status:       string(s.Status),
		RenewalDate:  s.RenewalDate,
		CanceledAt:   s.CanceledAt,
		CreatedAt:    s.CreatedAt,
	}
}

func NewSubscriptionResponses(subscriptions []models.Subscription) []SubscriptionResponse {
	responses := make([]SubscriptionResponse, 0, len(subscriptions))
	for _, s := range subscriptions {
		responses = append(responses, NewSubscriptionResponse(s))
	}
	return responses
}

type RenewalQueueItemResponse struct {
	ID             int             `json:"id"`
	SubscriptionID int             `json:"subscription_id"`
	Amount         decimal.Decimal `json:"amount"`
	ScheduledDate  time.Time       `json:"scheduled_date"`
	Status         string          `json:"status"`
	AttemptCount   int             `json:"attempt_count"`
	LastError      *string         `json:"last_error,omitempty"`
}

func NewRenewalQueueItemResponses(items []models.RenewalQueueItem) []RenewalQueueItemResponse {
	responses := make([]RenewalQueueItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, RenewalQueueItemResponse{
			ID:             item.ID,
			SubscriptionID: item.SubscriptionID,
			Amount:         item.Amount,
			ScheduledDate:  item.ScheduledDate,
			Status:         string(item.Status),
			AttemptCount:   item.AttemptCount,
			LastError:      item.LastError,
		})
	}
	return responses
}

type RenewalHistoryResponse struct {
	ID             int             `json:"id"`
	SubscriptionID int             `json:"subscription_id"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	PaymentMethod  *string         `json:"payment_method,omitempty"`
	FailureReason  *string         `json:"failure_reason,omitempty"`
	RenewalDate    time.Time       `json:"renewal_date"`
}

func NewRenewalHistoryResponses(items []models.RenewalHistoryItem) []RenewalHistoryResponse {
	responses := make([]RenewalHistoryResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, RenewalHistoryResponse{
			ID:             item.ID,
			SubscriptionID: item.SubscriptionID,
			Amount:         item.Amount,
			Status:         string(item.Status),
			PaymentMethod:  item.PaymentMethod,
			FailureReason:  item.FailureReason,
			RenewalDate:    item.RenewalDate,
		})
	}
	return responses
}
