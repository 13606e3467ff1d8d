package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"roundup/src/clients/payments"
	"roundup/src/config"
	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

type RenewalServiceI interface {
	CreateSubscription(ctx context.Context, request *schemas.CreateSubscriptionRequest) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID int) (*models.Subscription, error)
	RunDueRenewals(ctx context.Context) (*schemas.RunRenewalsResult, error)
	AttemptRenewal(ctx context.Context, subscriptionID int) (*schemas.RenewalOutcome, error)
}

// RenewalService charges due subscription renewals and advances the renewal
// schedule.
type RenewalService struct {
	db               repositories.TxBeginner
	subscriptionRepo repositories.SubscriptionRepository
	renewalQueueRepo repositories.RenewalQueueRepository
	historyRepo      repositories.RenewalHistoryRepository
	paymentsClient   payments.PaymentsServiceClientI

	maxAttempts      int
	maxChargeRetries uint64
}

func NewRenewalService(
	cfg *config.Config,
	db repositories.TxBeginner,
	subscriptionRepo repositories.SubscriptionRepository,
	renewalQueueRepo repositories.RenewalQueueRepository,
	historyRepo repositories.RenewalHistoryRepository,
	paymentsClient payments.PaymentsServiceClientI,
) *RenewalService {
	maxAttempts := cfg.Renewals.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	maxChargeRetries := cfg.Renewals.MaxChargeRetries
	if maxChargeRetries <= 0 {
		maxChargeRetries = 2
	}

	return &RenewalService{
		db:               db,
		subscriptionRepo: subscriptionRepo,
		renewalQueueRepo: renewalQueueRepo,
		historyRepo:      historyRepo,
		paymentsClient:   paymentsClient,
		maxAttempts:      maxAttempts,
		maxChargeRetries: uint64(maxChargeRetries),
	}
}

// CreateSubscription opens a subscription together with its first renewal
// queue item, so every active subscription always has a next charge on the
// schedule.
func (s *RenewalService) CreateSubscription(ctx context.Context, request *schemas.CreateSubscriptionRequest) (*models.Subscription, error) {
	if request.MonthlyPrice.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrInvalidAmount
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	subscription := &models.Subscription{
		UserID:       request.UserID,
		Plan:         request.Plan,
		MonthlyPrice: request.MonthlyPrice,
		Status:       models.SubscriptionActive,
		RenewalDate:  request.RenewalDate.ToTime(),
	}
	if err := s.subscriptionRepo.Create(ctx, subscription, tx); err != nil {
		return nil, err
	}

	first := &models.RenewalQueueItem{
		SubscriptionID: subscription.ID,
		Amount:         subscription.MonthlyPrice,
		ScheduledDate:  subscription.RenewalDate,
		Status:         models.RenewalScheduled,
	}
	if err := s.renewalQueueRepo.Create(ctx, first, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return subscription, nil
}

// CancelSubscription stops billing. The subscription goes to canceled and
// its open renewal items are withdrawn, history stays untouched.
func (s *RenewalService) CancelSubscription(ctx context.Context, subscriptionID int) (*models.Subscription, error) {
	subscription, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, fmt.Errorf("subscription %d: %w", subscriptionID, utils.ErrNotFound)
	}
	if subscription.Status == models.SubscriptionCanceled {
		return nil, fmt.Errorf("subscription %d is already canceled: %w", subscriptionID, utils.ErrAlreadyTerminal)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.subscriptionRepo.SetStatus(ctx, subscriptionID, models.SubscriptionCanceled, tx); err != nil {
		return nil, err
	}
	if _, err := s.renewalQueueRepo.DeleteBySubscription(ctx, subscriptionID, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	subscription.Status = models.SubscriptionCanceled
	subscription.CanceledAt = &now
	return subscription, nil
}

// RunDueRenewals attempts every renewal whose scheduled date has passed.
// One subscription failing never blocks the others.
func (s *RenewalService) RunDueRenewals(ctx context.Context) (*schemas.RunRenewalsResult, error) {
	logger := utils.LoggerFromContext(ctx)

	due, err := s.renewalQueueRepo.GetDue(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	result := &schemas.RunRenewalsResult{}
	for i := range due {
		item := &due[i]

		subscription, err := s.subscriptionRepo.GetByID(ctx, item.SubscriptionID)
		if err != nil {
			logger.Errorf("failed to load subscription %d: %v", item.SubscriptionID, err)
			continue
		}
		if subscription == nil || subscription.Status == models.SubscriptionCanceled {
			// Stale queue item without a billable subscription.
			if err := s.renewalQueueRepo.Delete(ctx, item.ID, nil); err != nil {
				logger.Errorf("failed to drop stale renewal item %d: %v", item.ID, err)
			}
			continue
		}

		outcome, err := s.attempt(ctx, subscription, item)
		if err != nil {
			logger.Errorf("renewal attempt for subscription %d failed: %v", item.SubscriptionID, err)
			continue
		}
		result.Outcomes = append(result.Outcomes, *outcome)
		switch outcome.Status {
		case schemas.RenewalOutcomeSucceeded:
			result.Succeeded++
		case schemas.RenewalOutcomeRetryScheduled:
			result.Retrying++
		case schemas.RenewalOutcomeExhausted:
			result.Exhausted++
		}
	}
	return result, nil
}

// AttemptRenewal runs a single charge attempt for one subscription, the
// operator-facing version of the scheduled pass.
func (s *RenewalService) AttemptRenewal(ctx context.Context, subscriptionID int) (*schemas.RenewalOutcome, error) {
	subscription, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, fmt.Errorf("subscription %d: %w", subscriptionID, utils.ErrNotFound)
	}
	if subscription.Status == models.SubscriptionCanceled {
		return nil, fmt.Errorf("subscription %d is canceled: %w", subscriptionID, utils.ErrAlreadyTerminal)
	}

	item, err := s.renewalQueueRepo.GetDueForSubscription(ctx, subscriptionID, time.Now())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("no renewal due for subscription %d: %w", subscriptionID, utils.ErrNotFound)
	}
	return s.attempt(ctx, subscription, item)
}

func (s *RenewalService) attempt(ctx context.Context, subscription *models.Subscription, item *models.RenewalQueueItem) (*schemas.RenewalOutcome, error) {
	chargeResponse, err := s.charge(ctx, subscription, item)
	if err != nil {
		return s.recordFailure(ctx, subscription, item, err.Error())
	}
	if chargeResponse.Status != payments.ChargeSucceeded {
		reason := "charge declined"
		if chargeResponse.FailureReason != nil {
			reason = *chargeResponse.FailureReason
		}
		return s.recordFailure(ctx, subscription, item, reason)
	}
	return s.recordSuccess(ctx, subscription, item, chargeResponse)
}

// charge collects the renewal amount, retrying transient gateway failures.
// The idempotency key covers the item and its attempt count, so in-call
// retries cannot double charge while a later attempt is a distinct charge.
func (s *RenewalService) charge(ctx context.Context, subscription *models.Subscription, item *models.RenewalQueueItem) (*payments.ChargeResponse, error) {
	charge := &payments.ChargeRequest{
		IdempotencyKey: utils.DeterministicID("renewal", strconv.Itoa(item.ID), strconv.Itoa(item.AttemptCount)),
		UserID:         subscription.UserID,
		Amount:         item.Amount,
		Currency:       "USD",
		Description:    fmt.Sprintf("%s plan renewal", subscription.Plan),
	}

	var chargeResponse *payments.ChargeResponse
	backoff := retry.WithMaxRetries(s.maxChargeRetries, retry.NewFibonacci(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		response, err := s.paymentsClient.Charge(ctx, charge)
		if utils.IsTransient(err) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		chargeResponse = response
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chargeResponse, nil
}

// recordSuccess closes the renewal cycle: append history, drop the queue
// item, schedule next month and reactivate a past due subscription, all in
// one database transaction.
func (s *RenewalService) recordSuccess(ctx context.Context, subscription *models.Subscription, item *models.RenewalQueueItem, chargeResponse *payments.ChargeResponse) (*schemas.RenewalOutcome, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var paymentMethod *string
	if chargeResponse.PaymentMethod != "" {
		paymentMethod = &chargeResponse.PaymentMethod
	}
	historyItem := &models.RenewalHistoryItem{
		SubscriptionID: subscription.ID,
		Amount:         item.Amount,
		Status:         models.RenewalSucceeded,
		PaymentMethod:  paymentMethod,
		RenewalDate:    time.Now(),
	}
	if err := s.historyRepo.Create(ctx, historyItem, tx); err != nil {
		return nil, err
	}
	if err := s.renewalQueueRepo.Delete(ctx, item.ID, tx); err != nil {
		return nil, err
	}

	// Next cycle stays anchored to the scheduled date, not to when the
	// charge actually went through.
	nextDate := utils.AddMonth(item.ScheduledDate)
	next := &models.RenewalQueueItem{
		SubscriptionID: subscription.ID,
		Amount:         subscription.MonthlyPrice,
		ScheduledDate:  nextDate,
		Status:         models.RenewalScheduled,
	}
	if err := s.renewalQueueRepo.Create(ctx, next, tx); err != nil {
		return nil, err
	}
	if err := s.subscriptionRepo.SetRenewalDate(ctx, subscription.ID, nextDate, tx); err != nil {
		return nil, err
	}
	if subscription.Status == models.SubscriptionPastDue {
		if _, err := s.subscriptionRepo.SetStatus(ctx, subscription.ID, models.SubscriptionActive, tx); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &schemas.RenewalOutcome{
		SubscriptionID:  subscription.ID,
		Status:          schemas.RenewalOutcomeSucceeded,
		AttemptCount:    item.AttemptCount + 1,
		Amount:          item.Amount,
		PaymentMethod:   paymentMethod,
		NextRenewalDate: &nextDate,
	}, nil
}

// recordFailure counts the attempt. Under the ceiling the item goes to
// retrying and stays due. At the ceiling the cycle is closed as failed and
// the subscription parked in past due with next month's charge already
// scheduled, so the next successful renewal reactivates it.
func (s *RenewalService) recordFailure(ctx context.Context, subscription *models.Subscription, item *models.RenewalQueueItem, reason string) (*schemas.RenewalOutcome, error) {
	attempts := item.AttemptCount + 1
	if attempts < s.maxAttempts {
		if err := s.renewalQueueRepo.RecordFailure(ctx, item.ID, reason); err != nil {
			return nil, err
		}
		return &schemas.RenewalOutcome{
			SubscriptionID: subscription.ID,
			Status:         schemas.RenewalOutcomeRetryScheduled,
			AttemptCount:   attempts,
			Amount:         item.Amount,
			Error:          &reason,
		}, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	historyItem := &models.RenewalHistoryItem{
		SubscriptionID: subscription.ID,
		Amount:         item.Amount,
		Status:         models.RenewalFailed,
		FailureReason:  &reason,
		RenewalDate:    time.Now(),
	}
	if err := s.historyRepo.Create(ctx, historyItem, tx); err != nil {
		return nil, err
	}
	if err := s.renewalQueueRepo.Delete(ctx, item.ID, tx); err != nil {
		return nil, err
	}
	if _, err := s.subscriptionRepo.SetStatus(ctx, subscription.ID, models.SubscriptionPastDue, tx); err != nil {
		return nil, err
	}

	// Billing keeps its monthly cadence while the subscription is past due.
	nextDate := utils.AddMonth(item.ScheduledDate)
	next := &models.RenewalQueueItem{
		SubscriptionID: subscription.ID,
		Amount:         subscription.MonthlyPrice,
		ScheduledDate:  nextDate,
		Status:         models.RenewalScheduled,
	}
	if err := s.renewalQueueRepo.Create(ctx, next, tx); err != nil {
		return nil, err
	}
	if err := s.subscriptionRepo.SetRenewalDate(ctx, subscription.ID, nextDate, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &schemas.RenewalOutcome{
		SubscriptionID:  subscription.ID,
		Status:          schemas.RenewalOutcomeExhausted,
		AttemptCount:    attempts,
		Amount:          item.Amount,
		Error:           &reason,
		NextRenewalDate: &nextDate,
	}, nil
}
