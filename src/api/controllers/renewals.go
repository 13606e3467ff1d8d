package controllers

import (
	"context"
	"fmt"

	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/services"
	"roundup/src/utils"
)

type RenewalsControllerI interface {
	GetAllSubscriptions(ctx context.Context, status string, limit, offset int) ([]schemas.SubscriptionResponse, error)
	GetSubscriptionByID(ctx context.Context, id int) (*schemas.SubscriptionResponse, error)
	CreateSubscription(ctx context.Context, request *schemas.CreateSubscriptionRequest) (*schemas.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id int) (*schemas.SubscriptionResponse, error)
	GetRenewalQueue(ctx context.Context, limit, offset int) ([]schemas.RenewalQueueItemResponse, error)
	GetRenewalHistory(ctx context.Context, limit, offset int) ([]schemas.RenewalHistoryResponse, error)
	GetSubscriptionHistory(ctx context.Context, subscriptionID int) ([]schemas.RenewalHistoryResponse, error)
	AttemptRenewal(ctx context.Context, subscriptionID int) (*schemas.RenewalOutcome, error)
	RunDueRenewals(ctx context.Context) (*schemas.RunRenewalsResult, error)
}

// RenewalsController exposes subscription lifecycle and billing operations.
type RenewalsController struct {
	RenewalService   services.RenewalServiceI
	SubscriptionRepo repositories.SubscriptionRepository
	RenewalQueueRepo repositories.RenewalQueueRepository
	HistoryRepo      repositories.RenewalHistoryRepository
}

func NewRenewalsController(
	renewalService services.RenewalServiceI,
	subscriptionRepo repositories.SubscriptionRepository,
	renewalQueueRepo repositories.RenewalQueueRepository,
	historyRepo repositories.RenewalHistoryRepository,
) *RenewalsController {
	return &RenewalsController{
		RenewalService:   renewalService,
		SubscriptionRepo: subscriptionRepo,
		RenewalQueueRepo: renewalQueueRepo,
		HistoryRepo:      historyRepo,
	}
}

func (c *RenewalsController) GetAllSubscriptions(ctx context.Context, status string, limit, offset int) ([]schemas.SubscriptionResponse, error) {
	var (
		subscriptions []models.Subscription
		err           error
	)
	switch models.SubscriptionStatus(status) {
	case "":
		subscriptions, err = c.SubscriptionRepo.List(ctx, limit, offset)
	case models.SubscriptionActive:
		// The active set is what renewals bill against, it gets a dedicated query.
		subscriptions, err = c.SubscriptionRepo.GetActive(ctx, nil)
	default:
		return nil, utils.BadRequest("status filter supports only active")
	}
	if err != nil {
		return nil, err
	}
	return schemas.NewSubscriptionResponses(subscriptions), nil
}

func (c *RenewalsController) GetSubscriptionByID(ctx context.Context, id int) (*schemas.SubscriptionResponse, error) {
	subscription, err := c.SubscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, fmt.Errorf("subscription %d: %w", id, utils.ErrNotFound)
	}
	response := schemas.NewSubscriptionResponse(*subscription)
	return &response, nil
}

func (c *RenewalsController) CreateSubscription(ctx context.Context, request *schemas.CreateSubscriptionRequest) (*schemas.SubscriptionResponse, error) {
	subscription, err := c.RenewalService.CreateSubscription(ctx, request)
	if err != nil {
		return nil, err
	}
	response := schemas.NewSubscriptionResponse(*subscription)
	return &response, nil
}

func (c *RenewalsController) CancelSubscription(ctx context.Context, id int) (*schemas.SubscriptionResponse, error) {
	subscription, err := c.RenewalService.CancelSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	response := schemas.NewSubscriptionResponse(*subscription)
	return &response, nil
}

func (c *RenewalsController) GetRenewalQueue(ctx context.Context, limit, offset int) ([]schemas.RenewalQueueItemResponse, error) {
	items, err := c.RenewalQueueRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return schemas.NewRenewalQueueItemResponses(items), nil
}

func (c *RenewalsController) GetRenewalHistory(ctx context.Context, limit, offset int) ([]schemas.RenewalHistoryResponse, error) {
	items, err := c.HistoryRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return schemas.NewRenewalHistoryResponses(items), nil
}

func (c *RenewalsController) GetSubscriptionHistory(ctx context.Context, subscriptionID int) ([]schemas.RenewalHistoryResponse, error) {
	items, err := c.HistoryRepo.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return schemas.NewRenewalHistoryResponses(items), nil
}

func (c *RenewalsController) AttemptRenewal(ctx context.Context, subscriptionID int) (*schemas.RenewalOutcome, error) {
	return c.RenewalService.AttemptRenewal(ctx, subscriptionID)
}

func (c *RenewalsController) RunDueRenewals(ctx context.Context) (*schemas.RunRenewalsResult, error) {
	return c.RenewalService.RunDueRenewals(ctx)
}
