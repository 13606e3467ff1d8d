package controllers

import (
	"context"
	"fmt"
	"time"

	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/services"
	"roundup/src/utils"
	redis_utils "roundup/src/utils/redis"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	revenueViewKey      = "financials:revenue"
	pnlViewKey          = "financials:pnl"
	cashFlowViewKey     = "financials:cashflow"
	balanceSheetViewKey = "financials:balance-sheet"

	viewCacheTTL = 60 * time.Second
)

type FinancialsControllerI interface {
	GetRevenueView(ctx context.Context) (*schemas.RevenueView, error)
	GetProfitAndLossView(ctx context.Context) (*schemas.ProfitAndLossView, error)
	GetCashFlowView(ctx context.Context) (*schemas.CashFlowView, error)
	GetBalanceSheet(ctx context.Context) (*schemas.BalanceSheetView, error)
	GetOperatingCosts(ctx context.Context, limit, offset int) ([]schemas.OperatingCostResponse, error)
	CreateOperatingCost(ctx context.Context, request *schemas.CreateOperatingCostRequest) (*schemas.OperatingCostResponse, error)
}

// FinancialsController assembles the monthly statement views. Every view is
// loaded inside one repeatable-read snapshot so rows counted by one view
// cannot disagree with another loaded in the same request.
type FinancialsController struct {
	DB               repositories.TxBeginner
	FinancialService services.FinancialServiceI
	SubscriptionRepo repositories.SubscriptionRepository
	HistoryRepo      repositories.RenewalHistoryRepository
	RenewalQueueRepo repositories.RenewalQueueRepository
	LedgerRepo       repositories.RoundupLedgerRepository
	QueueRepo        repositories.MarketQueueRepository
	CostRepo         repositories.OperatingCostRepository

	// Redis is optional. When nil every view is computed from the database.
	Redis *redis_utils.RedisHandler
}

func NewFinancialsController(
	db repositories.TxBeginner,
	financialService services.FinancialServiceI,
	subscriptionRepo repositories.SubscriptionRepository,
	historyRepo repositories.RenewalHistoryRepository,
	renewalQueueRepo repositories.RenewalQueueRepository,
	ledgerRepo repositories.RoundupLedgerRepository,
	queueRepo repositories.MarketQueueRepository,
	costRepo repositories.OperatingCostRepository,
	redisHandler *redis_utils.RedisHandler,
) *FinancialsController {
	return &FinancialsController{
		DB:               db,
		FinancialService: financialService,
		SubscriptionRepo: subscriptionRepo,
		HistoryRepo:      historyRepo,
		RenewalQueueRepo: renewalQueueRepo,
		LedgerRepo:       ledgerRepo,
		QueueRepo:        queueRepo,
		CostRepo:         costRepo,
		Redis:            redisHandler,
	}
}

func (c *FinancialsController) GetRevenueView(ctx context.Context) (*schemas.RevenueView, error) {
	var cached schemas.RevenueView
	if c.cachedView(ctx, revenueViewKey, &cached) {
		return &cached, nil
	}

	var history []models.RenewalHistoryItem
	err := c.withSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		history, err = c.HistoryRepo.GetSucceeded(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	view := c.FinancialService.BuildRevenueView(history)
	c.storeView(ctx, revenueViewKey, view)
	return view, nil
}

func (c *FinancialsController) GetProfitAndLossView(ctx context.Context) (*schemas.ProfitAndLossView, error) {
	var cached schemas.ProfitAndLossView
	if c.cachedView(ctx, pnlViewKey, &cached) {
		return &cached, nil
	}

	var (
		history []models.RenewalHistoryItem
		entries []models.RoundupLedgerEntry
		costs   []models.OperatingCost
	)
	err := c.withSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		if history, err = c.HistoryRepo.GetSucceeded(ctx, tx); err != nil {
			return err
		}
		if entries, err = c.LedgerRepo.GetAll(ctx, tx); err != nil {
			return err
		}
		costs, err = c.CostRepo.GetAll(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	view := c.FinancialService.BuildProfitAndLossView(history, entries, costs)
	c.storeView(ctx, pnlViewKey, view)
	return view, nil
}

func (c *FinancialsController) GetCashFlowView(ctx context.Context) (*schemas.CashFlowView, error) {
	var cached schemas.CashFlowView
	if c.cachedView(ctx, cashFlowViewKey, &cached) {
		return &cached, nil
	}

	var (
		history  []models.RenewalHistoryItem
		entries  []models.RoundupLedgerEntry
		costs    []models.OperatingCost
		executed []models.MarketQueueItem
	)
	err := c.withSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		if history, err = c.HistoryRepo.GetSucceeded(ctx, tx); err != nil {
			return err
		}
		if entries, err = c.LedgerRepo.GetAll(ctx, tx); err != nil {
			return err
		}
		if costs, err = c.CostRepo.GetAll(ctx, tx); err != nil {
			return err
		}
		executed, err = c.QueueRepo.GetCompleted(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	view := c.FinancialService.BuildCashFlowView(history, entries, costs, executed)
	c.storeView(ctx, cashFlowViewKey, view)
	return view, nil
}

func (c *FinancialsController) GetBalanceSheet(ctx context.Context) (*schemas.BalanceSheetView, error) {
	var cached schemas.BalanceSheetView
	if c.cachedView(ctx, balanceSheetViewKey, &cached) {
		return &cached, nil
	}

	var (
		active             []models.Subscription
		openRenewals       []models.RenewalQueueItem
		entries            []models.RoundupLedgerEntry
		pendingInvestments decimal.Decimal
	)
	err := c.withSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		if active, err = c.SubscriptionRepo.GetActive(ctx, tx); err != nil {
			return err
		}
		if openRenewals, err = c.RenewalQueueRepo.GetOpen(ctx, tx); err != nil {
			return err
		}
		if entries, err = c.LedgerRepo.GetAll(ctx, tx); err != nil {
			return err
		}
		pendingInvestments, err = c.QueueRepo.SumOpenAmounts(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	view := c.FinancialService.BuildBalanceSheet(active, openRenewals, entries, pendingInvestments, time.Now().UTC())
	c.storeView(ctx, balanceSheetViewKey, view)
	return view, nil
}

func (c *FinancialsController) GetOperatingCosts(ctx context.Context, limit, offset int) ([]schemas.OperatingCostResponse, error) {
	costs, err := c.CostRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return schemas.NewOperatingCostResponses(costs), nil
}

func (c *FinancialsController) CreateOperatingCost(ctx context.Context, request *schemas.CreateOperatingCostRequest) (*schemas.OperatingCostResponse, error) {
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrInvalidAmount
	}
	if request.Provider == "" {
		return nil, utils.BadRequest("provider is required")
	}
	incurredAt := request.IncurredAt.ToTime()
	if incurredAt.IsZero() {
		incurredAt = time.Now().UTC()
	}

	cost := &models.OperatingCost{
		Provider:    request.Provider,
		Description: request.Description,
		Amount:      request.Amount,
		IncurredAt:  incurredAt,
	}
	if err := c.CostRepo.Create(ctx, cost, nil); err != nil {
		return nil, err
	}

	// New costs move the expense views immediately.
	c.dropView(ctx, pnlViewKey)
	c.dropView(ctx, cashFlowViewKey)

	response := schemas.NewOperatingCostResponse(*cost)
	return &response, nil
}

// withSnapshot runs fn inside a repeatable-read, read-only transaction.
func (c *FinancialsController) withSnapshot(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer tx.Rollback(ctx)
	return fn(tx)
}

func (c *FinancialsController) cachedView(ctx context.Context, key string, result any) bool {
	if c.Redis == nil {
		return false
	}
	found, err := c.Redis.Get(ctx, key, result)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warnf("reading cached view %s", key)
		return false
	}
	return found
}

func (c *FinancialsController) storeView(ctx context.Context, key string, view any) {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Set(ctx, key, view, viewCacheTTL); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warnf("caching view %s", key)
	}
}

func (c *FinancialsController) dropView(ctx context.Context, key string) {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Delete(ctx, key); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warnf("dropping cached view %s", key)
	}
}
