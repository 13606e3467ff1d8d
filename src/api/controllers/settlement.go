package controllers

import (
	"context"

	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/services"
)

type SettlementControllerI interface {
	BuildRoundups(ctx context.Context) (*schemas.BuildResult, error)
	StageQueue(ctx context.Context) (*schemas.StageResult, error)
	ExecuteQueue(ctx context.Context) (*schemas.ExecuteResult, error)
	RequeueStuck(ctx context.Context) (*schemas.RequeueResult, error)
	GetLedgerEntries(ctx context.Context, limit, offset int) ([]schemas.LedgerEntryResponse, error)
	GetQueueItems(ctx context.Context, limit, offset int) ([]schemas.QueueItemResponse, error)
	CheckFees(ctx context.Context) (*schemas.ReconciliationReport, error)
}

// SettlementController drives the round-up pipeline: ledger building,
// queue staging and execution, and the fee reconciliation report.
type SettlementController struct {
	RoundupService        services.RoundupServiceI
	QueueService          services.QueueServiceI
	ReconciliationService services.ReconciliationServiceI
	LedgerRepo            repositories.RoundupLedgerRepository
	QueueRepo             repositories.MarketQueueRepository
}

func NewSettlementController(
	roundupService services.RoundupServiceI,
	queueService services.QueueServiceI,
	reconciliationService services.ReconciliationServiceI,
	ledgerRepo repositories.RoundupLedgerRepository,
	queueRepo repositories.MarketQueueRepository,
) *SettlementController {
	return &SettlementController{
		RoundupService:        roundupService,
		QueueService:          queueService,
		ReconciliationService: reconciliationService,
		LedgerRepo:            ledgerRepo,
		QueueRepo:             queueRepo,
	}
}

func (c *SettlementController) BuildRoundups(ctx context.Context) (*schemas.BuildResult, error) {
	return c.RoundupService.BuildPendingEntries(ctx)
}

func (c *SettlementController) StageQueue(ctx context.Context) (*schemas.StageResult, error) {
	return c.QueueService.StageTransactions(ctx)
}

func (c *SettlementController) ExecuteQueue(ctx context.Context) (*schemas.ExecuteResult, error) {
	return c.QueueService.ExecuteQueue(ctx)
}

func (c *SettlementController) RequeueStuck(ctx context.Context) (*schemas.RequeueResult, error) {
	return c.QueueService.RequeueStuck(ctx)
}

func (c *SettlementController) GetLedgerEntries(ctx context.Context, limit, offset int) ([]schemas.LedgerEntryResponse, error) {
	entries, err := c.LedgerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return schemas.NewLedgerEntryResponses(entries), nil
}

func (c *SettlementController) GetQueueItems(ctx context.Context, limit, offset int) ([]schemas.QueueItemResponse, error) {
	items, err := c.QueueRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return schemas.NewQueueItemResponses(items), nil
}

func (c *SettlementController) CheckFees(ctx context.Context) (*schemas.ReconciliationReport, error) {
	return c.ReconciliationService.CheckFees(ctx)
}
