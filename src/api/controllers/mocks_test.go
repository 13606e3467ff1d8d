package controllers_test

import (
	"context"

	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository mocks embed their interface and stub only what the controllers
// call. Unset funcs succeed with zero values, anything unimplemented panics.

type transactionRepoMock struct {
	repositories.TransactionRepository
	ListFunc    func(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	GetByIDFunc func(ctx context.Context, id int) (*models.Transaction, error)
	CreateFunc  func(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
}

func (m *transactionRepoMock) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *transactionRepoMock) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *transactionRepoMock) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t, tx)
	}
	return nil
}

type ledgerRepoMock struct {
	repositories.RoundupLedgerRepository
	ListFunc   func(ctx context.Context, limit, offset int) ([]models.RoundupLedgerEntry, error)
	GetAllFunc func(ctx context.Context, tx pgx.Tx) ([]models.RoundupLedgerEntry, error)
}

func (m *ledgerRepoMock) List(ctx context.Context, limit, offset int) ([]models.RoundupLedgerEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *ledgerRepoMock) GetAll(ctx context.Context, tx pgx.Tx) ([]models.RoundupLedgerEntry, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx, tx)
	}
	return nil, nil
}

type queueRepoMock struct {
	repositories.MarketQueueRepository
	ListFunc           func(ctx context.Context, limit, offset int) ([]models.MarketQueueItem, error)
	GetCompletedFunc   func(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error)
	SumOpenAmountsFunc func(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

func (m *queueRepoMock) List(ctx context.Context, limit, offset int) ([]models.MarketQueueItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *queueRepoMock) GetCompleted(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error) {
	if m.GetCompletedFunc != nil {
		return m.GetCompletedFunc(ctx, tx)
	}
	return nil, nil
}

func (m *queueRepoMock) SumOpenAmounts(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	if m.SumOpenAmountsFunc != nil {
		return m.SumOpenAmountsFunc(ctx, tx)
	}
	return decimal.Zero, nil
}

type subscriptionRepoMock struct {
	repositories.SubscriptionRepository
	ListFunc      func(ctx context.Context, limit, offset int) ([]models.Subscription, error)
	GetActiveFunc func(ctx context.Context, tx pgx.Tx) ([]models.Subscription, error)
	GetByIDFunc   func(ctx context.Context, id int) (*models.Subscription, error)
}

func (m *subscriptionRepoMock) List(ctx context.Context, limit, offset int) ([]models.Subscription, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *subscriptionRepoMock) GetActive(ctx context.Context, tx pgx.Tx) ([]models.Subscription, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, tx)
	}
	return nil, nil
}

func (m *subscriptionRepoMock) GetByID(ctx context.Context, id int) (*models.Subscription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type renewalQueueRepoMock struct {
	repositories.RenewalQueueRepository
	ListFunc    func(ctx context.Context, limit, offset int) ([]models.RenewalQueueItem, error)
	GetOpenFunc func(ctx context.Context, tx pgx.Tx) ([]models.RenewalQueueItem, error)
}

func (m *renewalQueueRepoMock) List(ctx context.Context, limit, offset int) ([]models.RenewalQueueItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *renewalQueueRepoMock) GetOpen(ctx context.Context, tx pgx.Tx) ([]models.RenewalQueueItem, error) {
	if m.GetOpenFunc != nil {
		return m.GetOpenFunc(ctx, tx)
	}
	return nil, nil
}

type historyRepoMock struct {
	repositories.RenewalHistoryRepository
	ListFunc               func(ctx context.Context, limit, offset int) ([]models.RenewalHistoryItem, error)
	ListBySubscriptionFunc func(ctx context.Context, subscriptionID int) ([]models.RenewalHistoryItem, error)
	GetSucceededFunc       func(ctx context.Context, tx pgx.Tx) ([]models.RenewalHistoryItem, error)
}

func (m *historyRepoMock) List(ctx context.Context, limit, offset int) ([]models.RenewalHistoryItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *historyRepoMock) ListBySubscription(ctx context.Context, subscriptionID int) ([]models.RenewalHistoryItem, error) {
	if m.ListBySubscriptionFunc != nil {
		return m.ListBySubscriptionFunc(ctx, subscriptionID)
	}
	return nil, nil
}

func (m *historyRepoMock) GetSucceeded(ctx context.Context, tx pgx.Tx) ([]models.RenewalHistoryItem, error) {
	if m.GetSucceededFunc != nil {
		return m.GetSucceededFunc(ctx, tx)
	}
	return nil, nil
}

type costRepoMock struct {
	repositories.OperatingCostRepository
	CreateFunc func(ctx context.Context, c *models.OperatingCost, tx pgx.Tx) error
	ListFunc   func(ctx context.Context, limit, offset int) ([]models.OperatingCost, error)
	GetAllFunc func(ctx context.Context, tx pgx.Tx) ([]models.OperatingCost, error)
}

func (m *costRepoMock) Create(ctx context.Context, c *models.OperatingCost, tx pgx.Tx) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c, tx)
	}
	return nil
}

func (m *costRepoMock) List(ctx context.Context, limit, offset int) ([]models.OperatingCost, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *costRepoMock) GetAll(ctx context.Context, tx pgx.Tx) ([]models.OperatingCost, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx, tx)
	}
	return nil, nil
}

// Service mocks implement the full interface, defaults report empty runs.

type roundupServiceMock struct {
	BuildPendingEntriesFunc func(ctx context.Context) (*schemas.BuildResult, error)
}

func (m *roundupServiceMock) ComputeRoundUp(decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *roundupServiceMock) ComputeFee(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

func (m *roundupServiceMock) BuildLedgerEntry(context.Context, *models.Transaction) (*models.RoundupLedgerEntry, error) {
	return nil, nil
}

func (m *roundupServiceMock) BuildPendingEntries(ctx context.Context) (*schemas.BuildResult, error) {
	if m.BuildPendingEntriesFunc != nil {
		return m.BuildPendingEntriesFunc(ctx)
	}
	return &schemas.BuildResult{}, nil
}

type queueServiceMock struct {
	StageTransactionsFunc func(ctx context.Context) (*schemas.StageResult, error)
	ExecuteQueueFunc      func(ctx context.Context) (*schemas.ExecuteResult, error)
	RequeueStuckFunc      func(ctx context.Context) (*schemas.RequeueResult, error)
}

func (m *queueServiceMock) StageTransactions(ctx context.Context) (*schemas.StageResult, error) {
	if m.StageTransactionsFunc != nil {
		return m.StageTransactionsFunc(ctx)
	}
	return &schemas.StageResult{}, nil
}

func (m *queueServiceMock) ExecuteQueue(ctx context.Context) (*schemas.ExecuteResult, error) {
	if m.ExecuteQueueFunc != nil {
		return m.ExecuteQueueFunc(ctx)
	}
	return &schemas.ExecuteResult{}, nil
}

func (m *queueServiceMock) RequeueStuck(ctx context.Context) (*schemas.RequeueResult, error) {
	if m.RequeueStuckFunc != nil {
		return m.RequeueStuckFunc(ctx)
	}
	return &schemas.RequeueResult{}, nil
}

type renewalServiceMock struct {
	CreateSubscriptionFunc func(ctx context.Context, request *schemas.CreateSubscriptionRequest) (*models.Subscription, error)
	CancelSubscriptionFunc func(ctx context.Context, subscriptionID int) (*models.Subscription, error)
	RunDueRenewalsFunc     func(ctx context.Context) (*schemas.RunRenewalsResult, error)
	AttemptRenewalFunc     func(ctx context.Context, subscriptionID int) (*schemas.RenewalOutcome, error)
}

func (m *renewalServiceMock) CreateSubscription(ctx context.Context, request *schemas.CreateSubscriptionRequest) (*models.Subscription, error) {
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, request)
	}
	return &models.Subscription{}, nil
}

func (m *renewalServiceMock) CancelSubscription(ctx context.Context, subscriptionID int) (*models.Subscription, error) {
	if m.CancelSubscriptionFunc != nil {
		return m.CancelSubscriptionFunc(ctx, subscriptionID)
	}
	return &models.Subscription{}, nil
}

func (m *renewalServiceMock) RunDueRenewals(ctx context.Context) (*schemas.RunRenewalsResult, error) {
	if m.RunDueRenewalsFunc != nil {
		return m.RunDueRenewalsFunc(ctx)
	}
	return &schemas.RunRenewalsResult{}, nil
}

func (m *renewalServiceMock) AttemptRenewal(ctx context.Context, subscriptionID int) (*schemas.RenewalOutcome, error) {
	if m.AttemptRenewalFunc != nil {
		return m.AttemptRenewalFunc(ctx, subscriptionID)
	}
	return &schemas.RenewalOutcome{}, nil
}

type reconciliationServiceMock struct {
	CheckFeesFunc func(ctx context.Context) (*schemas.ReconciliationReport, error)
}

func (m *reconciliationServiceMock) CheckFees(ctx context.Context) (*schemas.ReconciliationReport, error) {
	if m.CheckFeesFunc != nil {
		return m.CheckFeesFunc(ctx)
	}
	return &schemas.ReconciliationReport{}, nil
}

// fakeTx stands in for a pgx transaction. Rollback after Commit is the
// deferred cleanup call, it does not count as a rollback.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	lastTx        *fakeTx
	lastTxOptions pgx.TxOptions
	beginErr      error
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.lastTx = &fakeTx{}
	return db.lastTx, nil
}

func (db *fakeDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	db.lastTxOptions = txOptions
	return db.Begin(ctx)
}
