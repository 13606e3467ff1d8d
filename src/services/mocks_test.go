package services_test

import (
	"context"
	"testing"
	"time"

	"roundup/src/clients/broker"
	"roundup/src/clients/payments"
	"roundup/src/config"
	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fakeTx satisfies pgx.Tx for services that open transactions. Only Commit
// and Rollback do anything, the repository mocks never touch the rest.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

// fakeDB hands out fakeTx instances and remembers the last one, so tests can
// check whether a service committed or rolled back.
type fakeDB struct {
	lastTx   *fakeTx
	beginErr error
}

func (d *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	d.lastTx = &fakeTx{}
	return d.lastTx, nil
}

func (d *fakeDB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return d.Begin(ctx)
}

// transactionRepoMock is a mock implementation of
// repositories.TransactionRepository. Unset funcs succeed with zero values.
type transactionRepoMock struct {
	GetByIDFunc      func(ctx context.Context, id int) (*models.Transaction, error)
	ListFunc         func(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	GetUnbuiltFunc   func(ctx context.Context) ([]models.Transaction, error)
	GetStageableFunc func(ctx context.Context) ([]models.Transaction, error)
	CreateFunc       func(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	SetRoundupFunc   func(ctx context.Context, id int, roundUp, fee decimal.Decimal, tx pgx.Tx) error
	UpdateStatusFunc func(ctx context.Context, id int, from, to models.TransactionStatus, tx pgx.Tx) (bool, error)
	SumFeesFunc      func(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

func (m *transactionRepoMock) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	if m.GetByIDFunc == nil {
		return nil, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *transactionRepoMock) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *transactionRepoMock) GetUnbuilt(ctx context.Context) ([]models.Transaction, error) {
	if m.GetUnbuiltFunc == nil {
		return nil, nil
	}
	return m.GetUnbuiltFunc(ctx)
}

func (m *transactionRepoMock) GetStageable(ctx context.Context) ([]models.Transaction, error) {
	if m.GetStageableFunc == nil {
		return nil, nil
	}
	return m.GetStageableFunc(ctx)
}

func (m *transactionRepoMock) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, t, tx)
}

func (m *transactionRepoMock) SetRoundup(ctx context.Context, id int, roundUp, fee decimal.Decimal, tx pgx.Tx) error {
	if m.SetRoundupFunc == nil {
		return nil
	}
	return m.SetRoundupFunc(ctx, id, roundUp, fee, tx)
}

func (m *transactionRepoMock) UpdateStatus(ctx context.Context, id int, from, to models.TransactionStatus, tx pgx.Tx) (bool, error) {
	if m.UpdateStatusFunc == nil {
		return true, nil
	}
	return m.UpdateStatusFunc(ctx, id, from, to, tx)
}

func (m *transactionRepoMock) SumFees(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	if m.SumFeesFunc == nil {
		return decimal.Zero, nil
	}
	return m.SumFeesFunc(ctx, tx)
}

// ledgerRepoMock is a mock implementation of
// repositories.RoundupLedgerRepository. Unset funcs succeed with zero values.
type ledgerRepoMock struct {
	CreateFunc             func(ctx context.Context, e *models.RoundupLedgerEntry, tx pgx.Tx) error
	GetByTransactionIDFunc func(ctx context.Context, transactionID int) (*models.RoundupLedgerEntry, error)
	ListFunc               func(ctx context.Context, limit, offset int) ([]models.RoundupLedgerEntry, error)
	GetAllFunc             func(ctx context.Context, tx pgx.Tx) ([]models.RoundupLedgerEntry, error)
	MarkAllocatedFunc      func(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error)
	MarkSweptFunc          func(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error)
	MarkFailedFunc         func(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error)
	SumFeesFunc            func(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

func (m *ledgerRepoMock) Create(ctx context.Context, e *models.RoundupLedgerEntry, tx pgx.Tx) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, e, tx)
}

func (m *ledgerRepoMock) GetByTransactionID(ctx context.Context, transactionID int) (*models.RoundupLedgerEntry, error) {
	if m.GetByTransactionIDFunc == nil {
		return nil, nil
	}
	return m.GetByTransactionIDFunc(ctx, transactionID)
}

func (m *ledgerRepoMock) List(ctx context.Context, limit, offset int) ([]models.RoundupLedgerEntry, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *ledgerRepoMock) GetAll(ctx context.Context, tx pgx.Tx) ([]models.RoundupLedgerEntry, error) {
	if m.GetAllFunc == nil {
		return nil, nil
	}
	return m.GetAllFunc(ctx, tx)
}

func (m *ledgerRepoMock) MarkAllocated(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error) {
	if m.MarkAllocatedFunc == nil {
		return true, nil
	}
	return m.MarkAllocatedFunc(ctx, transactionID, tx)
}

func (m *ledgerRepoMock) MarkSwept(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error) {
	if m.MarkSweptFunc == nil {
		return true, nil
	}
	return m.MarkSweptFunc(ctx, transactionID, tx)
}

func (m *ledgerRepoMock) MarkFailed(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error) {
	if m.MarkFailedFunc == nil {
		return true, nil
	}
	return m.MarkFailedFunc(ctx, transactionID, tx)
}

func (m *ledgerRepoMock) SumFees(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	if m.SumFeesFunc == nil {
		return decimal.Zero, nil
	}
	return m.SumFeesFunc(ctx, tx)
}

// queueRepoMock is a mock implementation of
// repositories.MarketQueueRepository. Unset funcs succeed with zero values.
type queueRepoMock struct {
	EnqueueFunc        func(ctx context.Context, item *models.MarketQueueItem, tx pgx.Tx) (bool, error)
	GetByIDFunc        func(ctx context.Context, id int) (*models.MarketQueueItem, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]models.MarketQueueItem, error)
	GetPendingFunc     func(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error)
	GetCompletedFunc   func(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error)
	MarkProcessingFunc func(ctx context.Context, id int) (bool, error)
	MarkCompletedFunc  func(ctx context.Context, id int, tx pgx.Tx) (bool, error)
	MarkFailedFunc     func(ctx context.Context, id int, reason string, tx pgx.Tx) (bool, error)
	RequeueStuckFunc   func(ctx context.Context, cutoff time.Time) (int, error)
	SumOpenFunc        func(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

func (m *queueRepoMock) Enqueue(ctx context.Context, item *models.MarketQueueItem, tx pgx.Tx) (bool, error) {
	if m.EnqueueFunc == nil {
		return true, nil
	}
	return m.EnqueueFunc(ctx, item, tx)
}

func (m *queueRepoMock) GetByID(ctx context.Context, id int) (*models.MarketQueueItem, error) {
	if m.GetByIDFunc == nil {
		return nil, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *queueRepoMock) List(ctx context.Context, limit, offset int) ([]models.MarketQueueItem, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *queueRepoMock) GetPending(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error) {
	if m.GetPendingFunc == nil {
		return nil, nil
	}
	return m.GetPendingFunc(ctx, tx)
}

func (m *queueRepoMock) GetCompleted(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error) {
	if m.GetCompletedFunc == nil {
		return nil, nil
	}
	return m.GetCompletedFunc(ctx, tx)
}

func (m *queueRepoMock) MarkProcessing(ctx context.Context, id int) (bool, error) {
	if m.MarkProcessingFunc == nil {
		return true, nil
	}
	return m.MarkProcessingFunc(ctx, id)
}

func (m *queueRepoMock) MarkCompleted(ctx context.Context, id int, tx pgx.Tx) (bool, error) {
	if m.MarkCompletedFunc == nil {
		return true, nil
	}
	return m.MarkCompletedFunc(ctx, id, tx)
}

func (m *queueRepoMock) MarkFailed(ctx context.Context, id int, reason string, tx pgx.Tx) (bool, error) {
	if m.MarkFailedFunc == nil {
		return true, nil
	}
	return m.MarkFailedFunc(ctx, id, reason, tx)
}

func (m *queueRepoMock) RequeueStuck(ctx context.Context, cutoff time.Time) (int, error) {
	if m.RequeueStuckFunc == nil {
		return 0, nil
	}
	return m.RequeueStuckFunc(ctx, cutoff)
}

func (m *queueRepoMock) SumOpenAmounts(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	if m.SumOpenFunc == nil {
		return decimal.Zero, nil
	}
	return m.SumOpenFunc(ctx, tx)
}

// subscriptionRepoMock is a mock implementation of
// repositories.SubscriptionRepository. Unset funcs succeed with zero values.
type subscriptionRepoMock struct {
	GetByIDFunc        func(ctx context.Context, id int) (*models.Subscription, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]models.Subscription, error)
	GetActiveFunc      func(ctx context.Context, tx pgx.Tx) ([]models.Subscription, error)
	CreateFunc         func(ctx context.Context, s *models.Subscription, tx pgx.Tx) error
	SetStatusFunc      func(ctx context.Context, id int, status models.SubscriptionStatus, tx pgx.Tx) (bool, error)
	SetRenewalDateFunc func(ctx context.Context, id int, renewalDate time.Time, tx pgx.Tx) error
}

func (m *subscriptionRepoMock) GetByID(ctx context.Context, id int) (*models.Subscription, error) {
	if m.GetByIDFunc == nil {
		return nil, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *subscriptionRepoMock) List(ctx context.Context, limit, offset int) ([]models.Subscription, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *subscriptionRepoMock) GetActive(ctx context.Context, tx pgx.Tx) ([]models.Subscription, error) {
	if m.GetActiveFunc == nil {
		return nil, nil
	}
	return m.GetActiveFunc(ctx, tx)
}

func (m *subscriptionRepoMock) Create(ctx context.Context, s *models.Subscription, tx pgx.Tx) error {
	if m.CreateFunc == nil {
		s.ID = 1
		return nil
	}
	return m.CreateFunc(ctx, s, tx)
}

func (m *subscriptionRepoMock) SetStatus(ctx context.Context, id int, status models.SubscriptionStatus, tx pgx.Tx) (bool, error) {
	if m.SetStatusFunc == nil {
		return true, nil
	}
	return m.SetStatusFunc(ctx, id, status, tx)
}

func (m *subscriptionRepoMock) SetRenewalDate(ctx context.Context, id int, renewalDate time.Time, tx pgx.Tx) error {
	if m.SetRenewalDateFunc == nil {
		return nil
	}
	return m.SetRenewalDateFunc(ctx, id, renewalDate, tx)
}

// renewalQueueRepoMock is a mock implementation of
// repositories.RenewalQueueRepository. Unset funcs succeed with zero values.
type renewalQueueRepoMock struct {
	CreateFunc                func(ctx context.Context, item *models.RenewalQueueItem, tx pgx.Tx) error
	ListFunc                  func(ctx context.Context, limit, offset int) ([]models.RenewalQueueItem, error)
	GetDueFunc                func(ctx context.Context, asOf time.Time) ([]models.RenewalQueueItem, error)
	GetDueForSubscriptionFunc func(ctx context.Context, subscriptionID int, asOf time.Time) (*models.RenewalQueueItem, error)
	GetOpenFunc               func(ctx context.Context, tx pgx.Tx) ([]models.RenewalQueueItem, error)
	RecordFailureFunc         func(ctx context.Context, id int, reason string) error
	DeleteFunc                func(ctx context.Context, id int, tx pgx.Tx) error
	DeleteBySubscriptionFunc  func(ctx context.Context, subscriptionID int, tx pgx.Tx) (int, error)
}

func (m *renewalQueueRepoMock) Create(ctx context.Context, item *models.RenewalQueueItem, tx pgx.Tx) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, item, tx)
}

func (m *renewalQueueRepoMock) List(ctx context.Context, limit, offset int) ([]models.RenewalQueueItem, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *renewalQueueRepoMock) GetDue(ctx context.Context, asOf time.Time) ([]models.RenewalQueueItem, error) {
	if m.GetDueFunc == nil {
		return nil, nil
	}
	return m.GetDueFunc(ctx, asOf)
}

func (m *renewalQueueRepoMock) GetDueForSubscription(ctx context.Context, subscriptionID int, asOf time.Time) (*models.RenewalQueueItem, error) {
	if m.GetDueForSubscriptionFunc == nil {
		return nil, nil
	}
	return m.GetDueForSubscriptionFunc(ctx, subscriptionID, asOf)
}

func (m *renewalQueueRepoMock) GetOpen(ctx context.Context, tx pgx.Tx) ([]models.RenewalQueueItem, error) {
	if m.GetOpenFunc == nil {
		return nil, nil
	}
	return m.GetOpenFunc(ctx, tx)
}

func (m *renewalQueueRepoMock) RecordFailure(ctx context.Context, id int, reason string) error {
	if m.RecordFailureFunc == nil {
		return nil
	}
	return m.RecordFailureFunc(ctx, id, reason)
}

func (m *renewalQueueRepoMock) Delete(ctx context.Context, id int, tx pgx.Tx) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id, tx)
}

func (m *renewalQueueRepoMock) DeleteBySubscription(ctx context.Context, subscriptionID int, tx pgx.Tx) (int, error) {
	if m.DeleteBySubscriptionFunc == nil {
		return 0, nil
	}
	return m.DeleteBySubscriptionFunc(ctx, subscriptionID, tx)
}

// historyRepoMock is a mock implementation of
// repositories.RenewalHistoryRepository. Unset funcs succeed with zero values.
type historyRepoMock struct {
	CreateFunc             func(ctx context.Context, item *models.RenewalHistoryItem, tx pgx.Tx) error
	ListFunc               func(ctx context.Context, limit, offset int) ([]models.RenewalHistoryItem, error)
	ListBySubscriptionFunc func(ctx context.Context, subscriptionID int) ([]models.RenewalHistoryItem, error)
	GetSucceededFunc       func(ctx context.Context, tx pgx.Tx) ([]models.RenewalHistoryItem, error)
}

func (m *historyRepoMock) Create(ctx context.Context, item *models.RenewalHistoryItem, tx pgx.Tx) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, item, tx)
}

func (m *historyRepoMock) List(ctx context.Context, limit, offset int) ([]models.RenewalHistoryItem, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *historyRepoMock) ListBySubscription(ctx context.Context, subscriptionID int) ([]models.RenewalHistoryItem, error) {
	if m.ListBySubscriptionFunc == nil {
		return nil, nil
	}
	return m.ListBySubscriptionFunc(ctx, subscriptionID)
}

func (m *historyRepoMock) GetSucceeded(ctx context.Context, tx pgx.Tx) ([]models.RenewalHistoryItem, error) {
	if m.GetSucceededFunc == nil {
		return nil, nil
	}
	return m.GetSucceededFunc(ctx, tx)
}

// brokerClientMock is a mock implementation of broker.BrokerServiceClientI.
// It records every order it receives.
type brokerClientMock struct {
	PlaceOrderFunc func(ctx context.Context, order *broker.OrderRequest) (*broker.OrderResponse, error)
	orders         []*broker.OrderRequest
}

func (m *brokerClientMock) PlaceOrder(ctx context.Context, order *broker.OrderRequest) (*broker.OrderResponse, error) {
	m.orders = append(m.orders, order)
	if m.PlaceOrderFunc == nil {
		return &broker.OrderResponse{
			OrderID:       "order-1",
			ClientOrderID: order.ClientOrderID,
			Ticker:        order.Ticker,
			Notional:      order.Notional,
			Status:        "accepted",
		}, nil
	}
	return m.PlaceOrderFunc(ctx, order)
}

// paymentsClientMock is a mock implementation of
// payments.PaymentsServiceClientI. It records every charge it receives.
type paymentsClientMock struct {
	ChargeFunc func(ctx context.Context, charge *payments.ChargeRequest) (*payments.ChargeResponse, error)
	charges    []*payments.ChargeRequest
}

func (m *paymentsClientMock) Charge(ctx context.Context, charge *payments.ChargeRequest) (*payments.ChargeResponse, error) {
	m.charges = append(m.charges, charge)
	if m.ChargeFunc == nil {
		return &payments.ChargeResponse{
			ChargeID:      "charge-1",
			Status:        payments.ChargeSucceeded,
			PaymentMethod: "card_visa_4242",
		}, nil
	}
	return m.ChargeFunc(ctx, charge)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Roundups.Multiplier = 1
	cfg.Roundups.Fees.Mode = config.FeeModeFlat
	cfg.Roundups.Fees.FlatAmount = "0.10"
	cfg.Queue.StuckAfterMinutes = 30
	cfg.Queue.MaxOrderRetries = 1
	cfg.Renewals.MaxAttempts = 3
	cfg.Renewals.MaxChargeRetries = 1
	return cfg
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}
