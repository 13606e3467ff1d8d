package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"roundup/src/clients/broker"
	"roundup/src/config"
	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/sethvargo/go-retry"
)

type QueueServiceI interface {
	StageTransactions(ctx context.Context) (*schemas.StageResult, error)
	ExecuteQueue(ctx context.Context) (*schemas.ExecuteResult, error)
	RequeueStuck(ctx context.Context) (*schemas.RequeueResult, error)
}

// QueueService stages eligible transactions into the market queue and
// executes pending items against the brokerage.
type QueueService struct {
	db              repositories.TxBeginner
	queueRepo       repositories.MarketQueueRepository
	transactionRepo repositories.TransactionRepository
	ledgerRepo      repositories.RoundupLedgerRepository
	brokerClient    broker.BrokerServiceClientI

	stuckAfter      time.Duration
	maxOrderRetries uint64
}

func NewQueueService(
	cfg *config.Config,
	db repositories.TxBeginner,
	queueRepo repositories.MarketQueueRepository,
	transactionRepo repositories.TransactionRepository,
	ledgerRepo repositories.RoundupLedgerRepository,
	brokerClient broker.BrokerServiceClientI,
) *QueueService {
	stuckAfter := time.Duration(cfg.Queue.StuckAfterMinutes) * time.Minute
	if stuckAfter <= 0 {
		stuckAfter = 30 * time.Minute
	}
	maxOrderRetries := cfg.Queue.MaxOrderRetries
	if maxOrderRetries <= 0 {
		maxOrderRetries = 3
	}

	return &QueueService{
		db:              db,
		queueRepo:       queueRepo,
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
		brokerClient:    brokerClient,
		stuckAfter:      stuckAfter,
		maxOrderRetries: uint64(maxOrderRetries),
	}
}

// StageTransactions moves every stageable transaction into the market queue.
// Per item it enqueues, allocates the ledger entry and marks the transaction
// mapped in one database transaction. A transaction that already has an open
// queue item is skipped, so a re-run stages nothing twice.
func (s *QueueService) StageTransactions(ctx context.Context) (*schemas.StageResult, error) {
	logger := utils.LoggerFromContext(ctx)

	transactions, err := s.transactionRepo.GetStageable(ctx)
	if err != nil {
		return nil, err
	}

	result := &schemas.StageResult{}
	for i := range transactions {
		transaction := &transactions[i]
		staged, err := s.stageOne(ctx, transaction)
		if err != nil {
			logger.Errorf("failed to stage transaction %d: %v", transaction.ID, err)
			result.Errors = append(result.Errors, schemas.ItemError{ID: transaction.ID, Reason: err.Error()})
			continue
		}
		if staged {
			result.Staged++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func (s *QueueService) stageOne(ctx context.Context, transaction *models.Transaction) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	transactionID := transaction.ID
	item := &models.MarketQueueItem{
		TransactionID: &transactionID,
		UserID:        transaction.UserID,
		Ticker:        *transaction.Ticker,
		Amount:        transaction.RoundUpAmount,
		Status:        models.QueueItemPending,
	}
	inserted, err := s.queueRepo.Enqueue(ctx, item, tx)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	allocated, err := s.ledgerRepo.MarkAllocated(ctx, transactionID, tx)
	if err != nil {
		return false, err
	}
	mapped, err := s.transactionRepo.UpdateStatus(ctx, transactionID, models.TransactionPending, models.TransactionMapped, tx)
	if err != nil {
		return false, err
	}
	if !allocated || !mapped {
		// Lost a race against a concurrent stage or settle. Rolling back
		// drops the queue item with it.
		return false, nil
	}
	return true, tx.Commit(ctx)
}

// ExecuteQueue places one order per pending item. Each item is claimed with a
// compare and swap on its status first, so concurrent executors never double
// submit. Item failures are recorded on the item and never abort the batch,
// and a re-run with nothing pending is a no-op.
func (s *QueueService) ExecuteQueue(ctx context.Context) (*schemas.ExecuteResult, error) {
	logger := utils.LoggerFromContext(ctx)

	items, err := s.queueRepo.GetPending(ctx, nil)
	if err != nil {
		return nil, err
	}

	result := &schemas.ExecuteResult{}
	for i := range items {
		item := &items[i]

		claimed, err := s.queueRepo.MarkProcessing(ctx, item.ID)
		if err != nil {
			logger.Errorf("failed to claim queue item %d: %v", item.ID, err)
			result.Errors = append(result.Errors, schemas.ItemError{ID: item.ID, Reason: err.Error()})
			continue
		}
		if !claimed {
			result.Skipped++
			continue
		}

		if err := s.placeOrder(ctx, item); err != nil {
			reason := err.Error()
			if failErr := s.failItem(ctx, item, reason); failErr != nil {
				logger.Errorf("failed to record failure for queue item %d: %v", item.ID, failErr)
				result.Errors = append(result.Errors, schemas.ItemError{ID: item.ID, Reason: failErr.Error()})
				continue
			}
			logger.Errorf("order for queue item %d failed: %v", item.ID, err)
			result.Failed++
			result.Errors = append(result.Errors, schemas.ItemError{ID: item.ID, Reason: reason})
			continue
		}

		if err := s.completeItem(ctx, item); err != nil {
			logger.Errorf("failed to complete queue item %d: %v", item.ID, err)
			result.Errors = append(result.Errors, schemas.ItemError{ID: item.ID, Reason: err.Error()})
			continue
		}
		result.Completed++
	}
	return result, nil
}

// placeOrder submits the order, retrying transient broker failures with a
// fibonacci backoff. The client order id is derived from the item id, so
// retries and re-runs reach the broker as the same order.
func (s *QueueService) placeOrder(ctx context.Context, item *models.MarketQueueItem) error {
	order := &broker.OrderRequest{
		ClientOrderID: utils.DeterministicID("queue-item", strconv.Itoa(item.ID)),
		Ticker:        item.Ticker,
		Notional:      item.Amount,
		Side:          broker.SideBuy,
	}

	backoff := retry.WithMaxRetries(s.maxOrderRetries, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.brokerClient.PlaceOrder(ctx, order)
		if utils.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// completeItem settles the whole pipeline for a filled order: queue item
// completed, ledger entry swept, transaction completed, atomically.
func (s *QueueService) completeItem(ctx context.Context, item *models.MarketQueueItem) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	done, err := s.queueRepo.MarkCompleted(ctx, item.ID, tx)
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("queue item %d is no longer processing", item.ID)
	}
	if item.TransactionID != nil {
		if _, err := s.ledgerRepo.MarkSwept(ctx, *item.TransactionID, tx); err != nil {
			return err
		}
		if _, err := s.transactionRepo.UpdateStatus(ctx, *item.TransactionID, models.TransactionMapped, models.TransactionCompleted, tx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *QueueService) failItem(ctx context.Context, item *models.MarketQueueItem, reason string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	done, err := s.queueRepo.MarkFailed(ctx, item.ID, reason, tx)
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("queue item %d is no longer processing", item.ID)
	}
	if item.TransactionID != nil {
		if _, err := s.ledgerRepo.MarkFailed(ctx, *item.TransactionID, tx); err != nil {
			return err
		}
		if _, err := s.transactionRepo.UpdateStatus(ctx, *item.TransactionID, models.TransactionMapped, models.TransactionFailed, tx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// RequeueStuck returns items stuck in processing to pending so the next
// execution pass picks them up again. Meant for operators cleaning up after
// a crashed executor.
func (s *QueueService) RequeueStuck(ctx context.Context) (*schemas.RequeueResult, error) {
	cutoff := time.Now().Add(-s.stuckAfter)
	requeued, err := s.queueRepo.RequeueStuck(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if requeued > 0 {
		utils.LoggerFromContext(ctx).Infof("requeued %d stuck queue items", requeued)
	}
	return &schemas.RequeueResult{Requeued: requeued}, nil
}
