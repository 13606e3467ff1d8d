package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QueueItemStatus tracks a staged investment through order execution.
type QueueItemStatus string

const (
	QueueItemPending    QueueItemStatus = "pending"
	QueueItemProcessing QueueItemStatus = "processing"
	QueueItemCompleted  QueueItemStatus = "completed"
	QueueItemFailed     QueueItemStatus = "failed"
)

var queueItemTransitions = map[QueueItemStatus][]QueueItemStatus{
	QueueItemPending:    {QueueItemProcessing},
	QueueItemProcessing: {QueueItemCompleted, QueueItemFailed, QueueItemPending},
}

func (s QueueItemStatus) Valid() bool {
	switch s {
	case QueueItemPending, QueueItemProcessing, QueueItemCompleted, QueueItemFailed:
		return true
	}
	return false
}

func (s QueueItemStatus) Terminal() bool {
	return s == QueueItemCompleted || s == QueueItemFailed
}

// CanTransitionTo allows processing -> pending so stuck items can be requeued.
func (s QueueItemStatus) CanTransitionTo(next QueueItemStatus) bool {
	for _, allowed := range queueItemTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

type MarketQueueItem struct {
	ID            int             `db:"id"`
	TransactionID *int            `db:"transaction_id"`
	UserID        string          `db:"user_id"`
	Ticker        string          `db:"ticker"`
	Amount        decimal.Decimal `db:"amount"`
	Status        QueueItemStatus `db:"status"`
	ErrorReason   *string         `db:"error_reason"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	ProcessedAt   *time.Time      `db:"processed_at"`
}
