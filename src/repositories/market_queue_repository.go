package repositories

import (
	"context"
	"errors"
	"time"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type MarketQueueRepository interface {
	// Enqueue stages an item. It returns false when the transaction already
	// has an open queue item, enforced by a partial unique index.
	Enqueue(ctx context.Context, item *models.MarketQueueItem, tx pgx.Tx) (bool, error)
	GetByID(ctx context.Context, id int) (*models.MarketQueueItem, error)
	List(ctx context.Context, limit, offset int) ([]models.MarketQueueItem, error)
	GetPending(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error)
	GetCompleted(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error)
	MarkProcessing(ctx context.Context, id int) (bool, error)
	MarkCompleted(ctx context.Context, id int, tx pgx.Tx) (bool, error)
	MarkFailed(ctx context.Context, id int, reason string, tx pgx.Tx) (bool, error)
	RequeueStuck(ctx context.Context, cutoff time.Time) (int, error)
	SumOpenAmounts(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

type marketQueueRepo struct {
	db *pgxpool.Pool
}

func NewMarketQueueRepository(db *pgxpool.Pool) MarketQueueRepository {
	return &marketQueueRepo{db: db}
}

const queueItemColumns = `id, transaction_id, user_id, ticker, amount, status, error_reason, created_at, updated_at, processed_at`

func (r *marketQueueRepo) Enqueue(ctx context.Context, item *models.MarketQueueItem, tx pgx.Tx) (bool, error) {
	q := withTx(r.db, tx)
	err := q.QueryRow(ctx,
		`INSERT INTO market_queue_items (transaction_id, user_id, ticker, amount, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (transaction_id) WHERE status IN ('pending', 'processing') DO NOTHING
		 RETURNING id, created_at, updated_at`,
		item.TransactionID, item.UserID, item.Ticker, item.Amount, item.Status,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *marketQueueRepo) GetByID(ctx context.Context, id int) (*models.MarketQueueItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+queueItemColumns+` FROM market_queue_items WHERE id = $1`,
		id,
	)
	var item models.MarketQueueItem
	err := row.Scan(&item.ID, &item.TransactionID, &item.UserID, &item.Ticker, &item.Amount, &item.Status, &item.ErrorReason, &item.CreatedAt, &item.UpdatedAt, &item.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *marketQueueRepo) List(ctx context.Context, limit, offset int) ([]models.MarketQueueItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+queueItemColumns+` FROM market_queue_items ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQueueItems(rows)
}

// GetPending returns pending items oldest first, the order they are executed in.
func (r *marketQueueRepo) GetPending(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx,
		`SELECT `+queueItemColumns+` FROM market_queue_items WHERE status = $1 ORDER BY id`,
		models.QueueItemPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQueueItems(rows)
}

func (r *marketQueueRepo) GetCompleted(ctx context.Context, tx pgx.Tx) ([]models.MarketQueueItem, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx,
		`SELECT `+queueItemColumns+` FROM market_queue_items WHERE status = $1 ORDER BY id`,
		models.QueueItemCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQueueItems(rows)
}

func collectQueueItems(rows pgx.Rows) ([]models.MarketQueueItem, error) {
	var items []models.MarketQueueItem
	for rows.Next() {
		var item models.MarketQueueItem
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.UserID, &item.Ticker, &item.Amount, &item.Status, &item.ErrorReason, &item.CreatedAt, &item.UpdatedAt, &item.ProcessedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkProcessing claims a pending item. Exactly one concurrent caller wins,
// everyone else gets false.
func (r *marketQueueRepo) MarkProcessing(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE market_queue_items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.QueueItemProcessing, id, models.QueueItemPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *marketQueueRepo) MarkCompleted(ctx context.Context, id int, tx pgx.Tx) (bool, error) {
	q := withTx(r.db, tx)
	tag, err := q.Exec(ctx,
		`UPDATE market_queue_items
		 SET status = $1, error_reason = NULL, processed_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		models.QueueItemCompleted, id, models.QueueItemProcessing,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *marketQueueRepo) MarkFailed(ctx context.Context, id int, reason string, tx pgx.Tx) (bool, error) {
	q := withTx(r.db, tx)
	tag, err := q.Exec(ctx,
		`UPDATE market_queue_items
		 SET status = $1, error_reason = $2, processed_at = NOW(), updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		models.QueueItemFailed, reason, id, models.QueueItemProcessing,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RequeueStuck returns to pending every item that has been processing since
// before the cutoff, and reports how many were moved.
func (r *marketQueueRepo) RequeueStuck(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE market_queue_items
		 SET status = $1, error_reason = NULL, updated_at = NOW()
		 WHERE status = $2 AND updated_at < $3`,
		models.QueueItemPending, models.QueueItemProcessing, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// SumOpenAmounts totals pending investments, the main liability on the
// balance sheet.
func (r *marketQueueRepo) SumOpenAmounts(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	q := withTx(r.db, tx)
	var total decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM market_queue_items WHERE status = $1`,
		models.QueueItemPending,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
