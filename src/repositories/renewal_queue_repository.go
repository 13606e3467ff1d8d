package repositories

import (
	"context"
	"errors"
	"time"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RenewalQueueRepository interface {
	Create(ctx context.Context, item *models.RenewalQueueItem, tx pgx.Tx) error
	List(ctx context.Context, limit, offset int) ([]models.RenewalQueueItem, error)
	GetDue(ctx context.Context, asOf time.Time) ([]models.RenewalQueueItem, error)
	GetDueForSubscription(ctx context.Context, subscriptionID int, asOf time.Time) (*models.RenewalQueueItem, error)
	GetOpen(ctx context.Context, tx pgx.Tx) ([]models.RenewalQueueItem, error)
	RecordFailure(ctx context.Context, id int, reason string) error
	Delete(ctx context.Context, id int, tx pgx.Tx) error
	DeleteBySubscription(ctx context.Context, subscriptionID int, tx pgx.Tx) (int, error)
}

type renewalQueueRepo struct {
	db *pgxpool.Pool
}

func NewRenewalQueueRepository(db *pgxpool.Pool) RenewalQueueRepository {
	return &renewalQueueRepo{db: db}
}

const renewalQueueColumns = `id, subscription_id, amount, scheduled_date, status, attempt_count, last_error, created_at, updated_at`

func (r *renewalQueueRepo) Create(ctx context.Context, item *models.RenewalQueueItem, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	return q.QueryRow(ctx,
		`INSERT INTO renewal_queue_items (subscription_id, amount, scheduled_date, status, attempt_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		item.SubscriptionID, item.Amount, item.ScheduledDate, item.Status, item.AttemptCount,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *renewalQueueRepo) List(ctx context.Context, limit, offset int) ([]models.RenewalQueueItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+renewalQueueColumns+` FROM renewal_queue_items ORDER BY scheduled_date, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRenewalQueueItems(rows)
}

// GetDue returns every renewal whose scheduled date has been reached.
func (r *renewalQueueRepo) GetDue(ctx context.Context, asOf time.Time) ([]models.RenewalQueueItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+renewalQueueColumns+` FROM renewal_queue_items WHERE scheduled_date <= $1 ORDER BY scheduled_date, id`,
		asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRenewalQueueItems(rows)
}

func (r *renewalQueueRepo) GetDueForSubscription(ctx context.Context, subscriptionID int, asOf time.Time) (*models.RenewalQueueItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+renewalQueueColumns+` FROM renewal_queue_items
		 WHERE subscription_id = $1 AND scheduled_date <= $2
		 ORDER BY scheduled_date, id
		 LIMIT 1`,
		subscriptionID, asOf,
	)
	var item models.RenewalQueueItem
	err := row.Scan(&item.ID, &item.SubscriptionID, &item.Amount, &item.ScheduledDate, &item.Status, &item.AttemptCount, &item.LastError, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *renewalQueueRepo) GetOpen(ctx context.Context, tx pgx.Tx) ([]models.RenewalQueueItem, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx, `SELECT `+renewalQueueColumns+` FROM renewal_queue_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRenewalQueueItems(rows)
}

func collectRenewalQueueItems(rows pgx.Rows) ([]models.RenewalQueueItem, error) {
	var items []models.RenewalQueueItem
	for rows.Next() {
		var item models.RenewalQueueItem
		if err := rows.Scan(&item.ID, &item.SubscriptionID, &item.Amount, &item.ScheduledDate, &item.Status, &item.AttemptCount, &item.LastError, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RecordFailure bumps the attempt counter and parks the item in retrying.
func (r *renewalQueueRepo) RecordFailure(ctx context.Context, id int, reason string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE renewal_queue_items
		 SET attempt_count = attempt_count + 1, status = $1, last_error = $2, updated_at = NOW()
		 WHERE id = $3`,
		models.RenewalRetrying, reason, id,
	)
	return err
}

func (r *renewalQueueRepo) Delete(ctx context.Context, id int, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	_, err := q.Exec(ctx, `DELETE FROM renewal_queue_items WHERE id = $1`, id)
	return err
}

// DeleteBySubscription withdraws every open renewal for one subscription.
func (r *renewalQueueRepo) DeleteBySubscription(ctx context.Context, subscriptionID int, tx pgx.Tx) (int, error) {
	q := withTx(r.db, tx)
	tag, err := q.Exec(ctx, `DELETE FROM renewal_queue_items WHERE subscription_id = $1`, subscriptionID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
