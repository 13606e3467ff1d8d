package repositories

import (
	"context"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RenewalHistoryRepository interface {
	Create(ctx context.Context, item *models.RenewalHistoryItem, tx pgx.Tx) error
	List(ctx context.Context, limit, offset int) ([]models.RenewalHistoryItem, error)
	ListBySubscription(ctx context.Context, subscriptionID int) ([]models.RenewalHistoryItem, error)
	GetSucceeded(ctx context.Context, tx pgx.Tx) ([]models.RenewalHistoryItem, error)
}

type renewalHistoryRepo struct {
	db *pgxpool.Pool
}

func NewRenewalHistoryRepository(db *pgxpool.Pool) RenewalHistoryRepository {
	return &renewalHistoryRepo{db: db}
}

const renewalHistoryColumns = `id, subscription_id, amount, status, payment_method, failure_reason, renewal_date, created_at`

func (r *renewalHistoryRepo) Create(ctx context.Context, item *models.RenewalHistoryItem, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	return q.QueryRow(ctx,
		`INSERT INTO renewal_history_items (subscription_id, amount, status, payment_method, failure_reason, renewal_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		item.SubscriptionID, item.Amount, item.Status, item.PaymentMethod, item.FailureReason, item.RenewalDate,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *renewalHistoryRepo) List(ctx context.Context, limit, offset int) ([]models.RenewalHistoryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+renewalHistoryColumns+` FROM renewal_history_items ORDER BY renewal_date DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRenewalHistory(rows)
}

func (r *renewalHistoryRepo) ListBySubscription(ctx context.Context, subscriptionID int) ([]models.RenewalHistoryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+renewalHistoryColumns+` FROM renewal_history_items WHERE subscription_id = $1 ORDER BY renewal_date DESC, id DESC`,
		subscriptionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRenewalHistory(rows)
}

func (r *renewalHistoryRepo) GetSucceeded(ctx context.Context, tx pgx.Tx) ([]models.RenewalHistoryItem, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx,
		`SELECT `+renewalHistoryColumns+` FROM renewal_history_items WHERE status = $1 ORDER BY id`,
		models.RenewalSucceeded,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRenewalHistory(rows)
}

func collectRenewalHistory(rows pgx.Rows) ([]models.RenewalHistoryItem, error) {
	var items []models.RenewalHistoryItem
	for rows.Next() {
		var item models.RenewalHistoryItem
		if err := rows.Scan(&item.ID, &item.SubscriptionID, &item.Amount, &item.Status, &item.PaymentMethod, &item.FailureReason, &item.RenewalDate, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
