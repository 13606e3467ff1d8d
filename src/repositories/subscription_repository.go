package repositories

import (
	"context"
	"errors"
	"time"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository interface {
	GetByID(ctx context.Context, id int) (*models.Subscription, error)
	List(ctx context.Context, limit, offset int) ([]models.Subscription, error)
	GetActive(ctx context.Context, tx pgx.Tx) ([]models.Subscription, error)
	Create(ctx context.Context, s *models.Subscription, tx pgx.Tx) error
	SetStatus(ctx context.Context, id int, status models.SubscriptionStatus, tx pgx.Tx) (bool, error)
	SetRenewalDate(ctx context.Context, id int, renewalDate time.Time, tx pgx.Tx) error
}

type subscriptionRepo struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, user_id, plan, monthly_price, status, renewal_date, canceled_at, created_at`

func (r *subscriptionRepo) GetByID(ctx context.Context, id int) (*models.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`,
		id,
	)
	var s models.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.MonthlyPrice, &s.Status, &s.RenewalDate, &s.CanceledAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepo) List(ctx context.Context, limit, offset int) ([]models.Subscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func (r *subscriptionRepo) GetActive(ctx context.Context, tx pgx.Tx) ([]models.Subscription, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE status = $1 ORDER BY id`,
		models.SubscriptionActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func collectSubscriptions(rows pgx.Rows) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Plan, &s.MonthlyPrice, &s.Status, &s.RenewalDate, &s.CanceledAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, s)
	}
	return subscriptions, rows.Err()
}

func (r *subscriptionRepo) Create(ctx context.Context, s *models.Subscription, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	return q.QueryRow(ctx,
		`INSERT INTO subscriptions (user_id, plan, monthly_price, status, renewal_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.UserID, s.Plan, s.MonthlyPrice, s.Status, s.RenewalDate,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *subscriptionRepo) SetStatus(ctx context.Context, id int, status models.SubscriptionStatus, tx pgx.Tx) (bool, error) {
	q := withTx(r.db, tx)
	query := `UPDATE subscriptions SET status = $1 WHERE id = $2`
	args := []any{status, id}
	if status == models.SubscriptionCanceled {
		query = `UPDATE subscriptions SET status = $1, canceled_at = NOW() WHERE id = $2`
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *subscriptionRepo) SetRenewalDate(ctx context.Context, id int, renewalDate time.Time, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	_, err := q.Exec(ctx,
		`UPDATE subscriptions SET renewal_date = $1 WHERE id = $2`,
		renewalDate, id,
	)
	return err
}
