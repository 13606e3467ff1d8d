package repositories

import (
	"context"
	"errors"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	GetByID(ctx context.Context, id int) (*models.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	GetUnbuilt(ctx context.Context) ([]models.Transaction, error)
	GetStageable(ctx context.Context) ([]models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	SetRoundup(ctx context.Context, id int, roundUp, fee decimal.Decimal, tx pgx.Tx) error
	UpdateStatus(ctx context.Context, id int, from, to models.TransactionStatus, tx pgx.Tx) (bool, error)
	SumFees(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, user_id, merchant, amount, round_up_amount, fee, ticker, status, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Merchant, &t.Amount, &t.RoundUpAmount, &t.Fee, &t.Ticker, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`,
		id,
	)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *transactionRepo) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// GetUnbuilt returns pending transactions that have no ledger entry yet.
func (r *transactionRepo) GetUnbuilt(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.user_id, t.merchant, t.amount, t.round_up_amount, t.fee, t.ticker, t.status, t.created_at, t.updated_at
		 FROM transactions t
		 LEFT JOIN roundup_ledger_entries e ON e.transaction_id = t.id
		 WHERE t.status = $1 AND e.id IS NULL
		 ORDER BY t.id`,
		models.TransactionPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// GetStageable returns pending transactions with a mapped ticker, a positive
// round-up and a pending ledger entry, in insertion order.
func (r *transactionRepo) GetStageable(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.user_id, t.merchant, t.amount, t.round_up_amount, t.fee, t.ticker, t.status, t.created_at, t.updated_at
		 FROM transactions t
		 JOIN roundup_ledger_entries e ON e.transaction_id = t.id
		 WHERE t.status = $1 AND t.ticker IS NOT NULL AND t.round_up_amount > 0 AND e.status = $2
		 ORDER BY t.id`,
		models.TransactionPending, models.LedgerEntryPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Merchant, &t.Amount, &t.RoundUpAmount, &t.Fee, &t.Ticker, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	return q.QueryRow(ctx,
		`INSERT INTO transactions (user_id, merchant, amount, round_up_amount, fee, ticker, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Merchant, t.Amount, t.RoundUpAmount, t.Fee, t.Ticker, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *transactionRepo) SetRoundup(ctx context.Context, id int, roundUp, fee decimal.Decimal, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	_, err := q.Exec(ctx,
		`UPDATE transactions SET round_up_amount = $1, fee = $2, updated_at = NOW() WHERE id = $3`,
		roundUp, fee, id,
	)
	return err
}

// UpdateStatus moves a transaction from one status to another. The previous
// status is part of the WHERE clause, so a concurrent update loses the race
// and gets false back instead of overwriting.
func (r *transactionRepo) UpdateStatus(ctx context.Context, id int, from, to models.TransactionStatus, tx pgx.Tx) (bool, error) {
	q := withTx(r.db, tx)
	tag, err := q.Exec(ctx,
		`UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *transactionRepo) SumFees(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	q := withTx(r.db, tx)
	var total decimal.Decimal
	err := q.QueryRow(ctx, `SELECT COALESCE(SUM(fee), 0) FROM transactions`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
