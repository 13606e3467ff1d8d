package repositories

import (
	"context"
	"errors"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RoundupLedgerRepository interface {
	Create(ctx context.Context, e *models.RoundupLedgerEntry, tx pgx.Tx) error
	GetByTransactionID(ctx context.Context, transactionID int) (*models.RoundupLedgerEntry, error)
	List(ctx context.Context, limit, offset int) ([]models.RoundupLedgerEntry, error)
	GetAll(ctx context.Context, tx pgx.Tx) ([]models.RoundupLedgerEntry, error)
	MarkAllocated(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error)
	MarkSwept(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error)
	MarkFailed(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error)
	SumFees(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error)
}

type roundupLedgerRepo struct {
	db *pgxpool.Pool
}

func NewRoundupLedgerRepository(db *pgxpool.Pool) RoundupLedgerRepository {
	return &roundupLedgerRepo{db: db}
}

const ledgerEntryColumns = `id, transaction_id, user_id, round_up_amount, fee_amount, status, swept_at, created_at`

func (r *roundupLedgerRepo) Create(ctx context.Context, e *models.RoundupLedgerEntry, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	return q.QueryRow(ctx,
		`INSERT INTO roundup_ledger_entries (transaction_id, user_id, round_up_amount, fee_amount, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.TransactionID, e.UserID, e.RoundUpAmount, e.FeeAmount, e.Status,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *roundupLedgerRepo) GetByTransactionID(ctx context.Context, transactionID int) (*models.RoundupLedgerEntry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ledgerEntryColumns+` FROM roundup_ledger_entries WHERE transaction_id = $1`,
		transactionID,
	)
	var e models.RoundupLedgerEntry
	err := row.Scan(&e.ID, &e.TransactionID, &e.UserID, &e.RoundUpAmount, &e.FeeAmount, &e.Status, &e.SweptAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *roundupLedgerRepo) List(ctx context.Context, limit, offset int) ([]models.RoundupLedgerEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ledgerEntryColumns+` FROM roundup_ledger_entries ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

func (r *roundupLedgerRepo) GetAll(ctx context.Context, tx pgx.Tx) ([]models.RoundupLedgerEntry, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx, `SELECT `+ledgerEntryColumns+` FROM roundup_ledger_entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

func collectLedgerEntries(rows pgx.Rows) ([]models.RoundupLedgerEntry, error) {
	var entries []models.RoundupLedgerEntry
	for rows.Next() {
		var e models.RoundupLedgerEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.UserID, &e.RoundUpAmount, &e.FeeAmount, &e.Status, &e.SweptAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *roundupLedgerRepo) MarkAllocated(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error) {
	return r.transition(ctx, transactionID, models.LedgerEntryPending, models.LedgerEntryAllocated, false, tx)
}

func (r *roundupLedgerRepo) MarkSwept(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error) {
	return r.transition(ctx, transactionID, models.LedgerEntryAllocated, models.LedgerEntrySwept, true, tx)
}

func (r *roundupLedgerRepo) MarkFailed(ctx context.Context, transactionID int, tx pgx.Tx) (bool, error) {
	return r.transition(ctx, transactionID, models.LedgerEntryAllocated, models.LedgerEntryFailed, false, tx)
}

func (r *roundupLedgerRepo) transition(ctx context.Context, transactionID int, from, to models.LedgerEntryStatus, sweep bool, tx pgx.Tx) (bool, error) {
	q := withTx(r.db, tx)
	query := `UPDATE roundup_ledger_entries SET status = $1 WHERE transaction_id = $2 AND status = $3`
	if sweep {
		query = `UPDATE roundup_ledger_entries SET status = $1, swept_at = NOW() WHERE transaction_id = $2 AND status = $3`
	}
	tag, err := q.Exec(ctx, query, to, transactionID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *roundupLedgerRepo) SumFees(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	q := withTx(r.db, tx)
	var total decimal.Decimal
	err := q.QueryRow(ctx, `SELECT COALESCE(SUM(fee_amount), 0) FROM roundup_ledger_entries`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
