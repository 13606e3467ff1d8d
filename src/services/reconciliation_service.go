package services

import (
	"context"
	"time"

	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// reconciliationTolerance is one cent. Drift below it is rounding noise,
// drift above it means the builder and the ledger disagree.
var reconciliationTolerance = decimal.RequireFromString("0.01")

type ReconciliationServiceI interface {
	CheckFees(ctx context.Context) (*schemas.ReconciliationReport, error)
}

// ReconciliationService cross-checks fee totals between the transactions
// table and the round-up ledger. The report is diagnostic, it never mutates
// pipeline state.
type ReconciliationService struct {
	db              repositories.TxBeginner
	transactionRepo repositories.TransactionRepository
	ledgerRepo      repositories.RoundupLedgerRepository

	cache *utils.Cache[schemas.ReconciliationReport]
}

func NewReconciliationService(
	db repositories.TxBeginner,
	transactionRepo repositories.TransactionRepository,
	ledgerRepo repositories.RoundupLedgerRepository,
) *ReconciliationService {
	return &ReconciliationService{
		db:              db,
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
		cache:           utils.NewCache[schemas.ReconciliationReport](),
	}
}

// CheckFees sums both fee columns inside one repeatable read snapshot and
// reports the drift. Reports are cached briefly, both sums walk full tables.
func (s *ReconciliationService) CheckFees(ctx context.Context) (*schemas.ReconciliationReport, error) {
	if report, ok := s.cache.Get(); ok {
		return &report, nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	transactionFees, err := s.transactionRepo.SumFees(ctx, tx)
	if err != nil {
		return nil, err
	}
	ledgerFees, err := s.ledgerRepo.SumFees(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	report := BuildReconciliationReport(transactionFees, ledgerFees)
	s.cache.Set(*report, 30*time.Second)
	return report, nil
}

// BuildReconciliationReport compares the two fee totals.
func BuildReconciliationReport(transactionFees, ledgerFees decimal.Decimal) *schemas.ReconciliationReport {
	drift := transactionFees.Sub(ledgerFees)
	return &schemas.ReconciliationReport{
		TransactionFees: transactionFees,
		LedgerFees:      ledgerFees,
		Drift:           drift,
		Reconciled:      drift.Abs().LessThan(reconciliationTolerance),
		CheckedAt:       time.Now(),
	}
}
