package services

import (
	"context"
	"fmt"

	"roundup/src/config"
	"roundup/src/models"
	"roundup/src/repositories"
	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/shopspring/decimal"
)

type RoundupServiceI interface {
	ComputeRoundUp(amount decimal.Decimal) (decimal.Decimal, error)
	ComputeFee(roundUp decimal.Decimal) decimal.Decimal
	BuildLedgerEntry(ctx context.Context, transaction *models.Transaction) (*models.RoundupLedgerEntry, error)
	BuildPendingEntries(ctx context.Context) (*schemas.BuildResult, error)
}

// RoundupService turns settled card purchases into round-up ledger entries.
type RoundupService struct {
	db              repositories.TxBeginner
	transactionRepo repositories.TransactionRepository
	ledgerRepo      repositories.RoundupLedgerRepository

	multiplier  decimal.Decimal
	feeMode     string
	flatFee     decimal.Decimal
	percentRate decimal.Decimal
}

func NewRoundupService(
	cfg *config.Config,
	db repositories.TxBeginner,
	transactionRepo repositories.TransactionRepository,
	ledgerRepo repositories.RoundupLedgerRepository,
) (*RoundupService, error) {
	multiplier := cfg.Roundups.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	feeMode := cfg.Roundups.Fees.Mode
	if feeMode == "" {
		feeMode = config.FeeModeFlat
	}
	if feeMode != config.FeeModeFlat && feeMode != config.FeeModePercent {
		return nil, fmt.Errorf("unknown fee mode %q", feeMode)
	}

	flatFee, err := parseFeeAmount(cfg.Roundups.Fees.FlatAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid flat fee amount: %w", err)
	}
	percentRate, err := parseFeeAmount(cfg.Roundups.Fees.PercentRate)
	if err != nil {
		return nil, fmt.Errorf("invalid percent fee rate: %w", err)
	}

	return &RoundupService{
		db:              db,
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
		multiplier:      decimal.NewFromInt(int64(multiplier)),
		feeMode:         feeMode,
		flatFee:         flatFee,
		percentRate:     percentRate,
	}, nil
}

func parseFeeAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// ComputeRoundUp returns the gap to the next whole dollar, times the
// configured multiplier. An exact dollar purchase rounds up by zero.
func (s *RoundupService) ComputeRoundUp(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, utils.ErrInvalidAmount
	}
	roundUp := amount.Ceil().Sub(amount)
	return roundUp.Mul(s.multiplier), nil
}

// ComputeFee prices the processing of one round-up. A zero round-up carries
// no fee, there is nothing to process.
func (s *RoundupService) ComputeFee(roundUp decimal.Decimal) decimal.Decimal {
	if roundUp.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if s.feeMode == config.FeeModePercent {
		return roundUp.Mul(s.percentRate).Div(decimal.NewFromInt(100))
	}
	return s.flatFee
}

// BuildLedgerEntry computes the round-up for one transaction and persists the
// transaction amounts and the new ledger entry in a single database
// transaction.
func (s *RoundupService) BuildLedgerEntry(ctx context.Context, transaction *models.Transaction) (*models.RoundupLedgerEntry, error) {
	roundUp, err := s.ComputeRoundUp(transaction.Amount)
	if err != nil {
		return nil, err
	}
	fee := s.ComputeFee(roundUp)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.transactionRepo.SetRoundup(ctx, transaction.ID, roundUp, fee, tx); err != nil {
		return nil, err
	}

	transactionID := transaction.ID
	entry := &models.RoundupLedgerEntry{
		TransactionID: &transactionID,
		UserID:        transaction.UserID,
		RoundUpAmount: roundUp,
		FeeAmount:     fee,
		Status:        models.LedgerEntryPending,
	}
	if err := s.ledgerRepo.Create(ctx, entry, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	transaction.RoundUpAmount = roundUp
	transaction.Fee = fee
	return entry, nil
}

// BuildPendingEntries builds ledger entries for every pending transaction
// that does not have one yet. A failure on one transaction is recorded and
// the batch moves on.
func (s *RoundupService) BuildPendingEntries(ctx context.Context) (*schemas.BuildResult, error) {
	logger := utils.LoggerFromContext(ctx)

	transactions, err := s.transactionRepo.GetUnbuilt(ctx)
	if err != nil {
		return nil, err
	}

	result := &schemas.BuildResult{}
	for i := range transactions {
		transaction := &transactions[i]
		if _, err := s.BuildLedgerEntry(ctx, transaction); err != nil {
			logger.Errorf("failed to build ledger entry for transaction %d: %v", transaction.ID, err)
			result.Errors = append(result.Errors, schemas.ItemError{ID: transaction.ID, Reason: err.Error()})
			continue
		}
		result.Built++
	}
	return result, nil
}
