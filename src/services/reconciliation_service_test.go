package services_test

import (
	"context"
	"testing"

	"roundup/src/services"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReconciliationReport(t *testing.T) {
	t.Run("matching totals reconcile", func(t *testing.T) {
		report := services.BuildReconciliationReport(
			decimal.RequireFromString("12.30"),
			decimal.RequireFromString("12.30"),
		)
		assert.True(t, report.Reconciled)
		assertDecimal(t, "0", report.Drift)
	})

	t.Run("sub-cent drift still reconciles", func(t *testing.T) {
		report := services.BuildReconciliationReport(
			decimal.RequireFromString("12.309"),
			decimal.RequireFromString("12.30"),
		)
		assert.True(t, report.Reconciled)
		assertDecimal(t, "0.009", report.Drift)
	})

	t.Run("a full cent of drift does not reconcile", func(t *testing.T) {
		report := services.BuildReconciliationReport(
			decimal.RequireFromString("12.31"),
			decimal.RequireFromString("12.30"),
		)
		assert.False(t, report.Reconciled)
		assertDecimal(t, "0.01", report.Drift)
	})

	t.Run("drift keeps its sign when the ledger is ahead", func(t *testing.T) {
		report := services.BuildReconciliationReport(
			decimal.RequireFromString("12.30"),
			decimal.RequireFromString("12.35"),
		)
		assert.False(t, report.Reconciled)
		assertDecimal(t, "-0.05", report.Drift)
	})
}

func TestCheckFees(t *testing.T) {
	ctx := context.Background()

	t.Run("sums both sides inside one snapshot", func(t *testing.T) {
		db := &fakeDB{}
		transactionCalls := 0
		transactionRepo := &transactionRepoMock{
			SumFeesFunc: func(_ context.Context, tx pgx.Tx) (decimal.Decimal, error) {
				transactionCalls++
				assert.NotNil(t, tx)
				return decimal.RequireFromString("12.30"), nil
			},
		}
		ledgerRepo := &ledgerRepoMock{
			SumFeesFunc: func(_ context.Context, tx pgx.Tx) (decimal.Decimal, error) {
				assert.NotNil(t, tx)
				return decimal.RequireFromString("12.30"), nil
			},
		}
		service := services.NewReconciliationService(db, transactionRepo, ledgerRepo)

		report, err := service.CheckFees(ctx)
		require.NoError(t, err)

		assert.True(t, report.Reconciled)
		assertDecimal(t, "12.30", report.TransactionFees)
		assertDecimal(t, "12.30", report.LedgerFees)
		assert.False(t, report.CheckedAt.IsZero())
		assert.True(t, db.lastTx.committed)

		// A second check within the cache window reuses the report.
		again, err := service.CheckFees(ctx)
		require.NoError(t, err)
		assert.Equal(t, report.CheckedAt, again.CheckedAt)
		assert.Equal(t, 1, transactionCalls)
	})

	t.Run("reports drift between the two sides", func(t *testing.T) {
		transactionRepo := &transactionRepoMock{
			SumFeesFunc: func(_ context.Context, _ pgx.Tx) (decimal.Decimal, error) {
				return decimal.RequireFromString("12.42"), nil
			},
		}
		ledgerRepo := &ledgerRepoMock{
			SumFeesFunc: func(_ context.Context, _ pgx.Tx) (decimal.Decimal, error) {
				return decimal.RequireFromString("12.30"), nil
			},
		}
		service := services.NewReconciliationService(&fakeDB{}, transactionRepo, ledgerRepo)

		report, err := service.CheckFees(ctx)
		require.NoError(t, err)
		assert.False(t, report.Reconciled)
		assertDecimal(t, "0.12", report.Drift)
	})
}
