package schemas

import (
	"time"

	"roundup/src/models"

	"github.com/shopspring/decimal"
)

// ItemError ties a per-item failure to the id it happened on. A batch never
// aborts on one bad item, it reports them here instead.
type ItemError struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// BuildResult summarizes one run of the ledger entry builder.
type BuildResult struct {
	Built  int         `json:"built"`
	Errors []ItemError `json:"errors,omitempty"`
}

// StageResult summarizes one staging pass over eligible transactions.
type StageResult struct {
	Staged  int         `json:"staged"`
	Skipped int         `json:"skipped"`
	Errors  []ItemError `json:"errors,omitempty"`
}

// ExecuteResult summarizes one execution pass over the market queue.
type ExecuteResult struct {
	Completed int         `json:"completed"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Errors    []ItemError `json:"errors,omitempty"`
}

type RequeueResult struct {
	Requeued int `json:"requeued"`
}

// SettlementRunResult reports one full pipeline pass: build ledger entries,
// stage the queue, requeue stuck items, then execute.
type SettlementRunResult struct {
	Build   *BuildResult   `json:"build"`
	Stage   *StageResult   `json:"stage"`
	Requeue *RequeueResult `json:"requeue"`
	Execute *ExecuteResult `json:"execute"`
}

// ReconciliationReport compares fees recorded on transactions against fees
// recorded on ledger entries. Reconciled means the drift is under one cent.
type ReconciliationReport struct {
	TransactionFees decimal.Decimal `json:"transaction_fees"`
	LedgerFees      decimal.Decimal `json:"ledger_fees"`
	Drift           decimal.Decimal `json:"drift"`
	Reconciled      bool            `json:"reconciled"`
	CheckedAt       time.Time       `json:"checked_at"`
}

type LedgerEntryResponse struct {
	ID            int             `json:"id"`
	TransactionID *int            `json:"transaction_id,omitempty"`
	UserID        string          `json:"user_id"`
	RoundUpAmount decimal.Decimal `json:"round_up_amount"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	Status        string          `json:"status"`
	SweptAt       *time.Time      `json:"swept_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewLedgerEntryResponses(entries []models.RoundupLedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, LedgerEntryResponse{
			ID:            e.ID,
			TransactionID: e.TransactionID,
			UserID:        e.UserID,
			RoundUpAmount: e.RoundUpAmount,
			FeeAmount:     e.FeeAmount,
			Status:        string(e.Status),
			SweptAt:       e.SweptAt,
			CreatedAt:     e.CreatedAt,
		})
	}
	return responses
}

type QueueItemResponse struct {
	ID            int             `json:"id"`
	TransactionID *int            `json:"transaction_id,omitempty"`
	UserID        string          `json:"user_id"`
	Ticker        string          `json:"ticker"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	ErrorReason   *string         `json:"error_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

func NewQueueItemResponses(items []models.MarketQueueItem) []QueueItemResponse {
	responses := make([]QueueItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, QueueItemResponse{
			ID:            item.ID,
			TransactionID: item.TransactionID,
			UserID:        item.UserID,
			Ticker:        item.Ticker,
			Amount:        item.Amount,
			Status:        string(item.Status),
			ErrorReason:   item.ErrorReason,
			CreatedAt:     item.CreatedAt,
			ProcessedAt:   item.ProcessedAt,
		})
	}
	return responses
}
