package schemas

import (
	"time"

	"roundup/src/models"

	"github.com/shopspring/decimal"
)

// Financial views bucket money by calendar month. Period keys use the
// "2006-01" layout and every view lists periods in chronological order.

type PeriodRevenue struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
}

type RevenueView struct {
	Periods []PeriodRevenue `json:"periods"`
	Total   decimal.Decimal `json:"total"`
}

type PeriodProfit struct {
	Period         string          `json:"period"`
	RenewalRevenue decimal.Decimal `json:"renewal_revenue"`
	FeeRevenue     decimal.Decimal `json:"fee_revenue"`
	OperatingCosts decimal.Decimal `json:"operating_costs"`
	Net            decimal.Decimal `json:"net"`
}

type ProfitAndLossView struct {
	Periods      []PeriodProfit  `json:"periods"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCosts   decimal.Decimal `json:"total_costs"`
	TotalNet     decimal.Decimal `json:"total_net"`
}

type PeriodCashFlow struct {
	Period   string          `json:"period"`
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

type CashFlowView struct {
	Periods   []PeriodCashFlow `json:"periods"`
	NetChange decimal.Decimal  `json:"net_change"`
}

type BalanceSheetAssets struct {
	SubscriptionRevenue decimal.Decimal `json:"subscription_revenue"`
	RenewalsDue         decimal.Decimal `json:"renewals_due"`
	RoundupDeposits     decimal.Decimal `json:"roundup_deposits"`
	Total               decimal.Decimal `json:"total"`
}

type BalanceSheetLiabilities struct {
	PendingInvestments decimal.Decimal `json:"pending_investments"`
	Total              decimal.Decimal `json:"total"`
}

type BalanceSheetView struct {
	Assets      BalanceSheetAssets      `json:"assets"`
	Liabilities BalanceSheetLiabilities `json:"liabilities"`
	Equity      decimal.Decimal         `json:"equity"`
	// CurrentRatio is omitted when liabilities are zero.
	CurrentRatio *decimal.Decimal `json:"current_ratio,omitempty"`
	AsOf         time.Time        `json:"as_of"`
}

type CreateOperatingCostRequest struct {
	Provider    string          `json:"provider"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredAt  Date            `json:"incurred_at"`
}

type OperatingCostResponse struct {
	ID          int             `json:"id"`
	Provider    string          `json:"provider"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredAt  time.Time       `json:"incurred_at"`
}

func NewOperatingCostResponse(c models.OperatingCost) OperatingCostResponse {
	return OperatingCostResponse{
		ID:          c.ID,
		Provider:    c.Provider,
		Description: c.Description,
		Amount:      c.Amount,
		IncurredAt:  c.IncurredAt,
	}
}

func NewOperatingCostResponses(costs []models.OperatingCost) []OperatingCostResponse {
	responses := make([]OperatingCostResponse, 0, len(costs))
	for _, c := range costs {
		responses = append(responses, NewOperatingCostResponse(c))
	}
	return responses
}
