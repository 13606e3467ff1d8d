package services

import (
	"time"

	"roundup/src/models"
	"roundup/src/schemas"
	"roundup/src/utils"

	"github.com/shopspring/decimal"
)

type FinancialServiceI interface {
	BuildRevenueView(history []models.RenewalHistoryItem) *schemas.RevenueView
	BuildProfitAndLossView(history []models.RenewalHistoryItem, entries []models.RoundupLedgerEntry, costs []models.OperatingCost) *schemas.ProfitAndLossView
	BuildCashFlowView(history []models.RenewalHistoryItem, entries []models.RoundupLedgerEntry, costs []models.OperatingCost, executed []models.MarketQueueItem) *schemas.CashFlowView
	BuildBalanceSheet(active []models.Subscription, openRenewals []models.RenewalQueueItem, entries []models.RoundupLedgerEntry, pendingInvestments decimal.Decimal, asOf time.Time) *schemas.BalanceSheetView
}

// FinancialService folds pipeline records into monthly statements. It is
// pure: callers load a consistent snapshot and pass the rows in, so every
// view derived from one snapshot agrees with the others.
type FinancialService struct{}

func NewFinancialService() *FinancialService {
	return &FinancialService{}
}

// BuildRevenueView buckets successful renewals into the month they were
// collected in.
func (s *FinancialService) BuildRevenueView(history []models.RenewalHistoryItem) *schemas.RevenueView {
	byPeriod := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, item := range history {
		if item.Status != models.RenewalSucceeded {
			continue
		}
		key := utils.MonthKey(item.RenewalDate)
		byPeriod[key] = byPeriod[key].Add(item.Amount)
		total = total.Add(item.Amount)
	}

	view := &schemas.RevenueView{
		Periods: make([]schemas.PeriodRevenue, 0, len(byPeriod)),
		Total:   total,
	}
	for _, key := range utils.SortedMonthKeys(byPeriod) {
		view.Periods = append(view.Periods, schemas.PeriodRevenue{Period: key, Revenue: byPeriod[key]})
	}
	return view
}

// BuildProfitAndLossView nets renewal revenue and round-up fees against
// operating costs. Renewals bucket by collection date, fees by ledger entry
// creation and costs by the date they were incurred. A month showing up in
// only one source still gets a row, the other columns are zero.
func (s *FinancialService) BuildProfitAndLossView(history []models.RenewalHistoryItem, entries []models.RoundupLedgerEntry, costs []models.OperatingCost) *schemas.ProfitAndLossView {
	type bucket struct {
		renewals decimal.Decimal
		fees     decimal.Decimal
		costs    decimal.Decimal
	}
	byPeriod := make(map[string]*bucket)
	get := func(key string) *bucket {
		b, ok := byPeriod[key]
		if !ok {
			b = &bucket{}
			byPeriod[key] = b
		}
		return b
	}

	for _, item := range history {
		if item.Status != models.RenewalSucceeded {
			continue
		}
		b := get(utils.MonthKey(item.RenewalDate))
		b.renewals = b.renewals.Add(item.Amount)
	}
	for _, entry := range entries {
		b := get(utils.MonthKey(entry.CreatedAt))
		b.fees = b.fees.Add(entry.FeeAmount)
	}
	for _, cost := range costs {
		b := get(utils.MonthKey(cost.IncurredAt))
		b.costs = b.costs.Add(cost.Amount)
	}

	view := &schemas.ProfitAndLossView{Periods: make([]schemas.PeriodProfit, 0, len(byPeriod))}
	for _, key := range utils.SortedMonthKeys(byPeriod) {
		b := byPeriod[key]
		view.Periods = append(view.Periods, schemas.PeriodProfit{
			Period:         key,
			RenewalRevenue: b.renewals,
			FeeRevenue:     b.fees,
			OperatingCosts: b.costs,
			Net:            b.renewals.Add(b.fees).Sub(b.costs),
		})
		view.TotalRevenue = view.TotalRevenue.Add(b.renewals).Add(b.fees)
		view.TotalCosts = view.TotalCosts.Add(b.costs)
	}
	view.TotalNet = view.TotalRevenue.Sub(view.TotalCosts)
	return view
}

// BuildCashFlowView tracks cash in and out per month. Money comes in through
// renewals and captured round-ups with their fees, and goes out through
// executed investments and operating costs.
func (s *FinancialService) BuildCashFlowView(history []models.RenewalHistoryItem, entries []models.RoundupLedgerEntry, costs []models.OperatingCost, executed []models.MarketQueueItem) *schemas.CashFlowView {
	type bucket struct {
		in  decimal.Decimal
		out decimal.Decimal
	}
	byPeriod := make(map[string]*bucket)
	get := func(key string) *bucket {
		b, ok := byPeriod[key]
		if !ok {
			b = &bucket{}
			byPeriod[key] = b
		}
		return b
	}

	for _, item := range history {
		if item.Status != models.RenewalSucceeded {
			continue
		}
		b := get(utils.MonthKey(item.RenewalDate))
		b.in = b.in.Add(item.Amount)
	}
	for _, entry := range entries {
		b := get(utils.MonthKey(entry.CreatedAt))
		b.in = b.in.Add(entry.RoundUpAmount).Add(entry.FeeAmount)
	}
	for _, cost := range costs {
		b := get(utils.MonthKey(cost.IncurredAt))
		b.out = b.out.Add(cost.Amount)
	}
	for _, item := range executed {
		if item.Status != models.QueueItemCompleted || item.ProcessedAt == nil {
			continue
		}
		b := get(utils.MonthKey(*item.ProcessedAt))
		b.out = b.out.Add(item.Amount)
	}

	view := &schemas.CashFlowView{Periods: make([]schemas.PeriodCashFlow, 0, len(byPeriod))}
	for _, key := range utils.SortedMonthKeys(byPeriod) {
		b := byPeriod[key]
		net := b.in.Sub(b.out)
		view.Periods = append(view.Periods, schemas.PeriodCashFlow{
			Period:   key,
			Inflows:  b.in,
			Outflows: b.out,
			Net:      net,
		})
		view.NetChange = view.NetChange.Add(net)
	}
	return view
}

// BuildBalanceSheet states the position as of the snapshot: the active
// subscription base's monthly revenue, renewals still due and round-up
// deposits not yet swept on the asset side, pending investments owed to the
// brokerage on the liability side. Equity is the difference.
func (s *FinancialService) BuildBalanceSheet(active []models.Subscription, openRenewals []models.RenewalQueueItem, entries []models.RoundupLedgerEntry, pendingInvestments decimal.Decimal, asOf time.Time) *schemas.BalanceSheetView {
	subscriptionRevenue := decimal.Zero
	for _, subscription := range active {
		subscriptionRevenue = subscriptionRevenue.Add(subscription.MonthlyPrice)
	}

	renewalsDue := decimal.Zero
	for _, item := range openRenewals {
		renewalsDue = renewalsDue.Add(item.Amount)
	}

	roundupDeposits := decimal.Zero
	for _, entry := range entries {
		if entry.Status != models.LedgerEntryPending && entry.Status != models.LedgerEntryAllocated {
			continue
		}
		roundupDeposits = roundupDeposits.Add(entry.RoundUpAmount)
	}

	assets := schemas.BalanceSheetAssets{
		SubscriptionRevenue: subscriptionRevenue,
		RenewalsDue:         renewalsDue,
		RoundupDeposits:     roundupDeposits,
	}
	assets.Total = subscriptionRevenue.Add(renewalsDue).Add(roundupDeposits)

	liabilities := schemas.BalanceSheetLiabilities{
		PendingInvestments: pendingInvestments,
		Total:              pendingInvestments,
	}

	view := &schemas.BalanceSheetView{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      assets.Total.Sub(liabilities.Total),
		AsOf:        asOf,
	}
	if !liabilities.Total.IsZero() {
		ratio := assets.Total.DivRound(liabilities.Total, 4)
		view.CurrentRatio = &ratio
	}
	return view
}
