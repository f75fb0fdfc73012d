package calculation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Patrimoine summarizes gross assets, outstanding debt and net worth at a
// given date. Loan balances are marked to the amortization schedule.
func Patrimoine(assets []domain.Asset, liabilities []domain.Liability, asOf time.Time) domain.PatrimoineSummary {
	amortizer := NewLoanAmortizer()

	gross := decimal.Zero
	for _, asset := range assets {
		gross = gross.Add(asset.Value)
	}

	debt := decimal.Zero
	for _, loan := range liabilities {
		debt = debt.Add(amortizer.OutstandingBalance(loan.Principal, loan.AnnualRatePct, loan.DurationMonths, loan.StartDate, asOf))
	}

	return domain.PatrimoineSummary{
		GrossAssets:     gross,
		OutstandingDebt: debt,
		NetWorth:        gross.Sub(debt),
	}
}
