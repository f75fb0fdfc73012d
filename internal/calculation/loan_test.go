package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

func TestMonthlyPayment(t *testing.T) {
	amortizer := NewLoanAmortizer()

	tests := []struct {
		name           string
		principal      decimal.Decimal
		annualRatePct  decimal.Decimal
		durationMonths int
		expected       decimal.Decimal
		tolerance      decimal.Decimal
		description    string
	}{
		{
			name:           "Zero rate is linear amortization",
			principal:      decimal.NewFromInt(120000),
			annualRatePct:  decimal.Zero,
			durationMonths: 240,
			expected:       decimal.NewFromInt(500),
			tolerance:      decimal.Zero,
			description:    "120000 over 240 months at 0% is exactly 500/month",
		},
		{
			name:           "Standard 20-year mortgage",
			principal:      decimal.NewFromInt(200000),
			annualRatePct:  decimal.NewFromFloat(1.5),
			durationMonths: 240,
			expected:       decimal.NewFromFloat(965.09),
			tolerance:      decimal.NewFromFloat(0.01),
			description:    "200000 at 1.5% over 20 years",
		},
		{
			name:           "Zero principal returns zero",
			principal:      decimal.Zero,
			annualRatePct:  decimal.NewFromFloat(2.0),
			durationMonths: 240,
			expected:       decimal.Zero,
			tolerance:      decimal.Zero,
			description:    "degenerate input degrades to zero, never errors",
		},
		{
			name:           "Zero duration returns zero",
			principal:      decimal.NewFromInt(100000),
			annualRatePct:  decimal.NewFromFloat(2.0),
			durationMonths: 0,
			expected:       decimal.Zero,
			tolerance:      decimal.Zero,
			description:    "degenerate input degrades to zero, never errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := amortizer.MonthlyPayment(tt.principal, tt.annualRatePct, tt.durationMonths)
			difference := payment.Sub(tt.expected).Abs()
			assert.True(t, difference.LessThanOrEqual(tt.tolerance),
				"%s: expected %s, got %s", tt.description,
				tt.expected.StringFixed(2), payment.StringFixed(2))
		})
	}
}

func TestOutstandingBalanceRoundTrip(t *testing.T) {
	amortizer := NewLoanAmortizer()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		principal      decimal.Decimal
		annualRatePct  decimal.Decimal
		durationMonths int
	}{
		{"Zero rate", decimal.NewFromInt(120000), decimal.Zero, 240},
		{"Low rate", decimal.NewFromInt(250000), decimal.NewFromFloat(1.2), 300},
		{"High rate", decimal.NewFromInt(50000), decimal.NewFromFloat(8.5), 84},
		{"Short loan", decimal.NewFromInt(10000), decimal.NewFromFloat(3.0), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atStart := amortizer.OutstandingBalance(tt.principal, tt.annualRatePct, tt.durationMonths, start, start)
			assert.True(t, atStart.Equal(tt.principal),
				"balance at start must equal principal, got %s", atStart.StringFixed(2))

			end := start.AddDate(0, tt.durationMonths, 0)
			atEnd := amortizer.OutstandingBalance(tt.principal, tt.annualRatePct, tt.durationMonths, start, end)
			assert.True(t, atEnd.IsZero(),
				"balance at end must be zero, got %s", atEnd.StringFixed(2))
		})
	}
}

func TestOutstandingBalanceZeroRateScenario(t *testing.T) {
	amortizer := NewLoanAmortizer()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	// 120 months elapsed at 500/month leaves 60000
	balance := amortizer.OutstandingBalance(decimal.NewFromInt(120000), decimal.Zero, 240, start, asOf)
	assert.True(t, balance.Equal(decimal.NewFromInt(60000)),
		"expected 60000, got %s", balance.StringFixed(2))
}

func TestOutstandingBalanceBeforeStart(t *testing.T) {
	amortizer := NewLoanAmortizer()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	balance := amortizer.OutstandingBalance(decimal.NewFromInt(100000), decimal.NewFromFloat(2), 240, start, asOf)
	assert.True(t, balance.Equal(decimal.NewFromInt(100000)),
		"a loan not yet started owes its full principal")
}

// Over a loan's full life the per-year principal figures must telescope to
// the original principal.
func TestAnnualBreakdownConservation(t *testing.T) {
	amortizer := NewLoanAmortizer()

	tests := []struct {
		name string
		loan domain.Liability
	}{
		{
			name: "Mid-year start with positive rate",
			loan: domain.Liability{
				Label:          "Crédit résidence principale",
				Principal:      decimal.NewFromInt(250000),
				AnnualRatePct:  decimal.NewFromFloat(1.8),
				DurationMonths: 240,
				StartDate:      time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "January start zero rate",
			loan: domain.Liability{
				Label:          "Prêt familial",
				Principal:      decimal.NewFromInt(120000),
				AnnualRatePct:  decimal.Zero,
				DurationMonths: 240,
				StartDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "Odd duration not aligned to years",
			loan: domain.Liability{
				Label:          "Crédit travaux",
				Principal:      decimal.NewFromInt(35000),
				AnnualRatePct:  decimal.NewFromFloat(3.4),
				DurationMonths: 87,
				StartDate:      time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	oneCent := decimal.NewFromFloat(0.01)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			firstYear := tt.loan.StartDate.Year()
			lastYear := tt.loan.StartDate.AddDate(0, tt.loan.DurationMonths, 0).Year()

			totalPrincipal := decimal.Zero
			totalPaid := decimal.Zero
			totalInterest := decimal.Zero
			for year := firstYear; year <= lastYear; year++ {
				breakdown := amortizer.BreakdownForYear(tt.loan, year)
				totalPrincipal = totalPrincipal.Add(breakdown.PrincipalPaid)
				totalPaid = totalPaid.Add(breakdown.TotalPaid)
				totalInterest = totalInterest.Add(breakdown.InterestPaid)

				// interest is defined as the residual within each year
				residual := breakdown.TotalPaid.Sub(breakdown.PrincipalPaid)
				require.True(t, breakdown.InterestPaid.Equal(residual),
					"year %d: interest must be total minus principal", year)
			}

			drift := totalPrincipal.Sub(tt.loan.Principal).Abs()
			assert.True(t, drift.LessThanOrEqual(oneCent),
				"principal over the loan life must telescope to %s, got %s (drift %s)",
				tt.loan.Principal.StringFixed(2), totalPrincipal.StringFixed(2), drift.StringFixed(2))

			paidCheck := totalPaid.Sub(totalPrincipal).Sub(totalInterest).Abs()
			assert.True(t, paidCheck.LessThanOrEqual(oneCent),
				"total paid must decompose into principal plus interest")
		})
	}
}

func TestBreakdownOutsideLoanLife(t *testing.T) {
	amortizer := NewLoanAmortizer()
	loan := domain.Liability{
		Principal:      decimal.NewFromInt(100000),
		AnnualRatePct:  decimal.NewFromFloat(2),
		DurationMonths: 120,
		StartDate:      time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	before := amortizer.BreakdownForYear(loan, 2018)
	assert.True(t, before.TotalPaid.IsZero(), "no payments before the loan starts")
	assert.True(t, before.PrincipalPaid.IsZero())

	after := amortizer.BreakdownForYear(loan, 2035)
	assert.True(t, after.TotalPaid.IsZero(), "no payments after the loan ends")
	assert.True(t, after.PrincipalPaid.IsZero())
}

func TestAggregateLoanInterest(t *testing.T) {
	amortizer := NewLoanAmortizer()
	loans := []domain.Liability{
		{
			Principal:      decimal.NewFromInt(150000),
			AnnualRatePct:  decimal.NewFromFloat(1.5),
			DurationMonths: 240,
			StartDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Principal:      decimal.NewFromInt(50000),
			AnnualRatePct:  decimal.NewFromFloat(2.5),
			DurationMonths: 120,
			StartDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	total := amortizer.AggregateLoanInterest(loans, 2021)
	individual := amortizer.BreakdownForYear(loans[0], 2021).InterestPaid.
		Add(amortizer.BreakdownForYear(loans[1], 2021).InterestPaid)
	assert.True(t, total.Equal(individual))
	assert.True(t, total.IsPositive(), "a live amortizing loan pays interest every year")
}
