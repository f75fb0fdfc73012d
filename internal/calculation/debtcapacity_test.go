package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

func ledgerWithIncome(salary, rent int64) domain.Ledger {
	return domain.Ledger{
		Incomes: []domain.IncomeEntry{
			{Label: "Salaire", MonthlyAmount: decimal.NewFromInt(salary), Kind: domain.IncomeSalary, ParentName: "Claire"},
			{Label: "Loyers", MonthlyAmount: decimal.NewFromInt(rent), Kind: domain.IncomeProperty},
		},
	}
}

func TestWeightedIncome(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()

	tests := []struct {
		name        string
		ledger      domain.Ledger
		expected    decimal.Decimal
		description string
	}{
		{
			name:        "Salary counts in full",
			ledger:      ledgerWithIncome(4000, 0),
			expected:    decimal.NewFromInt(4000),
			description: "salary is weighted at 100%",
		},
		{
			name:        "Rent counts at seventy percent",
			ledger:      ledgerWithIncome(0, 1000),
			expected:    decimal.NewFromInt(700),
			description: "rental income is weighted at 70%",
		},
		{
			name:        "Mixed income",
			ledger:      ledgerWithIncome(4300, 1000),
			expected:    decimal.NewFromInt(5000),
			description: "4300 + 700",
		},
		{
			name: "Other income is excluded",
			ledger: domain.Ledger{Incomes: []domain.IncomeEntry{
				{MonthlyAmount: decimal.NewFromInt(500), Kind: domain.IncomeOther},
			}},
			expected:    decimal.Zero,
			description: "banks ignore non-recurring income",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income := analyzer.WeightedIncome(tt.ledger)
			assert.True(t, income.Total.Equal(tt.expected),
				"%s: expected %s, got %s", tt.description,
				tt.expected.StringFixed(2), income.Total.StringFixed(2))
		})
	}
}

func TestWeightedIncomeItemization(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()

	breakdown := analyzer.WeightedIncome(ledgerWithIncome(4300, 1000))

	assert.True(t, breakdown.SalaryTotal.Equal(decimal.NewFromInt(4300)))
	assert.True(t, breakdown.GrossRental.Equal(decimal.NewFromInt(1000)),
		"gross rent is reported before weighting")
	assert.True(t, breakdown.WeightedRental.Equal(decimal.NewFromInt(700)))
	assert.True(t, breakdown.Total.Equal(breakdown.SalaryTotal.Add(breakdown.WeightedRental)),
		"the total is exactly salary plus weighted rent")
}

func TestCapacityScenario(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()

	// weighted income 5000, debt service 1000, ceiling 35%
	ledger := ledgerWithIncome(4300, 1000)
	liabilities := []domain.Liability{{
		Label:          "Crédit en cours",
		Principal:      decimal.NewFromInt(240000),
		AnnualRatePct:  decimal.Zero,
		DurationMonths: 240,
		StartDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	result := analyzer.Capacity(ledger, liabilities, decimal.NewFromInt(35))

	require.False(t, result.InsufficientIncome)
	assert.True(t, result.WeightedMonthlyIncome.Equal(decimal.NewFromInt(5000)))
	assert.True(t, result.SalaryIncome.Equal(decimal.NewFromInt(4300)))
	assert.True(t, result.GrossRentalIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.WeightedRentalIncome.Equal(decimal.NewFromInt(700)))
	assert.True(t, result.CurrentDebtService.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.MaxDebtService.Equal(decimal.NewFromInt(1750)),
		"got %s", result.MaxDebtService.StringFixed(2))
	assert.True(t, result.ResidualCapacity.Equal(decimal.NewFromInt(750)),
		"got %s", result.ResidualCapacity.StringFixed(2))
	assert.True(t, result.DebtRatioPct.Equal(decimal.NewFromInt(20)))
	require.Len(t, result.Loans, 1)
	assert.Equal(t, "Crédit en cours", result.Loans[0].Label)
}

func TestCapacityClampsAtZero(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()
	ledger := ledgerWithIncome(4300, 1000)

	// 2000 of debt service against a 1750 ceiling
	liabilities := []domain.Liability{{
		Principal:      decimal.NewFromInt(480000),
		AnnualRatePct:  decimal.Zero,
		DurationMonths: 240,
		StartDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	result := analyzer.Capacity(ledger, liabilities, decimal.NewFromInt(35))
	assert.True(t, result.ResidualCapacity.IsZero(),
		"an over-indebted household has zero capacity, never negative")
}

func TestCapacityZeroIncome(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()

	result := analyzer.Capacity(domain.Ledger{}, nil, decimal.NewFromInt(35))
	assert.True(t, result.InsufficientIncome)
	assert.True(t, result.DebtRatioPct.IsZero(), "no division by zero, the ratio reads zero")
	assert.True(t, result.ResidualCapacity.IsZero())
}

func TestCapacityMonotonicity(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()
	maxRatio := decimal.NewFromInt(35)

	// residual capacity never increases as debt service grows
	previous := decimal.NewFromInt(1 << 30)
	for principal := int64(0); principal <= 600000; principal += 100000 {
		var liabilities []domain.Liability
		if principal > 0 {
			liabilities = append(liabilities, domain.Liability{
				Principal:      decimal.NewFromInt(principal),
				AnnualRatePct:  decimal.Zero,
				DurationMonths: 240,
				StartDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			})
		}
		result := analyzer.Capacity(ledgerWithIncome(4300, 1000), liabilities, maxRatio)
		assert.True(t, result.ResidualCapacity.LessThanOrEqual(previous),
			"capacity rose when debt grew to %d", principal)
		previous = result.ResidualCapacity
	}

	// and never decreases as weighted income grows
	previous = decimal.Zero.Sub(decimal.NewFromInt(1))
	for salary := int64(0); salary <= 10000; salary += 2000 {
		result := analyzer.Capacity(ledgerWithIncome(salary, 0), nil, maxRatio)
		assert.True(t, result.ResidualCapacity.GreaterThanOrEqual(previous),
			"capacity fell when income grew to %d", salary)
		previous = result.ResidualCapacity
	}
}

func TestBorrowablePrincipalRoundTrip(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()
	amortizer := NewLoanAmortizer()

	tests := []struct {
		name           string
		payment        decimal.Decimal
		annualRatePct  decimal.Decimal
		durationMonths int
	}{
		{"Typical mortgage", decimal.NewFromInt(800), decimal.NewFromFloat(1.8), 240},
		{"Short consumer loan", decimal.NewFromInt(250), decimal.NewFromFloat(4.5), 60},
		{"Long low-rate loan", decimal.NewFromInt(1200), decimal.NewFromFloat(1.1), 300},
		{"Zero rate", decimal.NewFromInt(500), decimal.Zero, 240},
	}

	tolerance := decimal.NewFromFloat(0.0001) // 0.01%
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := analyzer.BorrowablePrincipal(tt.payment, tt.annualRatePct, tt.durationMonths)
			back := amortizer.MonthlyPayment(principal, tt.annualRatePct, tt.durationMonths)

			relative := back.Sub(tt.payment).Abs().Div(tt.payment)
			assert.True(t, relative.LessThan(tolerance),
				"round-trip drifted %s%% (payment %s back %s)",
				relative.Mul(decimal.NewFromInt(100)).StringFixed(4),
				tt.payment.StringFixed(2), back.StringFixed(2))
		})
	}
}

func TestBorrowablePrincipalDegenerate(t *testing.T) {
	analyzer := NewDebtCapacityAnalyzer()

	assert.True(t, analyzer.BorrowablePrincipal(decimal.Zero, decimal.NewFromInt(2), 240).IsZero())
	assert.True(t, analyzer.BorrowablePrincipal(decimal.NewFromInt(500), decimal.NewFromInt(2), 0).IsZero())

	zeroRate := analyzer.BorrowablePrincipal(decimal.NewFromInt(500), decimal.Zero, 240)
	assert.True(t, zeroRate.Equal(decimal.NewFromInt(120000)),
		"zero rate is payment times duration, got %s", zeroRate.StringFixed(2))
}
