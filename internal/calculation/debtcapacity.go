package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Banking-practice weights for income retained in the debt ratio. Salary
// counts in full, rental income at 70 percent, other income not at all.
var (
	salaryIncomeWeight   = decimal.NewFromInt(1)
	propertyIncomeWeight = decimal.NewFromFloat(0.70)
)

// DefaultMaxDebtRatioPct is the standard French usury ceiling on the
// debt-service-to-income ratio.
var DefaultMaxDebtRatioPct = decimal.NewFromInt(35)

// DebtCapacityAnalyzer measures how much additional monthly debt service a
// household can absorb and converts that margin into a borrowable principal.
type DebtCapacityAnalyzer struct {
	Amortizer *LoanAmortizer
}

func NewDebtCapacityAnalyzer() *DebtCapacityAnalyzer {
	return &DebtCapacityAnalyzer{Amortizer: NewLoanAmortizer()}
}

// LoanService is the current monthly payment of one liability
type LoanService struct {
	Label          string          `json:"label"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// IncomeBreakdown itemizes the monthly income retained for the debt ratio
type IncomeBreakdown struct {
	Total          decimal.Decimal `json:"total"`
	SalaryTotal    decimal.Decimal `json:"salary_total"`
	GrossRental    decimal.Decimal `json:"gross_rental"`
	WeightedRental decimal.Decimal `json:"weighted_rental"`
}

// CapacityResult is the outcome of a debt capacity analysis
type CapacityResult struct {
	WeightedMonthlyIncome decimal.Decimal `json:"weighted_monthly_income"`
	SalaryIncome          decimal.Decimal `json:"salary_income"`
	GrossRentalIncome     decimal.Decimal `json:"gross_rental_income"`
	WeightedRentalIncome  decimal.Decimal `json:"weighted_rental_income"`
	CurrentDebtService    decimal.Decimal `json:"current_debt_service"`
	Loans                 []LoanService   `json:"loans"`
	DebtRatioPct          decimal.Decimal `json:"debt_ratio_pct"`
	MaxDebtRatioPct       decimal.Decimal `json:"max_debt_ratio_pct"`
	MaxDebtService        decimal.Decimal `json:"max_debt_service"`
	ResidualCapacity      decimal.Decimal `json:"residual_capacity"`
	// InsufficientIncome is set when the weighted income is zero; the ratio
	// is reported as zero rather than a division error
	InsufficientIncome bool `json:"insufficient_income"`
}

// WeightedIncome sums the household's monthly income with banking weights
// applied, itemizing the retained figures. Derived and manual entries both
// count; only the kind matters.
func (a *DebtCapacityAnalyzer) WeightedIncome(ledger domain.Ledger) IncomeBreakdown {
	var b IncomeBreakdown
	for _, entry := range ledger.Incomes {
		switch entry.Kind {
		case domain.IncomeSalary:
			b.SalaryTotal = b.SalaryTotal.Add(entry.MonthlyAmount.Mul(salaryIncomeWeight))
		case domain.IncomeProperty:
			b.GrossRental = b.GrossRental.Add(entry.MonthlyAmount)
			b.WeightedRental = b.WeightedRental.Add(entry.MonthlyAmount.Mul(propertyIncomeWeight))
		}
	}
	b.Total = b.SalaryTotal.Add(b.WeightedRental)
	return b
}

// CurrentDebtService sums the monthly payments of every liability, with a
// per-loan itemization for reporting.
func (a *DebtCapacityAnalyzer) CurrentDebtService(liabilities []domain.Liability) (decimal.Decimal, []LoanService) {
	total := decimal.Zero
	services := make([]LoanService, 0, len(liabilities))
	for _, loan := range liabilities {
		payment := a.Amortizer.MonthlyPayment(loan.Principal, loan.AnnualRatePct, loan.DurationMonths)
		total = total.Add(payment)
		services = append(services, LoanService{Label: loan.Label, MonthlyPayment: payment})
	}
	return total, services
}

// Capacity computes the residual monthly debt service available under the
// given ceiling. A nil or zero ceiling falls back to the standard 35 percent.
func (a *DebtCapacityAnalyzer) Capacity(ledger domain.Ledger, liabilities []domain.Liability, maxRatioPct decimal.Decimal) CapacityResult {
	if maxRatioPct.IsZero() {
		maxRatioPct = DefaultMaxDebtRatioPct
	}

	breakdown := a.WeightedIncome(ledger)
	income := breakdown.Total
	service, loans := a.CurrentDebtService(liabilities)

	result := CapacityResult{
		WeightedMonthlyIncome: income,
		SalaryIncome:          breakdown.SalaryTotal,
		GrossRentalIncome:     breakdown.GrossRental,
		WeightedRentalIncome:  breakdown.WeightedRental,
		CurrentDebtService:    service,
		Loans:                 loans,
		MaxDebtRatioPct:       maxRatioPct,
	}

	if !income.IsPositive() {
		result.InsufficientIncome = true
		return result
	}

	result.DebtRatioPct = service.Div(income).Mul(decimal.NewFromInt(100))
	result.MaxDebtService = income.Mul(maxRatioPct).Div(decimal.NewFromInt(100))

	residual := result.MaxDebtService.Sub(service)
	if residual.IsNegative() {
		residual = decimal.Zero
	}
	result.ResidualCapacity = residual
	return result
}

// BorrowablePrincipal inverts the annuity formula: the principal whose
// monthly payment at the given rate and duration equals the available
// payment. A zero rate degrades to payment times duration.
func (a *DebtCapacityAnalyzer) BorrowablePrincipal(monthlyPayment decimal.Decimal, annualRatePct decimal.Decimal, durationMonths int) decimal.Decimal {
	if !monthlyPayment.IsPositive() || durationMonths <= 0 {
		return decimal.Zero
	}
	if annualRatePct.IsZero() {
		return monthlyPayment.Mul(decimal.NewFromInt(int64(durationMonths)))
	}

	monthlyRate := annualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
	// principal = payment * (1 - (1+r)^-n) / r, written with the positive
	// power form to stay on integer exponents
	factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(int64(durationMonths)))
	return monthlyPayment.Mul(factor.Sub(decimal.NewFromInt(1))).Div(monthlyRate.Mul(factor))
}
