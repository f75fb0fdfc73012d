package calculation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
	"github.com/patrimoine/wealth-audit/pkg/dateutil"
)

// LoanAmortizer computes payments, outstanding balances and calendar-year
// principal/interest decompositions for fixed-rate fully-amortizing loans.
// All operations degrade to zero on zero or negative inputs; they never fail.
type LoanAmortizer struct{}

// NewLoanAmortizer creates a new loan amortizer
func NewLoanAmortizer() *LoanAmortizer {
	return &LoanAmortizer{}
}

// AnnualBreakdown is the principal/interest decomposition of one calendar
// year of a loan's life
type AnnualBreakdown struct {
	PrincipalPaid decimal.Decimal `json:"principal_paid"`
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
}

// monthlyRate converts an annual percentage rate to a periodic rate
func monthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
}

// MonthlyPayment returns the constant annuity payment for a fixed-rate loan.
// A zero rate degrades to linear amortization; a zero principal or duration
// returns zero.
func (la *LoanAmortizer) MonthlyPayment(principal, annualRatePct decimal.Decimal, durationMonths int) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) || durationMonths <= 0 {
		return decimal.Zero
	}
	if annualRatePct.LessThanOrEqual(decimal.Zero) {
		return principal.Div(decimal.NewFromInt(int64(durationMonths)))
	}

	r := monthlyRate(annualRatePct)
	// payment = P * r * (1+r)^n / ((1+r)^n - 1)
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(durationMonths)))
	return principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
}

// OutstandingBalance returns the capital restant dû as of a given date,
// counting only whole elapsed calendar months as paid. Dates before the loan
// start return the full principal; dates at or past the end return zero.
func (la *LoanAmortizer) OutstandingBalance(principal, annualRatePct decimal.Decimal, durationMonths int, startDate, asOfDate time.Time) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) || durationMonths <= 0 {
		return decimal.Zero
	}
	if asOfDate.Before(startDate) {
		return principal
	}

	elapsed := dateutil.MonthsBetween(startDate, asOfDate)
	if elapsed <= 0 {
		return principal
	}
	if elapsed >= durationMonths {
		return decimal.Zero
	}

	remaining := durationMonths - elapsed
	if annualRatePct.LessThanOrEqual(decimal.Zero) {
		return principal.
			Mul(decimal.NewFromInt(int64(remaining))).
			Div(decimal.NewFromInt(int64(durationMonths)))
	}

	r := monthlyRate(annualRatePct)
	payment := la.MonthlyPayment(principal, annualRatePct, durationMonths)
	// balance = payment * (1 - (1+r)^-m) / r, expressed with the positive
	// power to keep one division: payment * (f-1) / (r*f), f = (1+r)^m
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(remaining)))
	return payment.Mul(factor.Sub(decimal.NewFromInt(1))).Div(r.Mul(factor))
}

// BreakdownForYear decomposes the payments of one calendar year. Principal
// is the difference of the outstanding balance at the two year boundaries,
// which makes the per-year principal figures telescope exactly to the
// original principal over the loan's life. TotalPaid is counted
// independently from whole months paid within the year, and interest is the
// residual of the two.
func (la *LoanAmortizer) BreakdownForYear(loan domain.Liability, year int) AnnualBreakdown {
	if loan.Principal.LessThanOrEqual(decimal.Zero) || loan.DurationMonths <= 0 {
		return AnnualBreakdown{}
	}

	prevEnd := dateutil.EndOfYear(year - 1)
	curEnd := dateutil.EndOfYear(year)

	balancePrev := la.OutstandingBalance(loan.Principal, loan.AnnualRatePct, loan.DurationMonths, loan.StartDate, prevEnd)
	balanceCur := la.OutstandingBalance(loan.Principal, loan.AnnualRatePct, loan.DurationMonths, loan.StartDate, curEnd)
	principalPaid := balancePrev.Sub(balanceCur)

	monthsPrev := clampMonths(dateutil.MonthsBetween(loan.StartDate, prevEnd), loan.DurationMonths)
	monthsCur := clampMonths(dateutil.MonthsBetween(loan.StartDate, curEnd), loan.DurationMonths)
	payment := la.MonthlyPayment(loan.Principal, loan.AnnualRatePct, loan.DurationMonths)
	totalPaid := payment.Mul(decimal.NewFromInt(int64(monthsCur - monthsPrev)))

	return AnnualBreakdown{
		PrincipalPaid: principalPaid,
		InterestPaid:  totalPaid.Sub(principalPaid),
		TotalPaid:     totalPaid,
	}
}

// AggregateLoanInterest sums the interest paid during one calendar year
// across the given loans
func (la *LoanAmortizer) AggregateLoanInterest(loans []domain.Liability, year int) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(la.BreakdownForYear(loan, year).InterestPaid)
	}
	return total
}

func clampMonths(months, duration int) int {
	if months < 0 {
		return 0
	}
	if months > duration {
		return duration
	}
	return months
}
