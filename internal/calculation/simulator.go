package calculation

import (
	"math"

	"github.com/shopspring/decimal"
)

// VehicleParams describes one investment wrapper
type VehicleParams struct {
	AnnualReturnPct decimal.Decimal `yaml:"annual_return_pct" json:"annual_return_pct"`
	EntryFeePct     decimal.Decimal `yaml:"entry_fee_pct" json:"entry_fee_pct"`
}

// RealEstateFundParams extends VehicleParams with the distribution profile
// of an SCPI-like fund. SocialLevyExemptFraction is the share of the fund
// domiciled abroad and exempt from social levies, between 0 and 1.
type RealEstateFundParams struct {
	VehicleParams            `yaml:",inline"`
	DistributionYieldPct     decimal.Decimal `yaml:"distribution_yield_pct" json:"distribution_yield_pct"`
	SocialLevyExemptFraction decimal.Decimal `yaml:"social_levy_exempt_fraction" json:"social_levy_exempt_fraction"`
}

// CreditParams describes the loan financing the real-estate-fund vehicle
type CreditParams struct {
	AnnualRatePct    decimal.Decimal `yaml:"annual_rate_pct" json:"annual_rate_pct"`
	InsuranceRatePct decimal.Decimal `yaml:"insurance_rate_pct" json:"insurance_rate_pct"`
	DurationMonths   int             `yaml:"duration_months" json:"duration_months"`
}

// SimulationParams is the fixed environment of one portfolio simulation
type SimulationParams struct {
	HorizonYears      int
	MarginalRatePct   decimal.Decimal
	SocialLevyRatePct decimal.Decimal
	LifeInsurance     VehicleParams
	RetirementSavings VehicleParams
	RealEstateFund    RealEstateFundParams
	Credit            CreditParams
}

// PortfolioAllocation is the decision vector evaluated by the simulator
type PortfolioAllocation struct {
	LifeInsurance      decimal.Decimal
	LifeInsuranceM     decimal.Decimal
	RetirementSavings  decimal.Decimal
	RetirementSavingsM decimal.Decimal
	RealEstateFund     decimal.Decimal
	RealEstateFundM    decimal.Decimal
	CreditAmount       decimal.Decimal
}

// TotalInitialCapital is the household's own capital committed up front.
// Credit is financing, not capital.
func (a PortfolioAllocation) TotalInitialCapital() decimal.Decimal {
	return a.LifeInsurance.Add(a.RetirementSavings).Add(a.RealEstateFund)
}

// SimulationOutcome is the result of one month-by-month run
type SimulationOutcome struct {
	FinalNetWorth        decimal.Decimal
	CreditMonthlyPayment decimal.Decimal
	// PERTaxBenefitMonthly is the marginal-rate deduction benefit of the
	// retirement contribution. It reduces the reported savings effort but
	// is never reinvested into any balance.
	PERTaxBenefitMonthly decimal.Decimal
	MonthlySavingsEffort decimal.Decimal
}

// monthlyGrowthFactor converts an annual percentage return into the
// equivalent monthly compounding factor
func monthlyGrowthFactor(annualReturnPct decimal.Decimal) decimal.Decimal {
	annual, _ := annualReturnPct.Float64()
	return decimal.NewFromFloat(math.Pow(1+annual/100, 1.0/12.0))
}

func netOfEntryFee(amount, feePct decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(100).Sub(feePct)).Div(decimal.NewFromInt(100))
}

// Simulate compounds the three vehicles month by month over the horizon.
// The real-estate fund is bought with own capital plus credit; its monthly
// distribution is taxed at the marginal rate plus the non-exempt share of
// social levies, then netted against the credit annuity into a cash bucket.
func Simulate(alloc PortfolioAllocation, params SimulationParams) SimulationOutcome {
	months := params.HorizonYears * 12
	hundred := decimal.NewFromInt(100)
	twelve := decimal.NewFromInt(12)

	liFactor := monthlyGrowthFactor(params.LifeInsurance.AnnualReturnPct)
	perFactor := monthlyGrowthFactor(params.RetirementSavings.AnnualReturnPct)
	scpiFactor := monthlyGrowthFactor(params.RealEstateFund.AnnualReturnPct)

	liBalance := netOfEntryFee(alloc.LifeInsurance, params.LifeInsurance.EntryFeePct)
	perBalance := netOfEntryFee(alloc.RetirementSavings, params.RetirementSavings.EntryFeePct)
	scpiBalance := netOfEntryFee(alloc.RealEstateFund.Add(alloc.CreditAmount), params.RealEstateFund.EntryFeePct)

	liContrib := netOfEntryFee(alloc.LifeInsuranceM, params.LifeInsurance.EntryFeePct)
	perContrib := netOfEntryFee(alloc.RetirementSavingsM, params.RetirementSavings.EntryFeePct)
	scpiContrib := netOfEntryFee(alloc.RealEstateFundM, params.RealEstateFund.EntryFeePct)

	creditPayment := creditMonthlyPayment(alloc.CreditAmount, params.Credit)

	// effective tax rate on distributions, social levies discounted by the
	// exempt fraction
	levyRate := params.SocialLevyRatePct.Mul(decimal.NewFromInt(1).Sub(params.RealEstateFund.SocialLevyExemptFraction))
	distributionTaxRate := params.MarginalRatePct.Add(levyRate).Div(hundred)
	monthlyYield := params.RealEstateFund.DistributionYieldPct.Div(hundred).Div(twelve)

	cash := decimal.Zero
	firstMonthNetDistribution := decimal.Zero
	for month := 0; month < months; month++ {
		liBalance = liBalance.Mul(liFactor).Add(liContrib)
		perBalance = perBalance.Mul(perFactor).Add(perContrib)
		scpiBalance = scpiBalance.Mul(scpiFactor).Add(scpiContrib)

		grossDistribution := scpiBalance.Mul(monthlyYield)
		netDistribution := grossDistribution.Mul(decimal.NewFromInt(1).Sub(distributionTaxRate))
		if month == 0 {
			firstMonthNetDistribution = netDistribution
		}

		if month < params.Credit.DurationMonths {
			cash = cash.Add(netDistribution).Sub(creditPayment)
		} else {
			cash = cash.Add(netDistribution)
		}
	}

	outstanding := outstandingCredit(alloc.CreditAmount, params.Credit, months)
	perBenefit := alloc.RetirementSavingsM.Mul(params.MarginalRatePct).Div(hundred)

	// Savings effort is a decomposition, not a plain sum: the credit
	// annuity counts only where the fund distribution does not cover it,
	// and the PER deduction benefit reduces the total without being
	// reinvested anywhere.
	creditEffort := creditPayment.Sub(firstMonthNetDistribution)
	if creditEffort.IsNegative() {
		creditEffort = decimal.Zero
	}
	effort := alloc.LifeInsuranceM.
		Add(alloc.RetirementSavingsM).
		Add(alloc.RealEstateFundM).
		Add(creditEffort).
		Sub(perBenefit)

	return SimulationOutcome{
		FinalNetWorth:        liBalance.Add(perBalance).Add(scpiBalance).Add(cash).Sub(outstanding),
		CreditMonthlyPayment: creditPayment,
		PERTaxBenefitMonthly: perBenefit,
		MonthlySavingsEffort: effort,
	}
}

// creditMonthlyPayment is the credit annuity plus flat insurance on the
// initial amount, the standard French bank quote
func creditMonthlyPayment(amount decimal.Decimal, credit CreditParams) decimal.Decimal {
	if !amount.IsPositive() || credit.DurationMonths <= 0 {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	twelve := decimal.NewFromInt(12)
	n := decimal.NewFromInt(int64(credit.DurationMonths))

	var annuity decimal.Decimal
	if credit.AnnualRatePct.IsZero() {
		annuity = amount.Div(n)
	} else {
		rate := credit.AnnualRatePct.Div(hundred).Div(twelve)
		factor := decimal.NewFromInt(1).Add(rate).Pow(n)
		annuity = amount.Mul(rate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	}

	insurance := amount.Mul(credit.InsuranceRatePct).Div(hundred).Div(twelve)
	return annuity.Add(insurance)
}

// outstandingCredit is the principal left after the given number of months
func outstandingCredit(amount decimal.Decimal, credit CreditParams, elapsedMonths int) decimal.Decimal {
	if !amount.IsPositive() || elapsedMonths >= credit.DurationMonths {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	twelve := decimal.NewFromInt(12)
	remaining := credit.DurationMonths - elapsedMonths

	if credit.AnnualRatePct.IsZero() {
		return amount.Mul(decimal.NewFromInt(int64(remaining))).Div(decimal.NewFromInt(int64(credit.DurationMonths)))
	}

	rate := credit.AnnualRatePct.Div(hundred).Div(twelve)
	n := decimal.NewFromInt(int64(credit.DurationMonths))
	factor := decimal.NewFromInt(1).Add(rate).Pow(n)
	annuity := amount.Mul(rate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))

	remFactor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(remaining)))
	return annuity.Mul(remFactor.Sub(decimal.NewFromInt(1))).Div(rate.Mul(remFactor))
}
