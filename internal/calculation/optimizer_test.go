package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func optimizerParams() SimulationParams {
	return SimulationParams{
		HorizonYears:      20,
		MarginalRatePct:   decimal.NewFromInt(30),
		SocialLevyRatePct: decimal.NewFromFloat(17.2),
		LifeInsurance: VehicleParams{
			AnnualReturnPct: decimal.NewFromFloat(3.5),
			EntryFeePct:     decimal.NewFromFloat(2.0),
		},
		RetirementSavings: VehicleParams{
			AnnualReturnPct: decimal.NewFromFloat(4.0),
			EntryFeePct:     decimal.NewFromFloat(1.5),
		},
		RealEstateFund: RealEstateFundParams{
			VehicleParams: VehicleParams{
				AnnualReturnPct: decimal.NewFromFloat(1.0),
				EntryFeePct:     decimal.NewFromFloat(9.0),
			},
			DistributionYieldPct:     decimal.NewFromFloat(4.5),
			SocialLevyExemptFraction: decimal.NewFromFloat(0.3),
		},
		Credit: CreditParams{
			AnnualRatePct:    decimal.NewFromFloat(2.5),
			InsuranceRatePct: decimal.NewFromFloat(0.3),
			DurationMonths:   240,
		},
	}
}

func optimizerConstraints() OptimizerConstraints {
	return OptimizerConstraints{
		MaxInitialCapital:       decimal.NewFromInt(50000),
		MaxMonthlySavingsEffort: decimal.NewFromInt(800),
		MaxCreditMonthlyPayment: decimal.NewFromInt(600),
		AnnualPERDeductionCap:   decimal.NewFromInt(4114),
	}
}

func TestSimulateCompounds(t *testing.T) {
	params := optimizerParams()

	outcome := Simulate(PortfolioAllocation{
		LifeInsurance: decimal.NewFromInt(10000),
	}, params)

	// 10000 net of 2% entry fees compounds at 3.5% over 20 years
	expected := decimal.NewFromFloat(9800 * 1.9898) // (1.035)^20 ≈ 1.9898
	drift := outcome.FinalNetWorth.Sub(expected).Abs()
	assert.True(t, drift.LessThan(decimal.NewFromInt(20)),
		"expected about %s, got %s", expected.StringFixed(0), outcome.FinalNetWorth.StringFixed(0))
}

func TestSimulatePERBenefitNotReinvested(t *testing.T) {
	params := optimizerParams()
	monthly := decimal.NewFromInt(200)

	with := Simulate(PortfolioAllocation{RetirementSavingsM: monthly}, params)

	// the benefit is reported, and reduces the effort decomposition
	expectedBenefit := monthly.Mul(decimal.NewFromFloat(0.30))
	assert.True(t, with.PERTaxBenefitMonthly.Equal(expectedBenefit),
		"got %s", with.PERTaxBenefitMonthly.StringFixed(2))
	assert.True(t, with.MonthlySavingsEffort.Equal(monthly.Sub(expectedBenefit)),
		"effort %s must be the contribution net of the deduction benefit", with.MonthlySavingsEffort.StringFixed(2))

	// but the final balance only ever sees the raw contribution
	zeroBenefitParams := params
	zeroBenefitParams.MarginalRatePct = decimal.Zero
	without := Simulate(PortfolioAllocation{RetirementSavingsM: monthly}, zeroBenefitParams)
	assert.True(t, with.FinalNetWorth.Equal(without.FinalNetWorth),
		"the deduction benefit must not compound into the balance")
}

func TestSimulateCreditNettedAgainstDistribution(t *testing.T) {
	params := optimizerParams()

	outcome := Simulate(PortfolioAllocation{
		CreditAmount: decimal.NewFromInt(50000),
	}, params)

	assert.True(t, outcome.CreditMonthlyPayment.IsPositive())
	// annuity on 50000 at 2.5%/240 months is about 265, plus 12.50 insurance
	assert.True(t, outcome.CreditMonthlyPayment.Sub(decimal.NewFromFloat(277.44)).Abs().LessThan(decimal.NewFromInt(1)),
		"got %s", outcome.CreditMonthlyPayment.StringFixed(2))
}

func TestOptimizeRespectsConstraints(t *testing.T) {
	optimizer := NewPortfolioOptimizer(optimizerParams(), optimizerConstraints())
	optimizer.MaxIterations = 40

	result := optimizer.Optimize(OptimizerInput{})

	require.True(t, result.Success, "violated: %v", result.ViolatedConstraints)
	constraints := optimizerConstraints()
	slack := decimal.NewFromFloat(1.01)

	assert.True(t, result.TotalInitialCapital.LessThanOrEqual(constraints.MaxInitialCapital.Mul(slack)),
		"capital %s", result.TotalInitialCapital.StringFixed(2))
	assert.True(t, result.MonthlySavingsEffort.LessThanOrEqual(constraints.MaxMonthlySavingsEffort.Mul(slack)),
		"effort %s", result.MonthlySavingsEffort.StringFixed(2))
	assert.True(t, result.CreditMonthlyPayment.LessThanOrEqual(constraints.MaxCreditMonthlyPayment.Mul(slack)),
		"credit payment %s", result.CreditMonthlyPayment.StringFixed(2))
	assert.True(t, result.RetirementSavings.MonthlyContribution.Mul(decimal.NewFromInt(12)).
		LessThanOrEqual(constraints.AnnualPERDeductionCap.Mul(slack)),
		"PER contribution %s", result.RetirementSavings.MonthlyContribution.StringFixed(2))
}

func TestOptimizeImprovesOnDoingNothing(t *testing.T) {
	optimizer := NewPortfolioOptimizer(optimizerParams(), optimizerConstraints())
	optimizer.MaxIterations = 40

	idle := Simulate(PortfolioAllocation{}, optimizer.Params)
	result := optimizer.Optimize(OptimizerInput{})

	assert.True(t, result.FinalNetWorth.GreaterThan(idle.FinalNetWorth),
		"the optimum must beat the empty allocation (%s vs %s)",
		result.FinalNetWorth.StringFixed(0), idle.FinalNetWorth.StringFixed(0))
}

func TestOptimizeHoldsFixedVariables(t *testing.T) {
	optimizer := NewPortfolioOptimizer(optimizerParams(), optimizerConstraints())
	optimizer.MaxIterations = 20

	fixedCapital := decimal.NewFromInt(15000)
	result := optimizer.Optimize(OptimizerInput{
		LifeInsurance: Variable{Value: fixedCapital, Fixed: true},
		CreditAmount:  Variable{Value: decimal.Zero, Fixed: true},
	})

	assert.True(t, result.LifeInsurance.InitialCapital.Equal(fixedCapital),
		"a fixed variable must come back untouched, got %s", result.LifeInsurance.InitialCapital.StringFixed(2))
	assert.True(t, result.CreditAmount.IsZero())
}

func TestOptimizeReportsInfeasibility(t *testing.T) {
	optimizer := NewPortfolioOptimizer(optimizerParams(), optimizerConstraints())
	optimizer.MaxIterations = 20

	// fixed capital far beyond the cap cannot be repaired by the search
	result := optimizer.Optimize(OptimizerInput{
		LifeInsurance: Variable{Value: decimal.NewFromInt(500000), Fixed: true},
	})

	require.False(t, result.Success)
	require.NotEmpty(t, result.ViolatedConstraints)
	assert.Contains(t, result.ViolatedConstraints[0], "initial_capital")
}

func TestOptimizeTerminatesWithinIterationBudget(t *testing.T) {
	optimizer := NewPortfolioOptimizer(optimizerParams(), optimizerConstraints())
	optimizer.MaxIterations = 5

	result := optimizer.Optimize(OptimizerInput{})
	assert.LessOrEqual(t, result.Iterations, 5)
}
