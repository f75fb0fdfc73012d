package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

const (
	defaultOptimizerHorizonYears = 20
	defaultMaxIterations         = 500
	// constraintTolerance lets a returned optimum exceed a cap by at most
	// one percent before it counts as violated
	constraintTolerancePct = 1.0
)

// defaultObjectiveTolerance stops the search once a full coordinate sweep
// improves the objective by less than this
var defaultObjectiveTolerance = decimal.NewFromFloat(1e-9)

// Variable is one decision variable of the optimizer. A fixed variable is
// held at its value; a free one is searched within the constraint bounds.
type Variable struct {
	Value decimal.Decimal
	Fixed bool
}

// OptimizerConstraints are the four caps every returned optimum must honor
type OptimizerConstraints struct {
	MaxInitialCapital       decimal.Decimal `yaml:"max_initial_capital" json:"max_initial_capital"`
	MaxMonthlySavingsEffort decimal.Decimal `yaml:"max_monthly_savings_effort" json:"max_monthly_savings_effort"`
	MaxCreditMonthlyPayment decimal.Decimal `yaml:"max_credit_monthly_payment" json:"max_credit_monthly_payment"`
	AnnualPERDeductionCap   decimal.Decimal `yaml:"annual_per_deduction_cap" json:"annual_per_deduction_cap"`
}

// OptimizerInput bundles the decision variables of one run
type OptimizerInput struct {
	LifeInsurance      Variable
	LifeInsuranceM     Variable
	RetirementSavings  Variable
	RetirementSavingsM Variable
	RealEstateFund     Variable
	RealEstateFundM    Variable
	CreditAmount       Variable
}

// PortfolioOptimizer searches the allocation maximizing final net worth
// under the constraint caps. The search is a cyclic coordinate ascent with
// interval halving per coordinate, bounded by MaxIterations sweeps.
type PortfolioOptimizer struct {
	Params        SimulationParams
	Constraints   OptimizerConstraints
	MaxIterations int
	Tolerance     decimal.Decimal
	Logger        Logger
}

func NewPortfolioOptimizer(params SimulationParams, constraints OptimizerConstraints) *PortfolioOptimizer {
	if params.HorizonYears <= 0 {
		params.HorizonYears = defaultOptimizerHorizonYears
	}
	return &PortfolioOptimizer{
		Params:        params,
		Constraints:   constraints,
		MaxIterations: defaultMaxIterations,
		Tolerance:     defaultObjectiveTolerance,
		Logger:        NopLogger{},
	}
}

// coordinate binds one decision variable to its search bounds
type coordinate struct {
	value *decimal.Decimal
	fixed bool
	upper decimal.Decimal
}

// Optimize runs the constrained search. It never fails hard: an infeasible
// problem yields Success=false with the best point found and the list of
// violated constraints.
func (o *PortfolioOptimizer) Optimize(input OptimizerInput) domain.OptimizationResult {
	alloc := PortfolioAllocation{
		LifeInsurance:      input.LifeInsurance.Value,
		LifeInsuranceM:     input.LifeInsuranceM.Value,
		RetirementSavings:  input.RetirementSavings.Value,
		RetirementSavingsM: input.RetirementSavingsM.Value,
		RealEstateFund:     input.RealEstateFund.Value,
		RealEstateFundM:    input.RealEstateFundM.Value,
		CreditAmount:       input.CreditAmount.Value,
	}

	perMonthlyCap := o.Constraints.AnnualPERDeductionCap.Div(decimal.NewFromInt(12))
	creditCap := o.creditAmountBound()

	coords := []coordinate{
		{&alloc.LifeInsurance, input.LifeInsurance.Fixed, o.Constraints.MaxInitialCapital},
		{&alloc.RetirementSavings, input.RetirementSavings.Fixed, o.Constraints.MaxInitialCapital},
		{&alloc.RealEstateFund, input.RealEstateFund.Fixed, o.Constraints.MaxInitialCapital},
		{&alloc.LifeInsuranceM, input.LifeInsuranceM.Fixed, o.Constraints.MaxMonthlySavingsEffort},
		{&alloc.RetirementSavingsM, input.RetirementSavingsM.Fixed, minDecimal(o.Constraints.MaxMonthlySavingsEffort, perMonthlyCap)},
		{&alloc.RealEstateFundM, input.RealEstateFundM.Fixed, o.Constraints.MaxMonthlySavingsEffort},
		{&alloc.CreditAmount, input.CreditAmount.Fixed, creditCap},
	}

	best := o.objective(alloc)
	iterations := 0
	for ; iterations < o.MaxIterations; iterations++ {
		improved := false
		for _, c := range coords {
			if c.fixed {
				continue
			}
			original := *c.value
			candidate, value := o.searchCoordinate(&alloc, c)
			if value.GreaterThan(best) {
				*c.value = candidate
				best = value
				improved = true
			} else {
				*c.value = original
			}
		}
		if !improved {
			break
		}
	}

	outcome := Simulate(alloc, o.Params)
	violated := o.violatedConstraints(alloc, outcome)
	if len(violated) > 0 {
		o.Logger.Warnf("optimizer terminated infeasible after %d sweeps: %v", iterations, violated)
	}

	return domain.OptimizationResult{
		LifeInsurance: domain.VehicleAllocation{
			InitialCapital:      alloc.LifeInsurance,
			MonthlyContribution: alloc.LifeInsuranceM,
		},
		RetirementSavings: domain.VehicleAllocation{
			InitialCapital:      alloc.RetirementSavings,
			MonthlyContribution: alloc.RetirementSavingsM,
		},
		RealEstateFund: domain.VehicleAllocation{
			InitialCapital:      alloc.RealEstateFund,
			MonthlyContribution: alloc.RealEstateFundM,
		},
		CreditAmount:         alloc.CreditAmount,
		FinalNetWorth:        outcome.FinalNetWorth,
		MonthlySavingsEffort: outcome.MonthlySavingsEffort,
		CreditMonthlyPayment: outcome.CreditMonthlyPayment,
		PERTaxBenefitMonthly: outcome.PERTaxBenefitMonthly,
		TotalInitialCapital:  alloc.TotalInitialCapital(),
		Success:              len(violated) == 0,
		ViolatedConstraints:  violated,
		Iterations:           iterations,
	}
}

// searchCoordinate maximizes the objective along one coordinate by interval
// halving over [0, upper], holding every other coordinate at its current
// value. It writes candidate positions into the shared allocation through
// the coordinate pointer; the caller restores or commits afterwards.
func (o *PortfolioOptimizer) searchCoordinate(alloc *PortfolioAllocation, c coordinate) (decimal.Decimal, decimal.Decimal) {
	lo := decimal.Zero
	hi := c.upper
	if hi.IsNegative() {
		hi = decimal.Zero
	}

	evaluate := func(x decimal.Decimal) decimal.Decimal {
		*c.value = x
		return o.objective(*alloc)
	}

	two := decimal.NewFromInt(2)
	three := decimal.NewFromInt(3)
	for step := 0; step < 60; step++ {
		if hi.Sub(lo).LessThan(o.Tolerance) {
			break
		}
		third := hi.Sub(lo).Div(three)
		left := lo.Add(third)
		right := hi.Sub(third)
		if evaluate(left).LessThan(evaluate(right)) {
			lo = left
		} else {
			hi = right
		}
	}

	mid := lo.Add(hi).Div(two)
	return mid, evaluate(mid)
}

// objective is the penalized final net worth. Constraint overruns subtract
// a steep penalty so the ascent is pushed back inside the feasible region
// without ever raising.
func (o *PortfolioOptimizer) objective(alloc PortfolioAllocation) decimal.Decimal {
	outcome := Simulate(alloc, o.Params)
	penalty := decimal.Zero
	weight := decimal.NewFromInt(1000)

	penalty = penalty.Add(overrun(alloc.TotalInitialCapital(), o.Constraints.MaxInitialCapital))
	penalty = penalty.Add(overrun(outcome.MonthlySavingsEffort, o.Constraints.MaxMonthlySavingsEffort).Mul(decimal.NewFromInt(12)))
	penalty = penalty.Add(overrun(outcome.CreditMonthlyPayment, o.Constraints.MaxCreditMonthlyPayment).Mul(decimal.NewFromInt(12)))
	penalty = penalty.Add(overrun(alloc.RetirementSavingsM.Mul(decimal.NewFromInt(12)), o.Constraints.AnnualPERDeductionCap))

	return outcome.FinalNetWorth.Sub(penalty.Mul(weight))
}

// violatedConstraints checks the four caps at the returned point, each
// within the one percent tolerance
func (o *PortfolioOptimizer) violatedConstraints(alloc PortfolioAllocation, outcome SimulationOutcome) []string {
	var violated []string
	check := func(name string, value, limit decimal.Decimal) {
		slack := limit.Mul(decimal.NewFromFloat(constraintTolerancePct / 100))
		if value.GreaterThan(limit.Add(slack)) {
			violated = append(violated, fmt.Sprintf("%s: %s exceeds cap %s", name, value.Round(2), limit.Round(2)))
		}
	}
	check("initial_capital", alloc.TotalInitialCapital(), o.Constraints.MaxInitialCapital)
	check("monthly_savings_effort", outcome.MonthlySavingsEffort, o.Constraints.MaxMonthlySavingsEffort)
	check("credit_monthly_payment", outcome.CreditMonthlyPayment, o.Constraints.MaxCreditMonthlyPayment)
	check("annual_per_deduction", alloc.RetirementSavingsM.Mul(decimal.NewFromInt(12)), o.Constraints.AnnualPERDeductionCap)
	return violated
}

// creditAmountBound derives the largest credit amount whose monthly payment
// stays under the payment cap, by inverting the annuity with insurance
func (o *PortfolioOptimizer) creditAmountBound() decimal.Decimal {
	limit := o.Constraints.MaxCreditMonthlyPayment
	if !limit.IsPositive() || o.Params.Credit.DurationMonths <= 0 {
		return decimal.Zero
	}
	// payment scales linearly with the amount, so one probe fixes the ratio
	probe := decimal.NewFromInt(10000)
	payment := creditMonthlyPayment(probe, o.Params.Credit)
	if !payment.IsPositive() {
		return decimal.Zero
	}
	return limit.Mul(probe).Div(payment)
}

func overrun(value, limit decimal.Decimal) decimal.Decimal {
	excess := value.Sub(limit)
	if excess.IsPositive() {
		return excess
	}
	return decimal.Zero
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
