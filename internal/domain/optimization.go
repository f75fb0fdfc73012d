package domain

import (
	"github.com/shopspring/decimal"
)

// VehicleAllocation is the decided capital and contribution for one vehicle
type VehicleAllocation struct {
	InitialCapital      decimal.Decimal `json:"initial_capital"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
}

// OptimizationResult is the outcome of one optimizer run. It is immutable
// once produced; the next run supersedes it wholesale, never merges.
type OptimizationResult struct {
	LifeInsurance     VehicleAllocation `json:"life_insurance"`
	RetirementSavings VehicleAllocation `json:"retirement_savings"`
	RealEstateFund    VehicleAllocation `json:"real_estate_fund"`
	CreditAmount      decimal.Decimal   `json:"credit_amount"`

	FinalNetWorth        decimal.Decimal `json:"final_net_worth"`
	MonthlySavingsEffort decimal.Decimal `json:"monthly_savings_effort"`
	CreditMonthlyPayment decimal.Decimal `json:"credit_monthly_payment"`
	// PERTaxBenefitMonthly is the deduction benefit of the retirement
	// wrapper contribution. It reduces the reported effort decomposition but
	// is never reinvested into any balance.
	PERTaxBenefitMonthly decimal.Decimal `json:"per_tax_benefit_monthly"`
	TotalInitialCapital  decimal.Decimal `json:"total_initial_capital"`

	Success             bool     `json:"success"`
	ViolatedConstraints []string `json:"violated_constraints,omitempty"`
	Iterations          int      `json:"iterations"`
}
