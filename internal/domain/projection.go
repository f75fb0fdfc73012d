package domain

import (
	"github.com/shopspring/decimal"
)

// LifeStage is the projected status of a family member for one year.
// Parents move Employed → Retired; children move Schooled → InEducation →
// Employed → Retired, linearly and without back-transitions.
type LifeStage string

const (
	StageSchooled    LifeStage = "schooled"
	StageInEducation LifeStage = "in_education"
	StageEmployed    LifeStage = "employed"
	StageRetired     LifeStage = "retired"
)

// PersonStatus is one family member's state within a projected year
type PersonStatus struct {
	Name     string    `json:"name"`
	Age      int       `json:"age"`
	Stage    LifeStage `json:"stage"`
	IsParent bool      `json:"is_parent"`
}

// ProjectionRow is one calendar year of the household projection. Rows are
// derived state: fully regenerated on every projection run, never persisted
// independently.
type ProjectionRow struct {
	Year    int            `json:"year"`
	Members []PersonStatus `json:"members"`

	// Income
	SalaryIncome      decimal.Decimal `json:"salary_income"`
	PensionIncome     decimal.Decimal `json:"pension_income"`
	GrossRentalIncome decimal.Decimal `json:"gross_rental_income"`
	OtherIncome       decimal.Decimal `json:"other_income"`
	TotalGrossIncome  decimal.Decimal `json:"total_gross_income"`

	// Itemized expenses
	LoanPayments    decimal.Decimal `json:"loan_payments"`
	PropertyCharges decimal.Decimal `json:"property_charges"`
	PropertyTax     decimal.Decimal `json:"property_tax"`
	LivingExpenses  decimal.Decimal `json:"living_expenses"`

	// Tax
	TaxablePropertyIncome decimal.Decimal `json:"taxable_property_income"`
	IncomeTax             decimal.Decimal `json:"income_tax"`
	IncentiveReductions   decimal.Decimal `json:"incentive_reductions"`
	SocialLevies          decimal.Decimal `json:"social_levies"`
	MarginalRatePct       decimal.Decimal `json:"marginal_rate_pct"`
	FiscalParts           decimal.Decimal `json:"fiscal_parts"`
	DependentChildren     int             `json:"dependent_children"`
	UsedFallbackTax       bool            `json:"used_fallback_tax"`

	// LMNP depreciation carry-forward, aggregated across furnished assets
	DepreciationConsumed decimal.Decimal `json:"depreciation_consumed"`
	DepreciationReserve  decimal.Decimal `json:"depreciation_reserve"`

	// DisposableIncome is the reste à vivre. Negative values are valid and
	// indicate a deficit year; they are never floored here.
	DisposableIncome decimal.Decimal `json:"disposable_income"`
}

// TotalExpenses sums the itemized non-tax expenses for the year
func (r *ProjectionRow) TotalExpenses() decimal.Decimal {
	return r.LoanPayments.Add(r.PropertyCharges).Add(r.PropertyTax).Add(r.LivingExpenses)
}

// NetTaxDue is the raw signed tax after incentive reductions. Callers clamp
// at the display layer when a negative figure is not meaningful.
func (r *ProjectionRow) NetTaxDue() decimal.Decimal {
	return r.IncomeTax.Sub(r.IncentiveReductions).Add(r.SocialLevies)
}

// IsDeficitYear reports whether the household spends more than it earns
func (r *ProjectionRow) IsDeficitYear() bool {
	return r.DisposableIncome.IsNegative()
}

// PatrimoineSummary is the gross/net wealth snapshot consumed by reports
type PatrimoineSummary struct {
	GrossAssets     decimal.Decimal `json:"gross_assets"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	NetWorth        decimal.Decimal `json:"net_worth"`
}
