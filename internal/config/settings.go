package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/patrimoine/wealth-audit/internal/calculation"
	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Settings is the YAML configuration of an audit run: the projection
// parameters, the debt capacity ceiling and the optimizer environment.
// Household, asset and liability state lives in the snapshot, never here.
type Settings struct {
	Projection      domain.ProjectionSettings `yaml:"projection"`
	MaxDebtRatioPct decimal.Decimal           `yaml:"max_debt_ratio_pct"`
	Optimizer       OptimizerSettings         `yaml:"optimizer"`
}

// OptimizerSettings is the portfolio optimizer environment
type OptimizerSettings struct {
	HorizonYears      int                              `yaml:"horizon_years"`
	MarginalRatePct   decimal.Decimal                  `yaml:"marginal_rate_pct"`
	LifeInsurance     calculation.VehicleParams        `yaml:"life_insurance"`
	RetirementSavings calculation.VehicleParams        `yaml:"retirement_savings"`
	RealEstateFund    calculation.RealEstateFundParams `yaml:"real_estate_fund"`
	Credit            calculation.CreditParams         `yaml:"credit"`
	Constraints       calculation.OptimizerConstraints `yaml:"constraints"`
}

// SimulationParams assembles the optimizer environment for the calculation
// layer, sharing the projection's social levy rate.
func (o *OptimizerSettings) SimulationParams(socialLevyRatePct decimal.Decimal) calculation.SimulationParams {
	return calculation.SimulationParams{
		HorizonYears:      o.HorizonYears,
		MarginalRatePct:   o.MarginalRatePct,
		SocialLevyRatePct: socialLevyRatePct,
		LifeInsurance:     o.LifeInsurance,
		RetirementSavings: o.RetirementSavings,
		RealEstateFund:    o.RealEstateFund,
		Credit:            o.Credit,
	}
}

// SettingsParser handles parsing of settings files
type SettingsParser struct{}

// NewSettingsParser creates a new settings parser
func NewSettingsParser() *SettingsParser {
	return &SettingsParser{}
}

// LoadFromFile loads settings from a YAML file
func (sp *SettingsParser) LoadFromFile(filename string) (*Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := sp.Validate(&settings); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}

	return &settings, nil
}

// Validate checks the loaded settings field by field
func (sp *SettingsParser) Validate(settings *Settings) error {
	p := &settings.Projection
	if p.BaseYear < 1900 || p.BaseYear > 2200 {
		return fmt.Errorf("base year %d is out of range", p.BaseYear)
	}
	if p.HorizonYears <= 0 || p.HorizonYears > 100 {
		return fmt.Errorf("horizon must be between 1 and 100 years, got %d", p.HorizonYears)
	}
	if p.DefaultRetirementAge < 50 || p.DefaultRetirementAge > 80 {
		return fmt.Errorf("default retirement age %d is out of range", p.DefaultRetirementAge)
	}
	for name, age := range p.RetirementAgeByParent {
		if age < 50 || age > 80 {
			return fmt.Errorf("retirement age %d for %s is out of range", age, name)
		}
	}
	if p.PensionRate.IsNegative() || p.PensionRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("pension rate must be between 0 and 1, got %s", p.PensionRate.String())
	}
	if p.EducationStartAge <= 0 || p.EducationDurationYears < 0 {
		return fmt.Errorf("education ages must be positive")
	}
	if p.ChildMonthlySalary.IsNegative() {
		return fmt.Errorf("child monthly salary cannot be negative, got %s", p.ChildMonthlySalary.String())
	}
	if p.SocialLevyRatePct.IsNegative() || p.SocialLevyRatePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("social levy rate must be a percentage, got %s", p.SocialLevyRatePct.String())
	}
	if err := validateTaxBands(p.FallbackTaxBands); err != nil {
		return err
	}

	if settings.MaxDebtRatioPct.IsNegative() || settings.MaxDebtRatioPct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("max debt ratio must be a percentage, got %s", settings.MaxDebtRatioPct.String())
	}

	return sp.validateOptimizer(&settings.Optimizer)
}

// validateTaxBands checks a fallback schedule override: rates are
// percentages, upper bounds strictly ascend, and only the last band may be
// open-ended (zero upper bound).
func validateTaxBands(bands []domain.TaxBand) error {
	lower := decimal.Zero
	for i, b := range bands {
		if b.RatePct.IsNegative() || b.RatePct.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("fallback tax band %d: rate must be a percentage, got %s", i, b.RatePct.String())
		}
		if b.UpperBound.IsZero() {
			if i != len(bands)-1 {
				return fmt.Errorf("fallback tax band %d: only the last band may be open-ended", i)
			}
			continue
		}
		if b.UpperBound.LessThanOrEqual(lower) {
			return fmt.Errorf("fallback tax band %d: upper bound %s does not ascend", i, b.UpperBound.String())
		}
		lower = b.UpperBound
	}
	return nil
}

func (sp *SettingsParser) validateOptimizer(o *OptimizerSettings) error {
	if o.HorizonYears < 0 || o.HorizonYears > 100 {
		return fmt.Errorf("optimizer horizon must be between 0 and 100 years, got %d", o.HorizonYears)
	}
	if o.MarginalRatePct.IsNegative() || o.MarginalRatePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("marginal rate must be a percentage, got %s", o.MarginalRatePct.String())
	}
	for _, v := range []struct {
		name   string
		params calculation.VehicleParams
	}{
		{"life_insurance", o.LifeInsurance},
		{"retirement_savings", o.RetirementSavings},
		{"real_estate_fund", o.RealEstateFund.VehicleParams},
	} {
		if v.params.EntryFeePct.IsNegative() || v.params.EntryFeePct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return fmt.Errorf("%s entry fee must be below 100%%, got %s", v.name, v.params.EntryFeePct.String())
		}
	}
	exempt := o.RealEstateFund.SocialLevyExemptFraction
	if exempt.IsNegative() || exempt.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("social levy exempt fraction must be between 0 and 1, got %s", exempt.String())
	}
	if o.Credit.DurationMonths < 0 {
		return fmt.Errorf("credit duration cannot be negative")
	}
	c := &o.Constraints
	for _, limit := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"max_initial_capital", c.MaxInitialCapital},
		{"max_monthly_savings_effort", c.MaxMonthlySavingsEffort},
		{"max_credit_monthly_payment", c.MaxCreditMonthlyPayment},
		{"annual_per_deduction_cap", c.AnnualPERDeductionCap},
	} {
		if limit.value.IsNegative() {
			return fmt.Errorf("%s cannot be negative", limit.name)
		}
	}
	return nil
}

// Example creates an example settings file content
func (sp *SettingsParser) Example() *Settings {
	return &Settings{
		Projection: domain.ProjectionSettings{
			BaseYear:             2025,
			HorizonYears:         30,
			DefaultRetirementAge: 64,
			RetirementAgeByParent: map[string]int{
				"Claire": 63,
				"Marc":   65,
			},
			PensionRate:            decimal.NewFromFloat(0.75),
			EducationStartAge:      18,
			EducationDurationYears: 5,
			ChildMonthlySalary:     decimal.NewFromInt(1800),
			SocialLevyRatePct:      decimal.NewFromFloat(17.2),
		},
		MaxDebtRatioPct: decimal.NewFromInt(35),
		Optimizer: OptimizerSettings{
			HorizonYears:    20,
			MarginalRatePct: decimal.NewFromInt(30),
			LifeInsurance: calculation.VehicleParams{
				AnnualReturnPct: decimal.NewFromFloat(3.5),
				EntryFeePct:     decimal.NewFromFloat(2.0),
			},
			RetirementSavings: calculation.VehicleParams{
				AnnualReturnPct: decimal.NewFromFloat(4.0),
				EntryFeePct:     decimal.NewFromFloat(1.5),
			},
			RealEstateFund: calculation.RealEstateFundParams{
				VehicleParams: calculation.VehicleParams{
					AnnualReturnPct: decimal.NewFromFloat(1.0),
					EntryFeePct:     decimal.NewFromFloat(9.0),
				},
				DistributionYieldPct:     decimal.NewFromFloat(4.5),
				SocialLevyExemptFraction: decimal.NewFromFloat(0.3),
			},
			Credit: calculation.CreditParams{
				AnnualRatePct:    decimal.NewFromFloat(2.5),
				InsuranceRatePct: decimal.NewFromFloat(0.3),
				DurationMonths:   240,
			},
			Constraints: calculation.OptimizerConstraints{
				MaxInitialCapital:       decimal.NewFromInt(50000),
				MaxMonthlySavingsEffort: decimal.NewFromInt(800),
				MaxCreditMonthlyPayment: decimal.NewFromInt(600),
				AnnualPERDeductionCap:   decimal.NewFromInt(4114),
			},
		},
	}
}

// WriteExample writes the example settings as YAML to the given path
func (sp *SettingsParser) WriteExample(filename string) error {
	data, err := yaml.Marshal(sp.Example())
	if err != nil {
		return fmt.Errorf("failed to marshal example settings: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
