package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

func TestLoadFromFile(t *testing.T) {
	content := `
projection:
  base_year: 2025
  horizon_years: 25
  default_retirement_age: 64
  retirement_age_by_parent:
    Claire: 63
  pension_rate: 0.75
  education_start_age: 18
  education_duration_years: 5
  social_levy_rate_pct: 17.2
max_debt_ratio_pct: 35
optimizer:
  horizon_years: 20
  marginal_rate_pct: 30
  life_insurance:
    annual_return_pct: 3.5
    entry_fee_pct: 2.0
  retirement_savings:
    annual_return_pct: 4.0
    entry_fee_pct: 1.5
  real_estate_fund:
    annual_return_pct: 1.0
    entry_fee_pct: 9.0
    distribution_yield_pct: 4.5
    social_levy_exempt_fraction: 0.3
  credit:
    annual_rate_pct: 2.5
    insurance_rate_pct: 0.3
    duration_months: 240
  constraints:
    max_initial_capital: 50000
    max_monthly_savings_effort: 800
    max_credit_monthly_payment: 600
    annual_per_deduction_cap: 4114
`
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	parser := NewSettingsParser()
	settings, err := parser.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2025, settings.Projection.BaseYear)
	assert.Equal(t, 25, settings.Projection.HorizonYears)
	assert.Equal(t, 63, settings.Projection.RetirementAgeByParent["Claire"])
	assert.True(t, settings.Projection.PensionRate.Equal(decimal.NewFromFloat(0.75)))
	assert.True(t, settings.Projection.SocialLevyRatePct.Equal(decimal.NewFromFloat(17.2)))
	assert.True(t, settings.MaxDebtRatioPct.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, 240, settings.Optimizer.Credit.DurationMonths)
	assert.True(t, settings.Optimizer.RealEstateFund.DistributionYieldPct.Equal(decimal.NewFromFloat(4.5)))
	assert.True(t, settings.Optimizer.Constraints.AnnualPERDeductionCap.Equal(decimal.NewFromInt(4114)))
}

func TestLoadFromFileMissing(t *testing.T) {
	parser := NewSettingsParser()
	_, err := parser.LoadFromFile("/nonexistent/settings.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	parser := NewSettingsParser()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"Zero horizon", func(s *Settings) { s.Projection.HorizonYears = 0 }},
		{"Implausible retirement age", func(s *Settings) { s.Projection.DefaultRetirementAge = 20 }},
		{"Pension rate above one", func(s *Settings) { s.Projection.PensionRate = decimal.NewFromInt(2) }},
		{"Negative debt ratio", func(s *Settings) { s.MaxDebtRatioPct = decimal.NewFromInt(-5) }},
		{"Entry fee at 100 percent", func(s *Settings) {
			s.Optimizer.LifeInsurance.EntryFeePct = decimal.NewFromInt(100)
		}},
		{"Exempt fraction above one", func(s *Settings) {
			s.Optimizer.RealEstateFund.SocialLevyExemptFraction = decimal.NewFromFloat(1.5)
		}},
		{"Negative constraint cap", func(s *Settings) {
			s.Optimizer.Constraints.MaxInitialCapital = decimal.NewFromInt(-1)
		}},
		{"Negative child salary", func(s *Settings) {
			s.Projection.ChildMonthlySalary = decimal.NewFromInt(-100)
		}},
		{"Tax bands not ascending", func(s *Settings) {
			s.Projection.FallbackTaxBands = []domain.TaxBand{
				{UpperBound: decimal.NewFromInt(30000), RatePct: decimal.NewFromInt(10)},
				{UpperBound: decimal.NewFromInt(20000), RatePct: decimal.NewFromInt(20)},
			}
		}},
		{"Open tax band before the last", func(s *Settings) {
			s.Projection.FallbackTaxBands = []domain.TaxBand{
				{UpperBound: decimal.Zero, RatePct: decimal.NewFromInt(10)},
				{UpperBound: decimal.NewFromInt(50000), RatePct: decimal.NewFromInt(20)},
			}
		}},
		{"Tax band rate above 100", func(s *Settings) {
			s.Projection.FallbackTaxBands = []domain.TaxBand{
				{UpperBound: decimal.Zero, RatePct: decimal.NewFromInt(120)},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := parser.Example()
			tt.mutate(settings)
			assert.Error(t, parser.Validate(settings))
		})
	}
}

func TestExampleIsValid(t *testing.T) {
	parser := NewSettingsParser()
	assert.NoError(t, parser.Validate(parser.Example()))
}

func TestWriteExampleRoundTrip(t *testing.T) {
	parser := NewSettingsParser()
	path := filepath.Join(t.TempDir(), "example.yaml")

	require.NoError(t, parser.WriteExample(path))

	loaded, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, parser.Example().Projection.BaseYear, loaded.Projection.BaseYear)
	assert.True(t, loaded.Optimizer.MarginalRatePct.Equal(decimal.NewFromInt(30)))
}
