package domain

import (
	"github.com/shopspring/decimal"
)

// ProjectionSettings drives the year-by-year lifecycle projection
type ProjectionSettings struct {
	// BaseYear is the first projected calendar year
	BaseYear int `yaml:"base_year" json:"base_year"`
	// HorizonYears is the number of projected years
	HorizonYears int `yaml:"horizon_years" json:"horizon_years"`

	// DefaultRetirementAge applies to any parent without an explicit entry
	// in RetirementAgeByParent
	DefaultRetirementAge  int            `yaml:"default_retirement_age" json:"default_retirement_age"`
	RetirementAgeByParent map[string]int `yaml:"retirement_age_by_parent,omitempty" json:"retirement_age_by_parent,omitempty"`

	// RetirementAgeByChild overrides the per-child retirement age. When a
	// child has no entry the first parent's retirement age applies, a
	// modeling default inherited from the household configuration, kept
	// explicit and configurable here.
	RetirementAgeByChild map[string]int `yaml:"retirement_age_by_child,omitempty" json:"retirement_age_by_child,omitempty"`

	// PensionRate is the fraction of the last employment salary paid as
	// pension once a parent retires
	PensionRate decimal.Decimal `yaml:"pension_rate" json:"pension_rate"`

	// EducationStartAge is the age at which schooling ends and higher
	// education begins; EducationDurationYears is its length
	EducationStartAge      int `yaml:"education_start_age" json:"education_start_age"`
	EducationDurationYears int `yaml:"education_duration_years" json:"education_duration_years"`

	// ChildMonthlySalary is the salary assumed for a child once employed.
	// Zero means employed children contribute no income.
	ChildMonthlySalary decimal.Decimal `yaml:"child_monthly_salary" json:"child_monthly_salary"`

	// SocialLevyRatePct is the flat social levy applied to net property
	// income (17.2 for the simulated French schedule)
	SocialLevyRatePct decimal.Decimal `yaml:"social_levy_rate_pct" json:"social_levy_rate_pct"`

	// FallbackTaxBands overrides the built-in simplified progressive
	// schedule used when the tax collaborator is unavailable. Bands are
	// given in ascending order; a zero upper bound marks the open-ended
	// last band.
	FallbackTaxBands []TaxBand `yaml:"fallback_tax_bands,omitempty" json:"fallback_tax_bands,omitempty"`
}

// TaxBand is one band of a progressive income tax schedule
type TaxBand struct {
	UpperBound decimal.Decimal `yaml:"upper_bound" json:"upper_bound"`
	RatePct    decimal.Decimal `yaml:"rate_pct" json:"rate_pct"`
}

// RetirementAgeFor returns the configured retirement age for a parent
func (s *ProjectionSettings) RetirementAgeFor(parentName string) int {
	if age, ok := s.RetirementAgeByParent[parentName]; ok {
		return age
	}
	return s.DefaultRetirementAge
}

// ChildRetirementAgeFor returns the retirement age applied to a child,
// falling back to the given first parent's age when no override exists
func (s *ProjectionSettings) ChildRetirementAgeFor(childName string, firstParentAge int) int {
	if age, ok := s.RetirementAgeByChild[childName]; ok {
		return age
	}
	return firstParentAge
}
