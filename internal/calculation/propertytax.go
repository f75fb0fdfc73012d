package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Incentive reductions apply to at most this much of the asset value
var incentiveBaseCap = decimal.NewFromInt(300000)

// PropertyTaxCalculator computes the annual tax treatment of one income
// property: taxable property income, income tax and social levy at the
// household's rates, and the time-windowed Pinel/Scellier reduction or the
// LMNP depreciation offset.
type PropertyTaxCalculator struct {
	Amortizer *LoanAmortizer
}

// NewPropertyTaxCalculator creates a new property tax calculator
func NewPropertyTaxCalculator(amortizer *LoanAmortizer) *PropertyTaxCalculator {
	if amortizer == nil {
		amortizer = NewLoanAmortizer()
	}
	return &PropertyTaxCalculator{Amortizer: amortizer}
}

// PropertyTaxInput is one asset-year tax computation request.
// DepreciationConsumed is the LMNP allowance already consumed this year for
// this asset; the carry-forward itself is owned by the caller.
type PropertyTaxInput struct {
	Asset                domain.Asset
	Loans                []domain.Liability
	Year                 int
	MarginalRatePct      decimal.Decimal
	SocialLevyRatePct    decimal.Decimal
	DepreciationConsumed decimal.Decimal
}

// PropertyTaxResult itemizes the computation. NetTaxDue is the raw signed
// figure: incentive reductions can push it negative, and clamping is the
// display layer's decision, never this function's.
type PropertyTaxResult struct {
	GrossRent         decimal.Decimal `json:"gross_rent"`
	AbatedRent        decimal.Decimal `json:"abated_rent"`
	DeductibleCharges decimal.Decimal `json:"deductible_charges"`
	LoanInterest      decimal.Decimal `json:"loan_interest"`
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
	IncomeTax         decimal.Decimal `json:"income_tax"`
	SocialLevy        decimal.Decimal `json:"social_levy"`
	PinelReduction    decimal.Decimal `json:"pinel_reduction"`
	ScellierReduction decimal.Decimal `json:"scellier_reduction"`
	NetTaxDue         decimal.Decimal `json:"net_tax_due"`
}

// Compute runs the annual property tax algorithm for one income property.
// Non-rental assets yield a zero result.
func (ptc *PropertyTaxCalculator) Compute(in PropertyTaxInput) PropertyTaxResult {
	asset := in.Asset
	if asset.Type != domain.AssetIncomeRealEstate || asset.Rental == nil {
		return PropertyTaxResult{}
	}
	rental := asset.Rental

	grossRent := rental.MonthlyRent.Mul(decimal.NewFromInt(12))
	abatedRent := grossRent
	if rental.TaxScheme == domain.SchemeScellierIntermediate && schemeWindowContains(rental, in.Year) {
		// Intermediate Scellier: flat 30% rent abatement inside the window
		abatedRent = grossRent.Mul(decimal.NewFromFloat(0.70))
	}

	loanInterest := ptc.Amortizer.AggregateLoanInterest(linkedLoans(in.Loans, asset), in.Year)
	operatingCharges := asset.MonthlyCharges.Mul(decimal.NewFromInt(12))
	deductible := operatingCharges.Add(asset.AnnualPropertyTax).Add(loanInterest)

	taxable := abatedRent.Sub(deductible).Sub(in.DepreciationConsumed)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	incomeTax := taxable.Mul(in.MarginalRatePct).Div(decimal.NewFromInt(100))
	socialLevy := taxable.Mul(in.SocialLevyRatePct).Div(decimal.NewFromInt(100))

	// Furnished rentals are offset through depreciation, never through the
	// Pinel/Scellier windows
	var pinel, scellier decimal.Decimal
	if rental.OperatingMode == domain.FurnishedRental {
		return PropertyTaxResult{
			GrossRent:         grossRent,
			AbatedRent:        abatedRent,
			DeductibleCharges: deductible,
			LoanInterest:      loanInterest,
			TaxableIncome:     taxable,
			IncomeTax:         incomeTax,
			SocialLevy:        socialLevy,
			NetTaxDue:         incomeTax.Add(socialLevy),
		}
	}
	switch rental.TaxScheme {
	case domain.SchemePinel:
		pinel = incentiveReduction(asset, in.Year, pinelAnnualRate)
	case domain.SchemeScellier, domain.SchemeScellierIntermediate:
		scellier = incentiveReduction(asset, in.Year, scellierAnnualRate)
	}

	return PropertyTaxResult{
		GrossRent:         grossRent,
		AbatedRent:        abatedRent,
		DeductibleCharges: deductible,
		LoanInterest:      loanInterest,
		TaxableIncome:     taxable,
		IncomeTax:         incomeTax,
		SocialLevy:        socialLevy,
		PinelReduction:    pinel,
		ScellierReduction: scellier,
		NetTaxDue:         incomeTax.Add(socialLevy).Sub(pinel).Sub(scellier),
	}
}

// TaxableIncomeFloor returns the pre-depreciation taxable property income of
// a furnished rental for one year: the income the LMNP allowance can be
// consumed against.
func (ptc *PropertyTaxCalculator) TaxableIncomeFloor(asset domain.Asset, loans []domain.Liability, year int) decimal.Decimal {
	if asset.Type != domain.AssetIncomeRealEstate || asset.Rental == nil {
		return decimal.Zero
	}
	grossRent := asset.Rental.MonthlyRent.Mul(decimal.NewFromInt(12))
	loanInterest := ptc.Amortizer.AggregateLoanInterest(linkedLoans(loans, asset), year)
	deductible := asset.MonthlyCharges.Mul(decimal.NewFromInt(12)).Add(asset.AnnualPropertyTax).Add(loanInterest)
	floor := grossRent.Sub(deductible)
	if floor.IsNegative() {
		return decimal.Zero
	}
	return floor
}

func linkedLoans(loans []domain.Liability, asset domain.Asset) []domain.Liability {
	var linked []domain.Liability
	for _, l := range loans {
		if l.LinkedTo(asset.ID) {
			linked = append(linked, l)
		}
	}
	return linked
}

func schemeWindowContains(rental *domain.RentalDetails, year int) bool {
	return year >= rental.SchemeStartYear && year < rental.SchemeStartYear+rental.SchemeDurationYears
}

func incentiveReduction(asset domain.Asset, year int, annualRate func(rental *domain.RentalDetails, elapsed int) decimal.Decimal) decimal.Decimal {
	rental := asset.Rental
	elapsed := year - rental.SchemeStartYear
	if elapsed < 0 {
		return decimal.Zero
	}
	rate := annualRate(rental, elapsed)
	if rate.IsZero() {
		return decimal.Zero
	}
	base := decimal.Min(asset.Value, incentiveBaseCap)
	return base.Mul(rate)
}

// pinelAnnualRate: 2%/year for years 0-8, then 1%/year for years 9-11 only
// on a 12-year commitment
func pinelAnnualRate(rental *domain.RentalDetails, elapsed int) decimal.Decimal {
	if elapsed >= rental.SchemeDurationYears {
		return decimal.Zero
	}
	switch {
	case elapsed <= 8:
		return decimal.NewFromFloat(0.02)
	case elapsed <= 11 && rental.SchemeDurationYears == 12:
		return decimal.NewFromFloat(0.01)
	default:
		return decimal.Zero
	}
}

// scellierAnnualRate spreads a vintage-dependent total rate evenly over the
// first nine years, with a 2%/year extension for years 9-14 on commitments
// of fifteen years or more
func scellierAnnualRate(rental *domain.RentalDetails, elapsed int) decimal.Decimal {
	if elapsed >= rental.SchemeDurationYears {
		return decimal.Zero
	}
	if elapsed <= 8 {
		return scellierTotalRate(rental).Div(decimal.NewFromInt(9))
	}
	if elapsed <= 14 && rental.SchemeDurationYears >= 15 {
		return decimal.NewFromFloat(0.02)
	}
	return decimal.Zero
}

// scellierTotalRate keys the total reduction rate on the scheme vintage:
// 25/20/13% classic and 27/23/17% intermediate for 2009-2010 / 2011 / 2012
// starts respectively
func scellierTotalRate(rental *domain.RentalDetails) decimal.Decimal {
	intermediate := rental.TaxScheme == domain.SchemeScellierIntermediate
	switch {
	case rental.SchemeStartYear <= 2010:
		if intermediate {
			return decimal.NewFromFloat(0.27)
		}
		return decimal.NewFromFloat(0.25)
	case rental.SchemeStartYear == 2011:
		if intermediate {
			return decimal.NewFromFloat(0.23)
		}
		return decimal.NewFromFloat(0.20)
	default:
		if intermediate {
			return decimal.NewFromFloat(0.17)
		}
		return decimal.NewFromFloat(0.13)
	}
}
