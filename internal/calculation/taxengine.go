package calculation

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// ErrTaxEngineUnavailable signals that the household tax collaborator cannot
// serve the request. The projector substitutes the documented fallback and
// flags the affected rows; the substitution is never silent.
var ErrTaxEngineUnavailable = errors.New("tax engine unavailable")

// TaxRequest is the per-year input of the household tax computation
type TaxRequest struct {
	Year                 int
	Parents              []domain.Person
	DependentChildren    []domain.Person
	AnnualIncomeByParent map[string]decimal.Decimal
	PropertyNetIncome    decimal.Decimal
	SingleParent         bool
}

// TaxResult is the household tax outcome for one year
type TaxResult struct {
	NetTax             decimal.Decimal `json:"net_tax"`
	MarginalRatePct    decimal.Decimal `json:"marginal_rate_pct"`
	FiscalParts        decimal.Decimal `json:"fiscal_parts"`
	TaxWithoutQuotient decimal.Decimal `json:"tax_without_family_quotient"`
	QuotientGain       decimal.Decimal `json:"family_quotient_gain"`
}

// TaxEngine is the external household tax collaborator. The projection is
// written against this contract only; whether the real engine or the
// fallback schedule serves it is the caller's explicit choice.
type TaxEngine interface {
	ComputeHouseholdTax(req TaxRequest) (TaxResult, error)
}

// taxBand is one band of the fallback progressive schedule
type taxBand struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// FallbackTaxEngine is the documented substitute used when the real tax
// collaborator is unavailable: a simplified progressive schedule with family
// quotient. Projection logic must never depend on its bracket constants.
type FallbackTaxEngine struct {
	bands []taxBand
}

// NewFallbackTaxEngine creates the fallback engine with its simplified
// progressive schedule
func NewFallbackTaxEngine() *FallbackTaxEngine {
	return &FallbackTaxEngine{
		bands: []taxBand{
			{decimal.Zero, decimal.NewFromInt(11294), decimal.Zero},
			{decimal.NewFromInt(11294), decimal.NewFromInt(28797), decimal.NewFromFloat(0.11)},
			{decimal.NewFromInt(28797), decimal.NewFromInt(82341), decimal.NewFromFloat(0.30)},
			{decimal.NewFromInt(82341), decimal.NewFromInt(177106), decimal.NewFromFloat(0.41)},
			{decimal.NewFromInt(177106), decimal.NewFromInt(999999999), decimal.NewFromFloat(0.45)},
		},
	}
}

// NewFallbackTaxEngineFromBands creates a fallback engine over a
// user-supplied schedule. Bands come in ascending order of upper bound; a
// zero upper bound marks the open-ended last band. An empty slice yields
// the built-in schedule.
func NewFallbackTaxEngineFromBands(override []domain.TaxBand) *FallbackTaxEngine {
	if len(override) == 0 {
		return NewFallbackTaxEngine()
	}
	hundred := decimal.NewFromInt(100)
	open := decimal.NewFromInt(999999999)

	bands := make([]taxBand, 0, len(override))
	lower := decimal.Zero
	for _, b := range override {
		upper := b.UpperBound
		if upper.IsZero() {
			upper = open
		}
		bands = append(bands, taxBand{lower, upper, b.RatePct.Div(hundred)})
		lower = upper
	}
	return &FallbackTaxEngine{bands: bands}
}

// ComputeHouseholdTax applies the simplified schedule with family quotient
func (f *FallbackTaxEngine) ComputeHouseholdTax(req TaxRequest) (TaxResult, error) {
	taxable := req.PropertyNetIncome
	for _, income := range req.AnnualIncomeByParent {
		taxable = taxable.Add(income)
	}
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	parts := fiscalParts(len(req.Parents), len(req.DependentChildren), req.SingleParent)
	adultParts := decimal.NewFromInt(int64(len(req.Parents)))
	if adultParts.IsZero() {
		adultParts = decimal.NewFromInt(1)
	}

	perPart := taxable.Div(parts)
	netTax := f.scheduleTax(perPart).Mul(parts)
	withoutQuotient := f.scheduleTax(taxable.Div(adultParts)).Mul(adultParts)

	return TaxResult{
		NetTax:             netTax,
		MarginalRatePct:    f.marginalRate(perPart).Mul(decimal.NewFromInt(100)),
		FiscalParts:        parts,
		TaxWithoutQuotient: withoutQuotient,
		QuotientGain:       withoutQuotient.Sub(netTax),
	}, nil
}

func (f *FallbackTaxEngine) scheduleTax(perPartIncome decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, band := range f.bands {
		if perPartIncome.LessThanOrEqual(band.Min) {
			break
		}
		inBand := decimal.Min(perPartIncome, band.Max).Sub(band.Min)
		if inBand.IsPositive() {
			total = total.Add(inBand.Mul(band.Rate))
		}
	}
	return total
}

func (f *FallbackTaxEngine) marginalRate(perPartIncome decimal.Decimal) decimal.Decimal {
	rate := decimal.Zero
	for _, band := range f.bands {
		if perPartIncome.GreaterThan(band.Min) {
			rate = band.Rate
		}
	}
	return rate
}

// fiscalParts computes the family quotient divisor: one part per parent,
// half a part for each of the first two children, a full part from the
// third on, and an extra half part for a single-parent household.
func fiscalParts(parents, children int, singleParent bool) decimal.Decimal {
	parts := decimal.NewFromInt(int64(parents))
	for i := 0; i < children; i++ {
		if i < 2 {
			parts = parts.Add(decimal.NewFromFloat(0.5))
		} else {
			parts = parts.Add(decimal.NewFromInt(1))
		}
	}
	if singleParent && children > 0 {
		parts = parts.Add(decimal.NewFromFloat(0.5))
	}
	if parts.IsZero() {
		parts = decimal.NewFromInt(1)
	}
	return parts
}
