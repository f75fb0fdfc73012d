package calculation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
	"github.com/patrimoine/wealth-audit/pkg/dateutil"
)

// ErrNoParents rejects a projection over a household with no named parent:
// the result would be meaningless rather than merely empty.
var ErrNoParents = errors.New("projection requires at least one named parent")

// Projector builds the year-indexed household projection. It is constructed
// with a TaxEngine chosen by the caller; when that engine fails the
// documented fallback takes over and every affected row is flagged.
type Projector struct {
	Amortizer   *LoanAmortizer
	PropertyTax *PropertyTaxCalculator
	Tax         TaxEngine
	Fallback    TaxEngine
	Logger      Logger
}

// NewProjector creates a projector around the given tax engine. A nil
// engine means the fallback serves every year (still flagged as such).
func NewProjector(engine TaxEngine) *Projector {
	amortizer := NewLoanAmortizer()
	return &Projector{
		Amortizer:   amortizer,
		PropertyTax: NewPropertyTaxCalculator(amortizer),
		Tax:         engine,
		Fallback:    NewFallbackTaxEngine(),
		Logger:      NopLogger{},
	}
}

// SetLogger sets the logger. A nil value restores the no-op logger.
func (p *Projector) SetLogger(l Logger) {
	if l == nil {
		p.Logger = NopLogger{}
		return
	}
	p.Logger = l
}

// ProjectionState is the input snapshot of one projection run. Each run
// receives a fresh snapshot and produces an independent result; there is no
// cross-run memory.
type ProjectionState struct {
	Household   domain.Household
	Assets      []domain.Asset
	Liabilities []domain.Liability
	Ledger      domain.Ledger
	Settings    domain.ProjectionSettings
}

// Project generates one row per calendar year over the configured horizon.
// Years are processed strictly sequentially: the LMNP depreciation reserve
// and the loan balances of a year depend on the prior year's ending state.
func (p *Projector) Project(state ProjectionState) ([]domain.ProjectionRow, error) {
	parents := state.Household.NamedParents()
	if len(parents) == 0 {
		return nil, ErrNoParents
	}
	settings := state.Settings

	firstParentRetirementAge := settings.RetirementAgeFor(parents[0].Name)
	singleParent := state.Household.IsSingleParent()

	fallback := p.Fallback
	if len(settings.FallbackTaxBands) > 0 {
		fallback = NewFallbackTaxEngineFromBands(settings.FallbackTaxBands)
	}

	// LMNP carry-forward per furnished asset, threaded year to year
	depreciation := make(map[uuid.UUID]DepreciationState)
	for _, asset := range state.Assets {
		if isFurnishedRental(asset) {
			depreciation[asset.ID] = NewDepreciationState(asset)
		}
	}

	rows := make([]domain.ProjectionRow, 0, settings.HorizonYears)
	for offset := 0; offset < settings.HorizonYears; offset++ {
		year := settings.BaseYear + offset
		yearEnd := dateutil.EndOfYear(year)

		row := domain.ProjectionRow{Year: year}

		// Family statuses and parent incomes
		incomeByParent := make(map[string]decimal.Decimal, len(parents))
		for _, parent := range parents {
			stage := parentStageForYear(parent, settings.RetirementAgeFor(parent.Name), year)
			row.Members = append(row.Members, domain.PersonStatus{
				Name:     parent.Name,
				Age:      parent.Age(yearEnd),
				Stage:    stage,
				IsParent: true,
			})

			salary := decimal.Zero
			if entry := state.Ledger.SalaryFor(parent.Name); entry != nil {
				salary = entry.MonthlyAmount.Mul(decimal.NewFromInt(12))
			}
			if stage == domain.StageRetired {
				pension := salary.Mul(settings.PensionRate)
				row.PensionIncome = row.PensionIncome.Add(pension)
				incomeByParent[parent.Name] = pension
			} else {
				row.SalaryIncome = row.SalaryIncome.Add(salary)
				incomeByParent[parent.Name] = salary
			}
		}

		var dependents []domain.Person
		for _, child := range state.Household.Children {
			if child.Name == "" {
				continue
			}
			stage := childStageForYear(child, settings, firstParentRetirementAge, year)
			row.Members = append(row.Members, domain.PersonStatus{
				Name:  child.Name,
				Age:   child.Age(yearEnd),
				Stage: stage,
			})
			if isDependent(stage) {
				dependents = append(dependents, child)
			}
			// An employed child earns the assumed salary and supports the
			// household cash flow; having left the fiscal household, that
			// salary never enters the household tax base.
			if stage == domain.StageEmployed {
				row.SalaryIncome = row.SalaryIncome.Add(settings.ChildMonthlySalary.Mul(decimal.NewFromInt(12)))
			}
		}
		row.DependentChildren = len(dependents)

		// Property income: taxable income per asset, LMNP depreciation
		// consumed against the pre-depreciation floor
		propertyTaxable := decimal.Zero
		for _, asset := range state.Assets {
			if asset.Type != domain.AssetIncomeRealEstate || asset.Rental == nil {
				continue
			}
			row.GrossRentalIncome = row.GrossRentalIncome.Add(asset.Rental.MonthlyRent.Mul(decimal.NewFromInt(12)))

			consumed := decimal.Zero
			if isFurnishedRental(asset) {
				floor := p.PropertyTax.TaxableIncomeFloor(asset, state.Liabilities, year)
				var next DepreciationState
				consumed, next = depreciation[asset.ID].Step(floor)
				depreciation[asset.ID] = next
				row.DepreciationConsumed = row.DepreciationConsumed.Add(consumed)
				row.DepreciationReserve = row.DepreciationReserve.Add(next.Reserve)
			}

			result := p.PropertyTax.Compute(PropertyTaxInput{
				Asset:                asset,
				Loans:                state.Liabilities,
				Year:                 year,
				SocialLevyRatePct:    settings.SocialLevyRatePct,
				DepreciationConsumed: consumed,
			})
			propertyTaxable = propertyTaxable.Add(result.TaxableIncome)
			row.IncentiveReductions = row.IncentiveReductions.
				Add(result.PinelReduction).
				Add(result.ScellierReduction)
		}
		row.TaxablePropertyIncome = propertyTaxable

		// Household tax: the collaborator first, the documented fallback on
		// failure, visibly, never silently
		taxReq := TaxRequest{
			Year:                 year,
			Parents:              parents,
			DependentChildren:    dependents,
			AnnualIncomeByParent: incomeByParent,
			PropertyNetIncome:    propertyTaxable,
			SingleParent:         singleParent,
		}
		taxResult, usedFallback, err := p.computeTax(taxReq, fallback)
		if err != nil {
			return nil, err
		}
		row.UsedFallbackTax = usedFallback
		row.IncomeTax = taxResult.NetTax
		row.MarginalRatePct = taxResult.MarginalRatePct
		row.FiscalParts = taxResult.FiscalParts

		// Social levies apply flat to net property income
		row.SocialLevies = propertyTaxable.Mul(settings.SocialLevyRatePct).Div(decimal.NewFromInt(100))

		// Itemized expenses: loans from the amortizer, charges and property
		// tax from the assets, living expenses from the manual ledger lines
		for _, loan := range state.Liabilities {
			row.LoanPayments = row.LoanPayments.Add(p.Amortizer.BreakdownForYear(loan, year).TotalPaid)
		}
		for _, asset := range state.Assets {
			if !asset.IsRealEstate() {
				continue
			}
			row.PropertyCharges = row.PropertyCharges.Add(asset.MonthlyCharges.Mul(decimal.NewFromInt(12)))
			row.PropertyTax = row.PropertyTax.Add(asset.AnnualPropertyTax)
		}
		for _, e := range state.Ledger.ManualExpenses() {
			row.LivingExpenses = row.LivingExpenses.Add(e.MonthlyAmount.Mul(decimal.NewFromInt(12)))
		}
		for _, e := range state.Ledger.ManualIncomes() {
			row.OtherIncome = row.OtherIncome.Add(e.MonthlyAmount.Mul(decimal.NewFromInt(12)))
		}

		row.TotalGrossIncome = row.SalaryIncome.
			Add(row.PensionIncome).
			Add(row.GrossRentalIncome).
			Add(row.OtherIncome)

		// Reste à vivre. Negative values propagate: a deficit year is a
		// valid outcome, not an error.
		row.DisposableIncome = row.TotalGrossIncome.
			Sub(row.TotalExpenses()).
			Sub(row.NetTaxDue())

		rows = append(rows, row)
	}

	return rows, nil
}

// computeTax tries the configured engine, then the fallback
func (p *Projector) computeTax(req TaxRequest, fallback TaxEngine) (TaxResult, bool, error) {
	if p.Tax != nil {
		result, err := p.Tax.ComputeHouseholdTax(req)
		if err == nil {
			return result, false, nil
		}
		p.Logger.Warnf("tax engine failed for year %d, using fallback schedule: %v", req.Year, err)
	}
	result, err := fallback.ComputeHouseholdTax(req)
	if err != nil {
		return TaxResult{}, true, fmt.Errorf("%w: fallback schedule failed for year %d: %v", ErrTaxEngineUnavailable, req.Year, err)
	}
	return result, true, nil
}

func isFurnishedRental(asset domain.Asset) bool {
	return asset.Type == domain.AssetIncomeRealEstate &&
		asset.Rental != nil &&
		asset.Rental.OperatingMode == domain.FurnishedRental
}
