package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Depreciation pool lifetimes for furnished rentals (years)
const (
	BuildingLifetimeYears  = 30
	WorksLifetimeYears     = 15
	FurnitureLifetimeYears = 7
)

// depreciationPool depreciates linearly until exhausted
type depreciationPool struct {
	Remaining decimal.Decimal
	Annual    decimal.Decimal
}

func newPool(base decimal.Decimal, lifetimeYears int) depreciationPool {
	if base.LessThanOrEqual(decimal.Zero) {
		return depreciationPool{Remaining: decimal.Zero, Annual: decimal.Zero}
	}
	return depreciationPool{
		Remaining: base,
		Annual:    base.Div(decimal.NewFromInt(int64(lifetimeYears))),
	}
}

// take releases this year's allowance, capped by what is left in the pool
func (p *depreciationPool) take() decimal.Decimal {
	a := decimal.Min(p.Annual, p.Remaining)
	p.Remaining = p.Remaining.Sub(a)
	return a
}

// DepreciationState is the LMNP carry-forward threaded year to year by the
// projection loop. Each Step consumes from the pools and the reserve; what
// the year's taxable-income floor leaves unused is carried forward
// indefinitely.
type DepreciationState struct {
	building  depreciationPool
	works     depreciationPool
	furniture depreciationPool
	// Reserve is the unused allowance carried from prior years
	Reserve decimal.Decimal
}

// NewDepreciationState builds the initial state for a furnished rental. The
// building pool is the asset value net of the land, works and furniture
// splits; land never depreciates.
func NewDepreciationState(asset domain.Asset) DepreciationState {
	if asset.Rental == nil || asset.Rental.Depreciation == nil {
		return DepreciationState{Reserve: decimal.Zero}
	}
	base := asset.Rental.Depreciation
	buildingBase := asset.Value.Sub(base.LandValue).Sub(base.WorksValue).Sub(base.FurnitureValue)
	if buildingBase.IsNegative() {
		buildingBase = decimal.Zero
	}
	return DepreciationState{
		building:  newPool(buildingBase, BuildingLifetimeYears),
		works:     newPool(base.WorksValue, WorksLifetimeYears),
		furniture: newPool(base.FurnitureValue, FurnitureLifetimeYears),
		Reserve:   decimal.Zero,
	}
}

// Step consumes depreciation against the year's pre-depreciation taxable
// income floor. It returns the amount consumed and the successor state; the
// recurrence is explicit in the signature rather than hidden in loop scope.
func (s DepreciationState) Step(incomeFloor decimal.Decimal) (decimal.Decimal, DepreciationState) {
	next := s
	available := next.Reserve.
		Add(next.building.take()).
		Add(next.works.take()).
		Add(next.furniture.take())

	floor := decimal.Max(incomeFloor, decimal.Zero)
	consumed := decimal.Min(available, floor)
	next.Reserve = available.Sub(consumed)
	return consumed, next
}

// AnnualAllowance is the nominal allowance the pools still release per year
func (s DepreciationState) AnnualAllowance() decimal.Decimal {
	total := decimal.Zero
	for _, p := range []depreciationPool{s.building, s.works, s.furniture} {
		total = total.Add(decimal.Min(p.Annual, p.Remaining))
	}
	return total
}
