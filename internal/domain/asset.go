package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType discriminates the asset variants. Calculation code switches
// exhaustively on this tag instead of probing for optional fields.
type AssetType string

const (
	AssetOwnerOccupiedRealEstate AssetType = "owner_occupied_real_estate"
	AssetIncomeRealEstate        AssetType = "income_real_estate"
	AssetFinancial               AssetType = "financial"
	AssetOther                   AssetType = "other"
)

// OperatingMode is the rental regime of an income property
type OperatingMode string

const (
	BareRental      OperatingMode = "bare"
	FurnishedRental OperatingMode = "furnished"
)

// TaxScheme identifies the time-windowed fiscal incentive attached to an
// income property. Pinel and Scellier are mutually exclusive per asset.
type TaxScheme string

const (
	SchemeNone                 TaxScheme = "none"
	SchemePinel                TaxScheme = "pinel"
	SchemeScellier             TaxScheme = "scellier"
	SchemeScellierIntermediate TaxScheme = "scellier_intermediate"
)

// DepreciationBase splits the purchase value of a furnished rental into the
// non-depreciable land share and the depreciable building/works/furniture
// pools (standard lifetimes 30/15/7 years).
type DepreciationBase struct {
	LandValue      decimal.Decimal `json:"land_value"`
	WorksValue     decimal.Decimal `json:"works_value"`
	FurnitureValue decimal.Decimal `json:"furniture_value"`
}

// RentalDetails carries the fields applicable only to income real estate
type RentalDetails struct {
	MonthlyRent         decimal.Decimal   `json:"monthly_rent"`
	OperatingMode       OperatingMode     `json:"operating_mode"`
	TaxScheme           TaxScheme         `json:"tax_scheme"`
	SchemeStartYear     int               `json:"scheme_start_year"`
	SchemeDurationYears int               `json:"scheme_duration_years"`
	Depreciation        *DepreciationBase `json:"depreciation,omitempty"`
}

// Asset is one line of the household patrimoine. MonthlyCharges and
// AnnualPropertyTax apply to the two real-estate variants; Rental is present
// exactly when Type is AssetIncomeRealEstate.
type Asset struct {
	ID                uuid.UUID       `json:"id"`
	Label             string          `json:"label"`
	Type              AssetType       `json:"type"`
	Value             decimal.Decimal `json:"value"`
	MonthlyCharges    decimal.Decimal `json:"monthly_charges"`
	AnnualPropertyTax decimal.Decimal `json:"annual_property_tax"`
	Rental            *RentalDetails  `json:"rental,omitempty"`
}

// IsRealEstate reports whether the asset carries property charges and tax
func (a *Asset) IsRealEstate() bool {
	return a.Type == AssetOwnerOccupiedRealEstate || a.Type == AssetIncomeRealEstate
}

// Validate checks the internal consistency of the asset variant
func (a *Asset) Validate() error {
	if a.Value.IsNegative() {
		return fmt.Errorf("asset %q: value cannot be negative", a.Label)
	}
	switch a.Type {
	case AssetIncomeRealEstate:
		if a.Rental == nil {
			return fmt.Errorf("asset %q: income real estate requires rental details", a.Label)
		}
		if a.Rental.Depreciation != nil {
			base := a.Rental.Depreciation
			split := base.LandValue.Add(base.WorksValue).Add(base.FurnitureValue)
			if split.GreaterThan(a.Value) {
				return fmt.Errorf("asset %q: land+works+furniture (%s) exceeds asset value (%s)",
					a.Label, split.StringFixed(2), a.Value.StringFixed(2))
			}
		}
	case AssetOwnerOccupiedRealEstate, AssetFinancial, AssetOther:
		if a.Rental != nil {
			return fmt.Errorf("asset %q: rental details only apply to income real estate", a.Label)
		}
	default:
		return fmt.Errorf("asset %q: unknown type %q", a.Label, a.Type)
	}
	return nil
}

// DetachLiabilities nulls the asset reference of any liability linked to the
// given asset. Deleting an asset never cascades to the liability itself.
func DetachLiabilities(liabilities []Liability, assetID uuid.UUID) {
	for i := range liabilities {
		if liabilities[i].LinkedAssetID != nil && *liabilities[i].LinkedAssetID == assetID {
			liabilities[i].LinkedAssetID = nil
		}
	}
}
