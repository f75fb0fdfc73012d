package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Liability is a fixed-rate fully-amortizing loan. Payment and outstanding
// balance are derived from the four base fields, never stored;
// ComputedOutstandingBalance is a display cache refreshed by the caller.
type Liability struct {
	ID             uuid.UUID       `json:"id"`
	Label          string          `json:"label"`
	Principal      decimal.Decimal `json:"principal"`
	AnnualRatePct  decimal.Decimal `json:"annual_rate_pct"`
	DurationMonths int             `json:"duration_months"`
	StartDate      time.Time       `json:"start_date"`
	LinkedAssetID  *uuid.UUID      `json:"linked_asset_id,omitempty"`

	ComputedOutstandingBalance decimal.Decimal `json:"computed_outstanding_balance"`
}

// EndDate returns the first day after the last scheduled payment
func (l *Liability) EndDate() time.Time {
	return l.StartDate.AddDate(0, l.DurationMonths, 0)
}

// LinkedTo reports whether the loan finances the given asset
func (l *Liability) LinkedTo(assetID uuid.UUID) bool {
	return l.LinkedAssetID != nil && *l.LinkedAssetID == assetID
}
