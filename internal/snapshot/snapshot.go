// Package snapshot reads and writes the persisted audit state: a flat JSON
// envelope whose date values are tagged objects so they survive round-trip
// serialization exactly.
package snapshot

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Date wraps time.Time with the tagged wire form
// {"_type": "date", "value": "<ISO-8601>"}.
type Date struct {
	time.Time
}

type dateEnvelope struct {
	Type  string `json:"_type"`
	Value string `json:"value"`
}

// MarshalJSON encodes the tagged date object
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateEnvelope{
		Type:  "date",
		Value: d.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON decodes the tagged date object
func (d *Date) UnmarshalJSON(data []byte) error {
	var env dateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Type != "date" {
		return fmt.Errorf("expected a date envelope, got _type %q", env.Type)
	}
	parsed, err := time.Parse(time.RFC3339Nano, env.Value)
	if err != nil {
		return fmt.Errorf("invalid date value %q: %w", env.Value, err)
	}
	d.Time = parsed
	return nil
}

// State is the aggregate the snapshot persists: everything a projection,
// capacity or optimization run needs, minus the run-specific parameters.
type State struct {
	Household   domain.Household
	Assets      []domain.Asset
	Liabilities []domain.Liability
	Settings    domain.ProjectionSettings
	Ledger      domain.Ledger
}

// personRecord is the wire form of a Person with the tagged birth date
type personRecord struct {
	Name      string `json:"name"`
	BirthDate Date   `json:"birth_date"`
}

// liabilityRecord is the wire form of a Liability with the tagged start date
type liabilityRecord struct {
	ID             uuid.UUID       `json:"id"`
	Label          string          `json:"label"`
	Principal      decimal.Decimal `json:"principal"`
	AnnualRatePct  decimal.Decimal `json:"annual_rate_pct"`
	DurationMonths int             `json:"duration_months"`
	StartDate      Date            `json:"start_date"`
	LinkedAssetID  *uuid.UUID      `json:"linked_asset_id,omitempty"`
}

// document is the flat persisted envelope
type document struct {
	Parents            []personRecord            `json:"parents"`
	Children           []personRecord            `json:"children"`
	Assets             []domain.Asset            `json:"assets"`
	Liabilities        []liabilityRecord         `json:"liabilities"`
	ProjectionSettings domain.ProjectionSettings `json:"projection_settings"`
	Incomes            []domain.IncomeEntry      `json:"incomes"`
	Expenses           []domain.ExpenseEntry     `json:"expenses"`
}

// Marshal encodes the state into the snapshot envelope
func Marshal(state State) ([]byte, error) {
	doc := document{
		Parents:            toPersonRecords(state.Household.Parents),
		Children:           toPersonRecords(state.Household.Children),
		Assets:             state.Assets,
		Liabilities:        toLiabilityRecords(state.Liabilities),
		ProjectionSettings: state.Settings,
		Incomes:            state.Ledger.Incomes,
		Expenses:           state.Ledger.Expenses,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes a snapshot envelope back into state
func Unmarshal(data []byte) (State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return State{
		Household: domain.Household{
			Parents:  fromPersonRecords(doc.Parents),
			Children: fromPersonRecords(doc.Children),
		},
		Assets:      doc.Assets,
		Liabilities: fromLiabilityRecords(doc.Liabilities),
		Settings:    doc.ProjectionSettings,
		Ledger: domain.Ledger{
			Incomes:  doc.Incomes,
			Expenses: doc.Expenses,
		},
	}, nil
}

// Save writes the state to a snapshot file
func Save(path string, state State) error {
	data, err := Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot file back into state
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return Unmarshal(data)
}

func toPersonRecords(people []domain.Person) []personRecord {
	records := make([]personRecord, 0, len(people))
	for _, p := range people {
		records = append(records, personRecord{Name: p.Name, BirthDate: Date{p.BirthDate}})
	}
	return records
}

func fromPersonRecords(records []personRecord) []domain.Person {
	people := make([]domain.Person, 0, len(records))
	for _, r := range records {
		people = append(people, domain.Person{Name: r.Name, BirthDate: r.BirthDate.Time})
	}
	return people
}

func toLiabilityRecords(liabilities []domain.Liability) []liabilityRecord {
	records := make([]liabilityRecord, 0, len(liabilities))
	for _, l := range liabilities {
		records = append(records, liabilityRecord{
			ID:             l.ID,
			Label:          l.Label,
			Principal:      l.Principal,
			AnnualRatePct:  l.AnnualRatePct,
			DurationMonths: l.DurationMonths,
			StartDate:      Date{l.StartDate},
			LinkedAssetID:  l.LinkedAssetID,
		})
	}
	return records
}

func fromLiabilityRecords(records []liabilityRecord) []domain.Liability {
	liabilities := make([]domain.Liability, 0, len(records))
	for _, r := range records {
		liabilities = append(liabilities, domain.Liability{
			ID:             r.ID,
			Label:          r.Label,
			Principal:      r.Principal,
			AnnualRatePct:  r.AnnualRatePct,
			DurationMonths: r.DurationMonths,
			StartDate:      r.StartDate.Time,
			LinkedAssetID:  r.LinkedAssetID,
		})
	}
	return liabilities
}
