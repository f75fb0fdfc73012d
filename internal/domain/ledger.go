package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeKind categorizes a recurring income line
type IncomeKind string

const (
	IncomeSalary   IncomeKind = "salary"
	IncomeProperty IncomeKind = "property"
	IncomeOther    IncomeKind = "other"
)

// ExpenseKind categorizes a recurring expense line
type ExpenseKind string

const (
	ExpenseLoanPayment ExpenseKind = "loan_payment"
	ExpenseCharges     ExpenseKind = "charges"
	ExpensePropertyTax ExpenseKind = "property_tax"
	ExpenseLiving      ExpenseKind = "living"
	ExpenseOther       ExpenseKind = "other"
)

// IncomeEntry is one recurring monthly income line. Entries derived from an
// asset carry its id in SourceID; salary entries derived from a parent carry
// the parent's name in ParentName (an explicit foreign key, never recovered
// from the label). Entries with neither are user-owned and preserved
// verbatim across synchronization.
type IncomeEntry struct {
	ID            uuid.UUID       `json:"id"`
	Label         string          `json:"label"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	Kind          IncomeKind      `json:"kind"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	ParentName    string          `json:"parent_name,omitempty"`
}

// Derived reports whether the entry is regenerated on every synchronization
func (e *IncomeEntry) Derived() bool {
	return e.SourceID != nil || e.ParentName != ""
}

// ExpenseEntry is one recurring monthly expense line. SourceID links derived
// entries to the asset or liability they were generated from.
type ExpenseEntry struct {
	ID            uuid.UUID       `json:"id"`
	Label         string          `json:"label"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	Kind          ExpenseKind     `json:"kind"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
}

// Derived reports whether the entry is regenerated on every synchronization
func (e *ExpenseEntry) Derived() bool {
	return e.SourceID != nil
}

// Ledger is the household's recurring monthly income and expense book
type Ledger struct {
	Incomes  []IncomeEntry  `json:"incomes"`
	Expenses []ExpenseEntry `json:"expenses"`
}

// ManualIncomes returns the user-owned income entries in ledger order
func (l *Ledger) ManualIncomes() []IncomeEntry {
	var manual []IncomeEntry
	for _, e := range l.Incomes {
		if !e.Derived() {
			manual = append(manual, e)
		}
	}
	return manual
}

// ManualExpenses returns the user-owned expense entries in ledger order
func (l *Ledger) ManualExpenses() []ExpenseEntry {
	var manual []ExpenseEntry
	for _, e := range l.Expenses {
		if !e.Derived() {
			manual = append(manual, e)
		}
	}
	return manual
}

// SalaryFor returns the derived salary entry for the named parent, if any
func (l *Ledger) SalaryFor(parentName string) *IncomeEntry {
	for i := range l.Incomes {
		if l.Incomes[i].Kind == IncomeSalary && l.Incomes[i].ParentName == parentName {
			return &l.Incomes[i]
		}
	}
	return nil
}
