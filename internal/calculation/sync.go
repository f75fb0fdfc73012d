package calculation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/internal/domain"
)

// FlowSynchronizer rebuilds the derived portion of the household ledger
// from the current family, asset and liability state. User-entered lines
// are preserved verbatim; derived lines are fully regenerated, keeping
// their prior ids and salary amounts so that a second pass with no state
// change reproduces the ledger byte for byte.
type FlowSynchronizer struct {
	Amortizer *LoanAmortizer
}

// NewFlowSynchronizer creates a new synchronizer
func NewFlowSynchronizer(amortizer *LoanAmortizer) *FlowSynchronizer {
	if amortizer == nil {
		amortizer = NewLoanAmortizer()
	}
	return &FlowSynchronizer{Amortizer: amortizer}
}

// Synchronize returns the reconciled ledger, derived entries first, then the
// manual entries in their existing order.
func (fs *FlowSynchronizer) Synchronize(ledger domain.Ledger, household domain.Household, assets []domain.Asset, liabilities []domain.Liability) domain.Ledger {
	priorIncomeIDs := make(map[string]uuid.UUID)
	priorSalaries := make(map[string]decimal.Decimal)
	for _, e := range ledger.Incomes {
		if !e.Derived() {
			continue
		}
		priorIncomeIDs[incomeKey(e)] = e.ID
		if e.Kind == domain.IncomeSalary {
			priorSalaries[e.ParentName] = e.MonthlyAmount
		}
	}
	priorExpenseIDs := make(map[string]uuid.UUID)
	for _, e := range ledger.Expenses {
		if e.Derived() {
			priorExpenseIDs[expenseKey(e)] = e.ID
		}
	}

	var incomes []domain.IncomeEntry

	// Exactly one salary entry per named parent; the amount survives the
	// regeneration, a missing one starts at zero.
	for _, parent := range household.NamedParents() {
		amount, ok := priorSalaries[parent.Name]
		if !ok {
			amount = decimal.Zero
		}
		entry := domain.IncomeEntry{
			Label:         fmt.Sprintf("Salaire %s", parent.Name),
			MonthlyAmount: amount,
			Kind:          domain.IncomeSalary,
			ParentName:    parent.Name,
		}
		entry.ID = reuseID(priorIncomeIDs, incomeKey(entry))
		incomes = append(incomes, entry)
	}

	// One rent entry per income property with a positive rent
	for _, asset := range assets {
		if asset.Type != domain.AssetIncomeRealEstate || asset.Rental == nil {
			continue
		}
		if !asset.Rental.MonthlyRent.IsPositive() {
			continue
		}
		id := asset.ID
		entry := domain.IncomeEntry{
			Label:         fmt.Sprintf("Loyers %s", asset.Label),
			MonthlyAmount: asset.Rental.MonthlyRent,
			Kind:          domain.IncomeProperty,
			SourceID:      &id,
		}
		entry.ID = reuseID(priorIncomeIDs, incomeKey(entry))
		incomes = append(incomes, entry)
	}

	incomes = append(incomes, ledger.ManualIncomes()...)

	var expenses []domain.ExpenseEntry

	for _, asset := range assets {
		if !asset.IsRealEstate() {
			continue
		}
		id := asset.ID
		if asset.MonthlyCharges.IsPositive() {
			entry := domain.ExpenseEntry{
				Label:         fmt.Sprintf("Charges %s", asset.Label),
				MonthlyAmount: asset.MonthlyCharges,
				Kind:          domain.ExpenseCharges,
				SourceID:      &id,
			}
			entry.ID = reuseID(priorExpenseIDs, expenseKey(entry))
			expenses = append(expenses, entry)
		}
		if asset.AnnualPropertyTax.IsPositive() {
			entry := domain.ExpenseEntry{
				Label:         fmt.Sprintf("Taxe foncière %s", asset.Label),
				MonthlyAmount: asset.AnnualPropertyTax.Div(decimal.NewFromInt(12)),
				Kind:          domain.ExpensePropertyTax,
				SourceID:      &id,
			}
			entry.ID = reuseID(priorExpenseIDs, expenseKey(entry))
			expenses = append(expenses, entry)
		}
	}

	for _, loan := range liabilities {
		payment := fs.Amortizer.MonthlyPayment(loan.Principal, loan.AnnualRatePct, loan.DurationMonths)
		if !payment.IsPositive() {
			continue
		}
		id := loan.ID
		entry := domain.ExpenseEntry{
			Label:         fmt.Sprintf("Mensualité %s", loan.Label),
			MonthlyAmount: payment,
			Kind:          domain.ExpenseLoanPayment,
			SourceID:      &id,
		}
		entry.ID = reuseID(priorExpenseIDs, expenseKey(entry))
		expenses = append(expenses, entry)
	}

	expenses = append(expenses, ledger.ManualExpenses()...)

	return domain.Ledger{Incomes: incomes, Expenses: expenses}
}

// incomeKey identifies a derived income entry across regenerations
func incomeKey(e domain.IncomeEntry) string {
	if e.Kind == domain.IncomeSalary {
		return "salary/" + e.ParentName
	}
	if e.SourceID != nil {
		return string(e.Kind) + "/" + e.SourceID.String()
	}
	return string(e.Kind) + "/" + e.Label
}

// expenseKey identifies a derived expense entry across regenerations
func expenseKey(e domain.ExpenseEntry) string {
	if e.SourceID != nil {
		return string(e.Kind) + "/" + e.SourceID.String()
	}
	return string(e.Kind) + "/" + e.Label
}

func reuseID(prior map[string]uuid.UUID, key string) uuid.UUID {
	if id, ok := prior[key]; ok {
		return id
	}
	return uuid.New()
}

