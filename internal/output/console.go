package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/patrimoine/wealth-audit/pkg/money"
)

// ConsoleFormatter renders the report as a human-readable text summary
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "BILAN PATRIMONIAL")
	fmt.Fprintln(&buf, "=================")
	fmt.Fprintf(&buf, "Actifs bruts:      %s\n", euros(report.Patrimoine.GrossAssets))
	fmt.Fprintf(&buf, "Capital restant dû: %s\n", euros(report.Patrimoine.OutstandingDebt))
	fmt.Fprintf(&buf, "Patrimoine net:    %s\n", euros(report.Patrimoine.NetWorth))

	if len(report.Projection) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "PROJECTION")
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Année\tRevenus\tDépenses\tImpôt net\tReste à vivre\t")
		for _, row := range report.Projection {
			marker := ""
			if row.IsDeficitYear() {
				marker = " (déficit)"
			}
			if row.UsedFallbackTax {
				marker += " *"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s%s\t\n",
				row.Year,
				euros(row.TotalGrossIncome),
				euros(row.TotalExpenses()),
				euros(row.NetTaxDue()),
				euros(row.DisposableIncome),
				marker,
			)
		}
		w.Flush()
		fmt.Fprintln(&buf, "* barème de repli utilisé")
	}

	if report.Capacity != nil {
		capacity := report.Capacity
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "CAPACITÉ D'EMPRUNT")
		if capacity.InsufficientIncome {
			fmt.Fprintln(&buf, "Revenus insuffisants pour un calcul de taux d'endettement")
		} else {
			fmt.Fprintf(&buf, "Revenus pondérés:     %s\n", euros(capacity.WeightedMonthlyIncome))
			fmt.Fprintf(&buf, "  dont salaires:      %s\n", euros(capacity.SalaryIncome))
			fmt.Fprintf(&buf, "  dont loyers:        %s (bruts %s)\n",
				euros(capacity.WeightedRentalIncome), euros(capacity.GrossRentalIncome))
			fmt.Fprintf(&buf, "Charges de crédit:    %s\n", euros(capacity.CurrentDebtService))
			fmt.Fprintf(&buf, "Taux d'endettement:   %s%% (plafond %s%%)\n",
				capacity.DebtRatioPct.StringFixed(1), capacity.MaxDebtRatioPct.StringFixed(0))
			fmt.Fprintf(&buf, "Capacité résiduelle:  %s / mois\n", euros(capacity.ResidualCapacity))
		}
	}

	if report.Optimization != nil {
		opt := report.Optimization
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "OPTIMISATION D'ÉPARGNE")
		if !opt.Success {
			fmt.Fprintln(&buf, "Aucune allocation faisable: contraintes violées")
			for _, v := range opt.ViolatedConstraints {
				fmt.Fprintf(&buf, "  - %s\n", v)
			}
		}
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Support\tCapital initial\tVersement mensuel\t")
		fmt.Fprintf(w, "Assurance vie\t%s\t%s\t\n",
			euros(opt.LifeInsurance.InitialCapital), euros(opt.LifeInsurance.MonthlyContribution))
		fmt.Fprintf(w, "PER\t%s\t%s\t\n",
			euros(opt.RetirementSavings.InitialCapital), euros(opt.RetirementSavings.MonthlyContribution))
		fmt.Fprintf(w, "SCPI\t%s\t%s\t\n",
			euros(opt.RealEstateFund.InitialCapital), euros(opt.RealEstateFund.MonthlyContribution))
		w.Flush()
		fmt.Fprintf(&buf, "Crédit SCPI:          %s (mensualité %s)\n",
			euros(opt.CreditAmount), euros(opt.CreditMonthlyPayment))
		fmt.Fprintf(&buf, "Effort d'épargne:     %s / mois (dont gain fiscal PER %s)\n",
			euros(opt.MonthlySavingsEffort), euros(opt.PERTaxBenefitMonthly))
		fmt.Fprintf(&buf, "Patrimoine final:     %s\n", euros(opt.FinalNetWorth))
	}

	return buf.Bytes(), nil
}

func euros(amount decimal.Decimal) string {
	return money.FromDecimal(amount).Format()
}
