package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVFormatter exports the projection rows, one line per year
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"Year", "SalaryIncome", "PensionIncome", "GrossRentalIncome", "OtherIncome",
		"TotalGrossIncome", "LoanPayments", "PropertyCharges", "PropertyTax",
		"LivingExpenses", "TaxablePropertyIncome", "IncomeTax", "IncentiveReductions",
		"SocialLevies", "NetTaxDue", "FiscalParts", "DependentChildren",
		"DepreciationConsumed", "DepreciationReserve", "DisposableIncome", "UsedFallbackTax",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range report.Projection {
		record := []string{
			strconv.Itoa(row.Year),
			row.SalaryIncome.StringFixed(2),
			row.PensionIncome.StringFixed(2),
			row.GrossRentalIncome.StringFixed(2),
			row.OtherIncome.StringFixed(2),
			row.TotalGrossIncome.StringFixed(2),
			row.LoanPayments.StringFixed(2),
			row.PropertyCharges.StringFixed(2),
			row.PropertyTax.StringFixed(2),
			row.LivingExpenses.StringFixed(2),
			row.TaxablePropertyIncome.StringFixed(2),
			row.IncomeTax.StringFixed(2),
			row.IncentiveReductions.StringFixed(2),
			row.SocialLevies.StringFixed(2),
			row.NetTaxDue().StringFixed(2),
			row.FiscalParts.String(),
			strconv.Itoa(row.DependentChildren),
			row.DepreciationConsumed.StringFixed(2),
			row.DepreciationReserve.StringFixed(2),
			row.DisposableIncome.StringFixed(2),
			strconv.FormatBool(row.UsedFallbackTax),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
