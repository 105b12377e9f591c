// Package renderer builds markdown reports from computed tax results.
// It is a pure formatting layer: every number it prints was computed and
// rounded upstream.
package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/investax"
)

// TradesMarkdown renders the stock selling report: one row per closed
// trade, standalone fees, and the totals row.
func TradesMarkdown(statement *investax.Statement, report *investax.TradesReport, country investax.Country) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Stock Selling Report (%s)\n\n", statement.Broker.Name)

	fmt.Fprint(&b, "## Trades\n\n")
	writeTradesTable(&b, statement, report, country)

	if len(report.Fees) > 0 {
		fmt.Fprint(&b, "\n## Fees\n\n")
		writeFeesTable(&b, report)
	}

	fmt.Fprint(&b, "\n## Tax per Year\n\n")
	writeNetTaxTable(&b, report)

	if len(report.NetLto) > 0 {
		fmt.Fprint(&b, "\n## Long-Term Ownership Deduction\n\n")
		writeLtoTable(&b, report, country)
	}

	return b.String()
}

func writeTradesTable(b *strings.Builder, statement *investax.Statement, report *investax.TradesReport, country investax.Country) {
	// Redundant columns are elided when every trade shares the local
	// currency or settles on its conclusion date.
	withDates := !report.SameDates
	withCurrency := !report.SameCurrency

	fmt.Fprint(b, "| # | Date |")
	if withDates {
		fmt.Fprint(b, " Settlement |")
	}
	fmt.Fprint(b, " Security | Quantity | Price | Revenue |")
	if withCurrency {
		fmt.Fprint(b, " Rate | Local Revenue |")
	}
	fmt.Fprint(b, " Commission | Cost | Profit | Taxable Profit | Tax | Real % |\n")

	fmt.Fprint(b, "|---:|:---|")
	if withDates {
		fmt.Fprint(b, ":---|")
	}
	fmt.Fprint(b, ":---|---:|---:|---:|")
	if withCurrency {
		fmt.Fprint(b, "---:|---:|")
	}
	fmt.Fprint(b, "---:|---:|---:|---:|---:|---:|\n")

	for i, trade := range report.Trades {
		sell := trade.Sell
		details := trade.Details

		fmt.Fprintf(b, "| %d | %s |", i+1, sell.ConclusionDate)
		if withDates {
			fmt.Fprintf(b, " %s |", sell.ExecutionDate)
		}
		fmt.Fprintf(b, " %s | %s | %s | %s |",
			statement.InstrumentName(sell.Symbol), sell.Quantity, sell.Price, details.Revenue)
		if withCurrency {
			fmt.Fprintf(b, " %s | %s |", trade.ExecutionRate, details.LocalRevenue)
		}
		fmt.Fprintf(b, " %s | %s | %s | %s | %s | %s |\n",
			details.LocalCommission.SignedString(),
			details.TotalLocalCost,
			details.LocalProfit.SignedString(),
			details.TaxableLocalProfit.SignedString(),
			details.TaxToPay,
			ratioCell(details.RealLocalProfitRatio),
		)
	}

	fmt.Fprintf(b, "| | **Total** |")
	if withDates {
		fmt.Fprint(b, " |")
	}
	fmt.Fprint(b, " | | | |")
	if withCurrency {
		fmt.Fprint(b, " | |")
	}
	total := ""
	if report.TotalTaxToPay != nil {
		total = report.TotalTaxToPay.String()
	}
	fmt.Fprintf(b, " | | **%s** | **%s** | **%s** | |\n",
		report.TotalLocalProfit.SignedString(),
		report.TotalTaxableProfit.SignedString(),
		total,
	)
}

func writeFeesTable(b *strings.Builder, report *investax.TradesReport) {
	fmt.Fprintln(b, "| Date | Description | Amount | Local Amount |")
	fmt.Fprintln(b, "|:---|:---|---:|---:|")
	for _, fee := range report.Fees {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			fee.Fee.Date, fee.Fee.LocalDescription(),
			fee.Fee.Amount.SignedString(), fee.LocalAmount.SignedString())
	}
}

func writeNetTaxTable(b *strings.Builder, report *investax.TradesReport) {
	fmt.Fprintln(b, "| Tax Year | Payment Date | Tax to Pay | Tax Deduction |")
	fmt.Fprintln(b, "|---:|:---|---:|---:|")
	for _, year := range sortedYears(report.NetTaxes) {
		tax := report.NetTaxes[year]
		fmt.Fprintf(b, "| %d | %s | %s | %s |\n",
			year, tax.TaxPaymentDate, tax.TaxToPay, tax.TaxDeduction)
	}
}

func writeLtoTable(b *strings.Builder, report *investax.TradesReport, country investax.Country) {
	fmt.Fprintln(b, "| Tax Year | Deduction | Limit | Not Deductible | Applied |")
	fmt.Fprintln(b, "|---:|---:|---:|---:|---:|")
	for _, year := range sortedYears(report.NetLto) {
		lto := report.NetLto[year]
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s |\n",
			year,
			country.Cash(lto.Calculated.Deduction),
			country.Cash(lto.Calculated.Limit),
			country.Cash(lto.Loss),
			country.Cash(lto.Applied),
		)
	}
}

// FifoMarkdown renders the per-trade FIFO breakdown: every consumed lot
// slice with its cost basis and ownership details.
func FifoMarkdown(statement *investax.Statement, report *investax.TradesReport) string {
	var b strings.Builder

	fmt.Fprint(&b, "# FIFO Details\n\n")

	for i, trade := range report.Trades {
		sell := trade.Sell
		fmt.Fprintf(&b, "## %d. %s: %s x %s on %s\n\n",
			i+1, statement.InstrumentName(sell.Symbol), sell.Quantity, sell.Price, sell.ConclusionDate)

		fmt.Fprintln(&b, "| Acquired | Source | Quantity | Multiplier | Price | Cost | Commission | Total Cost | Years | Exempted |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|---:|:---:|")
		for j, source := range trade.Details.FIFO {
			exempted := ""
			if source.TaxExemptionApplied || source.LtoDeductible != nil {
				exempted = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %d | %s |\n",
				source.ConclusionDate, source.Source,
				source.Quantity, source.Multiplier,
				trade.FifoPrices[j], source.Cost, source.Commission,
				source.TotalLocalCost, source.OwnershipYears, exempted)
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}

func ratioCell(ratio *decimal.Decimal) string {
	if ratio == nil {
		return ""
	}
	return ratio.Mul(decimal.NewFromInt(100)).Round(1).String() + "%"
}

func sortedYears[V any](m map[int]V) []int {
	years := make([]int, 0, len(m))
	for year := range m {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
