package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/etnz/investax"
)

// TaxStatementMarkdown renders the declaration-ready income entries.
func TaxStatementMarkdown(statement *investax.TaxStatement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tax Statement %d\n\n", statement.Year)

	fmt.Fprintln(&b, "| Date | Description | Currency | Rate | Revenue | Local Revenue | Local Cost |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|")
	for _, income := range statement.Incomes {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			income.Date, income.Description, income.Currency, income.CurrencyRate,
			income.Revenue, income.LocalRevenue, income.LocalCost)
	}

	return b.String()
}

// PositionsMarkdown renders the open positions left after FIFO matching.
func PositionsMarkdown(statement *investax.Statement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Positions (%s)\n\n", statement.Broker.Name)

	open := statement.OpenPositions()
	symbols := make([]string, 0, len(open))
	for symbol := range open {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	fmt.Fprintln(&b, "| Security | Quantity |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, symbol := range symbols {
		fmt.Fprintf(&b, "| %s | %s |\n", statement.InstrumentName(symbol), open[symbol])
	}

	return b.String()
}
