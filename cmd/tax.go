package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/investax/renderer"
	"github.com/google/subcommands"
)

// taxCmd holds the flags for the 'tax' subcommand.
type taxCmd struct {
	year       int
	exemptions string
	paymentDay string
	statement  bool
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "stock selling tax report" }
func (*taxCmd) Usage() string {
	return `itx tax [-y <year>] [-exemptions <list>] [-payment-day <DD.MM|on-close>] [-tax-statement]

  Matches every sell trade against the open buy lots in FIFO order and
  calculates the tax to pay per trade and per tax year, including currency
  conversion to rubles and the long-term ownership exemption.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year to report on. Reports on all years by default.")
	f.StringVar(&c.exemptions, "exemptions", "", "Comma-separated tax exemptions (long-term-ownership, tax-free)")
	f.StringVar(&c.paymentDay, "payment-day", "", "Tax payment day (DD.MM or on-close). Defaults to 15.03.")
	f.BoolVar(&c.statement, "tax-statement", false, "Also generate tax statement income entries")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.statement && c.year == 0 {
		fmt.Fprintln(os.Stderr, "-tax-statement requires a tax year (-y)")
		return subcommands.ExitUsageError
	}

	statement, report, country, err := runPipeline(c.year, c.exemptions, c.paymentDay, c.statement)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating taxes: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.TradesMarkdown(statement, report, country))

	if report.TaxStatement != nil {
		printMarkdown(renderer.TaxStatementMarkdown(report.TaxStatement))
	}

	return subcommands.ExitSuccess
}
