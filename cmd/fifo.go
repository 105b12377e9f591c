package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/investax/renderer"
	"github.com/google/subcommands"
)

// fifoCmd holds the flags for the 'fifo' subcommand.
type fifoCmd struct {
	year       int
	exemptions string
	paymentDay string
}

func (*fifoCmd) Name() string     { return "fifo" }
func (*fifoCmd) Synopsis() string { return "per-trade FIFO cost basis breakdown" }
func (*fifoCmd) Usage() string {
	return `itx fifo [-y <year>] [-exemptions <list>]

  Shows, for every closed trade, the buy lot slices consumed in FIFO order
  with their cost basis, ownership years and applied exemptions.
`
}

func (c *fifoCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year to report on. Reports on all years by default.")
	f.StringVar(&c.exemptions, "exemptions", "", "Comma-separated tax exemptions (long-term-ownership, tax-free)")
	f.StringVar(&c.paymentDay, "payment-day", "", "Tax payment day (DD.MM or on-close). Defaults to 15.03.")
}

func (c *fifoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	statement, report, _, err := runPipeline(c.year, c.exemptions, c.paymentDay, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating FIFO details: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.FifoMarkdown(statement, report))
	return subcommands.ExitSuccess
}
