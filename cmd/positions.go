package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/investax/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct{}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "open positions left after FIFO matching" }
func (*positionsCmd) Usage() string {
	return `itx positions

  Matches all trades and shows the quantity still held per security.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	statement, err := OpenStatement()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load statement: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := statement.ProcessTrades(); err != nil {
		fmt.Fprintf(os.Stderr, "Error matching trades: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.PositionsMarkdown(statement))
	return subcommands.ExitSuccess
}
