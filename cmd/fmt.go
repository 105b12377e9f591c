package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/investax"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the statement file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `itx fmt

  Validates and formats the statement file. This command reads all records,
  validates them, sorts them by date, and writes them back in a canonical
  JSONL format.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	statement, err := OpenStatement()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load statement: %v\n", err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	if err := investax.EncodeStatement(&buf, statement); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting statement: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(*statementFile, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving statement: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Formatted %q.\n", *statementFile)
	return subcommands.ExitSuccess
}
