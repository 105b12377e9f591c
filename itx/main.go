package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/investax/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: `COMP_LINE` is set by the shell, in which case
	// Complete prints candidates and exits.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"tax": {Flags: map[string]complete.Predictor{
				"y":             predict.Something,
				"exemptions":    predict.Set{"long-term-ownership", "tax-free"},
				"payment-day":   predict.Something,
				"tax-statement": predict.Nothing,
			}},
			"fifo":      {},
			"positions": {},
			"rate":      {},
			"fmt":       {},
			"topic":     {},
		},
		Flags: map[string]complete.Predictor{
			"statement-file": predict.Files("*.jsonl"),
		},
	}
	completion.Complete("itx")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
