package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/investax"
	"github.com/google/subcommands"
)

// rateCmd holds the flags for the 'rate' subcommand.
type rateCmd struct {
	date     string
	currency string
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "official currency rate for a date" }
func (*rateCmd) Usage() string {
	return `itx rate [-d <date>] [-c <currency>]

  Shows the central bank currency rate used for conversions on the given
  date, falling back to the nearest preceding trading day.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", investax.Today().String(), "Date of the rate")
	f.StringVar(&c.currency, "c", "USD", "Currency to convert from")
}

func (c *rateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := investax.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	country := localCountry()
	rate, err := newConverter(country).PreciseRate(date, c.currency, country.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting rate: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s: 1 %s = %s %s\n", date, c.currency, rate, country.Currency)
	return subcommands.ExitSuccess
}
