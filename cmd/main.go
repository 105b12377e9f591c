package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/investax"
	"github.com/google/subcommands"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&taxCmd{}, "reports")
	c.Register(&fifoCmd{}, "reports")
	c.Register(&positionsCmd{}, "reports")

	c.Register(&rateCmd{}, "currency")

	c.Register(&fmtCmd{}, "statement")

	c.Register(&topicCmd{}, "help")
}

var statementFile = flag.String("statement-file", "statement.jsonl", "Path to the broker statement file (JSONL format)")

// OpenStatement is the central function to load the broker statement file.
func OpenStatement() (*investax.Statement, error) {
	f, err := os.Open(*statementFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return investax.DecodeStatement(f)
}

// localCountry is the tax residency all reports are computed for.
func localCountry() investax.Country {
	return investax.Russia(nil, nil, nil)
}

func newConverter(country investax.Country) *investax.Converter {
	return investax.NewConverter(country.Currency, investax.NewCbrProvider())
}

func parseExemptions(s string) ([]investax.TaxExemption, error) {
	if s == "" {
		return nil, nil
	}
	var exemptions []investax.TaxExemption
	for _, name := range strings.Split(s, ",") {
		exemption, err := investax.ParseTaxExemption(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		exemptions = append(exemptions, exemption)
	}
	return exemptions, nil
}

// runPipeline loads the statement, matches trades and computes the full
// report shared by the reporting subcommands.
func runPipeline(year int, exemptions, paymentDay string, withTaxStatement bool) (*investax.Statement, *investax.TradesReport, investax.Country, error) {
	country := localCountry()

	statement, err := OpenStatement()
	if err != nil {
		return nil, nil, country, fmt.Errorf("could not load statement: %w", err)
	}

	parsedExemptions, err := parseExemptions(exemptions)
	if err != nil {
		return nil, nil, country, err
	}
	if err := investax.ValidateTaxExemptions(statement.Broker, parsedExemptions); err != nil {
		return nil, nil, country, err
	}

	spec := investax.DefaultTaxPaymentDaySpec()
	if paymentDay != "" {
		closeDate := statement.Period[1]
		if closeDate.IsZero() {
			closeDate = investax.Today()
		}
		spec, err = investax.ParseTaxPaymentDaySpec(paymentDay, closeDate)
		if err != nil {
			return nil, nil, country, err
		}
	}

	if err := statement.ProcessTrades(); err != nil {
		return nil, nil, country, err
	}

	processor := &investax.TradesProcessor{
		Statement:        statement,
		Country:          country,
		Converter:        newConverter(country),
		TaxPaymentDay:    investax.NewTaxPaymentDay(statement.Broker.Jurisdiction, spec),
		Exemptions:       parsedExemptions,
		Year:             year,
		WithTaxStatement: withTaxStatement,
	}
	report, err := processor.Process()
	if err != nil {
		return nil, nil, country, err
	}
	return statement, report, country, nil
}
