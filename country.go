package investax

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Jurisdiction is the closed set of supported tax jurisdictions.
type Jurisdiction int

const (
	JurisdictionRussia Jurisdiction = iota
	JurisdictionUsa
)

func (j Jurisdiction) Name() string {
	switch j {
	case JurisdictionRussia:
		return "Russia"
	case JurisdictionUsa:
		return "USA"
	default:
		return "unknown"
	}
}

// Currency returns the jurisdiction's local currency code.
func (j Jurisdiction) Currency() string {
	switch j {
	case JurisdictionRussia:
		return "RUB"
	default:
		return "USD"
	}
}

// TaxPrecision is the number of decimal places the jurisdiction's tax
// authority expects final tax amounts in (whole roubles, dollar cents).
func (j Jurisdiction) TaxPrecision() int32 {
	switch j {
	case JurisdictionRussia:
		return 0
	default:
		return 2
	}
}

// Country holds the tax rules of one jurisdiction: its local currency and
// the historical tax-rate tables per income type.
type Country struct {
	Jurisdiction Jurisdiction
	Currency     string

	defaultTaxRate decimal.Decimal
	taxRates       map[IncomeType]map[int]decimal.Decimal
	taxPrecision   int32
}

// newCountry builds a Country from percent-denominated rate tables.
func newCountry(
	jurisdiction Jurisdiction, currency string, defaultTaxRate decimal.Decimal,
	taxRates map[IncomeType]map[int]decimal.Decimal,
) Country {
	percent := decimal.NewFromInt(100)

	rates := make(map[IncomeType]map[int]decimal.Decimal, len(taxRates))
	for incomeType, table := range taxRates {
		converted := make(map[int]decimal.Decimal, len(table))
		for year, rate := range table {
			converted[year] = rate.Div(percent)
		}
		rates[incomeType] = converted
	}

	return Country{
		Jurisdiction:   jurisdiction,
		Currency:       currency,
		defaultTaxRate: defaultTaxRate.Div(percent),
		taxRates:       rates,
		taxPrecision:   jurisdiction.TaxPrecision(),
	}
}

// Russia returns the Russian tax rules with the given percent rate tables
// (year -> percent, effective until superseded).
func Russia(trading, dividends, interest map[int]decimal.Decimal) Country {
	return newCountry(JurisdictionRussia, "RUB", decimal.NewFromInt(13), map[IncomeType]map[int]decimal.Decimal{
		IncomeTrading:   trading,
		IncomeDividends: dividends,
		IncomeInterest:  interest,
	})
}

// Usa returns the US tax rules used for dividend withholding reconciliation.
func Usa() Country {
	return newCountry(JurisdictionUsa, "USD", decimal.Zero, map[IncomeType]map[int]decimal.Decimal{
		IncomeDividends: {0: decimal.NewFromInt(10)},
	})
}

// Cash wraps an amount into the country's local currency.
func (c Country) Cash(amount decimal.Decimal) Cash {
	return NewCash(c.Currency, amount)
}

// Zero returns the zero amount in the country's local currency.
func (c Country) Zero() Cash {
	return Zero(c.Currency)
}

// RoundTax rounds a local-currency tax amount with the double rounding
// discipline of the jurisdiction.
func (c Country) RoundTax(tax Cash) Cash {
	return NewCash(c.Currency, RoundTax(tax.Amount(), c.taxPrecision))
}

// TaxRate returns the tax rate effective for the given income type and year:
// the most recent table entry not after the year wins, the country default
// applies when the table has no entry yet.
func (c Country) TaxRate(incomeType IncomeType, year int) decimal.Decimal {
	table, ok := c.taxRates[incomeType]
	if !ok {
		return c.defaultTaxRate
	}

	years := make([]int, 0, len(table))
	for tableYear := range table {
		if tableYear <= year {
			years = append(years, tableYear)
		}
	}
	if len(years) == 0 {
		return c.defaultTaxRate
	}
	sort.Ints(years)
	return table[years[len(years)-1]]
}

// TaxToPay computes the additional tax due on the given local-currency
// income, deducting tax already withheld at source. The result is never
// negative.
func (c Country) TaxToPay(incomeType IncomeType, year int, income Cash, paidTax *Cash) (Cash, error) {
	if err := income.sameCurrency(c.Zero()); err != nil {
		return Cash{}, err
	}

	income = income.Round()
	if income.IsNegative() || income.IsZero() {
		return c.Zero(), nil
	}

	taxToPay := c.RoundTax(income.MulDec(c.TaxRate(incomeType, year)))

	if paidTax != nil {
		if paidTax.IsNegative() {
			panic("paid tax must not be negative")
		}
		if err := paidTax.sameCurrency(taxToPay); err != nil {
			return Cash{}, err
		}
		deduction := c.RoundTax(*paidTax)
		if deduction.Amount().LessThan(taxToPay.Amount()) {
			return taxToPay.Sub(deduction)
		}
		return c.Zero(), nil
	}

	return taxToPay, nil
}
