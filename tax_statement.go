package investax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedJurisdiction is returned when tax-statement generation is
// requested for a jurisdiction the engine has no statement rules for.
// Callers degrade gracefully: the statement is skipped with a warning and
// report generation continues.
var ErrUnsupportedJurisdiction = fmt.Errorf("unsupported jurisdiction")

// StockIncome is one sale entry of the tax statement, ready for the binary
// statement writer (an external sink).
type StockIncome struct {
	Description  string
	Date         Date
	Currency     string
	CurrencyRate decimal.Decimal
	Revenue      Cash
	LocalRevenue Cash
	LocalCost    Cash
}

// TaxStatement accumulates the entries of one year's tax declaration.
type TaxStatement struct {
	Year    int
	Incomes []StockIncome
}

// NewTaxStatement creates an empty statement for a tax year. Only Russian
// declarations are supported.
func NewTaxStatement(jurisdiction Jurisdiction, year int) (*TaxStatement, error) {
	if jurisdiction != JurisdictionRussia {
		return nil, fmt.Errorf("%w: tax statement generation for %s", ErrUnsupportedJurisdiction, jurisdiction.Name())
	}
	return &TaxStatement{Year: year}, nil
}

// AddStockIncome records one sale in the statement.
func (t *TaxStatement) AddStockIncome(
	description string, date Date, currency string, rate decimal.Decimal,
	revenue, localRevenue, localCost Cash,
) {
	t.Incomes = append(t.Incomes, StockIncome{
		Description:  description,
		Date:         date,
		Currency:     currency,
		CurrencyRate: rate,
		Revenue:      revenue,
		LocalRevenue: localRevenue,
		LocalCost:    localCost,
	})
}
