package investax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IncomeType selects the tax-rate table used for an income event.
type IncomeType int

const (
	IncomeTrading IncomeType = iota
	IncomeDividends
	IncomeInterest
)

func (t IncomeType) String() string {
	switch t {
	case IncomeTrading:
		return "trading"
	case IncomeDividends:
		return "dividends"
	case IncomeInterest:
		return "interest"
	default:
		return "unknown"
	}
}

// TaxExemption is a portfolio-level tax relief regime.
type TaxExemption int

const (
	// ExemptionLongTermOwnership exempts profit on positions held for at
	// least 3 years, within an annual cap proportional to holding duration.
	ExemptionLongTermOwnership TaxExemption = iota
	// ExemptionTaxFree marks accounts whose trading profit is not taxed at
	// all (special account types).
	ExemptionTaxFree
)

func (e TaxExemption) String() string {
	switch e {
	case ExemptionLongTermOwnership:
		return "long-term-ownership"
	case ExemptionTaxFree:
		return "tax-free"
	default:
		return "unknown"
	}
}

// ParseTaxExemption parses the configuration spelling of a tax exemption.
func ParseTaxExemption(s string) (TaxExemption, error) {
	switch s {
	case "long-term-ownership":
		return ExemptionLongTermOwnership, nil
	case "tax-free":
		return ExemptionTaxFree, nil
	default:
		return 0, fmt.Errorf("unknown tax exemption: %q", s)
	}
}

// applicable reports whether the exemption may apply to a FIFO source and
// whether it applies unconditionally regardless of holding period.
func (e TaxExemption) applicable() (exemptible, unconditional bool) {
	switch e {
	case ExemptionLongTermOwnership:
		return true, false
	case ExemptionTaxFree:
		return true, true
	default:
		return false, false
	}
}

// ValidateTaxExemptions checks a portfolio exemption configuration against
// the broker's jurisdiction.
func ValidateTaxExemptions(broker Broker, exemptions []TaxExemption) error {
	if len(exemptions) == 0 {
		return nil
	}
	if len(exemptions) > 1 {
		return fmt.Errorf("only one tax exemption can be specified per portfolio")
	}
	if broker.Jurisdiction != JurisdictionRussia {
		return fmt.Errorf("tax exemptions are only supported for brokers with Russia jurisdiction")
	}
	return nil
}

// RoundTax applies the double rounding required by tax authorities: the tax
// is first rounded to cents and only then to the jurisdiction tax precision.
//
// The declaration software accepts income with cents precision only. For
// $10.64 income at a 65.4244 rate it computes:
//  1. income = round(10.64 * 65.4244, 2) = 696.12 (696.115616 unrounded)
//  2. tax = round(round(696.12 * 0.13, 2), 0) = 91 (90.4956 unrounded)
func RoundTax(tax decimal.Decimal, precision int32) decimal.Decimal {
	return tax.Round(2).Round(precision)
}
