package investax

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TaxPaymentDaySpec describes when the tax accumulated for a tax year
// becomes due: either on a fixed day of the following year, or as a single
// lump payment on (near) account closure.
type TaxPaymentDaySpec struct {
	// Fixed-day spec. Ignored when OnClose is set.
	Month time.Month
	Day   int

	// OnClose, when non-zero, pins all trading income to a single payment
	// on the account close date.
	OnClose Date
}

// DefaultTaxPaymentDaySpec is the fixed annual payment day used when the
// portfolio does not configure one.
func DefaultTaxPaymentDaySpec() TaxPaymentDaySpec {
	return TaxPaymentDaySpec{Month: time.March, Day: 15}
}

var paymentDayRE = regexp.MustCompile(`^([0-9]+)\.([0-9]+)$`)

// ParseTaxPaymentDaySpec parses the "DD.MM" or "on-close" configuration
// spelling of a payment day.
func ParseTaxPaymentDaySpec(s string, closeDate Date) (TaxPaymentDaySpec, error) {
	if s == "on-close" {
		if closeDate.IsZero() {
			return TaxPaymentDaySpec{}, fmt.Errorf("on-close tax payment day requires an account close date")
		}
		return TaxPaymentDaySpec{OnClose: closeDate}, nil
	}

	match := paymentDayRE.FindStringSubmatch(s)
	if match == nil {
		return TaxPaymentDaySpec{}, fmt.Errorf("invalid tax payment day: %q", s)
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])

	// Reject dates that do not exist every year.
	if month < 1 || month > 12 || day < 1 || day > 31 || (day == 29 && month == 2) {
		return TaxPaymentDaySpec{}, fmt.Errorf("invalid tax payment day: %q", s)
	}
	if normalized := NewDate(2001, time.Month(month), day); normalized.Day() != day || normalized.Month() != time.Month(month) {
		return TaxPaymentDaySpec{}, fmt.Errorf("invalid tax payment day: %q", s)
	}

	return TaxPaymentDaySpec{Month: time.Month(month), Day: day}, nil
}

// TaxPaymentDay resolves income dates to tax years and payment dates for
// one jurisdiction.
type TaxPaymentDay struct {
	Jurisdiction Jurisdiction
	Spec         TaxPaymentDaySpec
}

// NewTaxPaymentDay binds a payment day spec to a jurisdiction.
func NewTaxPaymentDay(jurisdiction Jurisdiction, spec TaxPaymentDaySpec) TaxPaymentDay {
	return TaxPaymentDay{Jurisdiction: jurisdiction, Spec: spec}
}

// Get returns the tax year and the approximate date when tax is going to be
// paid for the specified income.
func (t TaxPaymentDay) Get(incomeDate Date, trading bool) (int, Date) {
	var taxYear int
	if t.Spec.OnClose.IsZero() {
		taxYear = incomeDate.Year()
	} else {
		if incomeDate.After(t.Spec.OnClose) {
			panic("income date is after the account close date")
		}
		if trading {
			taxYear = t.Spec.OnClose.Year()
		} else {
			taxYear = incomeDate.Year()
		}
	}
	return taxYear, t.GetFor(taxYear, trading)
}

// GetFor returns the payment date for an already-resolved tax year.
func (t TaxPaymentDay) GetFor(taxYear int, trading bool) Date {
	if t.Spec.OnClose.IsZero() {
		month, day := t.Spec.Month, t.Spec.Day

		// Russian trading income for a year is settled as one figure, so
		// all of it is modeled as due on the first day of the next year.
		if trading && t.Jurisdiction == JurisdictionRussia {
			month, day = time.January, 1
		}

		return NewDate(taxYear+1, month, day)
	}

	if taxYear > t.Spec.OnClose.Year() {
		panic("tax year is after the account close date")
	}

	if trading {
		return t.Spec.OnClose
	}

	// Non-trading income keeps the regular annual schedule even when the
	// account is being closed.
	fallback := NewTaxPaymentDay(t.Jurisdiction, DefaultTaxPaymentDaySpec())
	return fallback.GetFor(taxYear, trading)
}
