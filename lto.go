package investax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Long-term ownership (LTO) tax exemption: profit on positions held for at
// least LtoMinYears is deductible, within an annual limit proportional to
// the weighted holding duration.

// LtoMinYears is the minimum whole-year holding period for the exemption.
const LtoMinYears = 3

// ltoDeductionPerYear is the deduction allowance granted per year of
// ownership, in local currency units.
var ltoDeductionPerYear = decimal.NewFromInt(3_000_000)

// ltoMinAcquisitionDate: only positions acquired on or after this date are
// eligible for the exemption.
var ltoMinAcquisitionDate = NewDate(2014, time.January, 1)

// OwnershipYears returns the number of whole calendar years between the buy
// and sell dates. A position bought on Feb 29 completes a year on the last
// day of February.
func OwnershipYears(buy, sell Date) int {
	if sell.Before(buy) {
		panic("sell date is before buy date")
	}

	years := sell.Year() - buy.Year()

	switch {
	case sell.Month() < buy.Month():
		years--
	case sell.Month() == buy.Month():
		// The anniversary day is not reached yet, unless the sell date is
		// the last day of the month (the Feb 29 case).
		if sell.Day() < buy.Day() && sell.Add(1).Month() == sell.Month() {
			years--
		}
	}

	return years
}

// LtoEligibility reports whether a position qualifies for the long-term
// ownership exemption and the ownership duration in whole years.
func LtoEligibility(buy, sell Date) (eligible bool, years int) {
	years = OwnershipYears(buy, sell)
	return !buy.Before(ltoMinAcquisitionDate) && years >= LtoMinYears, years
}

// LtoDeductibleProfit is one profit contribution eligible for the exemption.
type LtoDeductibleProfit struct {
	Profit decimal.Decimal
	Years  int
}

// LtoDeduction is the result of accumulating deductible profit for one
// period: the deduction itself, the weighted limit it was capped at, and
// the profit left uncovered by the limit.
type LtoDeduction struct {
	Deduction decimal.Decimal
	Limit     decimal.Decimal
	Loss      decimal.Decimal
}

// LtoDeductionCalculator accumulates exemption-eligible profit and computes
// the deduction allowed by the weighted annual limit.
type LtoDeductionCalculator struct {
	profit         decimal.Decimal
	weightedProfit decimal.Decimal
}

// NewLtoDeductionCalculator returns an empty accumulator.
func NewLtoDeductionCalculator() *LtoDeductionCalculator {
	return &LtoDeductionCalculator{}
}

// Add registers a positive profit held for the given number of whole years.
// Callers must pre-check eligibility: years must be at least LtoMinYears.
func (c *LtoDeductionCalculator) Add(profit decimal.Decimal, years int) {
	if !profit.IsPositive() {
		panic("LTO deductible profit must be positive")
	}
	if years < LtoMinYears {
		panic("LTO deductible profit must be held for at least the minimum ownership period")
	}
	c.profit = c.profit.Add(profit)
	c.weightedProfit = c.weightedProfit.Add(profit.Mul(decimal.NewFromInt(int64(years))))
}

// Calculate returns the deduction, its limit and the uncovered loss.
//
// The limit weights each contribution by its holding period:
// limit = weighted_average_years * deduction_per_year.
func (c *LtoDeductionCalculator) Calculate() LtoDeduction {
	if c.profit.IsZero() {
		return LtoDeduction{}
	}

	limit := c.weightedProfit.Div(c.profit).Mul(ltoDeductionPerYear)

	deduction := c.profit
	loss := decimal.Zero
	if limit.LessThan(deduction) {
		deduction = limit
		loss = c.profit.Sub(limit)
	}

	return LtoDeduction{Deduction: deduction, Limit: limit, Loss: loss}
}

// NetLtoDeduction compares, for one tax year, the deduction computed from
// eligible profit with the deduction actually applied when offsetting tax.
type NetLtoDeduction struct {
	Calculated LtoDeduction

	// Applied is the deduction amount actually claimed against the year.
	Applied decimal.Decimal
	// AppliedAboveLimit is the part of Applied beyond the computed limit.
	// A non-zero value is a data-integrity warning, not an error.
	AppliedAboveLimit decimal.Decimal
	// Loss is the eligible profit left uncovered by the limit.
	Loss decimal.Decimal
}

// NetLtoDeductionCalculator tracks per tax year both the raw deduction and
// the deduction actually applied.
type NetLtoDeductionCalculator struct {
	taxYears map[int]*netLtoYear
}

type netLtoYear struct {
	calc    LtoDeductionCalculator
	applied decimal.Decimal
}

// NewNetLtoDeductionCalculator returns an empty per-year accumulator.
func NewNetLtoDeductionCalculator() *NetLtoDeductionCalculator {
	return &NetLtoDeductionCalculator{taxYears: make(map[int]*netLtoYear)}
}

func (c *NetLtoDeductionCalculator) year(taxYear int) *netLtoYear {
	year, ok := c.taxYears[taxYear]
	if !ok {
		year = &netLtoYear{}
		c.taxYears[taxYear] = year
	}
	return year
}

// AddProfit registers eligible profit for a tax year.
func (c *NetLtoDeductionCalculator) AddProfit(taxYear int, profit decimal.Decimal, years int) {
	c.year(taxYear).calc.Add(profit, years)
}

// AddApplied registers a deduction amount actually applied for a tax year.
func (c *NetLtoDeductionCalculator) AddApplied(taxYear int, amount decimal.Decimal) {
	year := c.year(taxYear)
	year.applied = year.applied.Add(amount)
}

// Calculate returns the net view per tax year.
func (c *NetLtoDeductionCalculator) Calculate() map[int]NetLtoDeduction {
	result := make(map[int]NetLtoDeduction, len(c.taxYears))

	for taxYear, year := range c.taxYears {
		calculated := year.calc.Calculate()

		aboveLimit := decimal.Zero
		if year.applied.GreaterThan(calculated.Limit) {
			aboveLimit = year.applied.Sub(calculated.Limit)
		}

		result[taxYear] = NetLtoDeduction{
			Calculated:        calculated,
			Applied:           year.applied,
			AppliedAboveLimit: aboveLimit,
			Loss:              calculated.Loss,
		}
	}

	return result
}
