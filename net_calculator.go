package investax

import (
	"fmt"
)

// NetTax is the final tax figure for one tax year.
type NetTax struct {
	TaxPaymentDate Date
	TaxToPay       Cash
	TaxDeduction   Cash
	LtoDeduction   Cash
	LtoLoss        Cash
}

type netProfit struct {
	total   Cash
	taxable Cash
	lto     *LtoDeductionCalculator
}

// NetTaxCalculator aggregates taxable profit across all trades per
// tax-payment-date bucket and computes the final tax and the deduction
// actually realized.
type NetTaxCalculator struct {
	country       Country
	taxPaymentDay TaxPaymentDay
	profit        map[[2]int]*netProfit // (tax year, payment date ordinal)
	paymentDates  map[int]Date
}

// NewNetTaxCalculator creates a calculator for one jurisdiction and payment
// schedule.
func NewNetTaxCalculator(country Country, taxPaymentDay TaxPaymentDay) *NetTaxCalculator {
	return &NetTaxCalculator{
		country:       country,
		taxPaymentDay: taxPaymentDay,
		profit:        make(map[[2]int]*netProfit),
		paymentDates:  make(map[int]Date),
	}
}

// AddProfit registers one income event: its total and taxable local-currency
// profit and any long-term-ownership deductible slices.
func (c *NetTaxCalculator) AddProfit(date Date, total, taxable Cash, ltoDeductibles []LtoDeductibleProfit) {
	taxYear, paymentDate := c.taxPaymentDay.Get(date, true)

	// The jurisdiction model allows a single payment date per tax year.
	if existing, ok := c.paymentDates[taxYear]; ok && existing != paymentDate {
		panic(fmt.Sprintf("conflicting tax payment dates for year %d: %s and %s", taxYear, existing, paymentDate))
	}
	c.paymentDates[taxYear] = paymentDate

	key := [2]int{taxYear, paymentDate.Days(Date{})}
	bucket, ok := c.profit[key]
	if !ok {
		bucket = &netProfit{
			total:   c.country.Zero(),
			taxable: c.country.Zero(),
			lto:     NewLtoDeductionCalculator(),
		}
		c.profit[key] = bucket
	}

	bucket.total = bucket.total.MustAdd(total.Round())
	bucket.taxable = bucket.taxable.MustAdd(taxable.Round())

	for _, deductible := range ltoDeductibles {
		bucket.lto.Add(deductible.Profit, deductible.Years)
	}
}

// Calculate returns the final tax per tax year.
func (c *NetTaxCalculator) Calculate() (map[int]NetTax, error) {
	taxes := make(map[int]NetTax, len(c.profit))

	for key, profit := range c.profit {
		taxYear := key[0]
		paymentDate := c.paymentDates[taxYear]

		lto := profit.lto.Calculate()
		ltoDeduction := c.country.Cash(lto.Deduction)
		ltoLoss := c.country.Cash(lto.Loss)

		taxable, err := profit.taxable.Sub(ltoDeduction)
		if err != nil {
			return nil, err
		}

		taxToPay, err := c.country.TaxToPay(IncomeTrading, taxYear, taxable, nil)
		if err != nil {
			return nil, err
		}
		taxWithoutDeduction, err := c.country.TaxToPay(IncomeTrading, taxYear, profit.total, nil)
		if err != nil {
			return nil, err
		}

		taxDeduction, err := taxWithoutDeduction.Sub(taxToPay)
		if err != nil {
			return nil, err
		}
		if taxDeduction.IsNegative() {
			panic("tax deduction is negative")
		}

		if _, ok := taxes[taxYear]; ok {
			panic(fmt.Sprintf("duplicate tax year: %d", taxYear))
		}
		taxes[taxYear] = NetTax{
			TaxPaymentDate: paymentDate,
			TaxToPay:       taxToPay,
			TaxDeduction:   taxDeduction,
			LtoDeduction:   ltoDeduction,
			LtoLoss:        ltoLoss,
		}
	}

	return taxes, nil
}
