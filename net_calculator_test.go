package investax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNetTaxCalculator(t *testing.T) {
	russia := Russia(nil, nil, nil)
	day := NewTaxPaymentDay(JurisdictionRussia, DefaultTaxPaymentDaySpec())

	calc := NewNetTaxCalculator(russia, day)
	calc.AddProfit(NewDate(2022, time.March, 1), russia.Cash(decimal.NewFromInt(10000)), russia.Cash(decimal.NewFromInt(10000)), nil)
	calc.AddProfit(NewDate(2022, time.September, 1), russia.Cash(decimal.NewFromInt(-4000)), russia.Cash(decimal.NewFromInt(-4000)), nil)
	calc.AddProfit(NewDate(2023, time.February, 1), russia.Cash(decimal.NewFromInt(2000)), russia.Cash(decimal.NewFromInt(2000)), nil)

	taxes, err := calc.Calculate()
	if err != nil {
		t.Fatal(err)
	}
	if len(taxes) != 2 {
		t.Fatalf("got %d tax years, want 2", len(taxes))
	}

	// 2022 nets profits and losses before taxing: (10000 - 4000) * 13%.
	tax2022 := taxes[2022]
	if !tax2022.TaxToPay.Equal(russia.Cash(decimal.NewFromInt(780))) {
		t.Errorf("2022 TaxToPay = %s, want 780", tax2022.TaxToPay.Amount())
	}
	if want := NewDate(2023, time.January, 1); tax2022.TaxPaymentDate != want {
		t.Errorf("2022 payment date = %s, want %s", tax2022.TaxPaymentDate, want)
	}

	tax2023 := taxes[2023]
	if !tax2023.TaxToPay.Equal(russia.Cash(decimal.NewFromInt(260))) {
		t.Errorf("2023 TaxToPay = %s, want 260", tax2023.TaxToPay.Amount())
	}
}

func TestNetTaxCalculatorLtoDeduction(t *testing.T) {
	russia := Russia(nil, nil, nil)
	day := NewTaxPaymentDay(JurisdictionRussia, DefaultTaxPaymentDaySpec())

	calc := NewNetTaxCalculator(russia, day)

	// 13M of profit over 4 years: the limit covers 12M, the 1M above it
	// stays taxable. The deductible profit arrives inside the taxable
	// bucket and only the capped deduction is subtracted here.
	profit := russia.Cash(decimal.NewFromInt(13_000_000))
	calc.AddProfit(NewDate(2022, time.March, 1), profit, profit,
		[]LtoDeductibleProfit{{Profit: decimal.NewFromInt(13_000_000), Years: 4}})

	taxes, err := calc.Calculate()
	if err != nil {
		t.Fatal(err)
	}

	tax := taxes[2022]
	if !tax.LtoDeduction.Equal(russia.Cash(decimal.NewFromInt(12_000_000))) {
		t.Errorf("LtoDeduction = %s, want 12000000", tax.LtoDeduction.Amount())
	}
	if !tax.LtoLoss.Equal(russia.Cash(decimal.NewFromInt(1_000_000))) {
		t.Errorf("LtoLoss = %s, want 1000000", tax.LtoLoss.Amount())
	}
	// (13M - 12M) * 13%; without any deduction the 13M would have been
	// taxed at 13%.
	if !tax.TaxToPay.Equal(russia.Cash(decimal.NewFromInt(130_000))) {
		t.Errorf("TaxToPay = %s, want 130000", tax.TaxToPay.Amount())
	}
	if !tax.TaxDeduction.Equal(russia.Cash(decimal.NewFromInt(1_560_000))) {
		t.Errorf("TaxDeduction = %s, want 1560000", tax.TaxDeduction.Amount())
	}
}

func TestNetTaxCalculatorSharedPaymentDate(t *testing.T) {
	russia := Russia(nil, nil, nil)
	day := NewTaxPaymentDay(JurisdictionRussia, TaxPaymentDaySpec{OnClose: NewDate(2022, time.December, 1)})

	calc := NewNetTaxCalculator(russia, day)
	calc.AddProfit(NewDate(2022, time.March, 1), russia.Cash(decimal.NewFromInt(100)), russia.Cash(decimal.NewFromInt(100)), nil)

	// A second event resolving to the same year and date is fine.
	calc.AddProfit(NewDate(2022, time.April, 1), russia.Cash(decimal.NewFromInt(100)), russia.Cash(decimal.NewFromInt(100)), nil)

	if _, err := calc.Calculate(); err != nil {
		t.Fatal(err)
	}
}
